package profile

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

const defaultStrip = 1

type hclGate struct {
	MinKernel *string `hcl:"min_kernel,optional"`
	Device    *bool   `hcl:"device,optional"`
}

func (g hclGate) gate() entities.Gate {
	gate := entities.Gate{}
	if g.MinKernel != nil {
		gate.MinKernel = *g.MinKernel
	}
	if g.Device != nil {
		gate.DeviceOnly = *g.Device
	}
	return gate
}

type hclToggle struct {
	Value     cty.Value `hcl:"value"`
	MinKernel *string   `hcl:"min_kernel,optional"`
	Device    *bool     `hcl:"device,optional"`
}

type hclAppend struct {
	MinKernel *string `hcl:"min_kernel,optional"`
	Device    *bool   `hcl:"device,optional"`
}

type hclModule struct {
	Repository string  `hcl:"repository"`
	Source     *string `hcl:"source,optional"`
	Target     string  `hcl:"target"`
	Makefile   *string `hcl:"makefile,optional"`
	Kconfig    *string `hcl:"kconfig,optional"`
	MinKernel  *string `hcl:"min_kernel,optional"`
	Device     *bool   `hcl:"device,optional"`
}

type hclPatch struct {
	Repository *string `hcl:"repository,optional"`
	File       string  `hcl:"file"`
	Strip      *int    `hcl:"strip,optional"`
	Root       *string `hcl:"root,optional"`
	MinKernel  *string `hcl:"min_kernel,optional"`
	Device     *bool   `hcl:"device,optional"`
}

// Repository decodes HCL build profiles. Blocks are read in source order so
// config operations keep the order they were written in.
type Repository struct{}

var _ repositories.ProfileRepository = (*Repository)(nil)

// NewProfileRepository creates a new HCL profile repository.
func NewProfileRepository() *Repository {
	return &Repository{}
}

// Load parses the profile at path.
func (r *Repository) Load(
	path string,
	settings *entities.Settings,
	kernel entities.KernelVersion,
) (*entities.BuildProfile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file, settings, kernel)
}

// Parse decodes profile source held in memory; filename only labels diagnostics.
func (r *Repository) Parse(
	src []byte,
	filename string,
	settings *entities.Settings,
	kernel entities.KernelVersion,
) (*entities.BuildProfile, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file, settings, kernel)
}

func decode(file *hcl.File, settings *entities.Settings, kernel entities.KernelVersion) (*entities.BuildProfile, error) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.New("profile must be written in native HCL syntax")
	}
	for name := range body.Attributes {
		return nil, fmt.Errorf("unexpected top-level attribute %q", name)
	}

	evalCtx := newEvalContext(settings, kernel)
	profile := &entities.BuildProfile{}
	for _, block := range body.Blocks {
		if len(block.Labels) != 1 {
			return nil, fmt.Errorf("%s: %s block needs exactly one label", block.DefRange(), block.Type)
		}
		label := block.Labels[0]

		var err error
		switch block.Type {
		case "toggle":
			err = decodeToggle(block, label, evalCtx, profile)
		case "append":
			err = decodeAppend(block, label, evalCtx, profile)
		case "module":
			err = decodeModule(block, label, evalCtx, profile)
		case "patch":
			err = decodePatch(block, label, evalCtx, profile)
		default:
			err = fmt.Errorf("%s: unsupported block type %q", block.DefRange(), block.Type)
		}
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func decodeToggle(block *hclsyntax.Block, key string, evalCtx *hcl.EvalContext, profile *entities.BuildProfile) error {
	var toggle hclToggle
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &toggle); diags.HasErrors() {
		return fmt.Errorf("toggle %q: %w", key, diags)
	}
	value, err := configValue(toggle.Value)
	if err != nil {
		return fmt.Errorf("toggle %q: %w", key, err)
	}
	op := entities.Toggle(key, value)
	op.Gate = hclGate{MinKernel: toggle.MinKernel, Device: toggle.Device}.gate()
	profile.Operations = append(profile.Operations, op)
	return nil
}

func decodeAppend(block *hclsyntax.Block, line string, evalCtx *hcl.EvalContext, profile *entities.BuildProfile) error {
	var entry hclAppend
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &entry); diags.HasErrors() {
		return fmt.Errorf("append %q: %w", line, diags)
	}
	op := entities.Append(line)
	op.Gate = hclGate{MinKernel: entry.MinKernel, Device: entry.Device}.gate()
	profile.Operations = append(profile.Operations, op)
	return nil
}

func decodeModule(block *hclsyntax.Block, name string, evalCtx *hcl.EvalContext, profile *entities.BuildProfile) error {
	var module hclModule
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &module); diags.HasErrors() {
		return fmt.Errorf("module %q: %w", name, diags)
	}
	profile.Modules = append(profile.Modules, entities.ModuleInjection{
		Gate:         hclGate{MinKernel: module.MinKernel, Device: module.Device}.gate(),
		Name:         name,
		Repository:   module.Repository,
		Source:       deref(module.Source),
		Target:       module.Target,
		MakefileLine: deref(module.Makefile),
		KconfigLine:  deref(module.Kconfig),
	})
	return nil
}

func decodePatch(block *hclsyntax.Block, name string, evalCtx *hcl.EvalContext, profile *entities.BuildProfile) error {
	var patch hclPatch
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &patch); diags.HasErrors() {
		return fmt.Errorf("patch %q: %w", name, diags)
	}
	strip := defaultStrip
	if patch.Strip != nil {
		strip = *patch.Strip
	}
	profile.Patches = append(profile.Patches, entities.PatchEntry{
		Gate:       hclGate{MinKernel: patch.MinKernel, Device: patch.Device}.gate(),
		Name:       name,
		Repository: deref(patch.Repository),
		File:       patch.File,
		Strip:      strip,
		Root:       deref(patch.Root),
	})
	return nil
}

// configValue maps booleans to y/n and renders numbers and strings as written.
func configValue(value cty.Value) (entities.ConfigValue, error) {
	if value.IsNull() || !value.IsKnown() {
		return entities.ConfigValue{}, errors.New("value must be known and not null")
	}
	if value.Type() == cty.Bool {
		return entities.BoolValue(value.True()), nil
	}
	str, err := convert.Convert(value, cty.String)
	if err != nil {
		return entities.ConfigValue{}, fmt.Errorf("value must be a string, number or bool: %w", err)
	}
	return entities.ParseConfigValue(str.AsString()), nil
}

func newEvalContext(settings *entities.Settings, kernel entities.KernelVersion) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"settings": cty.ObjectVal(map[string]cty.Value{
				"lto":            cty.StringVal(string(settings.Build.LTO)),
				"localversion":   cty.StringVal(settings.Build.LocalVersion),
				"arch":           cty.StringVal(settings.Build.Arch),
				"device_profile": cty.BoolVal(settings.Build.DeviceProfile),
				"prefix":         cty.StringVal(settings.Build.Prefix),
			}),
			"version": cty.StringVal(kernel.String()),
		},
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
