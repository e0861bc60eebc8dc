package entities

import (
	"fmt"
	"path/filepath"
)

// Gate restricts a profile entry to a kernel version range or to device builds.
type Gate struct {
	MinKernel  string
	DeviceOnly bool
}

// Allows reports whether the entry applies. An unknown kernel version passes
// the version check.
func (g Gate) Allows(kernel KernelVersion, deviceProfile bool) (bool, error) {
	if g.DeviceOnly && !deviceProfile {
		return false, nil
	}
	if g.MinKernel == "" || kernel.IsZero() {
		return true, nil
	}
	return kernel.AtLeast(g.MinKernel)
}

// ConfigOperationKind selects the mutation applied to the config file.
type ConfigOperationKind string

const (
	OperationToggle ConfigOperationKind = "toggle"
	OperationAppend ConfigOperationKind = "append"
)

// ConfigOperation is one ordered mutation of the kernel config file.
type ConfigOperation struct {
	Gate
	Kind ConfigOperationKind
	// Key and Value are used by toggles.
	Key   string
	Value ConfigValue
	// Line is used by appends.
	Line string
}

// Toggle builds an exclusive key=value operation.
func Toggle(key string, value ConfigValue) ConfigOperation {
	return ConfigOperation{Kind: OperationToggle, Key: key, Value: value}
}

// Append builds an append-if-absent operation.
func Append(line string) ConfigOperation {
	return ConfigOperation{Kind: OperationAppend, Line: line}
}

func (o ConfigOperation) String() string {
	if o.Kind == OperationToggle {
		return fmt.Sprintf("toggle %s=%s", o.Key, o.Value.Format())
	}
	return "append " + o.Line
}

// ApplyTo performs the operation on an in-memory file and reports whether it changed.
func (o ConfigOperation) ApplyTo(file *ConfigFile) (bool, error) {
	switch o.Kind {
	case OperationToggle:
		if o.Key == "" {
			return false, fmt.Errorf("%w: toggle without key", ErrPrecondition)
		}
		return file.SetToggle(o.Key, o.Value), nil
	case OperationAppend:
		if o.Line == "" {
			return false, fmt.Errorf("%w: append without line", ErrPrecondition)
		}
		return file.AppendUnique(o.Line), nil
	default:
		return false, fmt.Errorf("%w: unknown config operation %q", ErrPrecondition, o.Kind)
	}
}

// ModuleInjection links an out-of-tree driver into the kernel source tree.
type ModuleInjection struct {
	Gate
	Name string
	// Repository names the RepositorySpec providing the sources.
	Repository string
	// Source is the driver directory inside the repository.
	Source string
	// Target is the link location inside the kernel tree, e.g. drivers/kernelsu.
	Target string
	// MakefileLine and KconfigLine register the driver with its parent directory.
	MakefileLine string
	KconfigLine  string
}

// ParentMakefile is the Makefile that must reference the driver.
func (m ModuleInjection) ParentMakefile() string {
	return filepath.Join(filepath.Dir(m.Target), "Makefile")
}

// ParentKconfig is the Kconfig that must source the driver menu.
func (m ModuleInjection) ParentKconfig() string {
	return filepath.Join(filepath.Dir(m.Target), "Kconfig")
}

// PatchEntry is a diff shipped by one of the reconciled repositories.
type PatchEntry struct {
	Gate
	Name       string
	Repository string
	File       string
	Strip      int
	// Root is the directory the patch applies to, relative to the kernel tree.
	Root string
}

// BuildProfile is the declarative list of source and config customizations.
type BuildProfile struct {
	Operations []ConfigOperation
	Modules    []ModuleInjection
	Patches    []PatchEntry
}

// DefaultProfile enables KernelSU when no profile file is configured.
func DefaultProfile() *BuildProfile {
	return &BuildProfile{
		Operations: []ConfigOperation{Append("CONFIG_KSU=y")},
	}
}
