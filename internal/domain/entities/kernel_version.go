package entities

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// KernelVersion is the VERSION.PATCHLEVEL.SUBLEVEL triple from the top-level kernel Makefile.
type KernelVersion struct {
	Version    int
	PatchLevel int
	SubLevel   int
}

// ParseKernelMakefile reads the version variables out of the Makefile content.
func ParseKernelMakefile(content string) (KernelVersion, error) {
	values := map[string]int{}
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		name, value, found := strings.Cut(scanner.Text(), "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name != "VERSION" && name != "PATCHLEVEL" && name != "SUBLEVEL" {
			continue
		}
		if _, seen := values[name]; seen {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return KernelVersion{}, fmt.Errorf("invalid %s in kernel Makefile: %w", name, err)
		}
		values[name] = number
		if len(values) == 3 {
			break
		}
	}

	if _, ok := values["VERSION"]; !ok {
		return KernelVersion{}, fmt.Errorf("%w: kernel Makefile has no VERSION", ErrPrecondition)
	}
	return KernelVersion{
		Version:    values["VERSION"],
		PatchLevel: values["PATCHLEVEL"],
		SubLevel:   values["SUBLEVEL"],
	}, nil
}

func (v KernelVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Version, v.PatchLevel, v.SubLevel)
}

// IsZero reports whether the version is unknown.
func (v KernelVersion) IsZero() bool {
	return v == KernelVersion{}
}

// AtLeast compares against a "major.minor[.patch]" minimum.
func (v KernelVersion) AtLeast(minimum string) (bool, error) {
	wanted := "v" + strings.TrimPrefix(strings.TrimSpace(minimum), "v")
	if !semver.IsValid(wanted) {
		return false, fmt.Errorf("invalid kernel version constraint %q", minimum)
	}
	return semver.Compare("v"+v.String(), wanted) >= 0, nil
}
