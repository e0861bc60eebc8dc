package entities

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// MakeInvocation is one run of the kernel build system.
type MakeInvocation struct {
	KernelDir string
	OutputDir string
	Jobs      int
	Targets   []string
	// Variables are passed on the command line as NAME=value.
	Variables map[string]string
	// PathPrefix is prepended to PATH when non-empty.
	PathPrefix string
	// LogPath receives the combined output of make.
	LogPath string
}

// Args renders the make arguments in a stable order.
func (m MakeInvocation) Args() []string {
	args := []string{"-C", m.KernelDir, "O=" + m.OutputDir, "-j" + strconv.Itoa(m.Jobs)}
	names := make([]string, 0, len(m.Variables))
	for name := range m.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, fmt.Sprintf("%s=%s", name, m.Variables[name]))
	}
	return append(args, m.Targets...)
}

// RequiredTools lists the binaries that must resolve before compiling.
var RequiredTools = []string{"make", "clang", "ld.lld"} //nolint:gochecknoglobals // read-only table

// ToolchainVariables returns the make variables for an LLVM cross build.
func ToolchainVariables(s *Settings) map[string]string {
	vars := map[string]string{
		"ARCH":     s.Build.Arch,
		"LLVM":     "1",
		"LLVM_IAS": "1",
		"CC":       "clang",
		"LD":       "ld.lld",
	}
	if s.Toolchain.CrossCompile != "" {
		vars["CROSS_COMPILE"] = s.Toolchain.CrossCompile
	}
	if s.Toolchain.CrossCompileArm32 != "" {
		vars["CROSS_COMPILE_ARM32"] = s.Toolchain.CrossCompileArm32
	}
	return vars
}

// ToolchainBinDir is the directory prepended to PATH, empty when no root is set.
func ToolchainBinDir(s *Settings) string {
	if s.Toolchain.Root == "" {
		return ""
	}
	return filepath.Join(s.Toolchain.Root, "bin")
}
