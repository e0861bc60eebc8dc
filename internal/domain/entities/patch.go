package entities

import "fmt"

// PatchSpec is one unified diff to apply against a working tree.
type PatchSpec struct {
	DiffFile    string
	WorkingRoot string
	// StripComponents is the -p level handed to the patch tool.
	StripComponents int
}

// Validate checks the patch declaration.
func (p PatchSpec) Validate() error {
	if p.DiffFile == "" {
		return fmt.Errorf("%w: patch file is required", ErrPrecondition)
	}
	if p.WorkingRoot == "" {
		return fmt.Errorf("%w: patch %q has no working root", ErrPrecondition, p.DiffFile)
	}
	if p.StripComponents < 0 {
		return fmt.Errorf("%w: patch %q has a negative strip level", ErrPrecondition, p.DiffFile)
	}
	return nil
}

// PatchProbe is the result of the dry-run phase.
type PatchProbe int

const (
	// ProbeWouldApply means the forward dry run succeeded.
	ProbeWouldApply PatchProbe = iota
	// ProbeAlreadyApplied means only the reverse dry run succeeded.
	ProbeAlreadyApplied
	// ProbeConflict means neither direction applies cleanly.
	ProbeConflict
)

func (p PatchProbe) String() string {
	switch p {
	case ProbeWouldApply:
		return "would-apply"
	case ProbeAlreadyApplied:
		return "already-applied"
	default:
		return "conflict"
	}
}

// PatchOutcome is what the applier finally did.
type PatchOutcome string

const (
	PatchApplied        PatchOutcome = "applied"
	PatchAlreadyApplied PatchOutcome = "already-applied"
	PatchConflict       PatchOutcome = "conflict"
)

// ConflictPolicy controls how a conflicting patch is treated.
type ConflictPolicy string

const (
	// ConflictWarn logs the conflict and keeps going.
	ConflictWarn ConflictPolicy = "warn"
	// ConflictFail aborts with ErrPatchConflict.
	ConflictFail ConflictPolicy = "fail"
)

// Valid reports whether p is a known policy.
func (p ConflictPolicy) Valid() bool {
	return p == ConflictWarn || p == ConflictFail
}
