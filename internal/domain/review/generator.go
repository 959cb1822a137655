package review

import "context"

// Generator produces a natural-language narrative for a snapshot. It may
// fail or block; callers impose their own time budget and cancel through ctx.
type Generator interface {
	GenerateNarrative(ctx context.Context, snap *Snapshot) (string, error)
}

// GenerationKind tags the outcome of a time-budgeted generation attempt.
type GenerationKind int

const (
	GenerationOK GenerationKind = iota
	GenerationTimedOut
	GenerationFailed
)

// Generation is the tagged result of a generation attempt. Narrative is set
// only for GenerationOK, Err only for GenerationFailed.
type Generation struct {
	Kind      GenerationKind
	Narrative string
	Err       error
}
