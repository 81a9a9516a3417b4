package core

import "github.com/physqa/rundiag/schema"

// assignLabel buckets a cluster score into a cause label. Breakpoints are
// inclusive lower bounds checked strongest-first, so a score of exactly
// Strong lands on strong.
func assignLabel(score int, bp schema.LabelBreakpoints) schema.CauseLabel {
	switch {
	case score >= bp.Strong:
		return schema.LabelStrong
	case score >= bp.Moderate:
		return schema.LabelModerate
	case score >= bp.Weak:
		return schema.LabelWeak
	default:
		return schema.LabelNone
	}
}
