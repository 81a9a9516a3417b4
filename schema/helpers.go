package schema

import (
	"cmp"
	"slices"
	"strconv"
)

// severityRank maps each severity to its ordinal position (normal lowest).
var severityRank = map[Severity]int{
	SeverityNormal:   0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

// labelRank maps each cause label to its ordinal position (none lowest).
var labelRank = map[CauseLabel]int{
	LabelNone:     0,
	LabelWeak:     1,
	LabelModerate: 2,
	LabelStrong:   3,
}

// SeverityRank returns the ordinal position of a severity tier.
// Unknown severities rank below normal.
func SeverityRank(s Severity) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// LabelRank returns the ordinal position of a cause label.
// Unknown labels rank below none.
func LabelRank(l CauseLabel) int {
	if r, ok := labelRank[l]; ok {
		return r
	}
	return -1
}

// WorstLabel returns the strongest cause label assigned to the run,
// or none when the run has no clusters at all.
func (d RunDiagnosis) WorstLabel() CauseLabel {
	worst := LabelNone
	for _, l := range d.Labels {
		if LabelRank(l) > LabelRank(worst) {
			worst = l
		}
	}
	return worst
}

// TotalScore sums the run's cluster scores.
func (d RunDiagnosis) TotalScore() int {
	total := 0
	for _, score := range d.Scores {
		total += score
	}
	return total
}

// RankRunsByScore returns a copy of the run list ordered from most to least
// suspicious (total score descending, run ID as tiebreak). The input order
// is left untouched so file outputs keep their run ID ordering.
func RankRunsByScore(runs []RunDiagnosis) []RunDiagnosis {
	ranked := slices.Clone(runs)
	slices.SortFunc(ranked, func(a, b RunDiagnosis) int {
		if c := cmp.Compare(b.TotalScore(), a.TotalScore()); c != 0 {
			return c
		}
		return CompareRunIDs(a.Run, b.Run)
	})
	return ranked
}

// CompareRunIDs orders run identifiers numerically when both parse as
// integers and lexicographically otherwise. Run numbers are recorded as
// plain integers upstream, so numeric order is the natural one; the
// lexicographic fallback keeps mixed cohorts deterministic.
func CompareRunIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return cmp.Compare(a, b)
}
