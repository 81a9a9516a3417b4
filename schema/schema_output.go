package schema

// EnrichedRunDiagnosis adds presentation data to a RunDiagnosis.
type EnrichedRunDiagnosis struct {
	Rank       int        `json:"rank"`
	WorstLabel CauseLabel `json:"worst_label"`
	RunDiagnosis
}

// EnrichRuns adds rank and worst label to a list of run diagnoses.
func EnrichRuns(runs []RunDiagnosis) []EnrichedRunDiagnosis {
	output := make([]EnrichedRunDiagnosis, len(runs))
	for i, r := range runs {
		output[i] = EnrichedRunDiagnosis{
			Rank:         i + 1,
			WorstLabel:   r.WorstLabel(),
			RunDiagnosis: r,
		}
	}
	return output
}
