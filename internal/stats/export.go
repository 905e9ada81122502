package stats

// ExportRecord is the flat, persisted layout of a ComparisonResult.
// Field names are part of the export file format.
type ExportRecord struct {
	GroupAN           int     `json:"groupA_n"`
	GroupBN           int     `json:"groupB_n"`
	GroupARate        float64 `json:"groupA_rate"`
	GroupBRate        float64 `json:"groupB_rate"`
	ZStatistic        float64 `json:"zStatistic"`
	PValue            float64 `json:"pValue"`
	CILower           float64 `json:"ciLower"`
	CIHigher          float64 `json:"ciHigher"`
	LiftPct           float64 `json:"liftPct"`
	AnnualOpportunity float64 `json:"annualOpportunity"`
}

// Export flattens the result for serialization.
func (r *ComparisonResult) Export() ExportRecord {
	return ExportRecord{
		GroupAN:           r.GroupA.N,
		GroupBN:           r.GroupB.N,
		GroupARate:        r.GroupA.Rate,
		GroupBRate:        r.GroupB.Rate,
		ZStatistic:        r.Test.ZStatistic,
		PValue:            r.Test.PValue,
		CILower:           r.CILower,
		CIHigher:          r.CIUpper,
		LiftPct:           r.Impact.Lift * 100,
		AnnualOpportunity: r.Impact.AnnualOpportunity,
	}
}
