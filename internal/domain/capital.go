package domain

// CapitalRecord is one simulated year of the capital chain. CapitalEnd of
// year N becomes CapitalStart of year N+1.
type CapitalRecord struct {
	Year         int     `json:"year" csv:"year"`
	CapitalStart float64 `json:"capitalStart" csv:"capital_start"`
	CapitalEnd   float64 `json:"capitalEnd" csv:"capital_end"`
}

type CapitalHistory []CapitalRecord

func (h CapitalHistory) FinalCapital() float64 {
	if len(h) == 0 {
		return 0
	}
	return h[len(h)-1].CapitalEnd
}
