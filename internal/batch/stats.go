package batch

// Stats aggregates one batch run.
type Stats struct {
	Scanned   int // files seen during the walk
	Matched   int // files with an allowed extension
	Skipped   int // present in the resume set
	Succeeded int
	Failed    int
}

// Completed counts files that went through the pipeline this run.
func (s Stats) Completed() int {
	return s.Succeeded + s.Failed
}

// SuccessRate is Succeeded over Completed as a percentage. A run where
// nothing completed reports 0.
func (s Stats) SuccessRate() float64 {
	c := s.Completed()
	if c == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(c) * 100
}
