package domain

import "math"

// Progress summarizes how many budgeted questions have been answered.
type Progress struct {
	Answered   int `json:"answered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewProgress derives the percentage as round(100 * answered / total).
// A zero budget is reported as complete.
func NewProgress(answered, total int) Progress {
	if total <= 0 {
		return Progress{Answered: 0, Total: 0, Percentage: 100}
	}
	answered = min(max(answered, 0), total)
	pct := int(math.Round(100 * float64(answered) / float64(total)))
	return Progress{Answered: answered, Total: total, Percentage: pct}
}
