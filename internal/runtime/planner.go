package runtime

import (
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// NextQuestion returns the first budgeted question for mode that was never asked and
// whose slot is still unanswered. It returns nil when gathering is complete.
// The result depends only on its inputs, so the same state always yields the same question.
func NextQuestion(slots domain.Slots, asked domain.QuestionSet, mode domain.Mode, def *catalog.Domain) *catalog.Question {
	if def == nil {
		return nil
	}
	for _, q := range def.Budget(mode) {
		if asked.WasAsked(q.ID) || slots.Answered(q.Slot) {
			continue
		}
		return q
	}
	return nil
}
