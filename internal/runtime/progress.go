package runtime

import (
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// ComputeProgress counts the budgeted questions of mode whose slot is filled or
// explicitly no-preference. It has no hidden state: progress only moves when slots do.
func ComputeProgress(slots domain.Slots, mode domain.Mode, def *catalog.Domain) domain.Progress {
	if def == nil {
		return domain.Progress{}
	}
	budget := def.Budget(mode)
	answered := 0
	for _, q := range budget {
		if slots.Answered(q.Slot) {
			answered++
		}
	}
	return domain.NewProgress(answered, len(budget))
}
