package domain_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMerge_FillsUnsetSlots(t *testing.T) {
	current := domain.Slots{}
	diff := domain.SlotDiff{
		{Key: domain.SlotDestination, Slot: domain.Filled("dallas", domain.SourceExtracted)},
		{Key: domain.SlotBudget, Slot: domain.NoPreference(domain.SourceExtracted)},
	}

	next := domain.Merge(current, diff)

	assert.Equal(t, "dallas", next.Get(domain.SlotDestination).Value)
	assert.True(t, next.Answered(domain.SlotBudget))
	assert.Empty(t, current, "input state must not be modified")
}

func TestMerge_NeverOverwritesWithoutCorrection(t *testing.T) {
	current := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
	}
	diff := domain.SlotDiff{
		{Key: domain.SlotDestination, Slot: domain.Filled("houston", domain.SourceExtracted)},
		{Key: domain.SlotDestination, Slot: domain.NoPreference(domain.SourceExtracted)},
		{Key: domain.SlotDestination, Slot: domain.Slot{}},
	}

	next := domain.Merge(current, diff)

	assert.Equal(t, "dallas", next.Get(domain.SlotDestination).Value)
}

func TestMerge_UpgradesNoPreference(t *testing.T) {
	current := domain.Slots{domain.SlotBudget: domain.NoPreference(domain.SourceFallback)}
	next := domain.Merge(current, domain.SlotDiff{
		{Key: domain.SlotBudget, Slot: domain.Filled("under $500", domain.SourceExtracted)},
	})
	assert.Equal(t, domain.SlotFilled, next.Get(domain.SlotBudget).Status)
	assert.Equal(t, "under $500", next.Get(domain.SlotBudget).Value)
}

func TestMerge_UnionsListValues(t *testing.T) {
	current := domain.Slots{
		domain.SlotCompanions: domain.FilledList([]string{"girlfriend"}, domain.SourceExtracted),
	}
	next := domain.Merge(current, domain.SlotDiff{
		{Key: domain.SlotCompanions, Slot: domain.FilledList([]string{"Girlfriend", "parents"}, domain.SourceExtracted)},
	})
	assert.Equal(t, []string{"girlfriend", "parents"}, next.Get(domain.SlotCompanions).Values)
	assert.Equal(t, []string{"girlfriend"}, current.Get(domain.SlotCompanions).Values)
}

func TestMerge_CorrectionReplacesExactKey(t *testing.T) {
	current := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		domain.SlotOrigin:      domain.Filled("austin", domain.SourceExtracted),
	}
	next := domain.Merge(current, domain.SlotDiff{
		{Key: domain.SlotDestination, Slot: domain.Filled("houston", domain.SourceCorrection), Correction: true},
	})
	assert.Equal(t, "houston", next.Get(domain.SlotDestination).Value)
	assert.Equal(t, "austin", next.Get(domain.SlotOrigin).Value)
}

func TestMerge_CorrectionClear(t *testing.T) {
	current := domain.Slots{domain.SlotBudget: domain.Filled("$500", domain.SourceExtracted)}

	cleared := domain.Merge(current, domain.SlotDiff{{Key: domain.SlotBudget, Correction: true, Clear: true}})
	assert.False(t, cleared.Answered(domain.SlotBudget))

	ignored := domain.Merge(current, domain.SlotDiff{{Key: domain.SlotBudget, Clear: true}})
	assert.True(t, ignored.Answered(domain.SlotBudget), "clear without correction must be ignored")
}

func TestMerge_Idempotent(t *testing.T) {
	states := []domain.Slots{
		{},
		{domain.SlotBudget: domain.NoPreference(domain.SourceExtracted)},
		{
			domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
			domain.SlotCompanions:  domain.FilledList([]string{"wife"}, domain.SourceExtracted),
		},
	}
	diffs := []domain.SlotDiff{
		nil,
		{{Key: domain.SlotBudget, Slot: domain.Filled("cheap", domain.SourceExtracted)}},
		{
			{Key: domain.SlotCompanions, Slot: domain.FilledList([]string{"kids", "wife"}, domain.SourceExtracted)},
			{Key: domain.SlotDestination, Slot: domain.Filled("austin", domain.SourceCorrection), Correction: true},
		},
		{
			{Key: domain.SlotDestination, Slot: domain.Filled("houston", domain.SourceCorrection), Correction: true},
			{Key: domain.SlotDestination, Slot: domain.Filled("denver", domain.SourceExtracted)},
			{Key: domain.SlotBudget, Correction: true, Clear: true},
		},
		{
			{Key: domain.SlotActivities, Slot: domain.NoPreference(domain.SourceExtracted)},
			{Key: domain.SlotActivities, Slot: domain.FilledList([]string{"hiking"}, domain.SourceExtracted)},
		},
	}

	for _, s := range states {
		for _, d := range diffs {
			once := domain.Merge(s, d)
			twice := domain.Merge(once, d)
			assert.Equal(t, once, twice)
		}
	}
}
