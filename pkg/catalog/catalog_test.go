package catalog_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_BudgetsRespectModeBounds(t *testing.T) {
	c := catalog.Default()
	require.NotEmpty(t, c.Domains)

	for _, d := range c.Domains {
		t.Run(d.Name, func(t *testing.T) {
			quick := len(d.Budget(domain.ModeQuick))
			smart := len(d.Budget(domain.ModeSmart))
			assert.LessOrEqual(t, quick, 6)
			assert.GreaterOrEqual(t, smart, 6)
			assert.Greater(t, smart, quick)
		})
	}
}

func TestDefault_TravelBudgets(t *testing.T) {
	travel, ok := catalog.Default().Domain("travel")
	require.True(t, ok)
	assert.Len(t, travel.Budget(domain.ModeQuick), 5)
	assert.Len(t, travel.Budget(domain.ModeSmart), 7)
	assert.Equal(t, "destination", travel.Budget(domain.ModeQuick)[0].ID)
}

func TestCatalog_Guess(t *testing.T) {
	c := catalog.Default()
	tests := []struct {
		utterance string
		want      string
	}{
		{"Help plan my trip to dallas next weekend", "travel"},
		{"I'm hosting a birthday party for my son", "event"},
		{"help me organize my garage project", "general"},
		{"hello there", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Guess(tt.utterance), tt.utterance)
	}
}

func TestParse_RejectsBadBudgets(t *testing.T) {
	const src = `
domains:
  - name: tiny
    slots:
      - { key: a, kind: text }
    questions:
      - { id: a, slot: a, prompt: A? }
    modes:
      quick: [a]
      smart: [a]
`
	_, err := catalog.Parse([]byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smart mode")
}

func TestParse_RejectsUnknownQuestion(t *testing.T) {
	const src = `
domains:
  - name: tiny
    slots:
      - { key: a, kind: text }
    questions:
      - { id: a, slot: a, prompt: A? }
    modes:
      quick: [a, missing]
`
	_, err := catalog.Load(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestTaskTemplate_ApplyAndRender(t *testing.T) {
	tmpl := catalog.TaskTemplate{
		Title:    "Book transportation from {location.origin} to {location.destination}",
		Priority: domain.PriorityHigh,
		Requires: []domain.SlotKey{domain.SlotOrigin, domain.SlotDestination},
	}
	slots := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		domain.SlotOrigin:      domain.NoPreference(domain.SourceExtracted),
	}
	assert.False(t, tmpl.Applies(slots), "no-preference slots never satisfy a requirement")

	slots[domain.SlotOrigin] = domain.Filled("austin", domain.SourceProfile)
	require.True(t, tmpl.Applies(slots))
	task := tmpl.Render(slots)
	assert.Equal(t, "Book transportation from austin to dallas", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
}

func TestDomain_RenderTitle(t *testing.T) {
	travel, ok := catalog.Default().Domain("travel")
	require.True(t, ok)

	assert.Equal(t, "Trip to dallas", travel.RenderTitle(domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
	}))
	assert.Equal(t, "Trip plan", travel.RenderTitle(domain.Slots{
		domain.SlotDestination: domain.NoPreference(domain.SourceExtracted),
	}))

	event, ok := catalog.Default().Domain("event")
	require.True(t, ok)
	assert.Equal(t, "Birthday party plan", event.RenderTitle(domain.Slots{
		domain.SlotEventType: domain.Filled("birthday party", domain.SourceExtracted),
	}))
}
