package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func travel(t *testing.T) *catalog.Domain {
	t.Helper()
	def, ok := catalog.Default().Domain("travel")
	require.True(t, ok)
	return def
}

func TestNextQuestion_SkipsAskedAndAnswered(t *testing.T) {
	def := travel(t)
	slots := domain.Slots{domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted)}
	asked := domain.NewQuestionSet("dates")

	q := runtime.NextQuestion(slots, asked, domain.ModeQuick, def)
	require.NotNil(t, q)
	assert.Equal(t, "origin", q.ID)
}

func TestNextQuestion_NeverReturnsAskedID(t *testing.T) {
	def := travel(t)
	for _, mode := range []domain.Mode{domain.ModeQuick, domain.ModeSmart} {
		asked := domain.NewQuestionSet()
		slots := domain.Slots{}
		for {
			q := runtime.NextQuestion(slots, asked, mode, def)
			if q == nil {
				break
			}
			require.False(t, asked.WasAsked(q.ID))
			asked.MarkAsked(q.ID)
		}
		assert.Equal(t, len(def.Budget(mode)), asked.Len())
	}
}

func TestNextQuestion_NoPreferenceCountsAsAnswered(t *testing.T) {
	def := travel(t)
	slots := domain.Slots{domain.SlotDestination: domain.NoPreference(domain.SourceExtracted)}
	q := runtime.NextQuestion(slots, domain.NewQuestionSet(), domain.ModeQuick, def)
	require.NotNil(t, q)
	assert.Equal(t, "dates", q.ID)
}

func TestComputeProgress(t *testing.T) {
	def := travel(t)
	slots := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		domain.SlotBudget:      domain.NoPreference(domain.SourceExtracted),
		domain.SlotPurpose:     domain.Filled("anniversary", domain.SourceExtracted),
	}

	assert.Equal(t, domain.Progress{Answered: 2, Total: 5, Percentage: 40}, runtime.ComputeProgress(slots, domain.ModeQuick, def))
	assert.Equal(t, domain.Progress{Answered: 3, Total: 7, Percentage: 43}, runtime.ComputeProgress(slots, domain.ModeSmart, def))
	assert.Equal(t, domain.Progress{}, runtime.ComputeProgress(slots, domain.ModeQuick, nil))
}

func TestSynthesize_LeavesOutNoPreference(t *testing.T) {
	def := travel(t)
	slots := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		domain.SlotOrigin:      domain.Filled("austin", domain.SourceExtracted),
		domain.SlotBudget:      domain.NoPreference(domain.SourceExtracted),
	}
	enr := &domain.Enrichment{Suggestions: []string{"Look into hiking options in dallas"}, Notes: []string{"Preferred pace: relaxed"}}

	draft := runtime.Synthesize(def, slots, enr)
	assert.Equal(t, "Trip to dallas", draft.Activity.Title)
	assert.Equal(t, "travel", draft.Activity.Category)
	assert.Contains(t, draft.Activity.Description, "Destination: dallas")
	assert.Contains(t, draft.Activity.Description, "Preferred pace: relaxed")
	assert.NotContains(t, draft.Activity.Description, "Budget")

	var titles []string
	for _, task := range draft.Tasks {
		titles = append(titles, task.Title)
	}
	assert.Contains(t, titles, "Book transportation from austin to dallas")
	assert.NotContains(t, titles, "Book transportation to dallas")
	last := draft.Tasks[len(draft.Tasks)-1]
	assert.Equal(t, "Look into hiking options in dallas", last.Title)
	assert.Equal(t, domain.PriorityLow, last.Priority)

	rendered := runtime.RenderDraft(draft)
	assert.Contains(t, rendered, "**Trip to dallas**")
	assert.Contains(t, rendered, "1. ")
}

func TestProfileEnricher(t *testing.T) {
	conv := domain.NewConversation("c1")
	conv.Domain = "travel"
	conv.Slots[domain.SlotDestination] = domain.Filled("Denver", domain.SourceExtracted)
	conv.Slots[domain.SlotAccommodation] = domain.NoPreference(domain.SourceExtracted)

	profile := domain.UserProfile{Preferences: map[string]any{
		"activities":    []any{"hiking", "museums"},
		"accommodation": "boutique hotel",
		"pace":          "relaxed",
		"dietary":       "vegetarian",
	}}

	enr, err := runtime.ProfileEnricher{}.Enrich(context.Background(), conv, profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"Look into hiking options in Denver", "Look into museums options in Denver"}, enr.Suggestions)
	assert.Equal(t, []string{"Preferred pace: relaxed", "Dietary needs: vegetarian"}, enr.Notes)
}

func TestDecodePreferences_RejectsWrongTypes(t *testing.T) {
	_, err := runtime.DecodePreferences(map[string]any{"pace": map[string]any{"a": 1}})
	assert.Error(t, err)
}
