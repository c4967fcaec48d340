package extract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/extract"
	"github.com/aretw0/waypoint/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRules() *extract.Rules {
	return extract.NewRules(catalog.Default())
}

func extractSlots(t *testing.T, req domain.ExtractRequest) (domain.Slots, *domain.ExtractResult) {
	t.Helper()
	res, err := newRules().Extract(context.Background(), req)
	require.NoError(t, err)
	return domain.Merge(req.Slots, res.Diff), res
}

func TestRules_Contract(t *testing.T) {
	tests.ExtractorContractTest(t, newRules())
}

func TestRules_DallasColdStart(t *testing.T) {
	slots, res := extractSlots(t, domain.ExtractRequest{
		Utterance: "Help plan my trip to dallas next weekend from the 10th to the 12th. " +
			"I will be flying my girlfriend in from LAX and I will be driving from Austin Texas",
	})

	assert.Equal(t, "travel", res.DomainGuess)
	assert.Equal(t, domain.IntentNone, res.Intent)
	assert.Equal(t, "dallas", strings.ToLower(slots.Get(domain.SlotDestination).Value))
	assert.Contains(t, strings.ToLower(slots.Get(domain.SlotOrigin).Value), "austin")
	assert.NotContains(t, strings.ToLower(slots.Get(domain.SlotOrigin).Value), "lax")
	assert.Equal(t, "next weekend, the 10th to the 12th", slots.Get(domain.SlotDate).Value)
	assert.Contains(t, slots.Get(domain.SlotCompanions).Values, "girlfriend")
	assert.Equal(t, []string{"flight", "car"}, slots.Get(domain.SlotTransportation).Values)
	assert.False(t, slots.Answered(domain.SlotBudget))
}

func TestRules_ArrivalIsNotOrigin(t *testing.T) {
	slots, _ := extractSlots(t, domain.ExtractRequest{
		Utterance: "My sister is flying in from Boston and we're going to Miami",
		Domain:    "travel",
	})
	assert.Equal(t, "Miami", slots.Get(domain.SlotDestination).Value)
	assert.False(t, slots.Answered(domain.SlotOrigin))
	assert.Contains(t, slots.Get(domain.SlotCompanions).Values, "sister")
}

func TestRules_NoPreference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pending string
		key     domain.SlotKey
	}{
		{"named slot", "no budget", "", domain.SlotBudget},
		{"named slot while pending", "no budget", "budget", domain.SlotBudget},
		{"flexible named", "flexible budget", "budget", domain.SlotBudget},
		{"flexible alone", "flexible", "budget", domain.SlotBudget},
		{"none", "none", "companions", domain.SlotCompanions},
		{"n/a", "n/a", "origin", domain.SlotOrigin},
		{"doesn't matter", "doesn't matter", "dates", domain.SlotDate},
		{"don't care", "I don't care about the dates", "", domain.SlotDate},
		{"dates are flexible", "our dates are flexible", "destination", domain.SlotDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.ExtractRequest{Utterance: tt.input, Domain: "travel", PendingQuestion: tt.pending}
			slots, res := extractSlots(t, req)
			assert.False(t, res.Unclear)
			assert.Equal(t, domain.SlotNoPreference, slots.Get(tt.key).Status)
		})
	}
}

func TestRules_NoPreferenceDoesNotLeakIntoOtherSlots(t *testing.T) {
	slots, _ := extractSlots(t, domain.ExtractRequest{
		Utterance: "no budget, but we want to go to Denver",
		Domain:    "travel",
	})
	assert.Equal(t, domain.SlotNoPreference, slots.Get(domain.SlotBudget).Status)
	assert.Equal(t, "Denver", slots.Get(domain.SlotDestination).Value)
}

func TestRules_UnclearPendingAnswer(t *testing.T) {
	for _, input := range []string{"hmm", "idk", "what do you mean?", "yes"} {
		_, res := extractSlots(t, domain.ExtractRequest{Utterance: input, Domain: "travel", PendingQuestion: "dates"})
		assert.True(t, res.Unclear, input)
		assert.Empty(t, res.Diff, input)
	}
}

func TestRules_FreeTextAnswersPendingQuestion(t *testing.T) {
	slots, res := extractSlots(t, domain.ExtractRequest{Utterance: "Denver", Domain: "travel", PendingQuestion: "destination"})
	assert.False(t, res.Unclear)
	assert.Equal(t, "Denver", slots.Get(domain.SlotDestination).Value)

	slots, _ = extractSlots(t, domain.ExtractRequest{Utterance: "hiking, museums and live music", Domain: "travel", PendingQuestion: "activities"})
	assert.Equal(t, []string{"hiking", "museums", "live music"}, slots.Get(domain.SlotActivities).Values)
}

func TestRules_TypedSlotsNeedAPattern(t *testing.T) {
	_, res := extractSlots(t, domain.ExtractRequest{Utterance: "sometime", Domain: "travel", PendingQuestion: "budget"})
	assert.True(t, res.Unclear)

	slots, res := extractSlots(t, domain.ExtractRequest{Utterance: "around $1,500", Domain: "travel", PendingQuestion: "budget"})
	assert.False(t, res.Unclear)
	assert.Equal(t, "around $1,500", slots.Get(domain.SlotBudget).Value)

	slots, _ = extractSlots(t, domain.ExtractRequest{Utterance: "something cheap please", Domain: "travel", PendingQuestion: "budget"})
	assert.Equal(t, "budget-friendly", slots.Get(domain.SlotBudget).Value)
}

func TestRules_Correction(t *testing.T) {
	current := domain.Slots{
		domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		domain.SlotOrigin:      domain.Filled("austin", domain.SourceExtracted),
	}

	slots, res := extractSlots(t, domain.ExtractRequest{Utterance: "actually make it Houston", Domain: "travel", Slots: current})
	assert.Equal(t, domain.IntentCorrection, res.Intent)
	assert.Equal(t, "Houston", slots.Get(domain.SlotDestination).Value)
	assert.Equal(t, domain.SourceCorrection, slots.Get(domain.SlotDestination).Source)
	assert.Equal(t, "austin", slots.Get(domain.SlotOrigin).Value)

	slots, _ = extractSlots(t, domain.ExtractRequest{Utterance: "Actually, I want to go to Houston instead", Domain: "travel", Slots: current})
	assert.Equal(t, "Houston", slots.Get(domain.SlotDestination).Value)
}

func TestRules_WithoutCorrectionAnsweredSlotsStay(t *testing.T) {
	current := domain.Slots{domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted)}
	slots, _ := extractSlots(t, domain.ExtractRequest{Utterance: "we might also go to Houston", Domain: "travel", Slots: current})
	assert.Equal(t, "dallas", slots.Get(domain.SlotDestination).Value)
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Intent
	}{
		{"yes", domain.IntentAffirm},
		{"Yes, generate the plan", domain.IntentAffirm},
		{"looks good!", domain.IntentAffirm},
		{"please create the plan", domain.IntentAffirm},
		{"no, not yet", domain.IntentNone},
		{"actually change the dates", domain.IntentCorrection},
		{"yes but make it Houston", domain.IntentCorrection},
		{"", domain.IntentNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extract.DetectIntent(tt.input), tt.input)
	}
}

func TestRules_EventDomain(t *testing.T) {
	slots, res := extractSlots(t, domain.ExtractRequest{
		Utterance: "I'm hosting a birthday party for 20 people at my place on May 3",
	})
	assert.Equal(t, "event", res.DomainGuess)
	assert.Equal(t, "birthday party", slots.Get(domain.SlotEventType).Value)
	assert.Equal(t, "20 guests", slots.Get(domain.SlotGuestCount).Value)
	assert.Equal(t, "my place", slots.Get(domain.SlotVenue).Value)
	assert.Contains(t, slots.Get(domain.SlotDate).Value, "May 3")
}

func TestRules_GeneralDomain(t *testing.T) {
	slots, res := extractSlots(t, domain.ExtractRequest{Utterance: "help me organize my garage"})
	assert.Equal(t, "general", res.DomainGuess)
	assert.Equal(t, "garage", slots.Get(domain.SlotGoal).Value)
}

func TestRules_UnknownDomain(t *testing.T) {
	_, err := newRules().Extract(context.Background(), domain.ExtractRequest{Utterance: "hi", Domain: "cooking"})
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestRules_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRules().Extract(ctx, domain.ExtractRequest{Utterance: "trip to Rome"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRules_OffTopicReplyLeavesPendingSlot(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		pending string
		input   string
		other   domain.SlotKey
	}{
		{"travel origin, solo", "travel", "origin", "just me", domain.SlotCompanions},
		{"travel destination, companion", "travel", "destination", "with my girlfriend", domain.SlotCompanions},
		{"travel destination, family", "travel", "destination", "my wife and kids", domain.SlotCompanions},
		{"travel destination, date", "travel", "destination", "the first week of June", ""},
		{"travel origin, budget", "travel", "origin", "around $800", domain.SlotBudget},
		{"travel purpose, companion", "travel", "purpose", "with my wife", domain.SlotCompanions},
		{"travel activities, date", "travel", "activities", "next weekend", domain.SlotDate},
		{"event venue, companion", "event", "venue", "with my family", ""},
		{"event theme, budget", "event", "theme", "around $500", domain.SlotBudget},
		{"event occasion, date", "event", "occasion", "next weekend", domain.SlotDate},
		{"general goal, date", "general", "goal", "next weekend", domain.SlotDate},
		{"general constraints, solo", "general", "constraints", "just me", domain.SlotCompanions},
	}
	cat := catalog.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := cat.Domain(tt.domain)
			require.True(t, ok)
			q, ok := def.Question(tt.pending)
			require.True(t, ok)

			slots, _ := extractSlots(t, domain.ExtractRequest{Utterance: tt.input, Domain: tt.domain, PendingQuestion: tt.pending})
			assert.False(t, slots.Answered(q.Slot), "%s = %+v", q.Slot, slots.Get(q.Slot))
			if tt.other != "" {
				assert.True(t, slots.Get(tt.other).IsFilled(), "%s", tt.other)
			}
		})
	}
}

func TestRules_PlaceAnswerAlongsideOtherFacts(t *testing.T) {
	slots, _ := extractSlots(t, domain.ExtractRequest{Utterance: "Denver next weekend", Domain: "travel", PendingQuestion: "destination"})
	assert.Equal(t, "Denver", slots.Get(domain.SlotDestination).Value)
	assert.True(t, slots.Get(domain.SlotDate).IsFilled())

	slots, _ = extractSlots(t, domain.ExtractRequest{Utterance: "my wife and kids", Domain: "general", PendingQuestion: "people"})
	assert.ElementsMatch(t, []string{"wife", "kids"}, slots.Get(domain.SlotCompanions).Values)
}
