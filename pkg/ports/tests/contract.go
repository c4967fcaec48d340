// Package tests provides reusable contract suites for extractor implementations.
package tests

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ExtractorContractTest verifies that an extractor is pure and pulls several facts
// out of a single travel utterance.
func ExtractorContractTest(t *testing.T, extractor ports.Extractor) {
	t.Helper()
	ctx := context.Background()

	t.Run("Does not mutate input slots", func(t *testing.T) {
		slots := domain.Slots{
			domain.SlotDestination: domain.Filled("dallas", domain.SourceExtracted),
		}
		before := slots.Clone()
		_, err := extractor.Extract(ctx, domain.ExtractRequest{
			Utterance: "actually make it houston, and I'm bringing my wife",
			Domain:    "travel",
			Slots:     slots,
		})
		require.NoError(t, err)
		assert.Equal(t, before, slots)
	})

	t.Run("Extracts multiple facts", func(t *testing.T) {
		res, err := extractor.Extract(ctx, domain.ExtractRequest{
			Utterance: "I want to fly to Denver next weekend with my wife",
			Domain:    "travel",
		})
		require.NoError(t, err)
		assert.True(t, res.Diff.Touches(domain.SlotDestination), "destination")
		assert.True(t, res.Diff.Touches(domain.SlotDate), "dates")
		assert.True(t, res.Diff.Touches(domain.SlotCompanions), "companions")
	})

	t.Run("No preference for pending slot", func(t *testing.T) {
		res, err := extractor.Extract(ctx, domain.ExtractRequest{
			Utterance:       "flexible",
			Domain:          "travel",
			PendingQuestion: "budget",
		})
		require.NoError(t, err)
		assert.False(t, res.Unclear)
		merged := domain.Merge(nil, res.Diff)
		assert.True(t, merged.Answered(domain.SlotBudget))
	})

	t.Run("Guesses domain on cold start", func(t *testing.T) {
		res, err := extractor.Extract(ctx, domain.ExtractRequest{
			Utterance: "Help me plan a trip to Chicago",
		})
		require.NoError(t, err)
		assert.Equal(t, "travel", res.DomainGuess)
	})
}
