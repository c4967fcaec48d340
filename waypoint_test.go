package waypoint_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/adapters/file"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SessionBackedPlan(t *testing.T) {
	store := file.New(t.TempDir())
	client, err := waypoint.New(waypoint.WithConversationStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	var resp *domain.TurnResponse
	for _, input := range []string{"I want to plan a trip", "Denver", "next weekend", "Chicago", "my wife", "$800"} {
		resp, err = client.Turn(ctx, "c1", input)
		require.NoError(t, err, input)
	}
	require.Equal(t, domain.PhaseConfirming, resp.Phase)

	stored, err := client.Conversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseConfirming, stored.Phase)
	assert.Equal(t, domain.ModeQuick, stored.Mode)

	resp, err = client.Turn(ctx, "c1", "yes")
	require.NoError(t, err)
	require.Equal(t, domain.PhaseConfirmed, resp.Phase)

	activity, tasks, err := client.Activity(ctx, resp.CreatedActivity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip to Denver", activity.Title)
	assert.Len(t, tasks, len(resp.CreatedTasks))

	ids, err := client.Conversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, client.DeleteConversation(ctx, "c1"))
	_, err = client.Conversation(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestClient_ModeIsFixedPerConversation(t *testing.T) {
	client, err := waypoint.New(waypoint.WithMode(domain.ModeSmart))
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := client.Turn(ctx, "c1", "trip to Rome")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSmart, resp.Conversation.Mode)

	_, err = client.Converse(ctx, "c1", waypoint.TurnInput{Input: "in May", Mode: domain.ModeQuick})
	assert.ErrorIs(t, err, domain.ErrModeChanged)

	stored, err := client.Conversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, resp.Conversation.Slots, stored.Slots, "failed turns are not saved")
}

func TestClient_ProfilePerTurn(t *testing.T) {
	client, err := waypoint.New(waypoint.WithProfile(domain.UserProfile{Location: "Boston"}))
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := client.Turn(ctx, "a", "I want to take a trip to Seattle")
	require.NoError(t, err)
	assert.Equal(t, "Boston", resp.Conversation.Slots.Get(domain.SlotOrigin).Value)

	resp, err = client.Converse(ctx, "b", waypoint.TurnInput{
		Input:   "I want to take a trip to Seattle",
		Profile: &domain.UserProfile{Location: "Portland"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Portland", resp.Conversation.Slots.Get(domain.SlotOrigin).Value)
}

func TestClient_DomainOption(t *testing.T) {
	client, err := waypoint.New(waypoint.WithDomain("event"))
	require.NoError(t, err)
	resp, err := client.Turn(context.Background(), "e1", "")
	require.NoError(t, err)
	assert.Equal(t, "occasion", resp.Question)

	_, err = waypoint.New(waypoint.WithDomain("cooking"))
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestClient_Errors(t *testing.T) {
	_, err := waypoint.New(waypoint.WithMode("fast"))
	assert.ErrorIs(t, err, domain.ErrInvalidMode)

	client, err := waypoint.New()
	require.NoError(t, err)
	_, err = client.Turn(context.Background(), "", "hello")
	assert.ErrorIs(t, err, domain.ErrMalformedState)

	_, _, err = client.Activity(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

type brokenExtractor struct{}

func (brokenExtractor) Extract(context.Context, domain.ExtractRequest) (*domain.ExtractResult, error) {
	return nil, errors.New("model offline")
}

func TestClient_ExtractorChain(t *testing.T) {
	cat := catalog.Default()
	chain := extract.NewFailback(brokenExtractor{}, extract.NewRules(cat))
	client, err := waypoint.New(waypoint.WithCatalog(cat), waypoint.WithExtractor(chain))
	require.NoError(t, err)

	resp, err := client.Turn(context.Background(), "c1", "trip to Rome")
	require.NoError(t, err)
	assert.Equal(t, "travel", resp.Domain)
}
