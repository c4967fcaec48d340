package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.Domain = "travel"
		conv.Mode = domain.ModeQuick
		conv.Slots[domain.SlotDestination] = domain.Filled("dallas", domain.SourceExtracted)
		conv.Slots[domain.SlotCompanions] = domain.FilledList([]string{"girlfriend"}, domain.SourceExtracted)
		conv.Slots[domain.SlotBudget] = domain.NoPreference(domain.SourceExtracted)
		conv.Asked.MarkAsked("destination")
		conv.Asked.MarkAsked("budget")
		conv.History = append(conv.History, domain.Turn{Role: domain.RoleUser, Content: "trip to dallas"})

		err := store.Save(ctx, sessionID, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conv.Domain, loaded.Domain)
		assert.Equal(t, conv.Mode, loaded.Mode)
		assert.Equal(t, "dallas", loaded.Slots.Get(domain.SlotDestination).Value)
		assert.Equal(t, []string{"girlfriend"}, loaded.Slots.Get(domain.SlotCompanions).Values)
		assert.Equal(t, domain.SlotNoPreference, loaded.Slots.Get(domain.SlotBudget).Status)
		assert.Equal(t, []string{"destination", "budget"}, loaded.Asked.IDs())
		assert.Len(t, loaded.History, 1)
	})

	t.Run("Load returns an independent copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Slots[domain.SlotDestination] = domain.Filled("houston", domain.SourceCorrection)

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "dallas", again.Slots.Get(domain.SlotDestination).Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewConversation(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversation(id1))
		_ = store.Save(ctx, id2, domain.NewConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunActivityStoreContract verifies an ActivityStore implementation, including idempotent creation.
func RunActivityStoreContract(t *testing.T, store ActivityStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000")

	input := domain.ActivityInput{
		ActivityDraft: domain.ActivityDraft{
			Title:       "Trip to dallas",
			Description: "Weekend in dallas",
			Category:    "travel",
		},
		ConversationID: "conv-1",
		IdempotencyKey: key,
	}

	t.Run("Create activity with tasks", func(t *testing.T) {
		act, err := store.CreateActivity(ctx, input)
		require.NoError(t, err)
		require.NotEmpty(t, act.ID)
		assert.Equal(t, "Trip to dallas", act.Title)
		assert.Equal(t, "travel", act.Category)

		titles := []string{"Book flights", "Reserve hotel", "Pack"}
		for i, title := range titles {
			task, err := store.CreateTask(ctx, domain.TaskInput{
				TaskDraft:      domain.TaskDraft{Title: title, Priority: domain.PriorityHigh},
				IdempotencyKey: fmt.Sprintf("%s:%d", key, i),
			})
			require.NoError(t, err)
			ok, err := store.AddTaskToActivity(ctx, act.ID, task.ID)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		tasks, err := store.GetActivityTasks(ctx, act.ID)
		require.NoError(t, err)
		require.Len(t, tasks, len(titles))
		for i, task := range tasks {
			assert.Equal(t, titles[i], task.Title, "tasks keep insertion order")
		}
	})

	t.Run("Idempotent retries", func(t *testing.T) {
		first, err := store.CreateActivity(ctx, input)
		require.NoError(t, err)
		second, err := store.CreateActivity(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		task, err := store.CreateTask(ctx, domain.TaskInput{
			TaskDraft:      domain.TaskDraft{Title: "Book flights", Priority: domain.PriorityHigh},
			IdempotencyKey: key + ":0",
		})
		require.NoError(t, err)
		ok, err := store.AddTaskToActivity(ctx, first.ID, task.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		tasks, err := store.GetActivityTasks(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, tasks, 3, "re-linking an existing task must not duplicate it")
	})

	t.Run("Unknown IDs", func(t *testing.T) {
		_, err := store.GetActivity(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrActivityNotFound)

		ok, err := store.AddTaskToActivity(ctx, "missing-"+key, "missing-task")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
