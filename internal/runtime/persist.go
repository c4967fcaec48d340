package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// IdempotencyKey derives a stable key from the conversation ID and the draft, so a
// retried confirmation reaches the store with the same key.
func IdempotencyKey(conversationID string, draft *domain.PlanDraft) string {
	h := sha256.New()
	h.Write([]byte(conversationID))
	h.Write([]byte{0})
	data, _ := json.Marshal(draft)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// persist writes the draft to the activity store. Any failure is returned as a
// *StorageError and the caller leaves the conversation untouched.
func (e *Engine) persist(ctx context.Context, conv *domain.Conversation, ownerID string) (*domain.Activity, []domain.Task, error) {
	if e.activities == nil {
		return nil, nil, &StorageError{Op: "create activity", Err: errors.New("no activity store configured")}
	}
	key := IdempotencyKey(conv.ID, conv.Draft)

	activity, err := e.activities.CreateActivity(ctx, domain.ActivityInput{
		ActivityDraft:  conv.Draft.Activity,
		OwnerID:        ownerID,
		ConversationID: conv.ID,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, nil, &StorageError{Op: "create activity", Err: err}
	}

	tasks := make([]domain.Task, 0, len(conv.Draft.Tasks))
	for i, draft := range conv.Draft.Tasks {
		task, err := e.activities.CreateTask(ctx, domain.TaskInput{
			TaskDraft:      draft,
			IdempotencyKey: fmt.Sprintf("%s:task:%d", key, i),
		})
		if err != nil {
			return nil, nil, &StorageError{Op: "create task", Err: err}
		}
		ok, err := e.activities.AddTaskToActivity(ctx, activity.ID, task.ID)
		if err != nil {
			return nil, nil, &StorageError{Op: "link task", Err: err}
		}
		if !ok {
			return nil, nil, &StorageError{Op: "link task", Err: fmt.Errorf("task %s was not linked to activity %s", task.ID, activity.ID)}
		}
		tasks = append(tasks, *task)
	}
	e.logger.Info("Plan saved", "conversation", conv.ID, "activity", activity.ID, "tasks", len(tasks))
	return activity, tasks, nil
}
