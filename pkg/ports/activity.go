package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ActivityStore receives confirmed plans. It is only called from the confirmation turn.
//
// Implementations must honour IdempotencyKey: creating twice with the same key
// returns the entity created the first time.
type ActivityStore interface {
	CreateActivity(ctx context.Context, in domain.ActivityInput) (*domain.Activity, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)

	// AddTaskToActivity links a task to an activity. It returns false if either is unknown.
	// Linking the same pair twice is a no-op that still reports true.
	AddTaskToActivity(ctx context.Context, activityID, taskID string) (bool, error)

	// GetActivityTasks returns the tasks of an activity in the order they were added.
	GetActivityTasks(ctx context.Context, activityID string) ([]domain.Task, error)

	// GetActivity returns domain.ErrActivityNotFound for unknown IDs.
	GetActivity(ctx context.Context, activityID string) (*domain.Activity, error)
}
