package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/uuid"
)

// ActivityStore implements ports.ActivityStore in memory. It is the default sink for
// confirmed plans in the CLI and in tests.
type ActivityStore struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
	tasks      map[string]domain.Task
	links      map[string][]string
	byKey      map[string]string
	now        func() time.Time
}

// NewActivityStore creates an empty store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		activities: make(map[string]domain.Activity),
		tasks:      make(map[string]domain.Task),
		links:      make(map[string][]string),
		byKey:      make(map[string]string),
		now:        time.Now,
	}
}

// CreateActivity stores a new activity or returns the one created with the same key.
func (s *ActivityStore) CreateActivity(ctx context.Context, in domain.ActivityInput) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey["activity:"+in.IdempotencyKey]; ok && in.IdempotencyKey != "" {
		a := s.activities[id]
		return &a, nil
	}
	a := domain.Activity{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		OwnerID:        in.OwnerID,
		ConversationID: in.ConversationID,
		CreatedAt:      s.now(),
	}
	s.activities[a.ID] = a
	if in.IdempotencyKey != "" {
		s.byKey["activity:"+in.IdempotencyKey] = a.ID
	}
	return &a, nil
}

// CreateTask stores a new task or returns the one created with the same key.
func (s *ActivityStore) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey["task:"+in.IdempotencyKey]; ok && in.IdempotencyKey != "" {
		t := s.tasks[id]
		return &t, nil
	}
	t := domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		CreatedAt:   s.now(),
	}
	s.tasks[t.ID] = t
	if in.IdempotencyKey != "" {
		s.byKey["task:"+in.IdempotencyKey] = t.ID
	}
	return &t, nil
}

// AddTaskToActivity links a task once; repeated links report success without duplicating.
func (s *ActivityStore) AddTaskToActivity(ctx context.Context, activityID, taskID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activities[activityID]; !ok {
		return false, nil
	}
	if _, ok := s.tasks[taskID]; !ok {
		return false, nil
	}
	if !slices.Contains(s.links[activityID], taskID) {
		s.links[activityID] = append(s.links[activityID], taskID)
	}
	return true, nil
}

// GetActivityTasks returns linked tasks in insertion order.
func (s *ActivityStore) GetActivityTasks(ctx context.Context, activityID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.activities[activityID]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, activityID)
	}
	out := make([]domain.Task, 0, len(s.links[activityID]))
	for _, id := range s.links[activityID] {
		out = append(out, s.tasks[id])
	}
	return out, nil
}

// GetActivity returns a stored activity.
func (s *ActivityStore) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[activityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, activityID)
	}
	return &a, nil
}
