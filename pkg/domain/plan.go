package domain

import "time"

// Priority orders tasks inside a plan.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ActivityDraft is the activity part of a PlanDraft.
type ActivityDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TaskDraft is a single proposed task.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
}

// PlanDraft is the structured output of synthesis. It is not modified after creation.
type PlanDraft struct {
	Activity ActivityDraft `json:"activity"`
	Tasks    []TaskDraft   `json:"tasks"`
}

// Clone returns a deep copy.
func (p *PlanDraft) Clone() *PlanDraft {
	if p == nil {
		return nil
	}
	out := *p
	out.Tasks = append([]TaskDraft(nil), p.Tasks...)
	return &out
}

// Enrichment holds suggestions gathered between gathering and synthesis.
type Enrichment struct {
	Suggestions []string `json:"suggestions,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Clone returns a deep copy.
func (e *Enrichment) Clone() *Enrichment {
	if e == nil {
		return nil
	}
	return &Enrichment{
		Suggestions: append([]string(nil), e.Suggestions...),
		Notes:       append([]string(nil), e.Notes...),
	}
}

// ActivityInput is what the engine hands to the activity store.
type ActivityInput struct {
	ActivityDraft
	OwnerID        string `json:"owner_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// TaskInput is what the engine hands to the activity store for each task.
type TaskInput struct {
	TaskDraft
	IdempotencyKey string `json:"idempotency_key"`
}

// Activity is a persisted plan.
type Activity struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	OwnerID        string    `json:"owner_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Task is a persisted task.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}
