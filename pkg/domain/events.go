package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn          EventType = "turn"
	EventQuestionAsked EventType = "question_asked"
	EventPhaseChange   EventType = "phase_change"
	EventPlanCreated   EventType = "plan_created"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	Domain         string    `json:"domain,omitempty"`
	Mode           Mode      `json:"mode,omitempty"`
}

// TurnEvent is emitted once per processed turn.
type TurnEvent struct {
	EventBase
	Phase    Phase         `json:"phase"`
	Progress Progress      `json:"progress"`
	Unclear  bool          `json:"unclear,omitempty"`
	Duration time.Duration `json:"duration"`
}

// QuestionEvent is emitted when a question is asked for the first time.
type QuestionEvent struct {
	EventBase
	QuestionID string `json:"question_id"`
}

// PhaseEvent is emitted when a turn moves the conversation to another phase.
type PhaseEvent struct {
	EventBase
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// PlanEvent is emitted after a plan is persisted.
type PlanEvent struct {
	EventBase
	ActivityID string `json:"activity_id"`
	Tasks      int    `json:"tasks"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurn          func(context.Context, *TurnEvent)
	OnQuestionAsked func(context.Context, *QuestionEvent)
	OnPhaseChange   func(context.Context, *PhaseEvent)
	OnPlanCreated   func(context.Context, *PlanEvent)
}
