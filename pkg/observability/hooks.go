package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LogHooks logs every lifecycle event. Utterances are never logged.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "Turn processed",
				"conversation", e.ConversationID,
				"domain", e.Domain,
				"phase", e.Phase,
				"progress", e.Progress.Percentage,
				"unclear", e.Unclear,
				"duration", e.Duration)
		},
		OnQuestionAsked: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.DebugContext(ctx, "Question asked", "conversation", e.ConversationID, "question", e.QuestionID)
		},
		OnPhaseChange: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "Phase changed", "conversation", e.ConversationID, "from", e.From, "to", e.To)
		},
		OnPlanCreated: func(ctx context.Context, e *domain.PlanEvent) {
			logger.InfoContext(ctx, "Plan created", "conversation", e.ConversationID, "activity", e.ActivityID, "tasks", e.Tasks)
		},
	}
}

// Combine merges hooks so every non-nil callback runs in the given order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnTurn = chain(out.OnTurn, h.OnTurn)
		out.OnQuestionAsked = chain(out.OnQuestionAsked, h.OnQuestionAsked)
		out.OnPhaseChange = chain(out.OnPhaseChange, h.OnPhaseChange)
		out.OnPlanCreated = chain(out.OnPlanCreated, h.OnPlanCreated)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
