package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

var exitCommands = []string{"exit", "quit", ":q"}

// Runner drives a conversation from an IOHandler.
type Runner struct {
	Turner       Turner
	Handler      IOHandler
	Logger       *slog.Logger
	MaxInputSize int
}

// New creates a runner for t.
func New(t Turner, opts ...Option) *Runner {
	r := &Runner{
		Turner: t,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run opens the conversation with an empty turn and then loops until the plan is
// saved, the conversation fails, the input ends or the user exits. Rejected inputs and
// failed turns are reported and leave the conversation unchanged.
func (r *Runner) Run(ctx context.Context, conversationID string) error {
	resp, err := r.Turner.Turn(ctx, conversationID, "")
	if err != nil {
		return fmt.Errorf("failed to open conversation: %w", err)
	}
	if err := r.Handler.Output(ctx, resp); err != nil {
		return err
	}

	for !terminal(resp.Phase) {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				r.Logger.Debug("Chat ended", "conversation_id", conversationID, "reason", err)
				return nil
			}
			return err
		}
		if slices.Contains(exitCommands, strings.ToLower(strings.TrimSpace(text))) {
			return nil
		}

		clean, err := SanitizeInput(text, r.MaxInputSize)
		if err != nil {
			r.Logger.Warn("Input rejected", "err", err, "size", len(text))
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Input rejected: %v. Please try again.", err)); err != nil {
				return err
			}
			continue
		}

		next, err := r.Turner.Turn(ctx, conversationID, clean)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Logger.Error("Turn failed", "conversation_id", conversationID, "err", err)
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Something went wrong: %v", err)); err != nil {
				return err
			}
			continue
		}
		resp = next
		if err := r.Handler.Output(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}

func terminal(p domain.Phase) bool {
	return p == domain.PhaseConfirmed || p == domain.PhaseError
}
