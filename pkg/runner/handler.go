package runner

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the reply of one turn.
	Output(ctx context.Context, resp *domain.TurnResponse) error

	// Input reads the next utterance. It returns io.EOF when the input ends.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message such as a rejected input.
	SystemOutput(ctx context.Context, msg string) error
}

// Turner runs one turn of a stored conversation.
type Turner interface {
	Turn(ctx context.Context, conversationID, input string) (*domain.TurnResponse, error)
}
