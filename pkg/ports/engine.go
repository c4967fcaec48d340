package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// DialogueEngine is the stateless core used by adapters (HTTP, MCP, CLI).
// Every call receives the full conversation and returns an updated copy.
type DialogueEngine interface {
	Process(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error)
}
