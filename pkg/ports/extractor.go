package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Extractor derives a slot diff from one utterance. It must not mutate req.Slots.
// Errors wrapping domain.ErrUnrecoverable move the conversation to the error phase;
// any other error fails the turn and leaves the state unchanged. The bundled extractors
// never return ErrUnrecoverable: it is for custom extractors that detect input the
// conversation cannot recover from, and extract.Failback passes it through untouched.
type Extractor interface {
	Extract(ctx context.Context, req domain.ExtractRequest) (*domain.ExtractResult, error)
}

// Enricher adds suggestions once gathering is complete.
type Enricher interface {
	Enrich(ctx context.Context, conv *domain.Conversation, profile domain.UserProfile) (*domain.Enrichment, error)
}

// TopicDetector decides whether an utterance switches the conversation to another domain.
// The engine only honours a switch while no budgeted question has been answered.
type TopicDetector interface {
	DetectTopic(ctx context.Context, utterance, currentDomain string) (next string, switched bool, err error)
}
