package extract

import (
	"context"

	"github.com/aretw0/waypoint/pkg/catalog"
)

// Keywords detects topic switches from catalog keywords.
type Keywords struct {
	catalog *catalog.Catalog
}

// NewKeywords returns a topic detector for cat.
func NewKeywords(cat *catalog.Catalog) *Keywords {
	return &Keywords{catalog: cat}
}

// DetectTopic implements ports.TopicDetector. A switch needs a keyword match for a
// domain other than current.
func (k *Keywords) DetectTopic(ctx context.Context, utterance, current string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	next := k.catalog.Guess(utterance)
	if next == "" || next == current {
		return current, false, nil
	}
	return next, true, nil
}
