package dedup

import (
	"context"
	"fmt"

	"promptcrawler/internal/core/source"
)

// Lookup is the slice of the store the gate reads from.
type Lookup interface {
	SourceExists(ctx context.Context, sourceType, sourceID string) (bool, error)
}

// Gate decides whether a fetched item has been seen before. It only reads:
// an item becomes "known" once the persistence writer stores its source row.
// Two runs racing on the same item may both see it as new.
type Gate struct {
	lookup Lookup
}

func NewGate(lookup Lookup) *Gate { return &Gate{lookup: lookup} }

func (g *Gate) IsNew(ctx context.Context, t source.Type, sourceID string) (bool, error) {
	exists, err := g.lookup.SourceExists(ctx, string(t), sourceID)
	if err != nil {
		return false, fmt.Errorf("dedup lookup %s/%s: %w", t, sourceID, err)
	}
	return !exists, nil
}
