package domain

import "context"

// FoodSource defines the interface for the outbound food search transport.
// Implementations perform exactly one network exchange per call; retry and
// deduplication live above this boundary.
type FoodSource interface {
	Search(ctx context.Context, query string, limit int) ([]FoodRecord, error)
}
