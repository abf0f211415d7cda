package domain

import "context"

// BoundaryFetcher retrieves a boundary GeoJSON document from a network location.
type BoundaryFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
