package domain

import "context"

// Place is a geographic position resolved from a free-form address.
type Place struct {
	Longitude float64
	Latitude  float64
}

// RouteSummary is the outcome of routing between two places.
type RouteSummary struct {
	DistanceKm      float64
	DurationSeconds float64
}

// Routing resolves addresses to places and computes driving routes
// between them.
type Routing interface {
	ResolvePlace(ctx context.Context, address string) (Place, error)
	CalculateRoute(ctx context.Context, origin, destination Place) (RouteSummary, error)
}
