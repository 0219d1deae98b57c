package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/location"
	"github.com/pkg/errors"

	"github.com/ordermesh/order-system/delivery-service/domain"
)

// LocationClient is the subset of the Amazon Location Service API the
// routing adapter uses.
type LocationClient interface {
	SearchPlaceIndexForText(ctx context.Context, params *location.SearchPlaceIndexForTextInput, optFns ...func(*location.Options)) (*location.SearchPlaceIndexForTextOutput, error)
	CalculateRoute(ctx context.Context, params *location.CalculateRouteInput, optFns ...func(*location.Options)) (*location.CalculateRouteOutput, error)
}

// LocationRouting implements Routing on top of Amazon Location Service,
// using a place index for geocoding and a route calculator for driving
// routes.
type LocationRouting struct {
	client          LocationClient
	placeIndex      string
	routeCalculator string
}

// NewLocationRouting creates a routing adapter with the default AWS config.
func NewLocationRouting(ctx context.Context, placeIndex, routeCalculator string) (*LocationRouting, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewLocationRoutingWithClient(location.NewFromConfig(cfg), placeIndex, routeCalculator), nil
}

// NewLocationRoutingWithClient creates a routing adapter with a custom client.
func NewLocationRoutingWithClient(client LocationClient, placeIndex, routeCalculator string) *LocationRouting {
	return &LocationRouting{
		client:          client,
		placeIndex:      placeIndex,
		routeCalculator: routeCalculator,
	}
}

// ResolvePlace geocodes a free-form address to its best match.
func (r *LocationRouting) ResolvePlace(ctx context.Context, address string) (domain.Place, error) {
	out, err := r.client.SearchPlaceIndexForText(ctx, &location.SearchPlaceIndexForTextInput{
		IndexName:  aws.String(r.placeIndex),
		Text:       aws.String(address),
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		return domain.Place{}, errors.Wrapf(err, "failed to search place index for %q", address)
	}
	if len(out.Results) == 0 {
		return domain.Place{}, errors.Errorf("no place found for %q", address)
	}

	point := out.Results[0].Place.Geometry.Point
	if len(point) < 2 {
		return domain.Place{}, errors.Errorf("place index returned no position for %q", address)
	}
	return domain.Place{Longitude: point[0], Latitude: point[1]}, nil
}

// CalculateRoute computes the driving route between two places.
func (r *LocationRouting) CalculateRoute(ctx context.Context, origin, destination domain.Place) (domain.RouteSummary, error) {
	out, err := r.client.CalculateRoute(ctx, &location.CalculateRouteInput{
		CalculatorName:      aws.String(r.routeCalculator),
		DeparturePosition:   []float64{origin.Longitude, origin.Latitude},
		DestinationPosition: []float64{destination.Longitude, destination.Latitude},
	})
	if err != nil {
		return domain.RouteSummary{}, errors.Wrap(err, "failed to calculate route")
	}
	if out.Summary == nil {
		return domain.RouteSummary{}, errors.New("route calculator returned no summary")
	}

	return domain.RouteSummary{
		DistanceKm:      aws.ToFloat64(out.Summary.Distance),
		DurationSeconds: aws.ToFloat64(out.Summary.DurationSeconds),
	}, nil
}
