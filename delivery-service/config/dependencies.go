package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ordermesh/order-system/delivery-service/application"
	"github.com/ordermesh/order-system/delivery-service/handlers"
	"github.com/ordermesh/order-system/delivery-service/infrastructure"
	"github.com/ordermesh/order-system/shared/dedup"
	"github.com/ordermesh/order-system/shared/events"
	sharedinfra "github.com/ordermesh/order-system/shared/infrastructure"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupTTL = 24 * time.Hour

type Dependencies struct {
	DB  *sqlx.DB
	Log *zap.Logger

	DeliveryRepository *infrastructure.PostgresDeliveryRepository
	Routing            *infrastructure.LocationRouting

	EstimateDelivery *application.EstimateDelivery
	StartDelivery    *application.StartDelivery
	DescribeDelivery *application.DescribeDelivery
	CompleteDelivery *application.CompleteDelivery
	CancelDelivery   *application.CancelDelivery

	DeliveryHandlers *handlers.DeliveryHandlers
	EventRouter      *events.Router

	Publisher  *sharedinfra.SNSPublisher
	Subscriber *sharedinfra.SQSSubscriber
}

func BuildDependencies(ctx context.Context, cfg *Config, log *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{Log: log}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db

	publisher, err := sharedinfra.NewSNSPublisher(ctx, cfg.AWS.SNSTopicArn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.Publisher = publisher

	routing, err := infrastructure.NewLocationRouting(ctx, cfg.AWS.PlaceIndex, cfg.AWS.RouteCalculator)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create routing adapter: %w", err)
	}
	deps.Routing = routing

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	dedupStore := dedup.NewRedisStore(rdb, dedupTTL)

	deps.DeliveryRepository = infrastructure.NewPostgresDeliveryRepository(db)

	deps.EstimateDelivery = application.NewEstimateDelivery(routing, cfg.StartAddress, cfg.Currency)
	deps.StartDelivery = application.NewStartDelivery(deps.DeliveryRepository, deps.EstimateDelivery)
	deps.DescribeDelivery = application.NewDescribeDelivery(deps.DeliveryRepository)
	deps.CompleteDelivery = application.NewCompleteDelivery(deps.DeliveryRepository)
	deps.CancelDelivery = application.NewCancelDelivery(deps.DeliveryRepository)

	deps.DeliveryHandlers = handlers.NewDeliveryHandlers(
		deps.EstimateDelivery,
		deps.StartDelivery,
		deps.DescribeDelivery,
		deps.CompleteDelivery,
		deps.CancelDelivery,
	)

	eventHandlers := handlers.NewDeliveryEventHandlers(
		deps.EstimateDelivery,
		deps.StartDelivery,
		deps.CompleteDelivery,
		deps.CancelDelivery,
		publisher,
	)
	deps.EventRouter = eventHandlers.Router(log, events.WithDedup(dedupStore))

	subscriber, err := sharedinfra.NewSQSSubscriber(ctx, cfg.AWS.SQSQueueURL, deps.EventRouter, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.Subscriber = subscriber

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.Subscriber != nil {
		if err := d.Subscriber.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop subscriber: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}
	return nil
}
