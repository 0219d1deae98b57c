package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ordermesh/order-system/order-service/application"
	"github.com/ordermesh/order-system/order-service/handlers"
	"github.com/ordermesh/order-system/order-service/infrastructure"
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

	OrderRepository *infrastructure.PostgresOrderRepository

	CreateOrder       *application.CreateOrder
	DescribeOrder     *application.DescribeOrder
	CancelOrder       *application.CancelOrder
	ConfirmDelivered  *application.ConfirmDelivered
	StoreOrder        *application.StoreOrder
	UpdateOrderStatus *application.UpdateOrderStatus

	OrderHandlers *handlers.OrderHandlers
	EventRouter   *events.Router

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

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	dedupStore := dedup.NewRedisStore(rdb, dedupTTL)

	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)

	deps.CreateOrder = application.NewCreateOrder(publisher, handlers.Source)
	deps.DescribeOrder = application.NewDescribeOrder(deps.OrderRepository)
	deps.CancelOrder = application.NewCancelOrder(deps.OrderRepository, publisher, handlers.Source)
	deps.ConfirmDelivered = application.NewConfirmDelivered(deps.OrderRepository, publisher, handlers.Source)
	deps.StoreOrder = application.NewStoreOrder(deps.OrderRepository)
	deps.UpdateOrderStatus = application.NewUpdateOrderStatus(deps.OrderRepository)

	deps.OrderHandlers = handlers.NewOrderHandlers(
		deps.CreateOrder,
		deps.DescribeOrder,
		deps.CancelOrder,
		deps.ConfirmDelivered,
	)

	eventHandlers := handlers.NewOrderEventHandlers(
		deps.StoreOrder,
		deps.UpdateOrderStatus,
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
