package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/895623789/fresh-store-backend/configs"
	"github.com/895623789/fresh-store-backend/internal/adapter/authsvc"
	"github.com/895623789/fresh-store-backend/internal/adapter/cache"
	"github.com/895623789/fresh-store-backend/internal/adapter/gateway"
	httpadapter "github.com/895623789/fresh-store-backend/internal/adapter/http"
	"github.com/895623789/fresh-store-backend/internal/adapter/http/middleware"
	"github.com/895623789/fresh-store-backend/internal/adapter/kafka"
	"github.com/895623789/fresh-store-backend/internal/adapter/queue"
	"github.com/895623789/fresh-store-backend/internal/adapter/repo"
	"github.com/895623789/fresh-store-backend/internal/logging"
	"github.com/895623789/fresh-store-backend/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig builds the whole object graph once at startup: one database
// handle, one redis client, one gateway client, injected everywhere. Nothing
// here is re-created per request.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	log.Info("fresh-store-backend: starting up")

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq notification queue
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	notify, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// kafka event stream
	producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, err
	}
	events := kafka.NewProducer(producer, cfg.Kafka.EventsTopic)

	// external collaborators
	gw := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		Timeout:   cfg.Gateway.Timeout,
	})
	auth := authsvc.NewClient(authsvc.Config{
		BaseURL: cfg.Auth.BaseURL,
		APIKey:  cfg.Auth.APIKey,
		Timeout: cfg.Auth.Timeout,
	})

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)

	// use cases
	createUC := usecase.NewCreateOrder(orderRepo, idem, events, notify)
	statusUC := usecase.NewUpdateStatus(orderRepo, statusCache, events)
	paymentsUC := usecase.NewPayments(gw)
	reconcileUC := usecase.NewReconcilePayment(cfg.Gateway.KeySecret, orderRepo, idem, events, notify)

	// fulfillment listener
	consumerCancel, err := startFulfillmentListener(cfg, statusUC)
	if err != nil {
		return nil, nil, err
	}

	// handlers + router
	oh := httpadapter.NewOrderHandler(createUC, statusUC, orderRepo)
	ph := httpadapter.NewPaymentHandler(paymentsUC, reconcileUC)
	ah := httpadapter.NewAuthHandler(auth)
	th := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(cfg, oh, ph, ah, th, authz)

	cleanup := func() {
		consumerCancel()
		_ = producer.Close()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

// startFulfillmentListener consumes shipment events in the background and
// applies the matching lifecycle transitions.
func startFulfillmentListener(cfg configs.Config, statusUC *usecase.UpdateStatus) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	log := logging.New("fulfillment-consumer")
	h := kafka.NewFulfillmentHandler(statusUC)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.FulfillmentTopic}, h.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("fulfillment consumer stopped", "err", err)
		}
		_ = grp.Close()
	}()
	return cancel, nil
}
