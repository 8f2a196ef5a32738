package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/khadamatapp/marketplace-api/config"
	app "github.com/khadamatapp/marketplace-api/internal/application"
	pginfra "github.com/khadamatapp/marketplace-api/internal/infrastructure/postgres"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
)

// Consumes rating re-aggregation jobs queued when an aggregate write failed
// during review creation. Recomputing from the review table is idempotent,
// so redelivery is harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-reaggregate", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQReaggQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	reviews := pginfra.NewReviewRepository(pool)
	services := pginfra.NewServiceRepository(pool)
	providers := pginfra.NewProviderRepository(pool)
	svc := app.NewReviewService(reviews, services, providers, logger, nil)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(cfg.RabbitWorkerPrefetch, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQReaggQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQReaggQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job app.ReaggregateJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := svc.Reaggregate(ctx, job); err != nil {
				logger.WithError(err).WithField("service_id", job.ServiceID).Warn("reaggregate failed, requeueing")
				_ = msg.Nack(false, true)
				continue
			}
			logger.WithField("service_id", job.ServiceID).Info("aggregates healed")
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("reaggregate worker listening on queue=%s", cfg.RabbitMQReaggQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
