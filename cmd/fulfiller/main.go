package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	catalogx "github.com/rayadhanush/Dining-concierge-bot/agent/catalog"
	fulfillmentx "github.com/rayadhanush/Dining-concierge-bot/agent/fulfillment"
	"github.com/rayadhanush/Dining-concierge-bot/agent/httpapi"
	notifyx "github.com/rayadhanush/Dining-concierge-bot/agent/notify"
	queuex "github.com/rayadhanush/Dining-concierge-bot/agent/queue"
	searchx "github.com/rayadhanush/Dining-concierge-bot/agent/search"
	configx "github.com/rayadhanush/Dining-concierge-bot/pkg/config"
	_ "github.com/rayadhanush/Dining-concierge-bot/pkg/logger/autoload"
	qstashx "github.com/rayadhanush/Dining-concierge-bot/pkg/qstash"
	"github.com/rayadhanush/Dining-concierge-bot/pkg/redisx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queueCfg := configx.MustNew[queuex.Config]("QUEUE")
	elasticCfg := configx.MustNew[searchx.Config]("ELASTIC")
	catalogCfg := configx.MustNew[catalogx.Config]("CATALOG")
	sesCfg := configx.MustNew[notifyx.Config]("SES")

	es, err := searchx.NewClient(*elasticCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create elasticsearch client")
	}
	index, err := searchx.NewIndex(es, *elasticCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create search index")
	}

	db := catalogx.Open(*catalogCfg)
	defer db.Close()
	catalog, err := catalogx.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create catalog store")
	}

	mailer, err := notifyx.NewSESSender(ctx, *sesCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ses sender")
	}

	worker, err := fulfillmentx.New(index, catalog, mailer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create fulfillment worker")
	}

	switch queueCfg.Driver {
	case queuex.DriverKafka:
		runKafka(ctx, *queueCfg, worker)
	case queuex.DriverQStash:
		runQStash(ctx, worker)
	default:
		runAsynq(ctx, *queueCfg, worker)
	}
	log.Info().Msg("fulfiller stopped")
}

func runAsynq(ctx context.Context, queueCfg queuex.Config, worker queuex.Handler) {
	redisCfg := configx.MustNew[redisx.Config]("REDIS")
	srv := queuex.NewAsynqServer(queuex.RedisClientOpt(*redisCfg), queueCfg)

	if err := srv.Start(queuex.NewAsynqMux(worker)); err != nil {
		log.Fatal().Err(err).Msg("failed to start asynq server")
	}
	log.Info().
		Str("queue", queueCfg.Name).
		Int("concurrency", queueCfg.Concurrency).
		Msg("fulfiller consuming asynq tasks")

	<-ctx.Done()
	srv.Shutdown()
}

func runKafka(ctx context.Context, queueCfg queuex.Config, worker queuex.Handler) {
	kafkaCfg := configx.MustNew[queuex.KafkaConfig]("KAFKA")
	reader := queuex.NewKafkaReader(*kafkaCfg, queueCfg.ReceiveWait)
	defer reader.Close()

	log.Info().
		Str("topic", kafkaCfg.Topic).
		Str("group", kafkaCfg.Group).
		Msg("fulfiller consuming kafka messages")

	if err := queuex.NewKafkaConsumer(reader, worker).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("kafka consumer stopped")
	}
}

func runQStash(ctx context.Context, worker queuex.Handler) {
	httpCfg := configx.MustNew[httpapi.Config]("HTTP")
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create qstash client")
	}

	r := mux.NewRouter()
	r.Handle("/fulfill", queuex.NewQStashHandler(client, qstashCfg.Destination, worker)).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         httpCfg.Addr,
		Handler:      r,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", httpCfg.Addr).Msg("fulfiller receiving qstash deliveries")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
