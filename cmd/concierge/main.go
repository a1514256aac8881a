package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	conciergex "github.com/rayadhanush/Dining-concierge-bot/agent/agents/concierge"
	orchestratorx "github.com/rayadhanush/Dining-concierge-bot/agent/agents/orchestrator"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	"github.com/rayadhanush/Dining-concierge-bot/agent/httpapi"
	llmx "github.com/rayadhanush/Dining-concierge-bot/agent/llm"
	nlux "github.com/rayadhanush/Dining-concierge-bot/agent/nlu"
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
	promptx "github.com/rayadhanush/Dining-concierge-bot/agent/prompt"
	queuex "github.com/rayadhanush/Dining-concierge-bot/agent/queue"
	statex "github.com/rayadhanush/Dining-concierge-bot/agent/state"
	configx "github.com/rayadhanush/Dining-concierge-bot/pkg/config"
	_ "github.com/rayadhanush/Dining-concierge-bot/pkg/logger/autoload"
	qstashx "github.com/rayadhanush/Dining-concierge-bot/pkg/qstash"
	"github.com/rayadhanush/Dining-concierge-bot/pkg/redisx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpCfg := configx.MustNew[httpapi.Config]("HTTP")
	redisCfg := configx.MustNew[redisx.Config]("REDIS")
	dialogueCfg := configx.MustNew[orchestratorx.Config]("DIALOGUE")
	prefCfg := configx.MustNew[preferencex.Config]("PREFERENCE")
	sessionCfg := configx.MustNew[statex.Config]("SESSION")
	queueCfg := configx.MustNew[queuex.Config]("QUEUE")
	llmCfg := configx.MustNew[llmx.Config]("LLM")

	rdb := redisx.NewClient(*redisCfg)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Warn().Err(err).Str("addr", redisCfg.Addr).Msg("redis is not reachable, preference cache will miss")
	}

	prefStore, err := preferencex.NewRedisStore(rdb,
		preferencex.WithKeyPrefix(prefCfg.KeyPrefix),
		preferencex.WithTTL(prefCfg.TTL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create preference store")
	}

	submitter, closeSubmitter, err := newSubmitter(*queueCfg, *redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create request submitter")
	}
	defer closeSubmitter()

	turns, err := orchestratorx.New(preferencex.NewCache(prefStore), submitter, *dialogueCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dialogue orchestrator")
	}

	server := httpapi.NewServer(nil, turns)
	if err := llmCfg.Validate(); err == nil {
		chat, err := newConversationService(ctx, *llmCfg, *sessionCfg, rdb, turns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create conversation service")
		}
		server = httpapi.NewServer(chat, turns)
	} else {
		log.Warn().Err(err).Msg("llm is not configured, /chatbot is disabled")
	}

	r := mux.NewRouter()
	server.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         httpCfg.Addr,
		Handler:      r,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", httpCfg.Addr).Msg("concierge listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newConversationService(
	ctx context.Context,
	llmCfg llmx.Config,
	sessionCfg statex.Config,
	rdb redis.UniversalClient,
	turns contractx.TurnHandler,
) (*conciergex.Service, error) {
	orCfg := llmCfg.OpenRouterForNLU()
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		return nil, err
	}
	interpreter, err := nlux.NewInterpreter(ctx, chatModel, promptx.LoadPromptSet().Interpreter)
	if err != nil {
		return nil, err
	}

	opts := []statex.StoreOption{
		statex.WithKeyPrefix(sessionCfg.KeyPrefix),
		statex.WithTTL(sessionCfg.TTL),
		statex.WithRedisClient(rdb),
	}
	if sessionCfg.Driver == statex.DriverUpstash {
		opts = append(opts, statex.WithUpstash(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH")))
	}
	store, err := statex.NewStore(sessionCfg.Driver, opts...)
	if err != nil {
		return nil, err
	}

	return conciergex.New(store, interpreter, turns)
}

func newSubmitter(queueCfg queuex.Config, redisCfg redisx.Config) (contractx.Submitter, func(), error) {
	switch queueCfg.Driver {
	case queuex.DriverKafka:
		kafkaCfg := configx.MustNew[queuex.KafkaConfig]("KAFKA")
		writer := queuex.NewKafkaWriter(*kafkaCfg)
		s, err := queuex.NewKafkaSubmitter(writer)
		return s, func() { _ = writer.Close() }, err
	case queuex.DriverQStash:
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		client, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			return nil, func() {}, err
		}
		s, err := queuex.NewQStashSubmitter(client, qstashCfg.Destination)
		return s, func() {}, err
	default:
		client := asynq.NewClient(queuex.RedisClientOpt(redisCfg))
		s, err := queuex.NewAsynqSubmitter(client, queueCfg.Name)
		return s, func() { _ = client.Close() }, err
	}
}
