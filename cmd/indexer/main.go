package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	catalogx "github.com/rayadhanush/Dining-concierge-bot/agent/catalog"
	indexerx "github.com/rayadhanush/Dining-concierge-bot/agent/indexer"
	searchx "github.com/rayadhanush/Dining-concierge-bot/agent/search"
	configx "github.com/rayadhanush/Dining-concierge-bot/pkg/config"
	_ "github.com/rayadhanush/Dining-concierge-bot/pkg/logger/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	indexerCfg := configx.MustNew[indexerx.Config]("INDEXER")
	elasticCfg := configx.MustNew[searchx.Config]("ELASTIC")
	catalogCfg := configx.MustNew[catalogx.Config]("CATALOG")

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

	loader, err := indexerx.NewLoader(catalog, index, indexerCfg.PageSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create index loader")
	}

	var src io.Reader
	if indexerCfg.ImportFile != "" {
		f, err := os.Open(indexerCfg.ImportFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", indexerCfg.ImportFile).Msg("failed to open import file")
		}
		defer f.Close()
		src = f
	}

	if _, err := loader.Run(ctx, src); err != nil {
		log.Fatal().Err(err).Msg("index load failed")
	}
}
