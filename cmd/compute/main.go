// cmd/compute/main.go
// Runs one daily compute: fetches today's meetings and races, enriches every
// runner with fact-store statistics and stores the finished document.
//
// Usage:
//
//	go run ./cmd/compute
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/padraicbc/dogapi/config"
	bundb "github.com/padraicbc/dogapi/db"
	applog "github.com/padraicbc/dogapi/logger"
	"github.com/padraicbc/dogapi/pipeline"
	"github.com/padraicbc/dogapi/topaz"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	res, err := pipeline.Daily(ctx, pipeline.Deps{
		DB:             db,
		Client:         topaz.New(cfg.TopazBaseURL, cfg.TopazAPIKey),
		Log:            logger,
		Jurisdictions:  cfg.Jurisdictions,
		RaceFetchDelay: cfg.RaceFetchDelay,
		Timezone:       cfg.Timezone,
	})
	if err != nil {
		logger.Fatal("daily compute failed", zap.Error(err))
	}

	logger.Info("daily compute completed", zap.String("date", res.Date))
}
