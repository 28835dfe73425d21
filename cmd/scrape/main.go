// cmd/scrape/main.go
// Ingests historical runs from the Topaz bulk endpoints into the local
// fact store.
//
// Usage:
//
//	go run ./cmd/scrape -mode years                  # N years back, stopping short of now
//	go run ./cmd/scrape -mode month -year 2025 -month 11
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/dogapi/config"
	bundb "github.com/padraicbc/dogapi/db"
	applog "github.com/padraicbc/dogapi/logger"
	"github.com/padraicbc/dogapi/topaz"
)

func main() {
	mode := flag.String("mode", "years", "scrape mode: years or month")
	years := flag.Int("years", 6, "years of history to fetch (mode=years)")
	stopMonths := flag.Int("stop-months", 3, "months before now to stop at (mode=years)")
	year := flag.Int("year", 0, "target year (mode=month)")
	month := flag.Int("month", 0, "target month 1-12 (mode=month)")
	flag.Parse()

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

	s := &scraper{
		cfg:    cfg,
		db:     db,
		client: topaz.New(cfg.TopazBaseURL, cfg.TopazAPIKey),
		log:    logger,
	}

	switch *mode {
	case "years":
		s.scrapeYears(ctx, *years, *stopMonths)
	case "month":
		if *year == 0 || *month < 1 || *month > 12 {
			log.Fatal("mode=month requires -year and -month 1-12")
		}
		s.scrapeMonth(ctx, *year, *month)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

type scraper struct {
	cfg    *config.Config
	db     *bun.DB
	client *topaz.Client
	log    *zap.Logger
}

type yearMonth struct {
	year  int
	month int
}

// monthRanges lists every month from yearsBack years ago up to stopMonths
// months before now.
func monthRanges(yearsBack, stopMonths int) []yearMonth {
	cutoff := time.Now().AddDate(0, -stopMonths, 0)
	current := time.Now().AddDate(-yearsBack, 0, 0)

	var ranges []yearMonth
	for !current.After(cutoff) {
		ranges = append(ranges, yearMonth{current.Year(), int(current.Month())})
		current = current.AddDate(0, 1, 0)
	}
	return ranges
}

// scrapeYears walks every jurisdiction × month sequentially. A failed fetch
// is logged and skipped; a store failure aborts the run.
func (s *scraper) scrapeYears(ctx context.Context, yearsBack, stopMonths int) {
	ranges := monthRanges(yearsBack, stopMonths)
	totalRequests := len(ranges) * len(s.cfg.Jurisdictions)
	s.log.Info("starting bulk scrape",
		zap.Strings("jurisdictions", s.cfg.Jurisdictions),
		zap.Int("months", len(ranges)),
		zap.Int("totalRequests", totalRequests))

	totalRuns, completed := 0, 0
	for _, jur := range s.cfg.Jurisdictions {
		s.log.Info("scraping jurisdiction", zap.String("jurisdiction", jur))
		for _, ym := range ranges {
			period := fmt.Sprintf("%d-%02d", ym.year, ym.month)
			runs, err := s.client.BulkRuns(ctx, jur, ym.year, ym.month)
			if err != nil {
				s.log.Error("bulk fetch failed",
					zap.String("jurisdiction", jur), zap.String("period", period), zap.Error(err))
				continue
			}

			if len(runs) > 0 {
				if err := bundb.UpsertRuns(ctx, s.db, runs); err != nil {
					s.log.Fatal("store failed",
						zap.String("jurisdiction", jur), zap.String("period", period), zap.Error(err))
				}
				totalRuns += len(runs)
			}

			completed++
			s.log.Info("period done",
				zap.String("jurisdiction", jur),
				zap.String("period", period),
				zap.Int("runs", len(runs)),
				zap.Int("completed", completed),
				zap.Int("total", totalRequests))

			time.Sleep(s.cfg.ScrapeDelay)
		}
	}

	s.log.Info("bulk scrape finished", zap.Int("runsInserted", totalRuns))
}

// scrapeMonth fetches a single month day by day, up to yesterday.
func (s *scraper) scrapeMonth(ctx context.Context, year, month int) {
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	yesterday := time.Now().AddDate(0, 0, -1)

	var days []int
	for day := 1; day <= daysInMonth; day++ {
		if !time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local).After(yesterday) {
			days = append(days, day)
		}
	}

	totalRequests := len(days) * len(s.cfg.Jurisdictions)
	s.log.Info("starting month scrape",
		zap.Int("year", year), zap.Int("month", month),
		zap.Int("days", len(days)), zap.Int("totalRequests", totalRequests))

	totalRuns, completed := 0, 0
	for _, jur := range s.cfg.Jurisdictions {
		s.log.Info("scraping jurisdiction", zap.String("jurisdiction", jur))
		for _, day := range days {
			date := fmt.Sprintf("%d-%02d-%02d", year, month, day)
			runs, err := s.client.BulkRunsByDay(ctx, jur, year, month, day)
			if err != nil {
				s.log.Error("day fetch failed",
					zap.String("jurisdiction", jur), zap.String("date", date), zap.Error(err))
				continue
			}

			if len(runs) > 0 {
				if err := bundb.UpsertRuns(ctx, s.db, runs); err != nil {
					s.log.Fatal("store failed",
						zap.String("jurisdiction", jur), zap.String("date", date), zap.Error(err))
				}
				totalRuns += len(runs)
			}

			completed++
			s.log.Info("day done",
				zap.String("jurisdiction", jur),
				zap.String("date", date),
				zap.Int("runs", len(runs)),
				zap.Int("completed", completed),
				zap.Int("total", totalRequests))

			time.Sleep(s.cfg.ScrapeDelay)
		}
	}

	s.log.Info("month scrape finished", zap.Int("runsInserted", totalRuns))
}
