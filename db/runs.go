package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dogapi/models"
)

const batchSize = 500

// UpsertRuns writes runs to the fact store in batches. REPLACE keys on the
// run_id primary key, so re-ingesting a period is idempotent: the latest
// payload for a run id wins and nothing is double counted.
func UpsertRuns(ctx context.Context, db *bun.DB, runs []models.Run) error {
	for start := 0; start < len(runs); start += batchSize {
		end := start + batchSize
		if end > len(runs) {
			end = len(runs)
		}
		batch := runs[start:end]
		if _, err := db.NewInsert().Model(&batch).Replace().Exec(ctx); err != nil {
			return fmt.Errorf("upserting runs [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// SaveDailyRaces stores the enriched document for a date, replacing any
// earlier computation for the same date.
func SaveDailyRaces(ctx context.Context, db *bun.DB, raceDate string, data []byte) error {
	dr := &models.DailyRaces{
		RaceDate:   raceDate,
		Data:       data,
		ComputedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().Model(dr).
		On("CONFLICT (race_date) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("computed_at = EXCLUDED.computed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("saving daily races for %s: %w", raceDate, err)
	}
	return nil
}

// LatestDailyRaces returns the most recently dated stored document, or nil if
// nothing has been computed yet.
func LatestDailyRaces(ctx context.Context, db *bun.DB) (*models.DailyRaces, error) {
	dr := new(models.DailyRaces)
	err := db.NewSelect().Model(dr).
		OrderExpr("race_date DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest daily races: %w", err)
	}
	return dr, nil
}
