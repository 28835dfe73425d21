package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/padraicbc/dogapi/config"
	"github.com/padraicbc/dogapi/models"
)

// Setup opens the SQLite fact store at cfg.DBPath. WAL journaling lets the
// aggregate queries read concurrently while ingestion holds the single
// writer; the busy timeout covers the handover between the two.
func Setup(cfg *config.Config) *bun.DB {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.DBPath)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables and the lookup indexes the aggregate
// queries depend on.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Run)(nil),
		(*models.DailyRaces)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_dog_track_dist ON runs (dog_id, track_code, distance_in_metres)`,
		`CREATE INDEX IF NOT EXISTS idx_trainer ON runs (trainer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_track_box ON runs (track_code, box_number)`,
		`CREATE INDEX IF NOT EXISTS idx_dog_date ON runs (dog_id, meeting_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_dog_track ON runs (dog_id, track_code)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}
