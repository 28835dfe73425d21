package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/padraicbc/dogapi/models"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory database.
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bdb.Close() })

	require.NoError(t, CreateTables(context.Background(), bdb))
	return bdb
}

func strp(s string) *string   { return &s }
func intp(i int) *int         { return &i }
func i64p(i int64) *int64     { return &i }
func f64p(f float64) *float64 { return &f }
func boolp(b bool) *bool      { return &b }

// testRun builds a minimal unscratched run; tests fill in the columns their
// aggregate reads.
func testRun(id, dogID int64, track string, dist int, date string) models.Run {
	return models.Run{
		RunID:            id,
		DogID:            dogID,
		TrackCode:        &track,
		DistanceInMetres: &dist,
		MeetingDate:      &date,
		Scratched:        boolp(false),
	}
}

func TestUpsertRunsIdempotent(t *testing.T) {
	ctx := context.Background()
	bdb := newTestDB(t)

	run := testRun(1, 100, "MEA", 525, "2025-01-01")
	run.Place = intp(4)
	require.NoError(t, UpsertRuns(ctx, bdb, []models.Run{run}))

	// Ingesting the same run id again replaces the row instead of stacking a
	// duplicate start.
	run.Place = intp(1)
	require.NoError(t, UpsertRuns(ctx, bdb, []models.Run{run}))

	count, err := CountRuns(ctx, bdb)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	dogs, err := DogStats(ctx, bdb)
	require.NoError(t, err)
	require.Len(t, dogs, 1)
	assert.Equal(t, 1, dogs[0].TotalStarts)
	assert.Equal(t, 1, dogs[0].Wins)
}

func TestUpsertRunsCrossesBatchBoundary(t *testing.T) {
	ctx := context.Background()
	bdb := newTestDB(t)

	runs := make([]models.Run, 0, batchSize+1)
	for i := 0; i <= batchSize; i++ {
		runs = append(runs, testRun(int64(i+1), int64(i+1), "MEA", 525, "2025-01-01"))
	}
	require.NoError(t, UpsertRuns(ctx, bdb, runs))

	count, err := CountRuns(ctx, bdb)
	require.NoError(t, err)
	assert.Equal(t, batchSize+1, count)
}

func TestSaveDailyRacesReplacesByDate(t *testing.T) {
	ctx := context.Background()
	bdb := newTestDB(t)

	require.NoError(t, SaveDailyRaces(ctx, bdb, "2025-01-02", []byte(`{"v":1}`)))
	require.NoError(t, SaveDailyRaces(ctx, bdb, "2025-01-02", []byte(`{"v":2}`)))
	require.NoError(t, SaveDailyRaces(ctx, bdb, "2025-01-01", []byte(`{"v":0}`)))

	latest, err := LatestDailyRaces(ctx, bdb)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2025-01-02", latest.RaceDate)
	assert.JSONEq(t, `{"v":2}`, string(latest.Data))
}

func TestLatestDailyRacesEmpty(t *testing.T) {
	latest, err := LatestDailyRaces(context.Background(), newTestDB(t))
	require.NoError(t, err)
	assert.Nil(t, latest)
}

// seedRuns is a convenience for the aggregate tests below.
func seedRuns(t *testing.T, bdb *bun.DB, runs []models.Run) {
	t.Helper()
	require.NoError(t, UpsertRuns(context.Background(), bdb, runs))
}

func date(day int) string { return fmt.Sprintf("2025-01-%02d", day) }
