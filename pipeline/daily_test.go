package pipeline

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/padraicbc/dogapi/db"
	"github.com/padraicbc/dogapi/topaz"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bdb.Close() })

	require.NoError(t, db.CreateTables(context.Background(), bdb))
	return bdb
}

// fakeTopaz serves two jurisdictions: VIC has a good meeting and one whose
// race fetch fails, NSW fails at the meeting level entirely.
func fakeTopaz(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/meeting", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("owningauthoritycode") {
		case "VIC":
			w.Write([]byte(`[
				{"meetingId": 1, "trackCode": "MEA", "trackName": "The Meadows"},
				{"meetingId": 2, "trackCode": "SAN", "trackName": "Sandown Park"}
			]`))
		default:
			http.Error(w, "upstream down", http.StatusBadGateway)
		}
	})
	mux.HandleFunc("/meeting/1/races", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"raceId": 10, "raceNumber": 1, "distance": 525, "runs": [
				{"dogId": 7, "dogName": "FAST DOG", "boxNumber": 1, "incomingGrade": "5", "scratched": false},
				{"dogId": 8, "dogName": "OTHER DOG", "boxNumber": 2, "incomingGrade": "5", "scratched": false}
			]}
		]`))
	})
	mux.HandleFunc("/meeting/2/races", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testDeps(t *testing.T, srv *httptest.Server) Deps {
	return Deps{
		DB:             newTestDB(t),
		Client:         topaz.New(srv.URL, "secret"),
		Log:            zap.NewNop(),
		Jurisdictions:  []string{"VIC", "NSW"},
		RaceFetchDelay: 0,
		Timezone:       "UTC",
	}
}

func TestComputeIsolatesBranchFailures(t *testing.T) {
	d := testDeps(t, fakeTopaz(t))

	res, err := Compute(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), res.Date)

	// The failed jurisdiction resolves to an empty list, not an error.
	require.Contains(t, res.Data, "NSW")
	assert.Empty(t, res.Data["NSW"])

	vic := res.Data["VIC"]
	require.Len(t, vic, 2)

	good := vic[0]
	if good.MeetingID != 1 {
		good = vic[1]
	}
	require.Equal(t, int64(1), good.MeetingID)
	assert.Empty(t, good.Error)
	require.Len(t, good.Races, 1)

	bad := vic[0]
	if bad.MeetingID != 2 {
		bad = vic[1]
	}
	require.Equal(t, int64(2), bad.MeetingID)
	assert.Equal(t, "Failed to load races", bad.Error)
	assert.Empty(t, bad.Races)
}

func TestComputeEnrichesAndRanks(t *testing.T) {
	d := testDeps(t, fakeTopaz(t))

	res, err := Compute(context.Background(), d)
	require.NoError(t, err)

	var runners int
	for _, meetings := range res.Data {
		for _, m := range meetings {
			for _, race := range m.Races {
				for _, r := range race.Runners {
					runners++
					// RankRace always leaves the presentation fields set.
					assert.NotNil(t, r.Rankings)
					assert.NotNil(t, r.Summary)
					// An empty fact store means every stat stays absent.
					assert.Nil(t, r.WinRate)
					assert.Equal(t, "Unknown", r.RunningStyle)
				}
			}
		}
	}
	assert.Equal(t, 2, runners)
}

func TestDailyPersistsDocument(t *testing.T) {
	d := testDeps(t, fakeTopaz(t))

	res, err := Daily(context.Background(), d)
	require.NoError(t, err)

	stored, err := db.LatestDailyRaces(context.Background(), d.DB)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.Date, stored.RaceDate)
	assert.NotEmpty(t, stored.Data)

	// Recomputing the same day replaces the stored document in place.
	_, err = Daily(context.Background(), d)
	require.NoError(t, err)
	var count int
	require.NoError(t, d.DB.NewRaw(`SELECT COUNT(*) FROM daily_races`).Scan(context.Background(), &count))
	assert.Equal(t, 1, count)
}
