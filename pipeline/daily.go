// Package pipeline runs the daily compute: fetch today's meetings and races,
// merge the fact-store aggregates onto every runner, rank each race and store
// the finished document.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/dogapi/db"
	"github.com/padraicbc/dogapi/stats"
	"github.com/padraicbc/dogapi/topaz"
)

// Deps carries everything one compute run needs.
type Deps struct {
	DB             *bun.DB
	Client         *topaz.Client
	Log            *zap.Logger
	Jurisdictions  []string
	RaceFetchDelay time.Duration
	Timezone       string
}

// Result is one finished compute: the racing date it covers and the enriched,
// ranked document.
type Result struct {
	Date     string         `json:"date"`
	Data     stats.Document `json:"data"`
	Computed time.Time      `json:"computedAt"`
}

// Compute fetches and enriches today's races without persisting anything.
// Upstream failures never abort the run: a jurisdiction that fails yields no
// meetings, a meeting whose races fail carries an error marker. Only fact
// store failures are fatal.
func Compute(ctx context.Context, d Deps) (*Result, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", d.Timezone, err)
	}
	today := time.Now().In(loc).Format("2006-01-02")
	d.Log.Info("computing daily races", zap.String("date", today))

	byJur := fetchMeetings(ctx, d, today)

	total := 0
	for _, meetings := range byJur {
		total += len(meetings)
	}
	d.Log.Info("fetched meetings", zap.Int("meetings", total))

	fetchRaces(ctx, d, byJur)

	runCount, err := db.CountRuns(ctx, d.DB)
	if err != nil {
		return nil, err
	}
	d.Log.Info("computing statistics", zap.Int("storedRuns", runCount))

	started := time.Now()
	lookups, err := stats.LoadLookups(ctx, d.DB)
	if err != nil {
		return nil, err
	}
	d.Log.Info("computed statistics", zap.Duration("elapsed", time.Since(started)))

	doc := lookups.EnrichAll(byJur)

	runners := 0
	for _, meetings := range doc {
		for i := range meetings {
			for j := range meetings[i].Races {
				stats.RankRace(&meetings[i].Races[j])
				runners += len(meetings[i].Races[j].Runners)
			}
		}
	}
	d.Log.Info("enriched runners", zap.Int("runners", runners))

	return &Result{Date: today, Data: doc, Computed: time.Now().UTC()}, nil
}

// Daily runs Compute and stores the document for its date, replacing any
// earlier computation for the same day.
func Daily(ctx context.Context, d Deps) (*Result, error) {
	res, err := Compute(ctx, d)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(res.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding daily document: %w", err)
	}
	if err := db.SaveDailyRaces(ctx, d.DB, res.Date, data); err != nil {
		return nil, err
	}
	d.Log.Info("saved daily races", zap.String("date", res.Date))
	return res, nil
}

// fetchMeetings fans out one request per jurisdiction. Each branch catches
// its own failure and resolves to an empty list.
func fetchMeetings(ctx context.Context, d Deps, today string) map[string][]stats.MeetingRaces {
	var mu sync.Mutex
	var wg sync.WaitGroup
	byJur := make(map[string][]stats.MeetingRaces, len(d.Jurisdictions))

	for _, jur := range d.Jurisdictions {
		wg.Add(1)
		go func(jur string) {
			defer wg.Done()
			meetings, err := d.Client.Meetings(ctx, today, today, jur)
			if err != nil {
				d.Log.Error("fetching meetings failed", zap.String("jurisdiction", jur), zap.Error(err))
				meetings = nil
			}
			wrapped := make([]stats.MeetingRaces, 0, len(meetings))
			for _, m := range meetings {
				wrapped = append(wrapped, stats.MeetingRaces{Meeting: m})
			}
			mu.Lock()
			byJur[jur] = wrapped
			mu.Unlock()
		}(jur)
	}
	wg.Wait()
	return byJur
}

// fetchRaces fans out one request per meeting and writes the races (or the
// error marker) back into the tree. Each branch pauses briefly after its
// call as a politeness delay toward the upstream rate limit.
func fetchRaces(ctx context.Context, d Deps, byJur map[string][]stats.MeetingRaces) {
	var wg sync.WaitGroup
	for jur := range byJur {
		meetings := byJur[jur]
		for i := range meetings {
			wg.Add(1)
			go func(mr *stats.MeetingRaces) {
				defer wg.Done()
				races, err := d.Client.RacesForMeeting(ctx, mr.Meeting.MeetingID)
				time.Sleep(d.RaceFetchDelay)
				if err != nil {
					d.Log.Error("fetching races failed",
						zap.Int64("meetingId", mr.Meeting.MeetingID),
						zap.String("trackCode", mr.Meeting.TrackCode),
						zap.Error(err))
					mr.Error = "Failed to load races"
					return
				}
				mr.Races = races
			}(&meetings[i])
		}
	}
	wg.Wait()
}
