// Package stats turns fact-store aggregates into enriched race views: it
// indexes the aggregate query outputs, merges them onto live runners and
// computes the presentation rankings and summary tags.
package stats

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dogapi/db"
)

// BoxKey identifies one starting box at one track.
type BoxKey struct {
	TrackCode string
	BoxNumber int
}

// TrackDistKey identifies a dog at one track+distance combination.
type TrackDistKey struct {
	DogID            int64
	TrackCode        string
	DistanceInMetres int
}

// TrackKey identifies a dog at one track.
type TrackKey struct {
	DogID     int64
	TrackCode string
}

// DistKey identifies a dog at one distance.
type DistKey struct {
	DogID            int64
	DistanceInMetres int
}

// Lookups indexes every aggregate family by its natural key so enrichment is
// a map hit per runner, never a query. A missing key means "no data", which
// stays distinct from zero all the way to the JSON output.
type Lookups struct {
	Dogs        map[int64]db.DogStatRow
	Trainers    map[int64]db.TrainerStatRow
	BoxBias     map[BoxKey]db.BoxBiasRow
	Recent      map[TrackDistKey]db.RecentPerfRow
	LastGrades  map[int64]string
	Performance map[int64]db.PerformanceRatingRow
	PrizeMoney  map[int64]float64
	Consistency map[int64]float64
	EarlySpeed  map[int64]float64
	Styles      map[int64]db.RunningStyleRow
	Tracks      map[TrackKey]db.TrackSpecificRow
	Distances   map[DistKey]db.DistanceSpecificRow
	BoxGroups   map[int64][]db.BoxPerformanceRow
	Form        map[int64]db.WeightedFormRow
}

// LoadLookups recomputes every aggregate family from the fact store and
// indexes the results. Store errors are fatal to the compute run, so the
// first failure aborts.
func LoadLookups(ctx context.Context, bdb *bun.DB) (*Lookups, error) {
	l := &Lookups{
		Dogs:        map[int64]db.DogStatRow{},
		Trainers:    map[int64]db.TrainerStatRow{},
		BoxBias:     map[BoxKey]db.BoxBiasRow{},
		Recent:      map[TrackDistKey]db.RecentPerfRow{},
		LastGrades:  map[int64]string{},
		Performance: map[int64]db.PerformanceRatingRow{},
		PrizeMoney:  map[int64]float64{},
		Consistency: map[int64]float64{},
		EarlySpeed:  map[int64]float64{},
		Styles:      map[int64]db.RunningStyleRow{},
		Tracks:      map[TrackKey]db.TrackSpecificRow{},
		Distances:   map[DistKey]db.DistanceSpecificRow{},
		BoxGroups:   map[int64][]db.BoxPerformanceRow{},
		Form:        map[int64]db.WeightedFormRow{},
	}

	dogs, err := db.DogStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range dogs {
		l.Dogs[r.DogID] = r
	}

	trainers, err := db.TrainerStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range trainers {
		l.Trainers[r.TrainerID] = r
	}

	boxes, err := db.BoxBiasStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range boxes {
		l.BoxBias[BoxKey{r.TrackCode, r.BoxNumber}] = r
	}

	recent, err := db.RecentPerformanceStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range recent {
		l.Recent[TrackDistKey{r.DogID, r.TrackCode, r.DistanceInMetres}] = r
	}

	grades, err := db.LastRaceGrades(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range grades {
		l.LastGrades[r.DogID] = r.LastGrade
	}

	perf, err := db.PerformanceRatings(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range perf {
		l.Performance[r.DogID] = r
	}

	prize, err := db.CareerPrizeMoney(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range prize {
		l.PrizeMoney[r.DogID] = r.CareerPrizeMoney
	}

	consistency, err := db.ConsistencyScores(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range consistency {
		l.Consistency[r.DogID] = r.Score
	}

	early, err := db.EarlySpeedRatings(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range early {
		l.EarlySpeed[r.DogID] = r.Last5Score
	}

	styles, err := db.RunningStyleStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range styles {
		l.Styles[r.DogID] = r
	}

	tracks, err := db.TrackSpecificStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range tracks {
		l.Tracks[TrackKey{r.DogID, r.TrackCode}] = r
	}

	distances, err := db.DistanceSpecificStats(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range distances {
		l.Distances[DistKey{r.DogID, r.DistanceInMetres}] = r
	}

	boxGroups, err := db.BoxPerformanceByDog(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range boxGroups {
		l.BoxGroups[r.DogID] = append(l.BoxGroups[r.DogID], r)
	}

	form, err := db.WeightedRecentForm(ctx, bdb)
	if err != nil {
		return nil, err
	}
	for _, r := range form {
		l.Form[r.DogID] = r
	}

	return l, nil
}
