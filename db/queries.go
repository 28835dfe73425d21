package db

import (
	"context"
	"fmt"
	"math"

	"github.com/uptrace/bun"
)

// Every aggregate below recomputes from the full runs table on each call.
// Shared rules: scratched rows (scratched = 1) never count toward anything,
// and zero/negative sentinel values are excluded from time and position
// averages (result_time > 0, first_split_time > 0, box_number > 0) but not
// from plain start/win counting.

// DogStatRow holds career totals for one dog.
type DogStatRow struct {
	DogID       int64 `bun:"dog_id"`
	TotalStarts int   `bun:"total_starts"`
	Wins        int   `bun:"wins"`
	Places      int   `bun:"places"`
}

const dogStatsSQL = `
SELECT dog_id,
  COUNT(*) AS total_starts,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) AS wins,
  SUM(CASE WHEN place IN (1, 2, 3) THEN 1 ELSE 0 END) AS places
FROM runs
WHERE scratched = 0 OR scratched IS NULL
GROUP BY dog_id
`

// DogStats returns per-dog career starts, wins and places.
func DogStats(ctx context.Context, db *bun.DB) ([]DogStatRow, error) {
	var rows []DogStatRow
	if err := db.NewRaw(dogStatsSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("dog stats: %w", err)
	}
	return rows, nil
}

// TrainerStatRow holds totals for one trainer.
type TrainerStatRow struct {
	TrainerID   int64 `bun:"trainer_id"`
	TotalStarts int   `bun:"total_starts"`
	Wins        int   `bun:"wins"`
}

const trainerStatsSQL = `
SELECT trainer_id,
  COUNT(*) AS total_starts,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) AS wins
FROM runs
WHERE (scratched = 0 OR scratched IS NULL) AND trainer_id IS NOT NULL
GROUP BY trainer_id
`

// TrainerStats returns per-trainer starts and wins.
func TrainerStats(ctx context.Context, db *bun.DB) ([]TrainerStatRow, error) {
	var rows []TrainerStatRow
	if err := db.NewRaw(trainerStatsSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("trainer stats: %w", err)
	}
	return rows, nil
}

// BoxBiasRow holds win counts for one starting box at one track.
type BoxBiasRow struct {
	TrackCode   string `bun:"track_code"`
	BoxNumber   int    `bun:"box_number"`
	TotalStarts int    `bun:"total_starts"`
	Wins        int    `bun:"wins"`
}

const boxBiasSQL = `
SELECT track_code, box_number,
  COUNT(*) AS total_starts,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) AS wins
FROM runs
WHERE (scratched = 0 OR scratched IS NULL)
  AND track_code IS NOT NULL
  AND box_number IS NOT NULL
  AND box_number > 0
GROUP BY track_code, box_number
`

// BoxBiasStats returns per track+box start and win counts.
func BoxBiasStats(ctx context.Context, db *bun.DB) ([]BoxBiasRow, error) {
	var rows []BoxBiasRow
	if err := db.NewRaw(boxBiasSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("box bias stats: %w", err)
	}
	return rows, nil
}

// RecentPerfRow holds the most-recent-5 time and split averages for a dog at
// one track+distance. Either average may be absent: a dog can have timed runs
// without recorded splits and vice versa.
type RecentPerfRow struct {
	DogID            int64
	TrackCode        string
	DistanceInMetres int
	AvgTimeLast5     *float64
	RunsAtTrackDist  int
	AvgSplitLast5    *float64
}

type recentTimeRow struct {
	DogID            int64   `bun:"dog_id"`
	TrackCode        string  `bun:"track_code"`
	DistanceInMetres int     `bun:"distance_in_metres"`
	AvgTime          float64 `bun:"avg_time"`
	Runs             int     `bun:"runs"`
}

type recentSplitRow struct {
	DogID            int64   `bun:"dog_id"`
	TrackCode        string  `bun:"track_code"`
	DistanceInMetres int     `bun:"distance_in_metres"`
	AvgSplit         float64 `bun:"avg_split"`
}

const recentTimesSQL = `
WITH ranked_runs AS (
  SELECT dog_id, track_code, distance_in_metres, result_time,
    ROW_NUMBER() OVER (PARTITION BY dog_id, track_code, distance_in_metres ORDER BY meeting_date DESC) AS rn
  FROM runs
  WHERE (scratched = 0 OR scratched IS NULL) AND result_time > 0
)
SELECT dog_id, track_code, distance_in_metres,
  AVG(result_time) AS avg_time,
  COUNT(*) AS runs
FROM ranked_runs
WHERE rn <= 5
GROUP BY dog_id, track_code, distance_in_metres
HAVING COUNT(*) >= 1
`

const recentSplitsSQL = `
WITH ranked_runs AS (
  SELECT dog_id, track_code, distance_in_metres, first_split_time,
    ROW_NUMBER() OVER (PARTITION BY dog_id, track_code, distance_in_metres ORDER BY meeting_date DESC) AS rn
  FROM runs
  WHERE (scratched = 0 OR scratched IS NULL) AND first_split_time > 0
)
SELECT dog_id, track_code, distance_in_metres,
  AVG(first_split_time) AS avg_split
FROM ranked_runs
WHERE rn <= 5
GROUP BY dog_id, track_code, distance_in_metres
HAVING COUNT(*) >= 1
`

type trackDistKey struct {
	dogID int64
	track string
	dist  int
}

// RecentPerformanceStats computes the two most-recent-5 rankings separately
// (one over timed runs, one over runs with a split) and full-outer-merges
// them by dog+track+distance. The two passes stay independent so a run with
// a time but no split still counts toward the time average.
func RecentPerformanceStats(ctx context.Context, db *bun.DB) ([]RecentPerfRow, error) {
	var times []recentTimeRow
	if err := db.NewRaw(recentTimesSQL).Scan(ctx, &times); err != nil {
		return nil, fmt.Errorf("recent times: %w", err)
	}
	var splits []recentSplitRow
	if err := db.NewRaw(recentSplitsSQL).Scan(ctx, &splits); err != nil {
		return nil, fmt.Errorf("recent splits: %w", err)
	}

	merged := make(map[trackDistKey]*RecentPerfRow, len(times))
	order := make([]trackDistKey, 0, len(times))

	for _, t := range times {
		avg := t.AvgTime
		key := trackDistKey{t.DogID, t.TrackCode, t.DistanceInMetres}
		merged[key] = &RecentPerfRow{
			DogID:            t.DogID,
			TrackCode:        t.TrackCode,
			DistanceInMetres: t.DistanceInMetres,
			AvgTimeLast5:     &avg,
			RunsAtTrackDist:  t.Runs,
		}
		order = append(order, key)
	}
	for _, s := range splits {
		avg := s.AvgSplit
		key := trackDistKey{s.DogID, s.TrackCode, s.DistanceInMetres}
		if row, ok := merged[key]; ok {
			row.AvgSplitLast5 = &avg
			continue
		}
		merged[key] = &RecentPerfRow{
			DogID:            s.DogID,
			TrackCode:        s.TrackCode,
			DistanceInMetres: s.DistanceInMetres,
			AvgSplitLast5:    &avg,
		}
		order = append(order, key)
	}

	out := make([]RecentPerfRow, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	return out, nil
}

// LastGradeRow is the outgoing grade of a dog's most recent run.
type LastGradeRow struct {
	DogID     int64  `bun:"dog_id"`
	LastGrade string `bun:"last_grade"`
}

const lastRaceGradesSQL = `
WITH last_run AS (
  SELECT dog_id, outgoing_grade,
    ROW_NUMBER() OVER (PARTITION BY dog_id ORDER BY meeting_date DESC, race_number DESC) AS rn
  FROM runs
  WHERE (scratched = 0 OR scratched IS NULL) AND outgoing_grade IS NOT NULL
)
SELECT dog_id, outgoing_grade AS last_grade
FROM last_run WHERE rn = 1
`

// LastRaceGrades returns each dog's most recent outgoing grade.
func LastRaceGrades(ctx context.Context, db *bun.DB) ([]LastGradeRow, error) {
	var rows []LastGradeRow
	if err := db.NewRaw(lastRaceGradesSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("last race grades: %w", err)
	}
	return rows, nil
}

// PerformanceRatingRow holds benchmark-normalized speed scores. The benchmark
// is the fastest recorded time at each track+distance; each run scores
// benchmark/time*100.
type PerformanceRatingRow struct {
	DogID       int64   `bun:"dog_id"`
	CareerScore float64 `bun:"career_score"`
	Last5Score  float64 `bun:"last5_score"`
}

const performanceRatingsSQL = `
WITH benchmarks AS (
  SELECT track_code, distance_in_metres, MIN(result_time) AS benchmark_time
  FROM runs
  WHERE result_time > 0 AND (scratched = 0 OR scratched IS NULL)
  GROUP BY track_code, distance_in_metres
),
run_scores AS (
  SELECT r.dog_id,
    (b.benchmark_time / r.result_time) * 100 AS score,
    ROW_NUMBER() OVER (PARTITION BY r.dog_id ORDER BY r.meeting_date DESC, r.race_number DESC) AS rn
  FROM runs r
  JOIN benchmarks b ON r.track_code = b.track_code AND r.distance_in_metres = b.distance_in_metres
  WHERE r.result_time > 0 AND (r.scratched = 0 OR r.scratched IS NULL)
)
SELECT dog_id,
  AVG(score) AS career_score,
  AVG(CASE WHEN rn <= 5 THEN score ELSE NULL END) AS last5_score
FROM run_scores
GROUP BY dog_id
`

// PerformanceRatings returns career and most-recent-5 normalized scores.
func PerformanceRatings(ctx context.Context, db *bun.DB) ([]PerformanceRatingRow, error) {
	var rows []PerformanceRatingRow
	if err := db.NewRaw(performanceRatingsSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("performance ratings: %w", err)
	}
	return rows, nil
}

// PrizeMoneyRow is a dog's latest positive career prize money total.
type PrizeMoneyRow struct {
	DogID            int64   `bun:"dog_id"`
	CareerPrizeMoney float64 `bun:"career_prize_money"`
}

const careerPrizeMoneySQL = `
WITH latest_run AS (
  SELECT dog_id, career_prize_money,
    ROW_NUMBER() OVER (PARTITION BY dog_id ORDER BY meeting_date DESC, race_number DESC) AS rn
  FROM runs
  WHERE career_prize_money IS NOT NULL AND career_prize_money > 0
)
SELECT dog_id, career_prize_money FROM latest_run WHERE rn = 1
`

// CareerPrizeMoney returns each dog's latest career prize money figure.
func CareerPrizeMoney(ctx context.Context, db *bun.DB) ([]PrizeMoneyRow, error) {
	var rows []PrizeMoneyRow
	if err := db.NewRaw(careerPrizeMoneySQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("career prize money: %w", err)
	}
	return rows, nil
}

// ConsistencyRow scores how tightly a dog's times cluster:
// (1 - stdev/mean) * 100, over dogs with at least five timed runs.
type ConsistencyRow struct {
	DogID int64
	Score float64
}

type consistencyScanRow struct {
	DogID    int64   `bun:"dog_id"`
	AvgTime  float64 `bun:"avg_time"`
	Variance float64 `bun:"variance"`
}

// The stock sqlite3 driver ships without SQRT/POWER, so SQL stops at the
// sample variance (n-1 denominator) and the square root happens here.
const consistencySQL = `
SELECT dog_id,
  AVG(result_time) AS avg_time,
  (SUM(result_time * result_time) - SUM(result_time) * SUM(result_time) / COUNT(result_time)) / (COUNT(result_time) - 1) AS variance
FROM runs
WHERE result_time > 0 AND (scratched = 0 OR scratched IS NULL)
GROUP BY dog_id
HAVING COUNT(result_time) > 4
`

// ConsistencyScores returns the time-consistency score per qualifying dog.
func ConsistencyScores(ctx context.Context, db *bun.DB) ([]ConsistencyRow, error) {
	var scan []consistencyScanRow
	if err := db.NewRaw(consistencySQL).Scan(ctx, &scan); err != nil {
		return nil, fmt.Errorf("consistency scores: %w", err)
	}
	rows := make([]ConsistencyRow, 0, len(scan))
	for _, s := range scan {
		if s.AvgTime <= 0 {
			continue
		}
		variance := s.Variance
		if variance < 0 {
			// Rounding can push a near-zero variance fractionally negative.
			variance = 0
		}
		rows = append(rows, ConsistencyRow{
			DogID: s.DogID,
			Score: (1 - math.Sqrt(variance)/s.AvgTime) * 100,
		})
	}
	return rows, nil
}

// EarlySpeedRow is the most-recent-5 first-split score, normalized against
// the fastest split recorded at each track.
type EarlySpeedRow struct {
	DogID      int64   `bun:"dog_id"`
	Last5Score float64 `bun:"last5_score"`
}

const earlySpeedSQL = `
WITH split_benchmarks AS (
  SELECT track_code, MIN(first_split_time) AS benchmark_split
  FROM runs
  WHERE first_split_time > 0 AND (scratched = 0 OR scratched IS NULL)
  GROUP BY track_code
),
split_scores AS (
  SELECT r.dog_id,
    (b.benchmark_split / r.first_split_time) * 100 AS score,
    ROW_NUMBER() OVER (PARTITION BY r.dog_id ORDER BY r.meeting_date DESC, r.race_number DESC) AS rn
  FROM runs r
  JOIN split_benchmarks b ON r.track_code = b.track_code
  WHERE r.first_split_time > 0 AND (r.scratched = 0 OR r.scratched IS NULL)
)
SELECT dog_id,
  AVG(CASE WHEN rn <= 5 THEN score ELSE NULL END) AS last5_score
FROM split_scores
GROUP BY dog_id
`

// EarlySpeedRatings returns the last-5 early speed rating per dog.
func EarlySpeedRatings(ctx context.Context, db *bun.DB) ([]EarlySpeedRow, error) {
	var rows []EarlySpeedRow
	if err := db.NewRaw(earlySpeedSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("early speed ratings: %w", err)
	}
	return rows, nil
}

// RunningStyleRow summarizes where a dog sits at the first split over its
// most recent ten positioned runs.
type RunningStyleRow struct {
	DogID               int64   `bun:"dog_id"`
	AvgFirstSplitPos    float64 `bun:"avg_first_split_pos"`
	AvgFirstSplitPosL5  float64 `bun:"avg_first_split_pos_l5"`
	LeadAtFirstBendRate float64 `bun:"lead_at_first_bend_rate"`
}

const runningStyleSQL = `
WITH recent_runs AS (
  SELECT dog_id, first_split_position,
    ROW_NUMBER() OVER (PARTITION BY dog_id ORDER BY meeting_date DESC) AS rn
  FROM runs
  WHERE (scratched = 0 OR scratched IS NULL)
    AND first_split_position IS NOT NULL
    AND first_split_position > 0
)
SELECT dog_id,
  AVG(first_split_position) AS avg_first_split_pos,
  AVG(CASE WHEN rn <= 5 THEN first_split_position END) AS avg_first_split_pos_l5,
  SUM(CASE WHEN first_split_position = 1 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS lead_at_first_bend_rate
FROM recent_runs
WHERE rn <= 10
GROUP BY dog_id
`

// RunningStyleStats returns first-split positioning signals per dog.
func RunningStyleStats(ctx context.Context, db *bun.DB) ([]RunningStyleRow, error) {
	var rows []RunningStyleRow
	if err := db.NewRaw(runningStyleSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("running style stats: %w", err)
	}
	return rows, nil
}

// TrackSpecificRow holds a dog's record at one track (minimum three starts).
type TrackSpecificRow struct {
	DogID         int64   `bun:"dog_id"`
	TrackCode     string  `bun:"track_code"`
	StartsAtTrack int     `bun:"starts_at_track"`
	WinRate       float64 `bun:"win_rate_at_track"`
	PlaceRate     float64 `bun:"place_rate_at_track"`
}

const trackSpecificSQL = `
SELECT dog_id, track_code,
  COUNT(*) AS starts_at_track,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS win_rate_at_track,
  SUM(CASE WHEN place <= 3 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS place_rate_at_track
FROM runs
WHERE (scratched = 0 OR scratched IS NULL)
GROUP BY dog_id, track_code
HAVING COUNT(*) >= 3
`

// TrackSpecificStats returns per dog+track win and place rates.
func TrackSpecificStats(ctx context.Context, db *bun.DB) ([]TrackSpecificRow, error) {
	var rows []TrackSpecificRow
	if err := db.NewRaw(trackSpecificSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("track specific stats: %w", err)
	}
	return rows, nil
}

// DistanceSpecificRow holds a dog's record at one distance (minimum two
// timed starts).
type DistanceSpecificRow struct {
	DogID            int64   `bun:"dog_id"`
	DistanceInMetres int     `bun:"distance_in_metres"`
	StartsAtDistance int     `bun:"starts_at_distance"`
	WinRate          float64 `bun:"win_rate_at_distance"`
	PlaceRate        float64 `bun:"place_rate_at_distance"`
	AvgTime          float64 `bun:"avg_time_at_distance"`
}

const distanceSpecificSQL = `
SELECT dog_id, distance_in_metres,
  COUNT(*) AS starts_at_distance,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS win_rate_at_distance,
  SUM(CASE WHEN place <= 3 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS place_rate_at_distance,
  AVG(result_time) AS avg_time_at_distance
FROM runs
WHERE (scratched = 0 OR scratched IS NULL) AND result_time > 0
GROUP BY dog_id, distance_in_metres
HAVING COUNT(*) >= 2
`

// DistanceSpecificStats returns per dog+distance rates and average time.
func DistanceSpecificStats(ctx context.Context, db *bun.DB) ([]DistanceSpecificRow, error) {
	var rows []DistanceSpecificRow
	if err := db.NewRaw(distanceSpecificSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("distance specific stats: %w", err)
	}
	return rows, nil
}

// BoxPerformanceRow holds a dog's record from one box group. Boxes partition
// into inside {1,2}, middle {3,4,5} and outside {6+}.
type BoxPerformanceRow struct {
	DogID    int64   `bun:"dog_id"`
	BoxGroup string  `bun:"box_group"`
	Starts   int     `bun:"starts"`
	WinRate  float64 `bun:"win_rate"`
	AvgTime  float64 `bun:"avg_time"`
}

const boxPerformanceSQL = `
SELECT dog_id,
  CASE
    WHEN box_number IN (1, 2) THEN 'inside'
    WHEN box_number IN (3, 4, 5) THEN 'middle'
    ELSE 'outside'
  END AS box_group,
  COUNT(*) AS starts,
  SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS win_rate,
  AVG(result_time) AS avg_time
FROM runs
WHERE (scratched = 0 OR scratched IS NULL)
  AND box_number > 0
  AND result_time > 0
GROUP BY dog_id, box_group
HAVING COUNT(*) >= 2
`

// BoxPerformanceByDog returns per dog+box-group performance.
func BoxPerformanceByDog(ctx context.Context, db *bun.DB) ([]BoxPerformanceRow, error) {
	var rows []BoxPerformanceRow
	if err := db.NewRaw(boxPerformanceSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("box performance: %w", err)
	}
	return rows, nil
}

// WeightedFormRow weights the last six finishing places 5,4,3,2,1,0 from
// most recent back, over a fixed divisor of 15. Lower is better.
// RecentImprovement is avg place over runs 1-3 minus runs 4-6; negative
// means the dog is improving. It is nil for dogs with three or fewer runs.
type WeightedFormRow struct {
	DogID             int64    `bun:"dog_id"`
	WeightedAvgPlace  float64  `bun:"weighted_avg_place"`
	RecentImprovement *float64 `bun:"recent_improvement"`
}

const weightedFormSQL = `
WITH ranked_runs AS (
  SELECT dog_id, place,
    ROW_NUMBER() OVER (PARTITION BY dog_id ORDER BY meeting_date DESC) AS rn
  FROM runs
  WHERE (scratched = 0 OR scratched IS NULL) AND result_time > 0
)
SELECT dog_id,
  (SUM(CASE WHEN rn = 1 THEN place * 5
            WHEN rn = 2 THEN place * 4
            WHEN rn = 3 THEN place * 3
            WHEN rn = 4 THEN place * 2
            WHEN rn = 5 THEN place * 1
            ELSE 0 END) * 1.0) / 15 AS weighted_avg_place,
  AVG(CASE WHEN rn <= 3 THEN place END) - AVG(CASE WHEN rn BETWEEN 4 AND 6 THEN place END) AS recent_improvement
FROM ranked_runs
WHERE rn <= 6
GROUP BY dog_id
`

// WeightedRecentForm returns the weighted recent-form figures per dog.
func WeightedRecentForm(ctx context.Context, db *bun.DB) ([]WeightedFormRow, error) {
	var rows []WeightedFormRow
	if err := db.NewRaw(weightedFormSQL).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("weighted recent form: %w", err)
	}
	return rows, nil
}

// CountRuns reports the total number of stored runs.
func CountRuns(ctx context.Context, db *bun.DB) (int, error) {
	var count int
	if err := db.NewRaw(`SELECT COUNT(*) FROM runs`).Scan(ctx, &count); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return count, nil
}
