package stats

import "sort"

// Tag is one summary badge for a runner. Class is the dashboard CSS class.
type Tag struct {
	Text     string `json:"text"`
	Class    string `json:"class"`
	Priority int    `json:"priority"`
}

// The fixed list of statistics that earn top-3 badges within a race.
var rankedStats = []struct {
	key          string
	higherBetter bool
}{
	{"winRateAtTrack", true},
	{"placeRateAtTrack", true},
	{"winRateAtDistance", true},
	{"placeRateAtDistance", true},
	{"leadAtFirstBendRate", true},
	{"winRate", true},
	{"placeRate", true},
	{"trainerStrikeRate", true},
	{"boxWinPercentage", true},
	{"avgTimeLast5TrackDist", false},
	{"avgSplitLast5TrackDist", false},
}

func statValue(r *Runner, key string) *float64 {
	switch key {
	case "winRateAtTrack":
		return r.WinRateAtTrack
	case "placeRateAtTrack":
		return r.PlaceRateAtTrack
	case "winRateAtDistance":
		return r.WinRateAtDistance
	case "placeRateAtDistance":
		return r.PlaceRateAtDistance
	case "leadAtFirstBendRate":
		return r.LeadAtFirstBendRate
	case "winRate":
		return r.WinRate
	case "placeRate":
		return r.PlaceRate
	case "trainerStrikeRate":
		return r.TrainerStrikeRate
	case "boxWinPercentage":
		return r.BoxWinPercentage
	case "avgTimeLast5TrackDist":
		return r.AvgTimeLast5TrackDist
	case "avgSplitLast5TrackDist":
		return r.AvgSplitLast5TrackDist
	}
	return nil
}

func (r *Runner) active() bool {
	return !r.Scratched && !r.IsManuallyScratched && r.BoxNumber != nil && *r.BoxNumber > 0
}

// RankRace computes the within-race presentation layer for an enriched race:
// field averages, vs-field deltas, top-3 badges for each ranked statistic and
// the prioritized summary tags. It is a pure function of the enriched fields,
// so re-running it after a manual scratch toggle yields a consistent view.
func RankRace(race *Race) {
	var active []*Runner
	for i := range race.Runners {
		r := &race.Runners[i]
		r.Rankings = map[string]int{}
		r.Summary = []Tag{}
		r.AvgTdVsField = nil
		r.AvgSplitVsField = nil
		if r.active() {
			active = append(active, r)
		}
	}

	fieldAvgTime := fieldAverage(active, func(r *Runner) *float64 { return r.AvgTimeLast5TrackDist })
	fieldAvgSplit := fieldAverage(active, func(r *Runner) *float64 { return r.AvgSplitLast5TrackDist })

	for _, stat := range rankedStats {
		var eligible []*Runner
		for _, r := range active {
			if v := statValue(r, stat.key); v != nil && *v > 0 {
				eligible = append(eligible, r)
			}
		}
		key, higher := stat.key, stat.higherBetter
		sort.SliceStable(eligible, func(i, j int) bool {
			a, b := *statValue(eligible[i], key), *statValue(eligible[j], key)
			if higher {
				return a > b
			}
			return a < b
		})
		for i, r := range eligible {
			if i >= 3 {
				break
			}
			r.Rankings[key] = i + 1
		}
	}

	for _, r := range active {
		if r.AvgTimeLast5TrackDist != nil && fieldAvgTime != nil {
			delta := *r.AvgTimeLast5TrackDist - *fieldAvgTime
			r.AvgTdVsField = &delta
		}
		if r.AvgSplitLast5TrackDist != nil && fieldAvgSplit != nil {
			delta := *r.AvgSplitLast5TrackDist - *fieldAvgSplit
			r.AvgSplitVsField = &delta
		}
		r.Summary = summaryTags(r)
	}
}

func fieldAverage(active []*Runner, value func(*Runner) *float64) *float64 {
	var total float64
	var count int
	for _, r := range active {
		if v := value(r); v != nil && *v > 0 {
			total += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// summaryTags applies the tag rules in fixed priority order. Missing stats
// count as zero here (and missing vs-field deltas as +99); that asymmetry
// with the nil-preserving enrichment is deliberate, a tag should only ever
// fire on positive evidence.
func summaryTags(r *Runner) []Tag {
	trkWin := orZero(r.WinRateAtTrack) * 100
	distWin := orZero(r.WinRateAtDistance) * 100
	overallWin := orZero(r.WinRate) * 100
	trkPlace := orZero(r.PlaceRateAtTrack) * 100
	overallPlace := orZero(r.PlaceRate) * 100
	leadPct := orZero(r.LeadAtFirstBendRate) * 100
	trainerSR := orZero(r.TrainerStrikeRate) * 100
	vsField := orDefault(r.AvgTdVsField, 99)
	vsSplit := orDefault(r.AvgSplitVsField, 99)

	var tags []Tag

	if r.IsDownGrade {
		tags = append(tags, Tag{"CLS DROP", "tag-cls-drop", 12})
	}

	// Win tier: first match only.
	switch {
	case trkWin >= 30 && orZeroInt(r.StartsAtTrack) >= 3:
		tags = append(tags, Tag{"WIN TRK", "tag-win-trk", 10})
	case distWin >= 30 && orZeroInt(r.StartsAtDistance) >= 3:
		tags = append(tags, Tag{"WIN DIST", "tag-win-dist", 9})
	case overallWin >= 25:
		tags = append(tags, Tag{"WIN", "tag-win-strong", 8})
	}

	if trainerSR > 25 {
		tags = append(tags, Tag{"TRAINER", "tag-trainer", 11})
	}

	if vsField <= -0.15 {
		tags = append(tags, Tag{"FAST", "tag-fast", 7})
	}
	if leadPct >= 40 || vsSplit <= -0.1 {
		tags = append(tags, Tag{"STARTER", "tag-starter", 6})
	}

	// Place tier only when the runner isn't already well tagged.
	if len(tags) < 2 {
		switch {
		case trkPlace >= 60 && orZeroInt(r.StartsAtTrack) >= 3:
			tags = append(tags, Tag{"PLACE TRK", "tag-place-trk", 5})
		case overallPlace >= 60:
			tags = append(tags, Tag{"PLACE", "tag-place-dist", 4})
		}
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Priority > tags[j].Priority })
	if len(tags) > 3 {
		tags = tags[:3]
	}
	return tags
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orZeroInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
