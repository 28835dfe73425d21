package stats

import (
	"github.com/padraicbc/dogapi/db"
	"github.com/padraicbc/dogapi/topaz"
)

// Document is the full enriched view for one racing day, keyed by
// jurisdiction code.
type Document map[string][]Meeting

// Meeting is a topaz meeting with its enriched races. Error is set when the
// race fetch for this meeting failed; the meeting still appears with an
// empty race list so one bad branch never hides its siblings.
type Meeting struct {
	topaz.Meeting
	Races []Race `json:"races"`
	Error string `json:"error,omitempty"`
}

// Race shadows the raw runner list with enriched runners.
type Race struct {
	topaz.Race
	Runners []Runner `json:"runs"`
}

// Runner is a live race entry merged with every derived statistic. Pointer
// fields are nil when the fact store holds no data for the key; nil is the
// "no data" sentinel and is never collapsed into zero.
type Runner struct {
	topaz.Runner

	TotalStarts            *int                   `json:"totalStarts"`
	WinRate                *float64               `json:"winRate"`
	PlaceRate              *float64               `json:"placeRate"`
	TrainerStrikeRate      *float64               `json:"trainerStrikeRate"`
	BoxWinPercentage       *float64               `json:"boxWinPercentage"`
	AvgTimeLast5TrackDist  *float64               `json:"avgTimeLast5TrackDist"`
	AvgSplitLast5TrackDist *float64               `json:"avgSplitLast5TrackDist"`
	ClassChange            *string                `json:"classChange"`
	IsDownGrade            bool                   `json:"isDownGrade"`
	RunningStyle           string                 `json:"runningStyle"`
	LeadAtFirstBendRate    *float64               `json:"leadAtFirstBendRate"`
	AvgFirstSplitPosition  *float64               `json:"avgFirstSplitPosition"`
	WinRateAtTrack         *float64               `json:"winRateAtTrack"`
	PlaceRateAtTrack       *float64               `json:"placeRateAtTrack"`
	StartsAtTrack          *int                   `json:"startsAtTrack"`
	WinRateAtDistance      *float64               `json:"winRateAtDistance"`
	PlaceRateAtDistance    *float64               `json:"placeRateAtDistance"`
	StartsAtDistance       *int                   `json:"startsAtDistance"`
	BoxPreference          string                 `json:"boxPreference"`
	BoxPreferenceData      []db.BoxPerformanceRow `json:"boxPreferenceData,omitempty"`
	CareerPerformanceScore *float64               `json:"careerPerformanceScore"`
	Last5PerformanceScore  *float64               `json:"last5PerformanceScore"`
	CareerPrizeMoney       *float64               `json:"careerPrizeMoney"`
	ConsistencyScore       *float64               `json:"consistencyScore"`
	Last5EarlySpeedRating  *float64               `json:"last5EarlySpeedRating"`
	WeightedAvgPlace       *float64               `json:"weightedAvgPlace"`
	RecentImprovement      *float64               `json:"recentImprovement"`

	// Presentation layer output, filled by RankRace.
	Rankings        map[string]int `json:"rankings"`
	Summary         []Tag          `json:"summary"`
	AvgTdVsField    *float64       `json:"avgTdVsField,omitempty"`
	AvgSplitVsField *float64       `json:"avgSplitVsField,omitempty"`

	// Client-side override carried through the re-rank endpoint.
	IsManuallyScratched bool `json:"isManuallyScratched,omitempty"`
}

// MeetingRaces pairs a fetched meeting with its races, or with the error
// marker for a failed race fetch.
type MeetingRaces struct {
	Meeting topaz.Meeting
	Races   []topaz.Race
	Error   string
}

// EnrichAll builds the enriched document for a whole day: every runner in
// every race gets a freshly constructed Runner carrying the aggregate fields
// for its keys. Read-only over the lookups.
func (l *Lookups) EnrichAll(byJurisdiction map[string][]MeetingRaces) Document {
	doc := Document{}
	for jur, meetings := range byJurisdiction {
		enriched := make([]Meeting, 0, len(meetings))
		for _, mr := range meetings {
			m := Meeting{Meeting: mr.Meeting, Error: mr.Error, Races: make([]Race, 0, len(mr.Races))}
			for _, race := range mr.Races {
				r := Race{Race: race, Runners: make([]Runner, 0, len(race.Runners))}
				for _, entry := range race.Runners {
					r.Runners = append(r.Runners, l.EnrichRunner(entry, mr.Meeting.TrackCode, race.Distance))
				}
				m.Races = append(m.Races, r)
			}
			enriched = append(enriched, m)
		}
		doc[jur] = enriched
	}
	return doc
}

// EnrichRunner merges every aggregate family onto one race entry. trackCode
// and distance come from the enclosing meeting and race.
func (l *Lookups) EnrichRunner(entry topaz.Runner, trackCode string, distance int) Runner {
	r := Runner{Runner: entry}

	if dog, ok := l.Dogs[entry.DogID]; ok {
		r.TotalStarts = intPtr(dog.TotalStarts)
		r.WinRate = f64Ptr(rate(dog.Wins, dog.TotalStarts))
		r.PlaceRate = f64Ptr(rate(dog.Places, dog.TotalStarts))
	}

	if entry.TrainerID != nil {
		if tr, ok := l.Trainers[*entry.TrainerID]; ok {
			r.TrainerStrikeRate = f64Ptr(rate(tr.Wins, tr.TotalStarts))
		}
	}

	if entry.BoxNumber != nil {
		if box, ok := l.BoxBias[BoxKey{trackCode, *entry.BoxNumber}]; ok {
			r.BoxWinPercentage = f64Ptr(rate(box.Wins, box.TotalStarts))
		}
	}

	if recent, ok := l.Recent[TrackDistKey{entry.DogID, trackCode, distance}]; ok {
		r.AvgTimeLast5TrackDist = recent.AvgTimeLast5
		r.AvgSplitLast5TrackDist = recent.AvgSplitLast5
	}

	var lastGrade *string
	if g, ok := l.LastGrades[entry.DogID]; ok {
		lastGrade = &g
	}
	r.ClassChange = classChange(lastGrade, entry.IncomingGrade)
	r.IsDownGrade = ClassDrop(lastGrade, entry.IncomingGrade)

	if style, ok := l.Styles[entry.DogID]; ok {
		r.RunningStyle = RunningStyle(&style.AvgFirstSplitPosL5, &style.LeadAtFirstBendRate)
		r.LeadAtFirstBendRate = f64Ptr(style.LeadAtFirstBendRate)
		r.AvgFirstSplitPosition = f64Ptr(style.AvgFirstSplitPos)
	} else {
		r.RunningStyle = RunningStyle(nil, nil)
	}

	if track, ok := l.Tracks[TrackKey{entry.DogID, trackCode}]; ok {
		r.WinRateAtTrack = f64Ptr(track.WinRate)
		r.PlaceRateAtTrack = f64Ptr(track.PlaceRate)
		r.StartsAtTrack = intPtr(track.StartsAtTrack)
	}

	if dist, ok := l.Distances[DistKey{entry.DogID, distance}]; ok {
		r.WinRateAtDistance = f64Ptr(dist.WinRate)
		r.PlaceRateAtDistance = f64Ptr(dist.PlaceRate)
		r.StartsAtDistance = intPtr(dist.StartsAtDistance)
	}

	groups := l.BoxGroups[entry.DogID]
	r.BoxPreference = BoxPreference(entry.BoxNumber, groups)
	r.BoxPreferenceData = groups

	if perf, ok := l.Performance[entry.DogID]; ok {
		r.CareerPerformanceScore = f64Ptr(perf.CareerScore)
		r.Last5PerformanceScore = f64Ptr(perf.Last5Score)
	}
	if money, ok := l.PrizeMoney[entry.DogID]; ok {
		r.CareerPrizeMoney = f64Ptr(money)
	}
	if score, ok := l.Consistency[entry.DogID]; ok {
		r.ConsistencyScore = f64Ptr(score)
	}
	if early, ok := l.EarlySpeed[entry.DogID]; ok {
		r.Last5EarlySpeedRating = f64Ptr(early)
	}
	if form, ok := l.Form[entry.DogID]; ok {
		r.WeightedAvgPlace = f64Ptr(form.WeightedAvgPlace)
		r.RecentImprovement = form.RecentImprovement
	}

	return r
}

func rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }
