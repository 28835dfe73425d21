package topaz

// Meeting is one track's race day as returned by the meetings endpoint.
type Meeting struct {
	MeetingID   int64  `json:"meetingId"`
	TrackCode   string `json:"trackCode"`
	TrackName   string `json:"trackName"`
	State       string `json:"owningAuthorityCode,omitempty"`
	MeetingDate string `json:"meetingDate,omitempty"`
}

// Race is one race within a meeting, with its nested runners.
type Race struct {
	RaceID     int64    `json:"raceId"`
	RaceNumber int      `json:"raceNumber"`
	Name       string   `json:"name,omitempty"`
	Distance   int      `json:"distance"`
	RaceStart  string   `json:"raceStart,omitempty"`
	Runners    []Runner `json:"runs"`
}

// Runner is a live race entry for one dog, before enrichment. Pointer fields
// are nullable in the feed.
type Runner struct {
	DogID            int64    `json:"dogId"`
	DogName          string   `json:"dogName"`
	TrainerID        *int64   `json:"trainerId"`
	TrainerName      *string  `json:"trainerName,omitempty"`
	BoxNumber        *int     `json:"boxNumber"`
	RugNumber        *int     `json:"rugNumber,omitempty"`
	IncomingGrade    *string  `json:"incomingGrade"`
	Last5            *string  `json:"last5,omitempty"`
	Scratched        bool     `json:"scratched"`
	IsLateScratching bool     `json:"isLateScratching,omitempty"`
	WeightInKg       *float64 `json:"weightInKg,omitempty"`
	StartPrice       *float64 `json:"startPrice,omitempty"`
	BestTime         *string  `json:"bestTime,omitempty"`
}
