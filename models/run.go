package models

import "github.com/uptrace/bun"

// Run is one historical race start by one dog, as delivered by the Topaz bulk
// endpoints. It is the fact table every statistic is derived from. The primary
// key is the upstream run id; re-ingesting a run replaces the row in place.
//
// Only a handful of columns feed the aggregate queries (place, scratched,
// result_time, first_split_time, first_split_position, grades, box_number,
// career_prize_money and the natural keys); the rest are descriptive fields
// kept verbatim from the feed.
type Run struct {
	bun.BaseModel `bun:"table:runs,alias:r"`

	RunID             int64    `bun:"run_id,pk" json:"runId"`
	TrackCode         *string  `bun:"track_code" json:"trackCode"`
	TrackName         *string  `bun:"track_name" json:"trackName"`
	DistanceInMetres  *int     `bun:"distance_in_metres" json:"distanceInMetres"`
	RaceID            *int64   `bun:"race_id" json:"raceId"`
	MeetingDate       *string  `bun:"meeting_date,type:date" json:"meetingDate"`
	RaceTypeCode      *string  `bun:"race_type_code" json:"raceTypeCode"`
	RaceType          *string  `bun:"race_type" json:"raceType"`
	DogID             int64    `bun:"dog_id,notnull" json:"dogId"`
	DogName           *string  `bun:"dog_name" json:"dogName"`
	WeightInKg        *float64 `bun:"weight_in_kg" json:"weightInKg"`
	IncomingGrade     *string  `bun:"incoming_grade" json:"incomingGrade"`
	OutgoingGrade     *string  `bun:"outgoing_grade" json:"outgoingGrade"`
	GradedTo          *string  `bun:"graded_to" json:"gradedTo"`
	Rating            *int     `bun:"rating" json:"rating"`
	RaceNumber        *int     `bun:"race_number" json:"raceNumber"`
	BoxNumber         *int     `bun:"box_number" json:"boxNumber"`
	BoxDrawnOrder     *int     `bun:"box_drawn_order" json:"boxDrawnOrder"`
	RugNumber         *int     `bun:"rug_number" json:"rugNumber"`
	StartPrice        *float64 `bun:"start_price" json:"startPrice"`
	Place             *int     `bun:"place" json:"place"`
	AbnormalResult    *string  `bun:"abnormal_result" json:"abnormalResult"`
	Scratched         *bool    `bun:"scratched" json:"scratched"`
	PrizeMoney        *float64 `bun:"prize_money" json:"prizeMoney"`
	ResultTime        *float64 `bun:"result_time" json:"resultTime"`
	ResultMargin      *float64 `bun:"result_margin" json:"resultMargin"`
	ResultMarginLen   *string  `bun:"result_margin_lengths" json:"resultMarginLengths"`
	StartPaceCode     *string  `bun:"start_pace_code" json:"startPaceCode"`
	JumpCode          *string  `bun:"jump_code" json:"jumpCode"`
	RunLineCode       *string  `bun:"run_line_code" json:"runLineCode"`
	ColourCode        *string  `bun:"colour_code" json:"colourCode"`
	Sex               *string  `bun:"sex" json:"sex"`
	Comment           *string  `bun:"comment" json:"comment"`
	OwnerID           *int64   `bun:"owner_id" json:"ownerId"`
	TrainerID         *int64   `bun:"trainer_id" json:"trainerId"`
	OwnerName         *string  `bun:"owner_name" json:"ownerName"`
	OwnerState        *string  `bun:"owner_state" json:"ownerState"`
	TrainerName       *string  `bun:"trainer_name" json:"trainerName"`
	TrainerSuburb     *string  `bun:"trainer_suburb" json:"trainerSuburb"`
	TrainerState      *string  `bun:"trainer_state" json:"trainerState"`
	TrainerPostCode   *string  `bun:"trainer_post_code" json:"trainerPostCode"`
	TrainerDistrict   *string  `bun:"trainer_district" json:"trainerDistrict"`
	IsQuad            *bool    `bun:"is_quad" json:"isQuad"`
	IsBestBet         *bool    `bun:"is_best_bet" json:"isBestBet"`
	DamID             *int64   `bun:"dam_id" json:"damId"`
	DamName           *string  `bun:"dam_name" json:"damName"`
	SireID            *int64   `bun:"sire_id" json:"sireId"`
	SireName          *string  `bun:"sire_name" json:"sireName"`
	DateWhelped       *string  `bun:"date_whelped" json:"dateWhelped"`
	IsLateScratching  *bool    `bun:"is_late_scratching" json:"isLateScratching"`
	Last5             *string  `bun:"last5" json:"last5"`
	FirstSecond       *string  `bun:"first_second" json:"firstSecond"`
	PIR               *string  `bun:"pir" json:"pir"`
	CareerPrizeMoney  *float64 `bun:"career_prize_money" json:"careerPrizeMoney"`
	AverageSpeed      *float64 `bun:"average_speed" json:"averageSpeed"`
	Unplaced          *string  `bun:"unplaced" json:"unplaced"`
	UnplacedCode      *string  `bun:"unplaced_code" json:"unplacedCode"`
	TotalFormCount    *int     `bun:"total_form_count" json:"totalFormCount"`
	BestTime          *string  `bun:"best_time" json:"bestTime"`
	FirstSplitPos     *int     `bun:"first_split_position" json:"firstSplitPosition"`
	FirstSplitTime    *float64 `bun:"first_split_time" json:"firstSplitTime"`
	SecondSplitTime   *float64 `bun:"second_split_time" json:"secondSplitTime"`
	BestTimeTrackDist *float64 `bun:"best_time_track_distance" json:"bestTimeTrackDistance"`
}
