package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyRaces stores the fully enriched meeting/race/runner document for one
// racing date, keyed by date so recomputing a day replaces the previous blob.
type DailyRaces struct {
	bun.BaseModel `bun:"table:daily_races,alias:dr"`

	RaceDate   string    `bun:"race_date,pk,type:date" json:"raceDate"`
	Data       []byte    `bun:"data,notnull" json:"data"`
	ComputedAt time.Time `bun:"computed_at,notnull" json:"computedAt"`
}
