package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padraicbc/dogapi/db"
)

func strP(s string) *string   { return &s }
func intP(i int) *int         { return &i }
func f64P(f float64) *float64 { return &f }

func TestGradeValue(t *testing.T) {
	tests := []struct {
		name  string
		grade *string
		want  int
	}{
		{"nil grade", nil, 99},
		{"empty grade", strP(""), 99},
		{"group race", strP("Group 1"), 1},
		{"free for all", strP("Free For All"), 1},
		{"open", strP("Open"), 1},
		{"special event", strP("Special Event"), 1},
		{"grade 1", strP("Grade 1"), 1},
		{"grade 2", strP("Grade 2"), 2},
		{"grade 3", strP("3"), 3},
		{"grade 4", strP("Grade 4"), 4},
		{"grade 5", strP("Grade 5"), 5},
		{"grade 6", strP("Grade 6"), 6},
		{"grade 7", strP("Grade 7"), 6},
		{"maiden", strP("Maiden"), 6},
		{"mixed grade hits first digit branch", strP("Mixed 4/5"), 4},
		{"masters resolves via m", strP("Masters"), 6},
		{"unmatched label", strP("Novice"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeValue(tt.grade))
		})
	}
}

func TestClassDrop(t *testing.T) {
	tests := []struct {
		name    string
		last    *string
		current *string
		want    bool
	}{
		{"dropping into an easier grade", strP("2"), strP("5"), true},
		{"stepping up in class", strP("5"), strP("2"), false},
		{"same ordinal", strP("5"), strP("5"), false},
		{"unknown last grade", nil, strP("2"), false},
		{"unknown current grade", strP("5"), nil, false},
		{"group winner dropping back", strP("Group 1"), strP("Grade 4"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassDrop(tt.last, tt.current))
		})
	}
}

func TestRunningStyle(t *testing.T) {
	tests := []struct {
		name    string
		avgPos  *float64
		lead    *float64
		want    string
	}{
		{"missing position", nil, f64P(0.5), "Unknown"},
		{"missing lead rate", f64P(2.0), nil, "Unknown"},
		{"lead rate boundary inclusive", f64P(3.0), f64P(0.35), "Early"},
		{"avg position boundary inclusive", f64P(1.8), f64P(0.34), "Early"},
		{"mid range", f64P(1.81), f64P(0.2), "Mid"},
		{"mid upper boundary", f64P(4.0), f64P(0.1), "Mid"},
		{"closer", f64P(4.1), f64P(0.0), "Close"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RunningStyle(tt.avgPos, tt.lead))
		})
	}
}

func TestBoxPreference(t *testing.T) {
	groups := []db.BoxPerformanceRow{
		{DogID: 1, BoxGroup: "inside", Starts: 10, WinRate: 0.40},
		{DogID: 1, BoxGroup: "middle", Starts: 8, WinRate: 0.20},
		{DogID: 1, BoxGroup: "outside", Starts: 5, WinRate: 0.10},
	}

	tests := []struct {
		name   string
		box    *int
		groups []db.BoxPerformanceRow
		want   string
	}{
		{"no box", nil, groups, "Unknown"},
		{"box zero", intP(0), groups, "Unknown"},
		{"no data", intP(1), nil, "Unknown"},
		{"drawn in best group", intP(1), groups, "Good"},
		{"middle trails best by 0.20", intP(4), groups, "Poor"},
		{"outside trails best by 0.30", intP(7), groups, "Poor"},
		{
			"no history for current group",
			intP(4),
			[]db.BoxPerformanceRow{{DogID: 1, BoxGroup: "inside", Starts: 4, WinRate: 0.30}},
			"Neutral",
		},
		{
			"small gap to best group",
			intP(4),
			[]db.BoxPerformanceRow{
				{DogID: 1, BoxGroup: "inside", Starts: 4, WinRate: 0.25},
				{DogID: 1, BoxGroup: "middle", Starts: 4, WinRate: 0.20},
			},
			"Neutral",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoxPreference(tt.box, tt.groups))
		})
	}
}

func TestClassChange(t *testing.T) {
	assert.Equal(t, "5 -> 4", *classChange(strP("5"), strP("4")))
	assert.Equal(t, "Debut -> 5", *classChange(nil, strP("5")))
	assert.Nil(t, classChange(strP("5"), nil))
}
