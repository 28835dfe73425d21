package stats

import (
	"strings"

	"github.com/padraicbc/dogapi/db"
)

// GradeValue maps a grade label to a numeric ordinal where lower is a harder
// class. The substring checks run in a fixed order and the first match wins;
// mixed labels like "Mixed 4/5" deliberately resolve to the earliest branch,
// matching how grades have always been parsed here. Unknown labels score 5,
// a missing grade 99.
func GradeValue(grade *string) int {
	if grade == nil || *grade == "" {
		return 99
	}
	g := strings.ToLower(*grade)
	switch {
	case strings.Contains(g, "group"), strings.Contains(g, "free"),
		strings.Contains(g, "open"), strings.Contains(g, "special"):
		return 1
	case strings.Contains(g, "1"):
		return 1
	case strings.Contains(g, "2"):
		return 2
	case strings.Contains(g, "3"):
		return 3
	case strings.Contains(g, "4"):
		return 4
	case strings.Contains(g, "5"):
		return 5
	case strings.Contains(g, "6"), strings.Contains(g, "7"),
		strings.Contains(g, "maiden"), strings.Contains(g, "m"):
		return 6
	default:
		return 5
	}
}

// ClassDrop reports whether a dog is dropping into an easier grade: its last
// grade maps to a strictly lower ordinal than the grade it races in today.
// Unknown on either side is never a drop.
func ClassDrop(lastGrade, currentGrade *string) bool {
	if lastGrade == nil || *lastGrade == "" || currentGrade == nil || *currentGrade == "" {
		return false
	}
	return GradeValue(lastGrade) < GradeValue(currentGrade)
}

// classChange renders "last -> incoming", or "Debut -> incoming" when the dog
// has no prior grade. Nil when the incoming grade itself is unknown.
func classChange(lastGrade, incomingGrade *string) *string {
	if incomingGrade == nil || *incomingGrade == "" {
		return nil
	}
	change := "Debut -> " + *incomingGrade
	if lastGrade != nil && *lastGrade != "" {
		change = *lastGrade + " -> " + *incomingGrade
	}
	return &change
}

// RunningStyle classifies a dog's racing pattern from its last-5 average
// first-split position and its lead-at-first-bend rate. The Early check runs
// first and both of its boundaries are inclusive.
func RunningStyle(avgFirstSplitPosL5, leadRate *float64) string {
	if avgFirstSplitPosL5 == nil || leadRate == nil {
		return "Unknown"
	}
	if *leadRate >= 0.35 || *avgFirstSplitPosL5 <= 1.8 {
		return "Early"
	}
	if *avgFirstSplitPosL5 <= 4.0 {
		return "Mid"
	}
	return "Close"
}

func boxGroupFor(boxNumber int) string {
	switch {
	case boxNumber <= 2:
		return "inside"
	case boxNumber <= 5:
		return "middle"
	default:
		return "outside"
	}
}

// BoxPreference rates today's draw against the dog's box-group history:
// "Good" when drawn in its best-performing group, "Poor" when the best group
// out-wins the current one by more than ten points, "Neutral" otherwise or
// when the current group has no history, "Unknown" without a box or any data.
func BoxPreference(boxNumber *int, groups []db.BoxPerformanceRow) string {
	if boxNumber == nil || *boxNumber == 0 || len(groups) == 0 {
		return "Unknown"
	}
	currentGroup := boxGroupFor(*boxNumber)

	best := groups[0]
	for _, g := range groups[1:] {
		if g.WinRate > best.WinRate {
			best = g
		}
	}
	if best.BoxGroup == currentGroup {
		return "Good"
	}

	var current *db.BoxPerformanceRow
	for i := range groups {
		if groups[i].BoxGroup == currentGroup {
			current = &groups[i]
			break
		}
	}
	if current == nil {
		return "Neutral"
	}
	if best.WinRate-current.WinRate > 0.10 {
		return "Poor"
	}
	return "Neutral"
}
