package attendance

import (
	"time"

	"github.com/campusconnect/backend/core"
)

const dayFormat = "2006-01-02"

// Sheet maps student ids to presence for one class on one day.
type Sheet struct {
	Day   string          `json:"day"`
	Marks map[string]bool `json:"marks" validate:"required"`
}

// Summary is a student's attendance standing in one class.
type Summary struct {
	Present        int  `json:"present"`
	Total          int  `json:"total"`
	Pct            int  `json:"pct"`
	BelowThreshold bool `json:"below_threshold"`
}

func sheetsPath(teacherID string) string {
	return core.JoinPath("attendance", teacherID)
}

func sheetPath(teacherID string, day time.Time) string {
	return core.JoinPath("attendance", teacherID, day.Format(dayFormat))
}
