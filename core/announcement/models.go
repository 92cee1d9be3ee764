package announcement

import (
	"errors"
	"time"

	"github.com/campusconnect/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("announcement not found")
)

type Announcement struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	PostedAt  time.Time `json:"postedAt"`
}

// NewAnnouncement contains information needed to post an Announcement.
type NewAnnouncement struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	return core.Validate.Struct(na)
}

func announcementsPath(teacherID string) string {
	return core.JoinPath("announcements", teacherID)
}

func announcementPath(teacherID, id string) string {
	return core.JoinPath("announcements", teacherID, id)
}
