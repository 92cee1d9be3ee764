package assignment

import (
	"errors"
	"time"

	"github.com/campusconnect/backend/core"
)

// Submission modes
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Submission statuses; a missing record means "pending".
const (
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

var (
	// errors
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrOfflineSubmission  = errors.New("this assignment is collected offline")
	ErrUploadFailed       = errors.New("file upload failed")
	ErrStaleFileReference = errors.New("stored file no longer exists in blob storage")
)

type Assignment struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	Title     string    `json:"title"`
	Class     string    `json:"class"`
	Mode      string    `json:"mode"`
	Deadline  time.Time `json:"deadline"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission is the per-(student, assignment) record created by an upload.
// FilePath is the blob-store key; FileURL the resolvable download location.
type Submission struct {
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	FileName     string    `json:"fileName"`
	FilePath     string    `json:"filePath"`
	FileURL      string    `json:"fileURL"`
	Status       string    `json:"status"`
	Grade        string    `json:"grade,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// NewAssignment contains information needed to create an Assignment.
type NewAssignment struct {
	Title    string    `json:"title" validate:"required"`
	Class    string    `json:"class" validate:"required"`
	Mode     string    `json:"mode" validate:"required,oneof=online offline"`
	Deadline time.Time `json:"deadline" validate:"required"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Class = core.CleanString(na.Class)
	na.Mode = core.CleanString(na.Mode, true /* lower */)
	return core.Validate.Struct(na)
}

// document paths

func assignmentsPath(teacherID string) string {
	return core.JoinPath("assignments", teacherID)
}

func assignmentPath(teacherID, assignmentID string) string {
	return core.JoinPath("assignments", teacherID, assignmentID)
}

func submissionsPath(assignmentID string) string {
	return core.JoinPath("submissions", assignmentID)
}

func submissionPath(assignmentID, studentID string) string {
	return core.JoinPath("submissions", assignmentID, studentID)
}

// submissionBlobPath is the deterministic blob key for an upload.
func submissionBlobPath(studentID, assignmentID, filename string) string {
	return core.JoinPath("submissions", studentID, assignmentID, filename)
}
