package enroll

import (
	"errors"
	"time"

	"github.com/campusconnect/backend/core"
)

var (
	// errors
	ErrCodeConflict    = errors.New("this class code is already in use by another class")
	ErrUnknownCode     = errors.New("unknown class code")
	ErrRequestNotFound = errors.New("join request not found")
)

// StatusPending is the only non-terminal request status; requests are removed
// on approval or denial, never updated in place.
const StatusPending = "pending"

// CodeOwner is the reverse mapping stored at classCodes/<code>. A code string
// maps to at most one teacher at a time; publishCode's write discipline is
// the only thing enforcing that.
type CodeOwner struct {
	TeacherID string `json:"teacherId"`
}

// ClassRequest is a student's unconfirmed intent to join a class, keyed under
// the target teacher at classRequests/<teacherID>/<studentID>.
type ClassRequest struct {
	ID          string    `json:"id"` // = student user id
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	CollegeID   string    `json:"collegeId"`
	Status      string    `json:"status"`
	ClassCode   string    `json:"classCode"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// JoinRequest carries the profile draft a student submits with a class code.
type JoinRequest struct {
	StudentID string `json:"-"`
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required"`
	CollegeID string `json:"college_id" validate:"required"`
	ClassCode string `json:"class_code" validate:"required,classcode"`
	PhotoURL  string `json:"photo_url" validate:"omitempty,url"`
	Bio       string `json:"bio"`
}

func (jr *JoinRequest) Validate() error {
	jr.Email = core.CleanString(jr.Email, true /* lower */)
	jr.FullName = core.CleanString(jr.FullName)
	jr.CollegeID = core.CleanString(jr.CollegeID)
	jr.ClassCode = NormalizeCode(jr.ClassCode)
	return core.Validate.Struct(jr)
}

// document paths

func classCodePath(code string) string {
	return core.JoinPath("classCodes", code)
}

func teacherCodePath(teacherID string) string {
	return core.JoinPath("teacherClassCodes", teacherID)
}

func requestsPath(teacherID string) string {
	return core.JoinPath("classRequests", teacherID)
}

func requestPath(teacherID, studentID string) string {
	return core.JoinPath("classRequests", teacherID, studentID)
}

func rosterPath(teacherID string) string {
	return core.JoinPath("classes", teacherID)
}

func rosterEntryPath(teacherID, studentID string) string {
	return core.JoinPath("classes", teacherID, studentID)
}

func studentClassesPath(studentID string) string {
	return core.JoinPath("studentClasses", studentID)
}

func studentClassEntryPath(studentID, teacherID string) string {
	return core.JoinPath("studentClasses", studentID, teacherID)
}
