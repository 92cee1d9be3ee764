package user

import (
	"errors"
	"time"

	"github.com/campusconnect/backend/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var (
	// errors
	ErrNotFound = errors.New("user profile not found")
)

// User is a profile stored in the document store under users/<role>/<id>.
// The id comes from the identity provider; it is never generated here.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CollegeID string    `json:"collegeId,omitempty"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// ProfilePath is the document path of a profile for a given role and user id.
func ProfilePath(role, id string) string {
	return core.JoinPath("users", role, id)
}

// UpdateProfile defines what information a profile owner may modify.
type UpdateProfile struct {
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate() error {
	up.FullName = core.CleanString(up.FullName)
	up.Bio = core.CleanString(up.Bio)
	up.PhotoURL = core.CleanString(up.PhotoURL)
	return core.Validate.Struct(up)
}

func (up *UpdateProfile) IsEmpty() bool {
	return up.FullName == "" && up.Bio == "" && up.PhotoURL == ""
}
