package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser     = "user"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// SelfAssignableRoles are the roles registration accepts. Admins are created out of band.
var SelfAssignableRoles = []string{RoleUser, RoleEmployer}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Role      string    `json:"role" validate:"required,role"`
	CreatedAt time.Time `json:"createdAt"`

	PasswordHash        string     `json:"-"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
}

// PublishedJob is the slice of a job shown on its owner's profile.
type PublishedJob struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	PostingDate time.Time `json:"postingDate"`
}

type Profile struct {
	User
	JobsPublished []PublishedJob `json:"jobsPublished"`
}
