package user

import (
	"unicode/utf8"

	"jobboard/internal/apperror"
	"jobboard/internal/pkg/validate"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

var validator = validate.New(validate.Messages{
	"Name":           "Please enter your name",
	"Email.required": "Please enter your email",
	"Email.email":    "Please enter a valid email address",
	"Role":           "Please select correct role",
}, map[string][]string{
	"role": {RoleUser, RoleEmployer, RoleAdmin},
})

func (u User) Validate() error {
	return validator.Struct(u)
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(plain string) error {
	errs := &apperror.ValidationErrors{}
	switch {
	case plain == "":
		errs.Add("Please enter your password")
	case utf8.RuneCountInString(plain) < MinPasswordLength:
		errs.Add("Your password must be longer than 8 characters")
	case len(plain) > MaxPasswordBytes:
		errs.Add("Your password cannot exceed 72 characters")
	}
	return errs.OrNil()
}
