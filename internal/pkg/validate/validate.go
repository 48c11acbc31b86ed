// Package validate wraps go-playground/validator so struct tag failures come back as
// apperror.ValidationErrors carrying readable, per-field messages.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobboard/internal/apperror"
)

// Messages maps "Field.tag" (or just "Field" as a catch-all) to the message reported for it.
type Messages map[string]string

type Validator struct {
	v        *validator.Validate
	messages Messages
}

// New builds a validator. rules registers custom tags (name → allowed values) as
// membership checks; they work on strings and, with `dive`, on string slices.
func New(messages Messages, rules map[string][]string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, allowed := range rules {
		set := make(map[string]struct{}, len(allowed))
		for _, a := range allowed {
			set[a] = struct{}{}
		}
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, ok := set[fl.Field().String()]
			return ok
		}); err != nil {
			panic(fmt.Sprintf("validate: register %s: %v", tag, err))
		}
	}
	return &Validator{v: v, messages: messages}
}

func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &apperror.ValidationErrors{}
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := x.message(fe)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		out.Add(msg)
	}
	return out.OrNil()
}

func (x *Validator) message(fe validator.FieldError) string {
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if m, ok := x.messages[field+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := x.messages[field]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
