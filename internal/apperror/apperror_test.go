package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindConflict:       http.StatusBadRequest,
		KindNotFound:       http.StatusNotFound,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindUpstream:       http.StatusInternalServerError,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x", nil).StatusCode(), kind.String())
	}
}

func TestWithStatusOverrides(t *testing.T) {
	e := WithStatus(KindUpstream, http.StatusBadGateway, "geocoder down", nil)
	assert.Equal(t, http.StatusBadGateway, e.StatusCode())
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	e := Upstream("Resume upload failed", cause)
	wrapped := fmt.Errorf("apply: %w", e)

	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, Is(wrapped, KindUpstream))
	assert.Equal(t, "Resume upload failed: disk full", e.Error())
	assert.NotEmpty(t, e.Stack())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	require.NoError(t, errs.OrNil())

	errs.Add("Please enter Job title")
	errs.Add("Please enter Job address")

	err := errs.OrNil()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "Please enter Job title, Please enter Job address")
}

func TestCastErrorKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &CastError{Field: "id", Value: "nope"})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.False(t, Is(nil, KindNotFound))
}
