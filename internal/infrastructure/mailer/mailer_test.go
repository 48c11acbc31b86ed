package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"jobboard/internal/config"
)

func TestSend_NotConfigured(t *testing.T) {
	m := NewSMTP(config.SMTPConfig{}, nil)
	err := m.Send(context.Background(), Message{To: "a@b.co", Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuild(t *testing.T) {
	m := NewSMTP(config.SMTPConfig{FromName: "Jobboard", FromEmail: "noreply@jobboard.local"}, nil)

	msg, err := m.build(PasswordReset("jane@example.com", "http://localhost/api/v1/password/reset/abc"))
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, rcpts)
	assert.Equal(t, []string{"Jobboard password recovery"}, msg.GetGenHeader(mail.HeaderSubject))

	_, err = m.build(Message{To: "not an address"})
	assert.Error(t, err)
}

func TestPasswordReset_ContainsLink(t *testing.T) {
	msg := PasswordReset("x@y.z", "https://jobs.example/api/v1/password/reset/tok")
	assert.Contains(t, msg.Body, "https://jobs.example/api/v1/password/reset/tok")
}
