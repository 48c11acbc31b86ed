package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	resetTokenBytes = 20
	ResetTokenTTL   = 30 * time.Minute
)

// ResetToken is a freshly issued password-reset credential. Only Hash is persisted; Plain
// goes to the user out of band.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

func NewResetToken(now time.Time) (ResetToken, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, err
	}
	plain := hex.EncodeToString(b)
	return ResetToken{
		Plain:     plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
