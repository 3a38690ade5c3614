package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/yukikurage/project-management-api/internal/utils"
)

const oneTimeTokenBytes = 20

// OneTimeToken is a single-use token for email verification or password
// reset. Only Hash and ExpiresAt are persisted; Plain is sent to the user.
type OneTimeToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// IssueOneTimeToken generates a random token valid for the configured
// one-time lifetime.
func (s *TokenService) IssueOneTimeToken() (OneTimeToken, error) {
	plain, err := utils.RandomHex(oneTimeTokenBytes)
	if err != nil {
		return OneTimeToken{}, fmt.Errorf("failed to generate one-time token: %w", err)
	}

	return OneTimeToken{
		Plain:     plain,
		Hash:      HashOneTimeToken(plain),
		ExpiresAt: s.now().UTC().Add(s.cfg.OneTimeTTL),
	}, nil
}

// VerifyOneTimeToken reports whether plain hashes to storedHash and the
// stored expiry is still in the future.
func (s *TokenService) VerifyOneTimeToken(plain string, storedHash *string, storedExpiry *time.Time) bool {
	if plain == "" || storedHash == nil || storedExpiry == nil {
		return false
	}
	if !s.now().Before(*storedExpiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashOneTimeToken(plain)), []byte(*storedHash)) == 1
}

// HashOneTimeToken is the deterministic lookup hash stored for one-time
// tokens: hex-encoded SHA-256.
func HashOneTimeToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
