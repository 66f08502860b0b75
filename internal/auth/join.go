package auth

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingPlayer = errors.New("missing player key")
	ErrBadSecret     = errors.New("join secret rejected")
)

// JoinChecker guards the match socket with an optional shared secret.
type JoinChecker struct {
	hash []byte
}

// NewJoinChecker accepts a bcrypt hash. An empty hash admits everyone.
func NewJoinChecker(hash string) (*JoinChecker, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &JoinChecker{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &JoinChecker{hash: []byte(hash)}, nil
}

func (j *JoinChecker) Open() bool { return len(j.hash) == 0 }

func (j *JoinChecker) Check(secret string) error {
	if j.Open() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(j.hash, []byte(secret)); err != nil {
		return ErrBadSecret
	}
	return nil
}

// HashSecret produces a value suitable for server.join_secret_hash.
func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authorize checks the request secret and returns the player key it asks to
// control. The key comes from the "player" query param or the player_id cookie.
func (j *JoinChecker) Authorize(r *http.Request) (string, error) {
	if err := j.Check(r.URL.Query().Get("secret")); err != nil {
		return "", err
	}
	return readPlayerKey(r)
}

func readPlayerKey(r *http.Request) (string, error) {
	if key := strings.TrimSpace(r.URL.Query().Get("player")); key != "" {
		return key, nil
	}
	c, err := r.Cookie("player_id")
	if err != nil || c.Value == "" {
		return "", ErrMissingPlayer
	}
	return c.Value, nil
}

// ReadUserID returns the profile id from the user_id cookie or userID query.
func ReadUserID(r *http.Request) string {
	if c, err := r.Cookie("user_id"); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("userID")
}
