package auth

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/hazyrose/inkwell/internal/store"
)

const DefaultSessionTTL = 24 * time.Hour

func generateToken() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("could not generate token: %w", err)
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes), nil
}

// CreateSession mints an opaque token bound to the user and persists it with
// the configured TTL.
func (s *Service) CreateSession(ctx context.Context, userID int) (*store.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := &store.Session{
		Token:  token,
		UserID: userID,
		Expiry: time.Now().Add(s.ttl),
	}

	if err := s.store.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// DestroySession invalidates the token. Destroying an unknown or already
// destroyed token succeeds. CurrentUser checks the session row before any
// cached principal, so the logout takes effect immediately.
func (s *Service) DestroySession(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// DeleteExpiredSessions reaps rows past their expiry. GetSession already
// treats those as absent so this is housekeeping, not correctness.
func (s *Service) DeleteExpiredSessions(ctx context.Context) error {
	return s.store.DeleteExpiredSessions(ctx)
}
