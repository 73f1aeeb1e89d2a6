package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"postershop/internal/domain"
	sessionrepo "postershop/internal/repository/session"
)

const issueAttempts = 5

var errTokenCollision = errors.New("session token collision")

type sessionManager struct {
	repo sessionrepo.Repository
	ttl  time.Duration
	now  func() time.Time
}

func newSessionManager(repo sessionrepo.Repository, ttl time.Duration) *sessionManager {
	return &sessionManager{repo: repo, ttl: ttl, now: time.Now}
}

func (m *sessionManager) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	expiresAt := m.now().Add(m.ttl)
	for i := 0; i < issueAttempts; i++ {
		token, err := randomToken()
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, domain.Session{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errTokenCollision
}

// Validate returns the session's user id. Expired sessions are removed.
func (m *sessionManager) Validate(ctx context.Context, token string) (int64, error) {
	sess, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrUnauthorized
		}
		return 0, err
	}
	if !m.now().Before(sess.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return 0, domain.ErrUnauthorized
	}
	return sess.UserID, nil
}

func (m *sessionManager) Revoke(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

var randomToken = func() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
