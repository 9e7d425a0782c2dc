package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

// DefaultSessionDuration is used when SessionStoreOptions.Duration is unset.
const DefaultSessionDuration = 7 * 24 * time.Hour

// Compile-time check.
var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Backend  ports.KeyValueStore
	Duration time.Duration
	// Secret, when non-empty, derives backend keys as HMAC-SHA256(secret, id).
	Secret string
	Clock  TimeProvider
	Logger *slog.Logger
}

// SessionStore persists sessions as JSON records in a key-value backend.
// Expired records are deleted the first time they are read.
type SessionStore struct {
	backend  ports.KeyValueStore
	duration time.Duration
	secret   []byte
	clock    TimeProvider
	logger   *slog.Logger
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	s := &SessionStore{
		backend:  opts.Backend,
		duration: opts.Duration,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if s.duration <= 0 {
		s.duration = DefaultSessionDuration
	}
	if s.clock == nil {
		s.clock = RealTimeProvider{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.Secret != "" {
		s.secret = []byte(opts.Secret)
	}
	return s
}

// Duration returns the lifetime given to new sessions.
func (s *SessionStore) Duration() time.Duration {
	return s.duration
}

// Create persists a new session for user and returns it.
func (s *SessionStore) Create(ctx context.Context, user domainauth.User) (domainauth.Session, error) {
	if user.Email == "" {
		return domainauth.Session{}, errors.New("user email is required")
	}

	sess := domainauth.Session{
		ID:        uuid.NewString(),
		User:      user,
		ExpiresAt: s.clock.Now().Add(s.duration).UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.backend.Set(ctx, s.key(sess.ID), data, s.duration); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Get returns the user for id, or nil when the session is missing, unreadable
// or expired. Backend failures are returned alongside a nil user.
func (s *SessionStore) Get(ctx context.Context, id string) (*domainauth.User, error) {
	if id == "" {
		return nil, nil
	}

	key := s.key(id)
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable session record", "error", err)
		return nil, nil
	}
	if sess.User.Email == "" {
		return nil, nil
	}

	if sess.Expired(s.clock.Now()) {
		if delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "error", delErr)
		}
		return nil, nil
	}

	user := sess.User
	return &user, nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	if len(s.secret) == 0 {
		return id
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
