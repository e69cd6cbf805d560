package session

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"guardian/internal/kv"
	"guardian/internal/platform/metrics"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/platform/sentinel"
)

// Persistent keys owned by the session store.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
	KeyStudentID    = "student_id"
)

// Keys lists every key a session occupies, in removal order.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData, KeyStudentID}

// KeyValueStore is the persistence the session store needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
	MultiRemove(ctx context.Context, keys []string) error
	Apply(ctx context.Context, b *kv.Batch) error
}

// Store is the single owner of the session keys. Bootstrap, Commit and Clear
// are the only mutators; the presentation layer reads through Current.
type Store struct {
	kv            KeyValueStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
	clearAttempts int

	// writeMu serializes Bootstrap, Commit and Clear end to end.
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   State
	current Session
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClearAttempts sets how many times Clear tries the grouped removal.
func WithClearAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.clearAttempts = n
		}
	}
}

// New constructs a Store in the Unknown state.
func New(store KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:            store,
		logger:        slog.Default(),
		clearAttempts: 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current position in the state machine.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Bootstrap reads the persisted session. It never fails: any read error is
// logged and resolves to an anonymous session.
func (s *Store) Bootstrap(ctx context.Context) Session {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess := s.read(ctx)

	s.mu.Lock()
	s.current = sess
	if IsAuthenticated(sess) {
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
	}
	state := s.state
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveBootstrap(state.String())
	}
	s.logger.DebugContext(ctx, "session bootstrapped", "state", state.String())
	return sess.clone()
}

func (s *Store) read(ctx context.Context) Session {
	token, err := s.kv.Get(ctx, KeyAccessToken)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.storeError(ctx, "get", err, "key", KeyAccessToken)
			return Session{}
		}
		s.removeLeftovers(ctx)
		return Session{}
	}
	if strings.TrimSpace(token) == "" {
		s.removeLeftovers(ctx)
		return Session{}
	}

	sess := Session{AccessToken: token}
	values, err := s.kv.MultiGet(ctx, []string{KeyRefreshToken, KeyUserData, KeyStudentID})
	if err != nil {
		s.storeError(ctx, "multi_get", err)
		return sess
	}
	sess.RefreshToken = values[KeyRefreshToken]
	sess.StudentID = values[KeyStudentID]
	if raw, ok := values[KeyUserData]; ok && raw != "" {
		var user UserProfile
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.WarnContext(ctx, "stored user data is unreadable", "error", err)
		} else if !user.UserType.IsValid() {
			s.logger.WarnContext(ctx, "stored user data has an unknown user type", "user_type", user.UserType.String())
		} else {
			sess.User = &user
		}
	}
	return sess
}

// removeLeftovers deletes session keys that outlived their access token, for
// example after a partially failed clear on a previous run.
func (s *Store) removeLeftovers(ctx context.Context) {
	rest := Keys[1:]
	values, err := s.kv.MultiGet(ctx, rest)
	if err != nil {
		s.storeError(ctx, "multi_get", err)
		return
	}
	if len(values) == 0 {
		return
	}
	if err := s.kv.MultiRemove(ctx, rest); err != nil {
		s.storeError(ctx, "multi_remove", err)
		return
	}
	s.logger.InfoContext(ctx, "removed session keys left without an access token", "count", len(values))
}

// Commit persists a successful login as one grouped write. On failure it
// attempts to roll every key back so a later bootstrap never sees a partial
// session, and the state does not change.
func (s *Store) Commit(ctx context.Context, tokens Tokens, user UserProfile, studentID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.commit(ctx, tokens, user, studentID)
	if s.metrics != nil {
		s.metrics.ObserveCommit(err)
	}
	return err
}

func (s *Store) commit(ctx context.Context, tokens Tokens, user UserProfile, studentID string) error {
	if strings.TrimSpace(tokens.Access) == "" {
		return dErrors.New(dErrors.CodeValidation, "access token required")
	}
	if s.State() == StateAuthenticated {
		return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidState, "session already authenticated")
	}

	userData, err := json.Marshal(user)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode user data")
	}

	b := kv.NewBatch().
		Set(KeyAccessToken, tokens.Access).
		Set(KeyRefreshToken, tokens.Refresh).
		Set(KeyUserData, string(userData))
	if studentID != "" {
		b.Set(KeyStudentID, studentID)
	} else {
		b.Remove(KeyStudentID)
	}

	if err := s.kv.Apply(ctx, b); err != nil {
		s.storeError(ctx, "apply", err)
		if rbErr := s.kv.MultiRemove(ctx, Keys); rbErr != nil {
			s.storeError(ctx, "multi_remove", rbErr, "phase", "rollback")
		}
		return dErrors.Wrap(err, dErrors.CodeStore, "persist session")
	}

	u := user
	s.mu.Lock()
	s.current = Session{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		User:         &u,
		StudentID:    studentID,
	}
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session committed", "user_id", user.ID, "has_student", studentID != "")
	return nil
}

// Clear removes every session key as one grouped removal, retrying up to the
// configured attempts. If the removal keeps failing but the access token is
// confirmed gone, the session is treated as cleared; the leftovers are
// removed by the next bootstrap.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.clear(ctx)
	if s.metrics != nil {
		s.metrics.ObserveClear(err)
	}
	return err
}

func (s *Store) clear(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= s.clearAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		lastErr = s.kv.MultiRemove(ctx, Keys)
		if lastErr == nil {
			break
		}
		s.storeError(ctx, "multi_remove", lastErr, "attempt", attempt)
	}

	if lastErr != nil {
		if _, err := s.kv.Get(ctx, KeyAccessToken); !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(lastErr, dErrors.CodeStore, "clear session")
		}
		s.logger.WarnContext(ctx, "session keys partially cleared; access token removed", "error", lastErr)
	}

	s.mu.Lock()
	s.current = Session{}
	s.state = StateAnonymous
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session cleared")
	return nil
}

func (s *Store) storeError(ctx context.Context, op string, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.IncrementStoreError(op)
	}
	s.logger.ErrorContext(ctx, "session store operation failed", append([]any{"op", op, "error", err}, attrs...)...)
}
