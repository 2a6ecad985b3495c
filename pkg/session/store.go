// Package session holds the currently authenticated account and its bearer
// token, persisted across restarts through a storage.Storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"
	"venuebook/pkg/storage"
)

const (
	UserKey  = "user"
	TokenKey = "token"
)

var ErrInvalidCredentials = errors.New("session: user and token are both required")

// Session is a snapshot of the store. User is nil exactly when Token is empty.
type Session struct {
	User  *model.Account
	Token string
}

func (s Session) LoggedIn() bool {
	return s.User != nil
}

type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	log     *logger.Logger
	user    *model.Account
	token   string

	subMu       sync.Mutex
	subscribers map[int]func(Session)
	nextSubID   int
}

// New hydrates a store from st. Missing or malformed persisted data yields a
// logged-out store; it never fails.
func New(ctx context.Context, st storage.Storage, log *logger.Logger) *Store {
	s := &Store{
		storage:     st,
		log:         log.Component("session"),
		subscribers: make(map[int]func(Session)),
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	rawUser, hasUser, err := s.storage.Get(ctx, UserKey)
	if errors.Is(err, storage.ErrCorrupt) {
		s.log.Warn("stored session is corrupt, clearing it", "error", err)
		s.clearStorage(ctx)
		return
	}
	if err != nil {
		s.log.Warn("failed to read stored user, starting logged out", "error", err)
		return
	}
	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn("failed to read stored token, starting logged out", "error", err)
		return
	}

	if !hasUser && !hasToken {
		s.log.Debug("no stored session")
		return
	}

	var user model.Account
	if !hasUser || !hasToken || token == "" {
		s.log.Warn("stored session is incomplete, clearing it",
			"has_user", hasUser,
			"has_token", hasToken && token != "",
		)
		s.clearStorage(ctx)
		return
	}
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.Username == "" {
		s.log.Warn("stored user is malformed, clearing session", "error", err)
		s.clearStorage(ctx)
		return
	}

	s.user = &user
	s.token = token
	s.log.Info("session restored", "username", user.Username, "role", user.Role)
}

func (s *Store) clearStorage(ctx context.Context) {
	if err := s.storage.Remove(ctx, UserKey, TokenKey); err != nil {
		s.log.Warn("failed to clear stored session", "error", err)
	}
}

// SetCredentials replaces the session with user and token. Both are written
// to storage before the in-memory state changes.
func (s *Store) SetCredentials(ctx context.Context, user model.Account, token string) error {
	if token == "" || user.Username == "" {
		return ErrInvalidCredentials
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	err = s.storage.Set(ctx, map[string]string{
		UserKey:  string(rawUser),
		TokenKey: token,
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.user = &user
	s.token = token
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("credentials set", "username", user.Username, "role", user.Role)
	s.notify(snapshot)
	return nil
}

// Logout clears the in-memory session even when removing it from storage
// fails; the storage error is still returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasLoggedIn := s.user != nil
	s.user = nil
	s.token = ""
	err := s.storage.Remove(ctx, UserKey, TokenKey)
	s.mu.Unlock()

	if wasLoggedIn {
		s.log.Info("logged out")
	}
	s.notify(Session{})

	if err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// CurrentUser returns a copy of the logged-in account, or nil.
func (s *Store) CurrentUser() *model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Token implements client.TokenSource.
func (s *Store) Token() (string, bool) {
	token := s.CurrentToken()
	return token, token != ""
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	if s.user == nil {
		return Session{}
	}
	u := *s.user
	return Session{User: &u, Token: s.token}
}

// Subscribe registers fn to run after every SetCredentials and Logout. The
// returned func removes it.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(snapshot Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
