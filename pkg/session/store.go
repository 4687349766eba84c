package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aussiebroadwan/quill/pkg/storage"
)

// Store is the process-wide session. Reads come from memory; every mutation
// is mirrored to durable storage before the method returns.
type Store struct {
	durable storage.Storage
	scoped  storage.Storage
	logger  *slog.Logger
	sweep   []string

	mu         sync.RWMutex
	identity   string
	credential string
	avatar     string
	loggedOut  bool
	registry   []string // session-scoped durable keys removed on logout
}

// Open builds the Store from durable storage, using empty values for missing
// keys, and reads the logout flag from scoped storage.
func Open(ctx context.Context, durable, scoped storage.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		durable: durable,
		scoped:  scoped,
		logger:  slog.Default(),
		sweep:   slices.Clone(DefaultSweepSubstrings),
	}
	for _, k := range defaultRegistry() {
		s.registerLocked(k)
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.identity, err = s.load(ctx, KeyUserName); err != nil {
		return nil, err
	}
	if s.credential, err = s.load(ctx, KeyToken); err != nil {
		return nil, err
	}
	if s.avatar, err = s.load(ctx, KeyAvatar); err != nil {
		return nil, err
	}

	flag, err := storage.GetOrDefault(ctx, scoped, KeyLoggedOut, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", KeyLoggedOut, err)
	}
	s.loggedOut = flag != ""

	return s, nil
}

// Credential returns the current bearer credential, possibly empty.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *Store) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Store) Avatar() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatar
}

// IsLoggedIn reports whether a credential is held and no logout happened
// since the last login.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != "" && !s.loggedOut
}

// SetCredential stores token as is; its format is never checked.
func (s *Store) SetCredential(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = token
	return s.mirror(ctx, KeyToken, token)
}

func (s *Store) SetIdentity(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = name
	return s.mirror(ctx, KeyUserName, name)
}

func (s *Store) SetAvatar(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatar = ref
	return s.mirror(ctx, KeyAvatar, ref)
}

// Login sets identity, credential and avatar, then clears the logout flag.
func (s *Store) Login(ctx context.Context, identity, credential, avatar string) error {
	if err := s.SetIdentity(ctx, identity); err != nil {
		return err
	}
	if err := s.SetCredential(ctx, credential); err != nil {
		return err
	}
	if err := s.SetAvatar(ctx, avatar); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedOut = false
	if err := s.scoped.Remove(ctx, KeyLoggedOut); err != nil {
		return fmt.Errorf("failed to clear %s: %w", KeyLoggedOut, err)
	}
	return nil
}

// Logout resets the session. Every cleanup step runs even if an earlier one
// fails; the failures are joined into the returned error. The in-memory
// state is logged out regardless.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = ""
	s.credential = ""
	s.avatar = ""
	s.loggedOut = true

	var errs []error
	for _, key := range s.registry {
		if err := s.durable.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", key, err))
		}
	}

	if swept, err := s.sweepLocked(ctx); err != nil {
		errs = append(errs, err)
	} else if len(swept) > 0 {
		s.logger.Debug("session keys swept on logout", "keys", swept)
	}

	if err := s.scoped.Set(ctx, KeyLoggedOut, "true"); err != nil {
		errs = append(errs, fmt.Errorf("failed to set %s: %w", KeyLoggedOut, err))
	}

	return errors.Join(errs...)
}

// RefreshCredential reads the refresh credential straight from durable
// storage. A missing or unreadable key is reported as "".
func (s *Store) RefreshCredential(ctx context.Context) (string, error) {
	return s.load(ctx, KeyRefreshToken)
}

// ClearRefreshCredential removes the refresh credential, so a later renewal
// cannot run on a token issued to an earlier login.
func (s *Store) ClearRefreshCredential(ctx context.Context) error {
	if err := s.durable.Remove(ctx, KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to remove %s: %w", KeyRefreshToken, err)
	}
	return nil
}

func (s *Store) SetRefreshCredential(ctx context.Context, token string) error {
	if err := s.durable.Set(ctx, KeyRefreshToken, token); err != nil {
		return fmt.Errorf("failed to persist %s: %w", KeyRefreshToken, err)
	}
	return nil
}

// ApplyRenewal records the result of a refresh exchange: the credential is
// replaced (identity and avatar are untouched) and the new refresh
// credential is written durably.
func (s *Store) ApplyRenewal(ctx context.Context, credential, refresh string) error {
	if err := s.SetCredential(ctx, credential); err != nil {
		return err
	}
	return s.SetRefreshCredential(ctx, refresh)
}

// Register adds key to the set of durable keys removed on logout.
func (s *Store) Register(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(key)
}

// SessionKeys returns the registered session-scoped keys.
func (s *Store) SessionKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.registry)
}

func (s *Store) registerLocked(key string) {
	if key == "" || slices.Contains(s.registry, key) {
		return
	}
	s.registry = append(s.registry, key)
}

// load reads a durable key. A sealed value that no longer opens (changed
// passphrase or salt) is treated as missing so the user lands logged out.
func (s *Store) load(ctx context.Context, key string) (string, error) {
	v, err := storage.GetOrDefault(ctx, s.durable, key, "")
	if errors.Is(err, storage.ErrSealedValue) {
		s.logger.Warn("stored session value cannot be opened, ignoring it", "key", key)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) mirror(ctx context.Context, key, value string) error {
	if err := s.durable.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) sweepLocked(ctx context.Context) ([]string, error) {
	if len(s.sweep) == 0 {
		return nil, nil
	}

	keys, err := s.durable.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys for sweep: %w", err)
	}

	var swept []string
	var errs []error
	for _, key := range keys {
		if !containsAny(key, s.sweep) {
			continue
		}
		if err := s.durable.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to sweep %s: %w", key, err))
			continue
		}
		swept = append(swept, key)
	}
	return swept, errors.Join(errs...)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
