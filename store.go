package agriconnect

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// Store is the single source of truth for "who is logged in and with what
// profile", reconciled with the external identity provider. It is created at
// application start, bootstrapped once, and closed at shutdown; consumers
// receive it by reference, never through a package-level singleton.
type Store struct {
	provider IdentityProvider
	profiles ProfileStore
	logger   Logger

	mu       sync.RWMutex
	state    SessionState
	started  bool
	closed   bool
	watchers []chan struct{}

	sub  *AuthSubscription
	done chan struct{}
	wg   sync.WaitGroup
}

type StoreOption func(*Store)

func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Store that is not yet listening; call Bootstrap to start.
func New(provider IdentityProvider, profiles ProfileStore, opts ...StoreOption) *Store {
	s := &Store{
		provider: provider,
		profiles: profiles,
		logger:   defLogger{},
		state:    SessionState{Loading: true},
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Snapshot returns a copy of the current session state
func (s *Store) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Watch returns a channel that receives a coalesced signal whenever the
// session state changes. The channel lives for the lifetime of the store and
// is closed by Close.
func (s *Store) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch
	}

	s.watchers = append(s.watchers, ch)
	return ch
}

// Bootstrap performs the one-time startup sequence: it subscribes to the
// provider's auth event stream, requests the current session exactly once,
// applies it, and triggers the initial profile fetch. Loading drops to false
// after this initial resolution regardless of whether the profile fetch
// succeeds; fetch failures are logged, not propagated.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyBootstrapped
	}
	s.started = true
	s.mu.Unlock()

	s.sub = s.provider.OnAuthStateChange()

	s.wg.Add(1)
	go s.consume(s.sub)

	session, err := s.provider.GetCurrentSession(ctx)
	if err != nil {
		s.logger.Error("bootstrap session check failed: %s", err)
		session = nil
	}

	s.apply(session)
	return nil
}

// Close unsubscribes from the provider and tears the store down. In-flight
// profile fetches are not cancelled; their results are dropped on arrival.
// Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	watchers := s.watchers
	s.watchers = nil
	s.mu.Unlock()

	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	close(s.done)

	for _, ch := range watchers {
		close(ch)
	}
}

// SignUp canonicalizes the metadata into a profile seed and delegates to the
// provider. Failures come back as an error value, never a panic; the returned
// credentials may still require external verification before they are usable.
// Store state is untouched here.
func (s *Store) SignUp(ctx context.Context, email, password string, meta Signup) (*Credentials, error) {
	seed := CanonicalSeed(email, meta)

	if seed.MpesaNumber != "" && !PlausibleMobile(seed.MpesaNumber) {
		s.logger.Warn("signup phone %s does not look like a Kenyan mobile", seed.MpesaNumber)
	}

	creds, err := s.provider.SignUp(ctx, email, password, seed)
	if err != nil {
		s.logger.Error("signup failed for %s: %s", email, err)
		return nil, errors.Wrap(err, errors.CategoryAuth, "signup failed")
	}

	return creds, nil
}

// SignIn delegates credential verification to the provider. It does not
// update store state; state is applied only once the provider emits the
// resulting auth event.
func (s *Store) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	creds, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.logger.Error("login failed for %s: %s", email, err)
		return nil, errors.Wrap(err, errors.CategoryAuth, "login failed")
	}

	return creds, nil
}

// SignOut delegates to the provider and fails loudly. State is not cleared
// locally: a provider failure legitimately leaves the store logged in, and
// callers must treat it that way until the signed-out event lands.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "sign out failed")
	}
	return nil
}

// UpdateProfile issues a targeted update against the active user's profile
// row, then re-fetches the full record (read-after-write) and applies it.
// Fails immediately with ErrNoActiveUser when nobody is signed in.
func (s *Store) UpdateProfile(ctx context.Context, fields map[string]any) error {
	s.mu.RLock()
	user := s.state.User
	s.mu.RUnlock()

	if user == nil {
		return ErrNoActiveUser
	}

	if err := s.profiles.UpdateProfileFields(ctx, user.ID, fields); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "profile update rejected")
	}

	s.loadProfile(ctx, user.ID)
	return nil
}

func (s *Store) consume(sub *AuthSubscription) {
	defer s.wg.Done()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			s.logger.Debug("auth state change: %s", ev.Type)
			s.apply(ev.Session)
		case <-s.done:
			return
		}
	}
}

// apply installs the session carried by a provider event (or the bootstrap
// check) as the whole truth: user and session are replaced synchronously,
// loading drops, and the profile fetch for the new user starts in the
// background. A nil session clears the profile immediately.
func (s *Store) apply(session *Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.state.Session = session
	if session != nil {
		s.state.User = session.User
	} else {
		s.state.User = nil
	}

	uid := ""
	if s.state.User != nil {
		uid = s.state.User.ID
	} else {
		s.state.Profile = nil
	}
	s.state.Loading = false
	s.mu.Unlock()

	s.notify()

	if uid != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loadProfile(context.Background(), uid)
		}()
	}
}

// loadProfile fetches the profile for uid and applies it if uid still names
// the active user. Results from fetches issued for a superseded user are
// discarded, so a stale fetch can never overwrite a newer one. Fetch errors
// are logged only; the user stays logged in with a nil profile.
func (s *Store) loadProfile(ctx context.Context, uid string) {
	profile, err := s.profiles.FetchProfileByID(ctx, uid)
	if err != nil {
		s.logger.Error("profile fetch failed for %s: %s", uid, err)
		return
	}

	if profile != nil && !IsValidRole(profile.Role) {
		s.logger.Warn("profile %s carries unknown role %q, treating as buyer", uid, profile.Role)
		profile.Role = RoleBuyer
	}

	s.mu.Lock()
	if s.closed || s.state.User == nil || s.state.User.ID != uid {
		s.mu.Unlock()
		return
	}
	s.state.Profile = profile
	s.mu.Unlock()

	s.notify()
}

// notify signals every watcher without blocking. The lock is held across the
// sends so a concurrent Close cannot close a channel mid-send.
func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
