package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/agriconnect/agriconnect"
	"github.com/goliatone/go-errors"
)

// Provider implements the identity and profile boundaries against a hosted
// Supabase project: GoTrue for sessions and PostgREST for the profiles table.
// The active session lives in process memory the way a browser client keeps
// it in local storage; auth state transitions are pushed to subscribers.
type Provider struct {
	config Config
	client *http.Client
	events *agriconnect.Broadcaster

	mu      sync.Mutex
	session *agriconnect.Session
}

type ProviderOption func(*Provider)

// WithEventLogger routes dropped-event warnings from the broadcaster
func WithEventLogger(logger agriconnect.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.events.WithLogger(logger)
		}
	}
}

// New creates a Supabase-backed provider. It does not hit the network; the
// first call that needs the project will.
func New(cfg Config, opts ...ProviderOption) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: cfg,
		client: cfg.httpClient(),
		events: agriconnect.NewBroadcaster(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p, nil
}

// OnAuthStateChange registers on the provider's event stream
func (p *Provider) OnAuthStateChange() *agriconnect.AuthSubscription {
	return p.events.Subscribe()
}

// GetCurrentSession returns the held session, refreshing it first when it is
// about to expire. A refresh failure clears the session and signs the user
// out, matching how the hosted client behaves when its refresh token dies.
func (p *Provider) GetCurrentSession(ctx context.Context) (*agriconnect.Session, error) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	if !p.nearExpiry(session) || session.RefreshToken == "" {
		return session, nil
	}

	refreshed, err := p.refresh(ctx, session.RefreshToken)
	if err != nil {
		p.setSession(nil)
		p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
		return nil, errors.Wrap(err, errors.CategoryAuth, "session refresh failed")
	}

	p.setSession(refreshed)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventTokenRefreshed, Session: refreshed})
	return refreshed, nil
}

// SignUp creates the account with the profile seed attached as user metadata.
// The backend materializes the profiles row from it. Projects with email
// confirmation enabled return a user without a session.
func (p *Provider) SignUp(ctx context.Context, email, password string, seed agriconnect.ProfileSeed) (*agriconnect.Credentials, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     seed,
	}

	res, err := p.post(ctx, "/auth/v1/signup", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, decodeAPIError(res)
	}

	var payload authResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode signup response")
	}

	if payload.AccessToken == "" {
		// confirmation pending, account exists but cannot be used yet
		return &agriconnect.Credentials{User: payload.bareUser()}, nil
	}

	session := payload.session()
	p.setSession(session)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn, Session: session})

	return &agriconnect.Credentials{User: session.User, Session: session}, nil
}

// SignInWithPassword exchanges credentials for a session
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*agriconnect.Credentials, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	res, err := p.post(ctx, "/auth/v1/token?grant_type=password", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnauthorized {
		return nil, agriconnect.ErrInvalidCredentials
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, decodeAPIError(res)
	}

	var payload authResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode token response")
	}

	session := payload.session()
	p.setSession(session)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn, Session: session})

	return &agriconnect.Credentials{User: session.User, Session: session}, nil
}

// SignOut revokes the session server side, then clears the local one. A
// failed revocation leaves the local session in place so callers see the
// truthful state.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
		return nil
	}

	res, err := p.post(ctx, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}

	p.setSession(nil)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
	return nil
}

// FetchProfileByID reads the profiles row keyed by the auth user id
func (p *Provider) FetchProfileByID(ctx context.Context, id string) (*agriconnect.Profile, error) {
	endpoint := "/rest/v1/profiles?select=*&limit=1&id=eq." + url.QueryEscape(id)

	req, err := p.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile fetch request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, decodeAPIError(res)
	}

	var rows []agriconnect.Profile
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode profile response")
	}

	if len(rows) == 0 {
		return nil, agriconnect.ErrProfileNotFound
	}

	return &rows[0], nil
}

// UpdateProfileFields patches the given columns on the profiles row
func (p *Provider) UpdateProfileFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	endpoint := "/rest/v1/profiles?id=eq." + url.QueryEscape(id)

	payload, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode profile update")
	}

	req, err := p.newRequest(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	res, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "profile update request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}

	return nil
}

func (p *Provider) refresh(ctx context.Context, refreshToken string) (*agriconnect.Session, error) {
	body := map[string]any{"refresh_token": refreshToken}

	res, err := p.post(ctx, "/auth/v1/token?grant_type=refresh_token", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, decodeAPIError(res)
	}

	var payload authResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode refresh response")
	}

	return payload.session(), nil
}

func (p *Provider) nearExpiry(session *agriconnect.Session) bool {
	if session.ExpiresAt == nil {
		return false
	}
	return time.Now().Add(p.config.refreshLeeway()).After(*session.ExpiresAt)
}

func (p *Provider) setSession(session *agriconnect.Session) {
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
}

func (p *Provider) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := p.newRequest(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "request failed")
	}

	return res, nil
}

// newRequest sets the project headers. The bearer token is the user's access
// token once signed in, the anon key before that.
func (p *Provider) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.config.baseURL()+endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "build request")
	}

	token := p.config.AnonKey
	p.mu.Lock()
	if p.session != nil && p.session.AccessToken != "" {
		token = p.session.AccessToken
	}
	p.mu.Unlock()

	req.Header.Set("apikey", p.config.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// authResponse covers both shapes GoTrue answers with: a full session, or a
// bare user record when email confirmation is still pending.
type authResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         *authUser `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r authResponse) session() *agriconnect.Session {
	session := &agriconnect.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
	}

	switch {
	case r.ExpiresAt > 0:
		at := time.Unix(r.ExpiresAt, 0)
		session.ExpiresAt = &at
	case r.ExpiresIn > 0:
		at := time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
		session.ExpiresAt = &at
	}

	if r.User != nil {
		session.User = &agriconnect.AuthenticatedUser{ID: r.User.ID, Email: r.User.Email}
	}

	return session
}

func (r authResponse) bareUser() *agriconnect.AuthenticatedUser {
	if r.User != nil {
		return &agriconnect.AuthenticatedUser{ID: r.User.ID, Email: r.User.Email}
	}
	if r.ID == "" {
		return nil
	}
	return &agriconnect.AuthenticatedUser{ID: r.ID, Email: r.Email}
}

type apiError struct {
	Err         string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Description, e.Msg, e.Message, e.Err} {
		if s != "" {
			return s
		}
	}
	return ""
}

func decodeAPIError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if msg := apiErr.text(); msg != "" {
			return errors.New(msg, errors.CategoryInternal).
				WithMetadata(map[string]any{"status_code": res.StatusCode})
		}
	}

	return errors.New(
		fmt.Sprintf("unexpected provider response: %d", res.StatusCode),
		errors.CategoryInternal,
	).WithMetadata(map[string]any{"status_code": res.StatusCode})
}
