package local

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/agriconnect/agriconnect"
)

// Config holds the local provider settings.
type Config struct {
	// SigningKey signs the HS256 access tokens.
	SigningKey []byte

	// TokenTTL is the access token lifetime. Default: 1 hour.
	TokenTTL time.Duration

	// Issuer is the iss claim on minted tokens. Default: "agriconnect".
	Issuer string
}

func (c Config) tokenTTL() time.Duration {
	if c.TokenTTL > 0 {
		return c.TokenTTL
	}
	return time.Hour
}

func (c Config) issuer() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	return "agriconnect"
}

// Provider implements the identity and profile boundaries on local tables.
type Provider struct {
	config   Config
	accounts Accounts
	profiles Profiles
	events   *agriconnect.Broadcaster

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

// New creates a local provider on the given database. Call EnsureSchema
// before the first operation.
func New(db *bun.DB, cfg Config, opts ...ProviderOption) (*Provider, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("local provider requires a signing key", errors.CategoryBadInput)
	}

	p := &Provider{
		config:   cfg,
		accounts: NewAccountsRepository(db),
		profiles: NewProfilesRepository(db),
		events:   agriconnect.NewBroadcaster(),
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

// GetCurrentSession returns the held session. An expired session is cleared
// and reported as signed out; local tokens are not refreshable.
func (p *Provider) GetCurrentSession(ctx context.Context) (*agriconnect.Session, error) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	if session.Expired() {
		p.setSession(nil)
		p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
		return nil, nil
	}

	return session, nil
}

// SignUp creates the account and its profile row in one go, then signs the
// user straight in. Local accounts never require email verification.
func (p *Provider) SignUp(ctx context.Context, email, password string, seed agriconnect.ProfileSeed) (*agriconnect.Credentials, error) {
	if _, err := p.accounts.GetByIdentifier(ctx, email); err == nil {
		return nil, errors.New("an account with this email already exists", errors.CategoryConflict).
			WithTextCode("EMAIL_TAKEN")
	} else if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "account lookup failed")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unusable password")
	}

	id, err := hashid.NewUUID(email)
	if err != nil {
		id = uuid.New()
	}

	account := &Account{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
	}

	if _, err := p.accounts.Create(ctx, account); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "account create failed")
	}

	profile := &agriconnect.Profile{
		ID:           id,
		Email:        seed.Email,
		FullName:     seed.FullName,
		Role:         seed.Role,
		County:       seed.County,
		SubCounty:    seed.SubCounty,
		FarmerType:   seed.FarmerType,
		BusinessName: seed.BusinessName,
		BusinessType: seed.BusinessType,
		PhoneNumber:  seed.PhoneNumber,
		MpesaNumber:  seed.MpesaNumber,
	}

	if _, err := p.profiles.Create(ctx, profile); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile create failed")
	}

	session, err := p.mintSession(account)
	if err != nil {
		return nil, err
	}

	p.setSession(session)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn, Session: session})

	return &agriconnect.Credentials{User: session.User, Session: session}, nil
}

// SignInWithPassword verifies the password against the stored hash
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*agriconnect.Credentials, error) {
	account, err := p.accounts.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, agriconnect.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "account lookup failed")
	}

	if err := comparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, agriconnect.ErrInvalidCredentials
	}

	session, err := p.mintSession(account)
	if err != nil {
		return nil, err
	}

	p.setSession(session)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn, Session: session})

	return &agriconnect.Credentials{User: session.User, Session: session}, nil
}

// SignOut drops the local session. There is nothing to revoke server side.
func (p *Provider) SignOut(ctx context.Context) error {
	p.setSession(nil)
	p.events.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
	return nil
}

// FetchProfileByID reads the profile row keyed by the account id
func (p *Provider) FetchProfileByID(ctx context.Context, id string) (*agriconnect.Profile, error) {
	profile, err := p.profiles.GetByIdentifier(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, agriconnect.ErrProfileNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile lookup failed")
	}

	return profile, nil
}

// UpdateProfileFields applies the given columns through a read-modify-write
func (p *Provider) UpdateProfileFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	profile, err := p.FetchProfileByID(ctx, id)
	if err != nil {
		return err
	}

	applyProfileFields(profile, fields)
	now := time.Now()
	profile.UpdatedAt = &now

	if _, err := p.profiles.Update(ctx, profile, repository.UpdateByID(id)); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "profile update failed")
	}

	return nil
}

func (p *Provider) mintSession(account *Account) (*agriconnect.Session, error) {
	now := time.Now()
	expiresAt := now.Add(p.config.tokenTTL())

	claims := jwt.RegisteredClaims{
		Issuer:    p.config.issuer(),
		Subject:   account.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(p.config.SigningKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign access token")
	}

	return &agriconnect.Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   &expiresAt,
		User: &agriconnect.AuthenticatedUser{
			ID:    account.ID.String(),
			Email: account.Email,
		},
	}, nil
}

func (p *Provider) setSession(session *agriconnect.Session) {
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
}

func applyProfileFields(profile *agriconnect.Profile, fields map[string]any) {
	for key, raw := range fields {
		value, ok := raw.(string)
		if !ok {
			continue
		}

		switch key {
		case "full_name":
			profile.FullName = value
		case "user_role":
			profile.Role = agriconnect.Role(value)
		case "county":
			profile.County = value
		case "sub_county":
			profile.SubCounty = value
		case "farmer_type":
			profile.FarmerType = value
		case "business_name":
			profile.BusinessName = value
		case "business_type":
			profile.BusinessType = value
		case "phone_number":
			profile.PhoneNumber = value
		case "mpesa_number":
			profile.MpesaNumber = value
		case "email":
			profile.Email = value
		}
	}
}
