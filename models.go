package agriconnect

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the profile role used to select dashboard routing
type Role = string

const (
	// RoleFarmer sells produce through the marketplace
	RoleFarmer Role = "farmer"
	// RoleBuyer sources produce through the marketplace
	RoleBuyer Role = "buyer"
)

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleFarmer, RoleBuyer:
		return true
	default:
		return false
	}
}

// DashboardPathFor maps a role to its dashboard route. Anything that is not
// a farmer lands on the buyer dashboard.
func DashboardPathFor(r Role) string {
	if r == RoleFarmer {
		return "/farmer-dashboard"
	}
	return "/buyer-dashboard"
}

// AuthenticatedUser is the identity record issued by the provider alongside
// a Session. It lives in process memory only.
type AuthenticatedUser struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the credential bundle issued by the identity provider. It is
// owned by the Store and replaced wholesale on every auth state event.
type Session struct {
	AccessToken  string             `json:"access_token,omitempty"`
	RefreshToken string             `json:"refresh_token,omitempty"`
	TokenType    string             `json:"token_type,omitempty"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	User         *AuthenticatedUser `json:"user,omitempty"`
}

// Expired reports whether the session's access token is past its expiry.
// Sessions without an expiry never expire locally.
func (s *Session) Expired() bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*s.ExpiresAt)
}

// Profile is the marketplace profile record keyed by the auth user id. It is
// fetched separately from the identity provider's own user record.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pro"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email" json:"email,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	Role          Role       `bun:"user_role,notnull" json:"user_role,omitempty"`
	County        string     `bun:"county" json:"county,omitempty"`
	SubCounty     string     `bun:"sub_county" json:"sub_county,omitempty"`
	FarmerType    string     `bun:"farmer_type" json:"farmer_type,omitempty"`
	BusinessName  string     `bun:"business_name" json:"business_name,omitempty"`
	BusinessType  string     `bun:"business_type" json:"business_type,omitempty"`
	PhoneNumber   string     `bun:"phone_number" json:"phone_number,omitempty"`
	MpesaNumber   string     `bun:"mpesa_number" json:"mpesa_number,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Credentials is what SignUp and SignInWithPassword hand back on success.
// A signup that still needs email verification carries a user but no session.
type Credentials struct {
	User    *AuthenticatedUser `json:"user,omitempty"`
	Session *Session           `json:"session,omitempty"`
}

// RequiresVerification reports whether the account was created but cannot be
// used until the provider confirms it out of band.
func (c *Credentials) RequiresVerification() bool {
	return c != nil && c.User != nil && c.Session == nil
}

// SessionState is the reactive read the page layer consumes. Loading is an
// init-only flag: true strictly before the first resolution of either the
// bootstrap session check or the first auth event.
type SessionState struct {
	User    *AuthenticatedUser
	Profile *Profile
	Session *Session
	Loading bool
}

// LoggedIn reports whether a user is present. A nil profile with a present
// user is a valid transient state and does not mean logged out.
func (s SessionState) LoggedIn() bool {
	return s.User != nil
}
