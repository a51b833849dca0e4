package agriconnect

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityProvider is the boundary to the managed auth backend. Sessions are
// issued and verified remotely; we only consume the call/response contract.
type IdentityProvider interface {
	// GetCurrentSession returns the session the provider currently holds for
	// this client, or nil when nobody is signed in.
	GetCurrentSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers on the provider's auth event stream. Events
	// arrive on the subscription channel in the order the provider emits them.
	OnAuthStateChange() *AuthSubscription

	SignUp(ctx context.Context, email, password string, seed ProfileSeed) (*Credentials, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error)
	SignOut(ctx context.Context) error
}

// ProfileStore is the boundary to the profiles table of the managed backend.
type ProfileStore interface {
	FetchProfileByID(ctx context.Context, id string) (*Profile, error)
	UpdateProfileFields(ctx context.Context, id string, fields map[string]any) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
