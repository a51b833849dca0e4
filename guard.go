package agriconnect

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// GuardPaths are the redirect targets the guard steers unauthenticated or
// mis-roled requests to.
type GuardPaths struct {
	Register        string
	FarmerDashboard string
	BuyerDashboard  string
}

func defaultGuardPaths() GuardPaths {
	return GuardPaths{
		Register:        "/register",
		FarmerDashboard: "/farmer-dashboard",
		BuyerDashboard:  "/buyer-dashboard",
	}
}

// Guard gates rendering of a route subtree behind the session store: it reads
// the store snapshot on every request and either runs the handler, renders a
// neutral waiting view, or redirects.
type Guard struct {
	store       *Store
	logger      Logger
	paths       GuardPaths
	waitingView string
}

type GuardOption func(*Guard)

func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithGuardPaths(paths GuardPaths) GuardOption {
	return func(g *Guard) {
		g.paths = paths
	}
}

// WithWaitingView overrides the view rendered while the store is still
// bootstrapping. An empty name falls back to a plain text response.
func WithWaitingView(view string) GuardOption {
	return func(g *Guard) {
		g.waitingView = view
	}
}

func NewGuard(store *Store, opts ...GuardOption) *Guard {
	g := &Guard{
		store:       store,
		logger:      defLogger{},
		paths:       defaultGuardPaths(),
		waitingView: "loading",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Protect wraps a handler behind "is there an authenticated user" and,
// when a required role is given, "does the profile's role match".
//
// While the store is loading no redirect decision is made. Without a user
// the request goes to the registration entry point. With a role mismatch the
// request goes to the dashboard of the profile's actual role; a profile that
// has not resolved yet counts as a mismatch and lands on the buyer dashboard.
func (g *Guard) Protect(requiredRole ...Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := g.store.Snapshot()

			if state.Loading {
				return g.renderWaiting(ctx)
			}

			if state.User == nil {
				return ctx.Redirect(g.paths.Register, http.StatusSeeOther)
			}

			if len(requiredRole) > 0 && requiredRole[0] != "" {
				role := Role("")
				if state.Profile != nil {
					role = state.Profile.Role
				}

				if role != requiredRole[0] {
					dest := g.paths.BuyerDashboard
					if role == RoleFarmer {
						dest = g.paths.FarmerDashboard
					}
					g.logger.Debug("role mismatch, need %q have %q, redirect %s", requiredRole[0], role, dest)
					return ctx.Redirect(dest, http.StatusSeeOther)
				}
			}

			return next(ctx)
		}
	}
}

func (g *Guard) renderWaiting(ctx router.Context) error {
	if g.waitingView == "" {
		return ctx.Status(http.StatusServiceUnavailable).SendString("Loading...")
	}

	return ctx.Status(http.StatusServiceUnavailable).Render(g.waitingView, router.ViewContext{
		"message": "Loading...",
	})
}
