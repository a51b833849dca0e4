package agriconnect

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// APIController exposes the session state as JSON for programmatic clients.
// The authenticated endpoints sit behind the bearer token middleware; the
// token is the same access token the provider issued for the session.
type APIController struct {
	Store  *Store
	Logger Logger
}

func NewAPIController(store *Store) *APIController {
	return &APIController{
		Store:  store,
		Logger: defLogger{},
	}
}

// RegisterAPIRoutes mounts the JSON endpoints. The tokenGuard middleware is
// expected to reject requests without a valid bearer token.
func RegisterAPIRoutes[T any](app router.Router[T], c *APIController, tokenGuard router.MiddlewareFunc) {
	app.Get("/api/session", c.SessionShow)
	app.Get("/api/me", c.ProfileShow, tokenGuard)
	app.Post("/api/me", c.ProfileUpdate, tokenGuard)
}

// SessionShow reports whether someone is signed in without exposing tokens
func (c *APIController) SessionShow(ctx router.Context) error {
	state := c.Store.Snapshot()

	return ctx.JSON(http.StatusOK, map[string]any{
		"logged_in": state.LoggedIn(),
		"loading":   state.Loading,
		"user":      state.User,
	})
}

// ProfileShow returns the active user's profile
func (c *APIController) ProfileShow(ctx router.Context) error {
	state := c.Store.Snapshot()

	if state.User == nil {
		return ctx.JSON(http.StatusUnauthorized, map[string]string{
			"error": "no user logged in",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"user":    state.User,
		"profile": state.Profile,
	})
}

// ProfileUpdate applies a partial profile update from a JSON body
func (c *APIController) ProfileUpdate(ctx router.Context) error {
	payload := new(ProfileUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("api profile update parse payload: %s", err)
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := c.Store.UpdateProfile(ctx.Context(), payload.fields()); err != nil {
		if err == ErrNoActiveUser {
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": ErrNoActiveUser.Message,
			})
		}
		c.Logger.Error("api profile update failed: %s", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "profile update failed",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"status": "updated",
	})
}
