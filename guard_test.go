package agriconnect_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect"
)

func nextHandler(called *bool) router.HandlerFunc {
	return func(ctx router.Context) error {
		*called = true
		return nil
	}
}

// guardStore builds a bootstrapped store in the given auth state
func guardStore(t *testing.T, session *agriconnect.Session, profile *agriconnect.Profile) *agriconnect.Store {
	t.Helper()

	provider := newFakeProvider()
	provider.setSession(session)

	profiles := newFakeProfiles()
	if session != nil && profile != nil {
		profiles.put(session.User.ID, profile)
	}

	store := agriconnect.New(provider, profiles)
	t.Cleanup(store.Close)
	require.NoError(t, store.Bootstrap(context.Background()))

	if session != nil && profile != nil {
		waitForProfile(t, store)
	}

	return store
}

func TestGuardRendersWaitingWhileLoading(t *testing.T) {
	provider := newFakeProvider()
	store := agriconnect.New(provider, newFakeProfiles())
	t.Cleanup(store.Close)
	// no bootstrap: the store is still loading

	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}
	ctx.On("Status", http.StatusServiceUnavailable).Return(ctx)
	ctx.On("Render", "loading", mock.Anything).Return(nil)

	called := false
	err := guard.Protect(agriconnect.RoleFarmer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.False(t, called, "handler must not run while loading")
	ctx.AssertExpectations(t)
	ctx.AssertNotCalled(t, "Redirect", mock.Anything, mock.Anything)
}

func TestGuardRedirectsAnonymousToRegister(t *testing.T) {
	store := guardStore(t, nil, nil)
	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}
	ctx.On("Redirect", "/register", []int{http.StatusSeeOther}).Return(nil)

	called := false
	err := guard.Protect(agriconnect.RoleFarmer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.False(t, called)
	ctx.AssertExpectations(t)
}

func TestGuardRedirectsMismatchedRoleToOwnDashboard(t *testing.T) {
	session := sessionFor("u1", "john@example.com")
	store := guardStore(t, session, profileFor("u1", agriconnect.RoleFarmer))
	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}
	ctx.On("Redirect", "/farmer-dashboard", []int{http.StatusSeeOther}).Return(nil)

	called := false
	err := guard.Protect(agriconnect.RoleBuyer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.False(t, called, "farmer must not reach the buyer dashboard")
	ctx.AssertExpectations(t)
}

func TestGuardTreatsUnresolvedProfileAsBuyer(t *testing.T) {
	session := sessionFor("u1", "john@example.com")
	store := guardStore(t, session, nil)
	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}
	ctx.On("Redirect", "/buyer-dashboard", []int{http.StatusSeeOther}).Return(nil)

	called := false
	err := guard.Protect(agriconnect.RoleFarmer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.False(t, called)
	ctx.AssertExpectations(t)
}

func TestGuardAllowsMatchingRole(t *testing.T) {
	session := sessionFor("u1", "john@example.com")
	store := guardStore(t, session, profileFor("u1", agriconnect.RoleFarmer))
	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}

	called := false
	err := guard.Protect(agriconnect.RoleFarmer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.True(t, called)
	ctx.AssertNotCalled(t, "Redirect", mock.Anything, mock.Anything)
}

func TestGuardWithoutRoleOnlyRequiresUser(t *testing.T) {
	session := sessionFor("u1", "john@example.com")
	store := guardStore(t, session, nil)
	guard := agriconnect.NewGuard(store)

	ctx := &MockContext{}

	called := false
	err := guard.Protect()(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.True(t, called, "role-less protection passes any signed in user")
}

func TestGuardCustomPaths(t *testing.T) {
	store := guardStore(t, nil, nil)
	guard := agriconnect.NewGuard(store, agriconnect.WithGuardPaths(agriconnect.GuardPaths{
		Register:        "/join",
		FarmerDashboard: "/farm",
		BuyerDashboard:  "/buy",
	}))

	ctx := &MockContext{}
	ctx.On("Redirect", "/join", []int{http.StatusSeeOther}).Return(nil)

	called := false
	err := guard.Protect(agriconnect.RoleFarmer)(nextHandler(&called))(ctx)

	require.NoError(t, err)
	assert.False(t, called)
	ctx.AssertExpectations(t)
}
