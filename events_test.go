package agriconnect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect"
)

func TestBroadcasterDeliversInOrder(t *testing.T) {
	b := agriconnect.NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn})
	b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventTokenRefreshed})
	b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})

	assert.Equal(t, agriconnect.AuthEventSignedIn, (<-sub.C).Type)
	assert.Equal(t, agriconnect.AuthEventTokenRefreshed, (<-sub.C).Type)
	assert.Equal(t, agriconnect.AuthEventSignedOut, (<-sub.C).Type)
}

func TestBroadcasterFansOut(t *testing.T) {
	b := agriconnect.NewBroadcaster()

	first := b.Subscribe()
	second := b.Subscribe()
	defer first.Unsubscribe()
	defer second.Unsubscribe()

	b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedIn})

	assert.Equal(t, agriconnect.AuthEventSignedIn, (<-first.C).Type)
	assert.Equal(t, agriconnect.AuthEventSignedIn, (<-second.C).Type)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := agriconnect.NewBroadcaster()
	sub := b.Subscribe()

	sub.Unsubscribe()
	// safe to call again
	sub.Unsubscribe()

	_, ok := <-sub.C
	require.False(t, ok, "channel should be closed after unsubscribe")

	// emitting after unsubscribe must not panic
	b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventSignedOut})
}

func TestEmitDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := agriconnect.NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	// overfill the buffer; extra events are dropped rather than blocking
	for i := 0; i < 100; i++ {
		b.Emit(agriconnect.AuthEvent{Type: agriconnect.AuthEventTokenRefreshed})
	}

	drained := 0
	for {
		select {
		case <-sub.C:
			drained++
		default:
			assert.Less(t, drained, 100)
			assert.Greater(t, drained, 0)
			return
		}
	}
}
