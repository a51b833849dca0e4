package agriconnect

import "sync"

// AuthEventType identifies the auth state transitions the provider reports
type AuthEventType = string

const (
	AuthEventInitialSession AuthEventType = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEventType = "SIGNED_IN"
	AuthEventSignedOut      AuthEventType = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthEvent is a single auth state change. A nil Session means signed out.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// AuthSubscription is a cancellable handle on the provider's event stream.
// The consumer must call Unsubscribe exactly once on teardown.
type AuthSubscription struct {
	C <-chan AuthEvent

	once   sync.Once
	cancel func()
}

// Unsubscribe releases the subscription. Safe to call more than once.
func (s *AuthSubscription) Unsubscribe() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// subscriptionBuffer bounds how far a subscriber may lag behind the emitter
// before events are dropped with a warning.
const subscriptionBuffer = 32

// Broadcaster is the push channel provider adapters emit auth events on.
// Events are delivered per subscriber in emit order.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan AuthEvent
	logger Logger
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs:   map[int]chan AuthEvent{},
		logger: defLogger{},
	}
}

func (b *Broadcaster) WithLogger(logger Logger) *Broadcaster {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Subscribe registers a new consumer and returns its cancellable handle
func (b *Broadcaster) Subscribe() *AuthSubscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan AuthEvent, subscriptionBuffer)
	b.subs[id] = ch

	return &AuthSubscription{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		},
	}
}

// Emit fans the event out to every live subscriber. A subscriber that is not
// draining its channel loses the event rather than blocking the provider.
func (b *Broadcaster) Emit(ev AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("auth event %s dropped for slow subscriber %d", ev.Type, id)
		}
	}
}
