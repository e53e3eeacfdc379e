package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session pairs one subscriber's workflow with the notification buffer a
// transport layer drains into its responses.
type Session struct {
	*Workflow
	Notifier *RecordingNotifier
}

// SessionFactory builds a fresh session for one subscriber, wiring the
// per-session collaborators.
type SessionFactory func(ctx context.Context, subscriberID uuid.UUID) (*Session, error)

// SessionRegistry holds at most one checkout session per subscriber.
// Starting a new session while one is under review is rejected; a
// completed session is replaced by a fresh instance, since Completed is
// terminal for the workflow itself.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	factory  SessionFactory
}

func NewSessionRegistry(factory SessionFactory) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*Session),
		factory:  factory,
	}
}

// Start opens a checkout session for the subscriber.
func (r *SessionRegistry) Start(ctx context.Context, subscriberID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[subscriberID]; ok {
		switch existing.Phase() {
		case PhaseReviewingOrder:
			return nil, NewInvalidPhase("start a new checkout", PhaseReviewingOrder)
		case PhaseAwaitingAddress:
			return existing, nil
		}
		// Completed: fall through and replace with a fresh instance.
	}

	session, err := r.factory(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	r.sessions[subscriberID] = session
	return session, nil
}

// Get returns the subscriber's session, if any.
func (r *SessionRegistry) Get(subscriberID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[subscriberID]
	return session, ok
}

// End abandons the subscriber's session.
func (r *SessionRegistry) End(subscriberID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, subscriberID)
}
