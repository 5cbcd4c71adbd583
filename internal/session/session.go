// Package session is the authentication collaborator the cart and wishlist
// stores observe. A Manager holds the current session of one client and
// notifies registered handlers when it changes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/user"

	"go.uber.org/zap"
)

var ErrNotSignedIn = errors.New("not signed in")

type Session struct {
	UserID    uint
	Email     string
	Role      user.Role
	ArtisanID *string
	Token     string
	ExpiresAt time.Time
}

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event describes a session transition. Previous is nil when the client was
// anonymous before a sign-in.
type Event struct {
	Type     EventType
	Session  *Session
	Previous *Session
}

type Handler func(ctx context.Context, ev Event)

// Source is what stores need from the session: read it and observe it.
type Source interface {
	GetSession() *Session
	OnSessionChange(h Handler) (unsubscribe func())
}

type Authenticator interface {
	Register(ctx context.Context, input user.RegisterInput) (*user.AuthResult, error)
	Login(ctx context.Context, email, password string) (*user.AuthResult, error)
}

type subscription struct {
	id uint64
	h  Handler
}

type Manager struct {
	auth Authenticator

	mu      sync.Mutex
	current *Session
	subs    []subscription
	nextID  uint64
}

// NewManager starts from an existing session (nil for anonymous).
func NewManager(auth Authenticator, current *Session) *Manager {
	return &Manager{auth: auth, current: current}
}

func (m *Manager) GetSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// OnSessionChange registers h. Handlers run synchronously, in registration order.
func (m *Manager) OnSessionChange(h Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, h: h})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.start(ctx, res), nil
}

func (m *Manager) SignUp(ctx context.Context, input user.RegisterInput) (*Session, error) {
	res, err := m.auth.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return m.start(ctx, res), nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	prev := m.current
	if prev == nil {
		m.mu.Unlock()
		return ErrNotSignedIn
	}
	m.current = nil
	m.mu.Unlock()

	m.emit(ctx, Event{Type: SignedOut, Previous: prev})
	return nil
}

func (m *Manager) start(ctx context.Context, res *user.AuthResult) *Session {
	s := &Session{
		UserID:    res.User.ID,
		Email:     res.User.Email,
		Role:      res.User.Role,
		ArtisanID: res.User.ArtisanID,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}

	m.mu.Lock()
	prev := m.current
	m.current = s
	m.mu.Unlock()

	cp := *s
	m.emit(ctx, Event{Type: SignedIn, Session: &cp, Previous: prev})
	return s
}

func (m *Manager) emit(ctx context.Context, ev Event) {
	m.mu.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	logger.FromCtx(ctx).Debug("session changed",
		zap.String("event", string(ev.Type)),
		zap.Int("handlers", len(subs)),
	)

	for _, s := range subs {
		s.h(ctx, ev)
	}
}
