package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"artisanlink/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	err error
}

func (f fakeAuth) Register(ctx context.Context, input user.RegisterInput) (*user.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &user.AuthResult{Token: "t-new", ExpiresAt: time.Now().Add(time.Hour), User: &user.User{ID: 2, Email: input.Email, Role: user.RoleUser}}, nil
}

func (f fakeAuth) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &user.AuthResult{Token: "t-1", ExpiresAt: time.Now().Add(time.Hour), User: &user.User{ID: 1, Email: email, Role: user.RoleUser}}, nil
}

func TestManager_SignInNotifiesInOrder(t *testing.T) {
	m := NewManager(fakeAuth{}, nil)
	ctx := context.Background()

	var order []string
	var got Event
	m.OnSessionChange(func(ctx context.Context, ev Event) {
		order = append(order, "first")
		got = ev
	})
	m.OnSessionChange(func(ctx context.Context, ev Event) { order = append(order, "second") })

	s, err := m.SignIn(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, SignedIn, got.Type)
	assert.Nil(t, got.Previous)
	assert.Equal(t, uint(1), got.Session.UserID)
	assert.Equal(t, "t-1", s.Token)
	assert.Equal(t, uint(1), m.GetSession().UserID)
}

func TestManager_SignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous", func(t *testing.T) {
		m := NewManager(fakeAuth{}, nil)
		assert.ErrorIs(t, m.SignOut(ctx), ErrNotSignedIn)
	})

	t.Run("Signed in", func(t *testing.T) {
		m := NewManager(fakeAuth{}, &Session{UserID: 4})
		var got Event
		m.OnSessionChange(func(ctx context.Context, ev Event) { got = ev })

		require.NoError(t, m.SignOut(ctx))
		assert.Equal(t, SignedOut, got.Type)
		assert.Equal(t, uint(4), got.Previous.UserID)
		assert.Nil(t, m.GetSession())
	})
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager(fakeAuth{}, nil)
	calls := 0
	unsubscribe := m.OnSessionChange(func(ctx context.Context, ev Event) { calls++ })

	unsubscribe()
	unsubscribe()

	_, err := m.SignIn(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestManager_FailedSignInKeepsState(t *testing.T) {
	m := NewManager(fakeAuth{err: errors.New("bad credentials")}, nil)
	calls := 0
	m.OnSessionChange(func(ctx context.Context, ev Event) { calls++ })

	_, err := m.SignIn(context.Background(), "a@example.com", "pw")
	assert.Error(t, err)
	assert.Nil(t, m.GetSession())
	assert.Equal(t, 0, calls)
}

func TestManager_SignUp(t *testing.T) {
	m := NewManager(fakeAuth{}, nil)
	s, err := m.SignUp(context.Background(), user.RegisterInput{Email: "n@example.com"})
	require.NoError(t, err)
	assert.Equal(t, uint(2), s.UserID)
}

func TestManager_GetSessionReturnsCopy(t *testing.T) {
	m := NewManager(fakeAuth{}, &Session{UserID: 1, Email: "a@example.com"})
	s := m.GetSession()
	s.Email = "changed"
	assert.Equal(t, "a@example.com", m.GetSession().Email)
}
