package artisan

import (
	"context"
	"testing"

	"artisanlink/internal/moderation"
	"artisanlink/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, query string) ([]*Artisan, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Artisan), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Artisan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Artisan), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input CreateInput, slug string) (*Artisan, error) {
	args := m.Called(ctx, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Artisan), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, input UpdateInput, slug *string) (*Artisan, error) {
	args := m.Called(ctx, id, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Artisan), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) Propose(ctx context.Context, input moderation.ProposeInput) (*moderation.Log, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*moderation.Log), args.Error(1)
}

// --- Helpers ---

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), 1, "admin@example.com", utils.RoleAdmin, nil)
}

func ownerCtx(artisanID string) context.Context {
	return utils.SetUserContext(context.Background(), 12, "nour@example.com", utils.RoleArtisan, &artisanID)
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := adminCtx()
	repo := new(MockRepository)
	svc := NewService(repo, new(MockModerator))

	input := CreateInput{Name: "Atelier Céleste"}
	repo.On("Create", ctx, input, "atelier-celeste").Return(&Artisan{ID: "a1", Name: "Atelier Céleste"}, nil)

	a, err := svc.Create(ctx, CreateInput{Name: "  Atelier Céleste "})
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
}

func TestService_UpdateByAdminAppliesDirectly(t *testing.T) {
	ctx := adminCtx()
	repo := new(MockRepository)
	mod := new(MockModerator)
	svc := NewService(repo, mod)

	name := "Bois & Co"
	input := UpdateInput{Name: &name}
	repo.On("Update", ctx, "a1", input, mock.MatchedBy(func(s *string) bool { return s != nil && *s == "bois-co" })).
		Return(&Artisan{ID: "a1", Name: "Bois & Co"}, nil)

	res, err := svc.Update(ctx, "a1", input)

	require.NoError(t, err)
	assert.False(t, res.Pending)
	assert.Equal(t, "Bois & Co", res.Artisan.Name)
	mod.AssertNotCalled(t, "Propose", mock.Anything, mock.Anything)
}

func TestService_UpdateByOwnerIsModerated(t *testing.T) {
	ctx := ownerCtx("a1")
	repo := new(MockRepository)
	mod := new(MockModerator)
	svc := NewService(repo, mod)

	bio := "Céramiste"
	current := &Artisan{ID: "a1", Name: "A"}
	repo.On("GetByID", ctx, "a1").Return(current, nil)
	mod.On("Propose", ctx, moderation.ProposeInput{
		TableName:   "artisans",
		RecordID:    "a1",
		OldValues:   map[string]any{"bio": nil},
		NewValues:   map[string]any{"bio": "Céramiste"},
		RequestedBy: 12,
	}).Return(&moderation.Log{ID: "log-7", Status: moderation.StatusPending}, nil)

	res, err := svc.Update(ctx, "a1", UpdateInput{Bio: &bio})

	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Equal(t, "log-7", res.LogID)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateForbidden(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockModerator))
	name := "Xavier"

	_, err := svc.Update(ownerCtx("a2"), "a1", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	verified := true
	_, err = svc.Update(ownerCtx("a1"), "a1", UpdateInput{IsVerified: &verified})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), "a1", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateByOwnerWithoutChanges(t *testing.T) {
	ctx := ownerCtx("a1")
	repo := new(MockRepository)
	mod := new(MockModerator)
	svc := NewService(repo, mod)

	name := "Atelier"
	repo.On("GetByID", ctx, "a1").Return(&Artisan{ID: "a1", Name: "Atelier"}, nil)
	mod.On("Propose", ctx, mock.Anything).Return(nil, moderation.ErrNoChanges)

	_, err := svc.Update(ctx, "a1", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNoChanges)
}
