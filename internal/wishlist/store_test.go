package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"artisanlink/internal/localstore"
	"artisanlink/internal/product"
	"artisanlink/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeSource struct {
	mu       sync.Mutex
	current  *session.Session
	handlers []session.Handler
}

func (f *fakeSource) GetSession() *session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSource) OnSessionChange(h session.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, h)
	idx := len(f.handlers) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers[idx] = nil
	}
}

func (f *fakeSource) set(ctx context.Context, next *session.Session) {
	f.mu.Lock()
	prev := f.current
	f.current = next
	hs := append([]session.Handler(nil), f.handlers...)
	f.mu.Unlock()

	ev := session.Event{Type: session.SignedIn, Session: next, Previous: prev}
	if next == nil {
		ev.Type = session.SignedOut
	}
	for _, h := range hs {
		if h != nil {
			h(ctx, ev)
		}
	}
}

type fakeRepo struct {
	entries   map[uint][]Entry
	listErr   error
	insertErr map[string]error
	deleteErr error
	inserts   []string
	seq       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: map[uint][]Entry{}, insertErr: map[string]error{}}
}

func (r *fakeRepo) List(ctx context.Context, userID uint) ([]Entry, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]Entry{}, r.entries[userID]...), nil
}

func (r *fakeRepo) Insert(ctx context.Context, userID uint, productID string) (Entry, error) {
	r.inserts = append(r.inserts, productID)
	if err := r.insertErr[productID]; err != nil {
		return Entry{}, err
	}
	for _, e := range r.entries[userID] {
		if e.ProductID == productID {
			return Entry{}, ErrAlreadyPresent
		}
	}
	r.seq++
	e := Entry{ID: "w" + string(rune('0'+r.seq)), UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	r.entries[userID] = append(r.entries[userID], e)
	return e, nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID uint, productID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.entries[userID][:0]
	for _, e := range r.entries[userID] {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	r.entries[userID] = kept
	return nil
}

type fakeLookup map[string]*product.Product

func (f fakeLookup) GetSnapshot(ctx context.Context, id string) (*product.Product, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

func catalog() fakeLookup {
	out := fakeLookup{}
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		out[id] = &product.Product{ID: id, Price: decimal.NewFromInt(10)}
	}
	return out
}

type fixture struct {
	store *Store
	repo  *fakeRepo
	local *localstore.Memory
	src   *fakeSource
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{repo: newFakeRepo(), local: localstore.NewMemory(), src: &fakeSource{}}
	f.store = NewStore(f.repo, catalog(), f.local, f.src)
	t.Cleanup(f.store.Close)
	return f
}

func productIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	sort.Strings(ids)
	return ids
}

func seedLocal(t *testing.T, local *localstore.Memory, ids ...string) {
	t.Helper()
	stored := make([]storedEntry, 0, len(ids))
	for _, id := range ids {
		stored = append(stored, storedEntry{ID: "l-" + id, ProductID: id, CreatedAt: time.Now()})
	}
	b, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, local.Set(localstore.KeyWishlist, string(b)))
}

// --- Tests ---

func TestStore_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.store.Add(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyPresent)
	assert.NotEmpty(t, first.Entry.ID)

	second, err := f.store.Add(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyPresent)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)

	assert.Equal(t, 1, f.store.Count())
	assert.True(t, f.store.Contains("p1"))

	raw, ok := f.local.Get(localstore.KeyWishlist)
	require.True(t, ok)
	var stored []storedEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Len(t, stored, 1)
}

func TestStore_AddSignedIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.src.current = &session.Session{UserID: 3}

	res, err := f.store.Add(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, res.AlreadyPresent)
	assert.Equal(t, uint(3), res.Entry.UserID)
	assert.NotNil(t, res.Entry.Product)
	assert.Len(t, f.repo.entries[3], 1)

	_, ok := f.local.Get(localstore.KeyWishlist)
	assert.False(t, ok)
}

func TestStore_AddUniqueViolationIsAlreadyPresent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.src.current = &session.Session{UserID: 3}
	f.repo.entries[3] = []Entry{{ID: "w0", UserID: 3, ProductID: "p2"}}

	res, err := f.store.Add(ctx, "p2")

	require.NoError(t, err)
	assert.True(t, res.AlreadyPresent)
	assert.Equal(t, 1, f.store.Count())
}

func TestStore_AddRemoteFailureFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.src.current = &session.Session{UserID: 3}
	f.repo.insertErr["p1"] = errors.New("connection refused")

	res, err := f.store.Add(ctx, "p1")

	require.NoError(t, err)
	assert.False(t, res.AlreadyPresent)
	assert.True(t, f.store.Contains("p1"))
	raw, ok := f.local.Get(localstore.KeyWishlist)
	require.True(t, ok)
	assert.Contains(t, raw, `"productId":"p1"`)
}

func TestStore_AddAbortsWhenSnapshotFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Add(context.Background(), "unknown")

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Equal(t, 0, f.store.Count())
}

func TestStore_MergeOnLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedLocal(t, f.local, "p1", "p2")
	require.NoError(t, f.store.Load(ctx))

	f.repo.entries[7] = []Entry{
		{ID: "w-a", UserID: 7, ProductID: "p2"},
		{ID: "w-b", UserID: 7, ProductID: "p3"},
	}

	f.src.set(ctx, &session.Session{UserID: 7})

	assert.Equal(t, []string{"p1"}, f.repo.inserts)
	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(f.store.Items()))
	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(f.repo.entries[7]))

	_, ok := f.local.Get(localstore.KeyWishlist)
	assert.False(t, ok)

	for _, e := range f.store.Items() {
		assert.NotNil(t, e.Product, e.ProductID)
	}
}

func TestStore_MergeKeepsFailedEntriesOnDevice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedLocal(t, f.local, "p1", "p4")
	f.repo.insertErr["p4"] = errors.New("timeout")
	f.src.current = &session.Session{UserID: 7}

	err := f.store.MergeOnLogin(ctx)

	assert.Error(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(f.store.Items()))

	raw, ok := f.local.Get(localstore.KeyWishlist)
	require.True(t, ok)
	assert.Contains(t, raw, `"productId":"p4"`)
	assert.NotContains(t, raw, `"productId":"p1"`)
}

func TestStore_SwitchingAccountsDoesNotMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.src.current = &session.Session{UserID: 1}
	seedLocal(t, f.local, "p1")
	f.repo.entries[2] = []Entry{{ID: "w-x", UserID: 2, ProductID: "p3"}}

	f.src.set(ctx, &session.Session{UserID: 2})

	assert.Empty(t, f.repo.inserts)
	assert.Equal(t, []string{"p3"}, productIDs(f.store.Items()))
	_, ok := f.local.Get(localstore.KeyWishlist)
	assert.True(t, ok)
}

func TestStore_SignOutReloadsLocal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedLocal(t, f.local, "p4")
	f.src.current = &session.Session{UserID: 2}
	f.repo.entries[2] = []Entry{{ID: "w-x", UserID: 2, ProductID: "p3"}}
	require.NoError(t, f.store.Load(ctx))
	assert.Equal(t, []string{"p3"}, productIDs(f.store.Items()))

	f.src.set(ctx, nil)

	assert.Equal(t, []string{"p4"}, productIDs(f.store.Items()))
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Absent is noop", func(t *testing.T) {
		f := newFixture(t)
		assert.NoError(t, f.store.Remove(ctx, "p9"))
	})

	t.Run("Remote failure falls back to local", func(t *testing.T) {
		f := newFixture(t)
		f.src.current = &session.Session{UserID: 5}
		f.repo.entries[5] = []Entry{{ID: "w1", UserID: 5, ProductID: "p1"}, {ID: "w2", UserID: 5, ProductID: "p2"}}
		require.NoError(t, f.store.Load(ctx))
		f.repo.deleteErr = errors.New("db down")

		require.NoError(t, f.store.Remove(ctx, "p1"))

		assert.Equal(t, []string{"p2"}, productIDs(f.store.Items()))
		raw, ok := f.local.Get(localstore.KeyWishlist)
		require.True(t, ok)
		assert.NotContains(t, raw, `"productId":"p1"`)
	})
}

func TestStore_MalformedLocalWishlist(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.local.Set(localstore.KeyWishlist, "[{]"))

	assert.NoError(t, f.store.Load(context.Background()))
	assert.Equal(t, 0, f.store.Count())
}

func TestStore_RemoteLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.src.current = &session.Session{UserID: 5}
	f.repo.listErr = errors.New("db down")

	err := f.store.Load(context.Background())

	assert.Error(t, err)
	assert.Empty(t, f.store.Items())
}
