package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"artisanlink/internal/localstore"
	"artisanlink/internal/logger"
	"artisanlink/internal/product"
	"artisanlink/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductLookup interface {
	GetSnapshot(ctx context.Context, id string) (*product.Product, error)
}

type listener struct {
	id uint64
	fn func([]Entry)
}

// Store holds the wishlist of one client. It follows the same source rules
// as the cart, and merges device favorites into the account on sign-in.
type Store struct {
	repo     Repository
	products ProductLookup
	local    localstore.Store
	session  session.Source
	now      func() time.Time

	mu          sync.Mutex
	entries     []Entry
	subs        []listener
	nextSub     uint64
	unsubscribe func()
}

func NewStore(repo Repository, products ProductLookup, local localstore.Store, src session.Source) *Store {
	s := &Store{
		repo:     repo,
		products: products,
		local:    local,
		session:  src,
		now:      time.Now,
		entries:  []Entry{},
	}
	s.unsubscribe = src.OnSessionChange(s.onSessionChange)
	return s
}

func (s *Store) onSessionChange(ctx context.Context, ev session.Event) {
	var err error
	switch {
	case ev.Type == session.SignedIn && ev.Previous == nil:
		err = s.MergeOnLogin(ctx)
	default:
		err = s.Load(ctx)
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("wishlist refresh after session change failed",
			zap.String("event", string(ev.Type)),
			zap.Error(err),
		)
	}
}

func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.subs = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (s *Store) Load(ctx context.Context) error {
	var (
		entries []Entry
		err     error
	)
	if sess := s.session.GetSession(); sess != nil {
		entries, err = s.repo.List(ctx, sess.UserID)
		if err != nil {
			logger.FromCtx(ctx).Error("failed to load remote wishlist",
				zap.String("layer", "store"),
				zap.Uint("user_id", sess.UserID),
				zap.Error(err),
			)
			entries = []Entry{}
		}
	} else {
		entries = s.readLocal(ctx)
	}

	s.resolveSnapshots(ctx, entries)
	s.replace(entries)
	return err
}

// MergeOnLogin pushes device favorites the account does not have yet, then
// clears them from the device. Entries that could not be written stay on
// the device for the next attempt.
func (s *Store) MergeOnLogin(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "MergeWishlistOnLogin"),
	)

	sess := s.session.GetSession()
	if sess == nil {
		return s.Load(ctx)
	}

	local := s.readLocal(ctx)
	remote, err := s.repo.List(ctx, sess.UserID)
	if err != nil {
		log.Error("failed to load remote wishlist", zap.Error(err))
		s.resolveSnapshots(ctx, local)
		s.replace(local)
		return err
	}

	have := make(map[string]bool, len(remote))
	for _, e := range remote {
		have[e.ProductID] = true
	}

	merged := remote
	var pending []Entry
	var errs []error
	inserted := 0
	for _, e := range local {
		if have[e.ProductID] {
			continue
		}
		created, err := s.repo.Insert(ctx, sess.UserID, e.ProductID)
		switch {
		case err == nil:
			merged = append(merged, created)
			have[e.ProductID] = true
			inserted++
		case errors.Is(err, ErrAlreadyPresent):
			// Written concurrently by another device.
			have[e.ProductID] = true
		default:
			pending = append(pending, e)
			errs = append(errs, err)
		}
	}

	if len(pending) == 0 {
		if err := s.local.Remove(localstore.KeyWishlist); err != nil {
			log.Warn("failed to clear local wishlist", zap.Error(err))
		}
	} else if err := s.writeLocal(pending); err != nil {
		errs = append(errs, err)
	}

	s.resolveSnapshots(ctx, merged)
	s.replace(merged)

	log.Info("wishlist merged",
		zap.Uint("user_id", sess.UserID),
		zap.Int("local", len(local)),
		zap.Int("inserted", inserted),
		zap.Int("pending", len(pending)),
	)
	return errors.Join(errs...)
}

// Add stores productID once. A second add reports AlreadyPresent instead
// of failing.
func (s *Store) Add(ctx context.Context, productID string) (AddResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "AddToWishlist"),
		zap.String("product_id", productID),
	)

	if e, ok := s.find(productID); ok {
		return AddResult{Entry: e, AlreadyPresent: true}, nil
	}

	snap, err := s.products.GetSnapshot(ctx, productID)
	if err != nil {
		log.Warn("cannot add to wishlist, product lookup failed", zap.Error(err))
		return AddResult{}, err
	}

	sess := s.session.GetSession()
	if sess == nil {
		e := Entry{ID: uuid.NewString(), ProductID: productID, CreatedAt: s.now(), Product: snap}
		if res, dup := s.append(e); dup {
			return res, nil
		}
		if err := s.writeLocal(s.Items()); err != nil {
			log.Error("failed to write local wishlist", zap.Error(err))
			return AddResult{Entry: e}, err
		}
		s.notify()
		return AddResult{Entry: e}, nil
	}

	created, err := s.repo.Insert(ctx, sess.UserID, productID)
	switch {
	case err == nil:
		created.Product = snap
		res, _ := s.append(created)
		s.notify()
		return res, nil
	case errors.Is(err, ErrAlreadyPresent):
		e := Entry{UserID: sess.UserID, ProductID: productID, CreatedAt: s.now(), Product: snap}
		s.append(e)
		s.notify()
		return AddResult{Entry: e, AlreadyPresent: true}, nil
	default:
		log.Warn("remote wishlist insert failed, keeping a local copy", zap.Error(err))
		e := Entry{ID: uuid.NewString(), UserID: sess.UserID, ProductID: productID, CreatedAt: s.now(), Product: snap}
		s.append(e)
		if lerr := s.writeLocal(s.Items()); lerr != nil {
			return AddResult{Entry: e}, errors.Join(err, lerr)
		}
		s.notify()
		return AddResult{Entry: e}, nil
	}
}

// Remove drops productID. Removing an absent product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.ProductID == productID })
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	s.mu.Unlock()
	defer s.notify()

	if sess := s.session.GetSession(); sess != nil {
		rerr := s.repo.Delete(ctx, sess.UserID, productID)
		if rerr == nil {
			return nil
		}
		logger.FromCtx(ctx).Warn("remote wishlist delete failed, keeping a local copy",
			zap.String("product_id", productID),
			zap.Error(rerr),
		)
		if err := s.writeLocal(s.Items()); err != nil {
			return errors.Join(rerr, err)
		}
		return nil
	}

	return s.writeLocal(s.Items())
}

func (s *Store) Contains(productID string) bool {
	_, ok := s.find(productID)
	return ok
}

func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Subscribe(fn func([]Entry)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(l listener) bool { return l.id == id })
	}
}

func (s *Store) find(productID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ProductID == productID {
			return e, true
		}
	}
	return Entry{}, false
}

// append adds e unless its product is already listed, in which case the
// existing entry is reported.
func (s *Store) append(e Entry) (AddResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.entries {
		if cur.ProductID == e.ProductID {
			return AddResult{Entry: cur, AlreadyPresent: true}, true
		}
	}
	s.entries = append(s.entries, e)
	return AddResult{Entry: e}, false
}

func (s *Store) replace(entries []Entry) {
	s.mu.Lock()
	s.entries = dedupe(entries)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) readLocal(ctx context.Context) []Entry {
	raw, ok := s.local.Get(localstore.KeyWishlist)
	if !ok || raw == "" {
		return []Entry{}
	}

	var stored []storedEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.FromCtx(ctx).Debug("discarding malformed local wishlist", zap.Error(err))
		return []Entry{}
	}

	entries := make([]Entry, 0, len(stored))
	for _, st := range stored {
		if st.ProductID == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:        st.ID,
			UserID:    st.UserID,
			ProductID: st.ProductID,
			CreatedAt: st.CreatedAt,
		})
	}
	return dedupe(entries)
}

func (s *Store) writeLocal(entries []Entry) error {
	stored := make([]storedEntry, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, storedEntry{
			ID:        e.ID,
			UserID:    e.UserID,
			ProductID: e.ProductID,
			CreatedAt: e.CreatedAt,
		})
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.local.Set(localstore.KeyWishlist, string(b))
}

func (s *Store) resolveSnapshots(ctx context.Context, entries []Entry) {
	for i := range entries {
		if entries[i].Product != nil {
			continue
		}
		snap, err := s.products.GetSnapshot(ctx, entries[i].ProductID)
		if err != nil {
			logger.FromCtx(ctx).Debug("wishlist snapshot unavailable",
				zap.String("product_id", entries[i].ProductID),
				zap.Error(err),
			)
			continue
		}
		entries[i].Product = snap
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := slices.Clone(s.subs)
	entries := slices.Clone(s.entries)
	s.mu.Unlock()

	for _, l := range subs {
		l.fn(entries)
	}
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.ProductID] {
			continue
		}
		seen[e.ProductID] = true
		out = append(out, e)
	}
	return out
}
