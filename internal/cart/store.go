package cart

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"artisanlink/internal/localstore"
	"artisanlink/internal/logger"
	"artisanlink/internal/product"
	"artisanlink/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLookup resolves the snapshot attached to a line item.
type ProductLookup interface {
	GetSnapshot(ctx context.Context, id string) (*product.Product, error)
}

type listener struct {
	id uint64
	fn func([]LineItem)
}

// Store holds the cart of one client. Signed-in carts live in the
// cart_items table, guest carts in the device local store. After Load the
// list reflects exactly one of the two.
type Store struct {
	repo     Repository
	products ProductLookup
	local    localstore.Store
	session  session.Source

	mu          sync.Mutex
	items       []LineItem
	subs        []listener
	nextSub     uint64
	unsubscribe func()
}

// NewStore wires the store to the session so it reloads from the right
// source on sign-in and sign-out. Call Load for the initial state.
func NewStore(repo Repository, products ProductLookup, local localstore.Store, src session.Source) *Store {
	s := &Store{
		repo:     repo,
		products: products,
		local:    local,
		session:  src,
		items:    []LineItem{},
	}
	s.unsubscribe = src.OnSessionChange(s.onSessionChange)
	return s
}

func (s *Store) onSessionChange(ctx context.Context, ev session.Event) {
	if err := s.Load(ctx); err != nil {
		logger.FromCtx(ctx).Warn("cart reload after session change failed",
			zap.String("event", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// Close stops observing the session.
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

// Load replaces the in-memory cart with the remote cart when signed in, the
// local blob otherwise. A failing remote read leaves the cart empty.
func (s *Store) Load(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "LoadCart"),
	)

	var (
		items []LineItem
		err   error
	)
	if sess := s.session.GetSession(); sess != nil {
		items, err = s.repo.ListItems(ctx, sess.UserID)
		if err != nil {
			log.Error("failed to load remote cart", zap.Uint("user_id", sess.UserID), zap.Error(err))
			items = nil
		}
	} else {
		items = s.readLocal(ctx)
	}

	s.resolveSnapshots(ctx, items)

	s.mu.Lock()
	s.items = items
	if s.items == nil {
		s.items = []LineItem{}
	}
	s.mu.Unlock()
	s.notify()

	return err
}

// Add increments an existing line or appends a new one with its snapshot.
// A snapshot lookup failure aborts the add.
func (s *Store) Add(ctx context.Context, productID string, quantity int, variations map[string]string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	key := IdentityKey(productID, variations)

	s.mu.Lock()
	if i := s.indexLocked(key); i >= 0 {
		s.items[i].Quantity += quantity
		s.mu.Unlock()
		return s.commit(ctx)
	}
	s.mu.Unlock()

	snap, err := s.products.GetSnapshot(ctx, productID)
	if err != nil {
		logger.FromCtx(ctx).Warn("cannot add to cart, product lookup failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	s.mu.Lock()
	// Another caller may have added the same line while we were resolving.
	if i := s.indexLocked(key); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{
			ProductID:          productID,
			Quantity:           quantity,
			SelectedVariations: cloneVariations(variations),
			Product:            snap,
		})
	}
	s.mu.Unlock()

	return s.commit(ctx)
}

// UpdateQuantity replaces the quantity of a line; zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, variations map[string]string) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID, variations)
	}

	s.mu.Lock()
	i := s.indexLocked(IdentityKey(productID, variations))
	if i < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	s.items[i].Quantity = quantity
	s.mu.Unlock()

	return s.commit(ctx)
}

// Remove deletes a line. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, productID string, variations map[string]string) error {
	s.mu.Lock()
	i := s.indexLocked(IdentityKey(productID, variations))
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.mu.Unlock()

	return s.commit(ctx)
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Total sums effective price times quantity. Lines without a snapshot
// contribute nothing.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Count sums quantities, snapshot or not.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Subscribe registers fn for every change of the list.
func (s *Store) Subscribe(fn func([]LineItem)) (unsubscribe func()) {
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

func (s *Store) commit(ctx context.Context) error {
	err := s.persist(ctx)
	s.notify()
	return err
}

// persist writes the list to exactly one target. A failing remote write
// falls back to the local blob; only a double failure is reported.
func (s *Store) persist(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "PersistCart"),
	)

	s.mu.Lock()
	items := cloneItems(s.items)
	s.mu.Unlock()

	if sess := s.session.GetSession(); sess != nil {
		remoteErr := s.repo.ReplaceItems(ctx, sess.UserID, items)
		if remoteErr == nil {
			return nil
		}
		log.Warn("remote cart write failed, keeping a local copy",
			zap.Uint("user_id", sess.UserID),
			zap.Error(remoteErr),
		)
		if err := s.writeLocal(items); err != nil {
			return errors.Join(remoteErr, err)
		}
		return nil
	}

	if err := s.writeLocal(items); err != nil {
		log.Error("failed to write local cart", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) readLocal(ctx context.Context) []LineItem {
	raw, ok := s.local.Get(localstore.KeyCart)
	if !ok || raw == "" {
		return []LineItem{}
	}

	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.FromCtx(ctx).Debug("discarding malformed local cart", zap.Error(err))
		return []LineItem{}
	}
	return fromStored(stored)
}

func (s *Store) writeLocal(items []LineItem) error {
	b, err := json.Marshal(toStored(items))
	if err != nil {
		return err
	}
	return s.local.Set(localstore.KeyCart, string(b))
}

// resolveSnapshots attaches products in place. A failing lookup keeps the
// raw line without a snapshot.
func (s *Store) resolveSnapshots(ctx context.Context, items []LineItem) {
	for i := range items {
		snap, err := s.products.GetSnapshot(ctx, items[i].ProductID)
		if err != nil {
			logger.FromCtx(ctx).Debug("cart snapshot unavailable",
				zap.String("product_id", items[i].ProductID),
				zap.Error(err),
			)
			continue
		}
		items[i].Product = snap
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := slices.Clone(s.subs)
	items := cloneItems(s.items)
	s.mu.Unlock()

	for _, l := range subs {
		l.fn(items)
	}
}

func (s *Store) indexLocked(key string) int {
	return slices.IndexFunc(s.items, func(it LineItem) bool { return it.Key() == key })
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.SelectedVariations = cloneVariations(it.SelectedVariations)
		out[i] = it
	}
	return out
}

func cloneVariations(v map[string]string) map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
