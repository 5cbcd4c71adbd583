package search

import (
	"context"
	"net/url"
	"slices"
	"sync"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 8 * time.Second
)

// FetchFunc runs one search for the given filters.
type FetchFunc[T any] func(ctx context.Context, f Filters) (T, error)

// Navigator receives the serialized filters with replace semantics: the
// current history entry is rewritten, no new one is pushed.
type Navigator interface {
	Replace(query string)
}

type NavigatorFunc func(query string)

func (fn NavigatorFunc) Replace(query string) { fn(query) }

// State is a snapshot of a pipeline.
type State[T any] struct {
	Filters    Filters
	Query      string
	Loading    bool
	Results    T
	Err        error
	Generation uint64
}

type options struct {
	debounce  time.Duration
	timeout   time.Duration
	navigator Navigator
	stats     *metrics.SearchStats
	logger    *zap.Logger
}

type Option func(*options)

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(o *options) { o.navigator = n }
}

func WithStats(s *metrics.SearchStats) Option {
	return func(o *options) {
		if s != nil {
			o.stats = s
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type listener[T any] struct {
	id uint64
	fn func(State[T])
}

// Pipeline debounces filter edits, mirrors them into the URL and fetches
// results. Only the most recently issued fetch may apply its results.
type Pipeline[T any] struct {
	fetch FetchFunc[T]
	opts  options

	base context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	filters  Filters
	query    string
	results  T
	err      error
	loading  bool
	gen      uint64
	timer    *time.Timer
	sched    uint64
	inflight context.CancelFunc
	subs     []listener[T]
	nextSub  uint64
	closed   bool
}

func NewPipeline[T any](fetch FetchFunc[T], opts ...Option) *Pipeline[T] {
	o := options{
		debounce: DefaultDebounce,
		timeout:  DefaultTimeout,
		stats:    &metrics.SearchStats{},
		logger:   logger.L(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, stop := context.WithCancel(context.Background())
	return &Pipeline[T]{
		fetch:   fetch,
		opts:    o,
		base:    base,
		stop:    stop,
		filters: Defaults(),
	}
}

func (p *Pipeline[T]) Stats() *metrics.SearchStats { return p.opts.stats }

// Mount initializes the filters from the URL and fetches right away.
func (p *Pipeline[T]) Mount(v url.Values) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.stopTimerLocked()
	p.filters = Decode(v)
	p.query = p.filters.Encode()
	f := p.filters
	p.mu.Unlock()

	p.startFetch(f)
}

// Update applies fn to a copy of the current filters and schedules a
// debounced flush. Changing any facet sends the page back to 1 unless the
// page itself was changed.
func (p *Pipeline[T]) Update(fn func(f *Filters)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	prev := p.filters
	next := prev.clone()
	fn(&next)
	next = next.Normalize()

	if !next.SameFacets(prev) && next.Page == prev.Page {
		next.Page = 1
	}
	if next.Equal(prev) {
		p.mu.Unlock()
		return
	}

	p.filters = next
	p.scheduleLocked()
	st := p.stateLocked()
	subs := p.listenersLocked()
	p.mu.Unlock()

	notify(subs, st)
}

func (p *Pipeline[T]) SetFilters(f Filters) {
	p.Update(func(cur *Filters) { *cur = f })
}

// Reset returns every filter to its default in a single update.
func (p *Pipeline[T]) Reset() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.filters = Defaults()
	p.scheduleLocked()
	st := p.stateLocked()
	subs := p.listenersLocked()
	p.mu.Unlock()

	notify(subs, st)
}

func (p *Pipeline[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// Subscribe registers fn for every state change. Listeners run in
// registration order, outside the pipeline lock.
func (p *Pipeline[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSub++
	id := p.nextSub
	p.subs = append(p.subs, listener[T]{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.subs = slices.DeleteFunc(p.subs, func(l listener[T]) bool { return l.id == id })
	}
}

// Close stops the pending debounce and cancels the in-flight fetch. Results
// arriving afterwards are dropped.
func (p *Pipeline[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopTimerLocked()
	if p.inflight != nil {
		p.inflight()
		p.inflight = nil
	}
	p.subs = nil
	p.stop()
}

func (p *Pipeline[T]) scheduleLocked() {
	p.stopTimerLocked()
	seq := p.sched
	p.timer = time.AfterFunc(p.opts.debounce, func() { p.flush(seq) })
}

// stopTimerLocked also retires a callback that already fired and is waiting
// for the lock; Timer.Stop cannot reach it.
func (p *Pipeline[T]) stopTimerLocked() {
	p.sched++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// flush runs once the debounce window closed. seq identifies the schedule
// that armed the timer.
func (p *Pipeline[T]) flush(seq uint64) {
	p.mu.Lock()
	if p.closed || seq != p.sched {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	f := p.filters
	q := f.Encode()
	changed := q != p.query
	p.query = q
	p.mu.Unlock()

	if changed && p.opts.navigator != nil {
		p.opts.navigator.Replace(q)
	}
	p.startFetch(f)
}

func (p *Pipeline[T]) startFetch(f Filters) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.inflight != nil {
		p.inflight()
	}
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithTimeout(p.base, p.opts.timeout)
	p.inflight = cancel
	p.loading = true
	st := p.stateLocked()
	subs := p.listenersLocked()
	p.mu.Unlock()

	p.opts.stats.Issued.Inc()
	notify(subs, st)

	go func() {
		timer := metrics.StartTimer()
		res, err := p.fetch(ctx, f)
		cancel()
		p.apply(gen, res, err, timer.Duration())
	}()
}

func (p *Pipeline[T]) apply(gen uint64, res T, err error, took time.Duration) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		p.opts.stats.Stale.Inc()
		p.opts.logger.Debug("stale search result discarded",
			zap.Uint64("generation", gen),
		)
		return
	}

	p.inflight = nil
	p.loading = false
	if err != nil {
		var zero T
		p.results = zero
		p.err = err
		p.opts.stats.Failed.Inc()
		p.opts.logger.Warn("search fetch failed",
			zap.Uint64("generation", gen),
			zap.String("query", p.query),
			zap.Error(err),
		)
	} else {
		p.results = res
		p.err = nil
		p.opts.stats.Applied.Inc()
		p.opts.stats.ObserveLatency(took)
	}
	st := p.stateLocked()
	subs := p.listenersLocked()
	p.mu.Unlock()

	notify(subs, st)
}

func (p *Pipeline[T]) stateLocked() State[T] {
	return State[T]{
		Filters:    p.filters.clone(),
		Query:      p.query,
		Loading:    p.loading,
		Results:    p.results,
		Err:        p.err,
		Generation: p.gen,
	}
}

func (p *Pipeline[T]) listenersLocked() []listener[T] {
	return slices.Clone(p.subs)
}

func notify[T any](subs []listener[T], st State[T]) {
	for _, l := range subs {
		l.fn(st)
	}
}

func (f Filters) clone() Filters {
	out := f
	out.Categories = slices.Clone(f.Categories)
	out.Subcategories = slices.Clone(f.Subcategories)
	out.Artisans = slices.Clone(f.Artisans)
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	return out
}
