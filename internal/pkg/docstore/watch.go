package docstore

import (
	"context"
	"sync"
)

// Watchers is the subscription registry shared by the store implementations.
// Stores call Notify after a mutation commits; each affected watcher re-runs
// its query and hands the fresh result to its callback.
type Watchers struct {
	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{}
	closed   bool
	onError  func(collection string, err error)
}

type watcher struct {
	collection string
	query      Query
	load       func(context.Context) ([]Document, error)
	fn         func([]Document)

	signal chan struct{}
	done   chan struct{}
	once   sync.Once

	// deliverMu spans a whole callback; unsubscribe takes it to wait one out.
	deliverMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewWatchers creates an empty registry.
func NewWatchers() *Watchers {
	return &Watchers{
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// OnError sets the handler for reload failures inside running subscriptions.
func (w *Watchers) OnError(fn func(collection string, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Watch registers a subscription. load is called once synchronously and its
// result delivered to fn before Watch returns; after that fn is called from a
// dedicated goroutine each time a relevant mutation is notified. Signals that
// arrive while a reload is pending are coalesced.
//
// Unsubscribe waits for a callback already in progress, so once it returns fn
// is not running and will not run again. fn must therefore not call its own
// Unsubscribe; cancelling ctx is the way to stop from inside fn.
// Cancelling ctx also unsubscribes.
func (w *Watchers) Watch(ctx context.Context, collection string, q Query, load func(context.Context) ([]Document, error), fn func([]Document)) (Unsubscribe, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	wt := &watcher{
		collection: collection,
		query:      q,
		load:       load,
		fn:         fn,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.watchers[collection] == nil {
		w.watchers[collection] = make(map[*watcher]struct{})
	}
	w.watchers[collection][wt] = struct{}{}
	w.mu.Unlock()

	unsubscribe := func() {
		wt.deliverMu.Lock()
		defer wt.deliverMu.Unlock()
		wt.once.Do(func() {
			wt.mu.Lock()
			wt.closed = true
			wt.mu.Unlock()
			close(wt.done)
			w.remove(wt)
		})
	}

	docs, err := load(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	wt.deliver(docs)

	go w.run(ctx, wt, unsubscribe)

	return unsubscribe, nil
}

func (w *Watchers) run(ctx context.Context, wt *watcher, unsubscribe func()) {
	for {
		select {
		case <-wt.done:
			return
		case <-ctx.Done():
			unsubscribe()
			return
		case <-wt.signal:
			docs, err := wt.load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					unsubscribe()
					return
				}
				w.reportError(wt.collection, err)
				continue
			}
			wt.deliver(docs)
		}
	}
}

func (wt *watcher) deliver(docs []Document) {
	wt.deliverMu.Lock()
	defer wt.deliverMu.Unlock()

	wt.mu.Lock()
	closed := wt.closed
	wt.mu.Unlock()
	if closed {
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	wt.fn(docs)
}

func (w *Watchers) remove(wt *watcher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watchers[wt.collection], wt)
	if len(w.watchers[wt.collection]) == 0 {
		delete(w.watchers, wt.collection)
	}
}

func (w *Watchers) reportError(collection string, err error) {
	w.mu.RLock()
	fn := w.onError
	w.mu.RUnlock()
	if fn != nil {
		fn(collection, err)
	}
}

// Notify signals watchers of collection whose filters match any of the given
// document images. Pass both the before and after image of a mutation so that
// documents leaving a result set are noticed too. Nil images are skipped.
func (w *Watchers) Notify(collection string, images ...Document) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for wt := range w.watchers[collection] {
		for _, img := range images {
			if img == nil || !Matches(img, wt.query.Filters) {
				continue
			}
			select {
			case wt.signal <- struct{}{}:
			default:
				// a reload is already pending
			}
			break
		}
	}
}

// Count returns the number of live watchers on collection.
func (w *Watchers) Count(collection string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.watchers[collection])
}

// Close stops every watcher and rejects new ones. Unlike Unsubscribe it does
// not wait for callbacks already running.
func (w *Watchers) Close() {
	w.mu.Lock()
	w.closed = true
	var all []*watcher
	for _, set := range w.watchers {
		for wt := range set {
			all = append(all, wt)
		}
	}
	w.watchers = make(map[string]map[*watcher]struct{})
	w.mu.Unlock()

	for _, wt := range all {
		wt.once.Do(func() {
			wt.mu.Lock()
			wt.closed = true
			wt.mu.Unlock()
			close(wt.done)
		})
	}
}
