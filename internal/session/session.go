// Package session implements the reconciliation core: the single canonical
// in-memory collection of restaurant records, fed by the initial load,
// optimistic local writes, and the store's asynchronous change stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jcallahan/tastemap/internal/domain"
	"github.com/jcallahan/tastemap/internal/store"
)

var (
	// ErrNameRequired rejects a draft with an empty name before any store
	// round-trip happens.
	ErrNameRequired = errors.New("restaurant name is required")

	// ErrSaveInFlight is the admission guard: at most one save may be
	// outstanding at a time.
	ErrSaveInFlight = errors.New("a save is already in flight")
)

// Filter partitions the collection by visited status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterVisited   Filter = "visited"
	FilterWantToTry Filter = "wantToTry"
)

// Defaults are applied to a draft's unset fields before it is stored.
type Defaults struct {
	Neighborhood string
	Cuisine      string
	Lat          float64
	Lng          float64
}

// Session owns the collection. All mutations go through Save, Remove, or the
// remote-change goroutine; readers only ever get cloned snapshots.
type Session struct {
	store    store.RecordStore
	defaults Defaults
	logger   *slog.Logger

	saving  atomic.Bool
	entropy *rand.Rand // id generation only; serialized by the saving guard

	mu        sync.Mutex
	records   []domain.Restaurant
	status    domain.SyncStatus
	started   bool
	closed    bool
	cancelSub func()

	done chan struct{}

	watchMu   sync.Mutex
	watchers  map[int]chan Update
	nextWatch int
	watchDone bool
}

func New(st store.RecordStore, defaults Defaults, logger *slog.Logger) *Session {
	return &Session{
		store:    st,
		defaults: defaults,
		logger:   logger,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
		status:   domain.StatusDisconnected,
		done:     make(chan struct{}),
		watchers: make(map[int]chan Update),
	}
}

// Start runs the initial load and establishes the change-stream subscription.
// It is called exactly once, at session start. A load failure is fail-soft:
// the session comes up with an empty collection, emits one notification, and
// stays fully usable.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.setStatus(domain.StatusConnecting)

	events, cancel := s.store.Subscribe()
	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()

	s.load(ctx)
	go s.run(events)

	s.setStatus(domain.StatusLive)
}

func (s *Session) load(ctx context.Context) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("initial load failed", "error", err)
		s.notify(levelError, "Couldn't load your restaurants")
		return
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.logger.Info("loaded restaurants", "count", len(records))
}

// run drains the change stream, applying every event through the pure merge.
// The handler never blocks on the network; each event is a synchronous merge
// into local memory.
func (s *Session) run(events <-chan domain.ChangeEvent) {
	defer close(s.done)
	for ev := range events {
		s.mu.Lock()
		s.records = applyChange(s.records, ev)
		s.mu.Unlock()
		s.broadcast(Update{Event: &ev})
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.setStatus(domain.StatusDisconnected)
	} else {
		// The stream ended underneath us. Status is advisory only; no
		// automatic reconnection is attempted here.
		s.setStatus(domain.StatusError)
	}
}

// Save assigns an id to a new draft, writes it through to the store, and on
// success merges it optimistically: an existing record is replaced in place,
// a new one lands at the front. On failure the collection is untouched so the
// editing surface can stay open for a retry.
func (s *Session) Save(ctx context.Context, draft domain.Restaurant) (domain.Restaurant, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return domain.Restaurant{}, ErrNameRequired
	}

	if !s.saving.CompareAndSwap(false, true) {
		return domain.Restaurant{}, ErrSaveInFlight
	}
	defer s.saving.Store(false)

	creating := draft.ID == ""
	if creating {
		draft.ID = s.newID()
	}
	s.applyDefaults(&draft)
	draft.Normalize()

	stored, err := s.store.Upsert(ctx, draft)
	if err != nil {
		s.logger.Error("save failed", "id", draft.ID, "error", err)
		s.notify(levelError, fmt.Sprintf("Couldn't save %s", draft.Name))
		return domain.Restaurant{}, fmt.Errorf("save restaurant %s: %w", draft.ID, err)
	}

	s.mu.Lock()
	s.records = upsertRecord(s.records, stored.Clone())
	s.mu.Unlock()

	if creating {
		s.notify(levelSuccess, fmt.Sprintf("%s added", stored.Name))
	} else {
		s.notify(levelSuccess, fmt.Sprintf("%s updated", stored.Name))
	}
	return stored.Clone(), nil
}

// Remove deletes the record from the store and drops it from the collection.
// Removing an id that a concurrent remote delete already took away is a
// no-op, not an error.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("delete failed", "id", id, "error", err)
		s.notify(levelError, "Couldn't delete restaurant")
		return fmt.Errorf("delete restaurant %s: %w", id, err)
	}

	s.mu.Lock()
	s.records = removeRecord(s.records, id)
	s.mu.Unlock()

	s.notify(levelSuccess, "Restaurant deleted")
	return nil
}

// Visible returns a cloned snapshot of the records matching the filter and
// the case-insensitive search query. Filter and search compose with AND.
func (s *Session) Visible(filter Filter, query string) []domain.Restaurant {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Restaurant, 0, len(s.records))
	for _, rec := range s.records {
		if matchesFilter(rec, filter) && matchesQuery(rec, query) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Status reports the advisory sync state. It never gates operations.
func (s *Session) Status() domain.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close releases the change-stream subscription and waits for the event
// goroutine to finish, so no event is ever merged into a torn-down
// collection.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	cancel := s.cancelSub
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-s.done
	}
	s.closeWatchers()
}

func (s *Session) setStatus(status domain.SyncStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.broadcast(Update{Status: status})
}

func (s *Session) applyDefaults(rec *domain.Restaurant) {
	if rec.Neighborhood == "" {
		rec.Neighborhood = s.defaults.Neighborhood
	}
	if rec.Cuisine == "" {
		rec.Cuisine = s.defaults.Cuisine
	}
	if rec.Lat == 0 && rec.Lng == 0 {
		rec.Lat = s.defaults.Lat
		rec.Lng = s.defaults.Lng
	}
}

// newID mints the client-assigned record id: a ULID, i.e. a sortable
// timestamp-derived token.
func (s *Session) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func matchesFilter(rec domain.Restaurant, filter Filter) bool {
	switch filter {
	case FilterVisited:
		return rec.Visited
	case FilterWantToTry:
		return !rec.Visited
	default:
		return true
	}
}

func matchesQuery(rec domain.Restaurant, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Name), query) ||
		strings.Contains(strings.ToLower(rec.Neighborhood), query) ||
		strings.Contains(strings.ToLower(rec.Cuisine), query)
}
