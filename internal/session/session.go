// Package session keeps the per-browser viewer state: the last fetched record
// set and the current query.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/view"
)

// RangeFetcher is implemented by *rangefetch.Fetcher.
type RangeFetcher interface {
	FetchRange(ctx context.Context, start, end int) ([]catalog.Record, error)
}

// Session is one viewer's state. Records are only ever replaced as a whole.
type Session struct {
	ID string

	mu       sync.RWMutex
	records  []catalog.Record
	start    int
	end      int
	loaded   bool
	query    view.Query
	lastSeen time.Time
}

// Snapshot is a consistent, read-only view of a session.
type Snapshot struct {
	Records []catalog.Record
	Total   int
	Query   view.Query
	Start   int
	End     int
	Loaded  bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, query: view.DefaultQuery(), lastSeen: now}
}

// Load fetches [start, end] and, on success, replaces the record set. On
// failure the previous record set is kept and the error is returned.
func (s *Session) Load(ctx context.Context, fetcher RangeFetcher, start, end int) error {
	records, err := fetcher.FetchRange(ctx, start, end)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.start, s.end = start, end
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Query returns the current query.
func (s *Session) Query() view.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneQuery(s.query)
}

// SetQuery replaces the current query.
func (s *Session) SetQuery(q view.Query) {
	s.mu.Lock()
	s.query = cloneQuery(q)
	s.mu.Unlock()
}

// View projects the current record set through the current query.
func (s *Session) View() Snapshot {
	s.mu.RLock()
	records, q := s.records, cloneQuery(s.query)
	snap := Snapshot{
		Total:  len(s.records),
		Query:  q,
		Start:  s.start,
		End:    s.end,
		Loaded: s.loaded,
	}
	s.mu.RUnlock()

	// records is never mutated in place, so projecting outside the lock is safe
	snap.Records = view.Project(records, q)
	return snap
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func cloneQuery(q view.Query) view.Query {
	q.Types = slices.Clone(q.Types)
	return q
}
