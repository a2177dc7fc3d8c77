package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/rangefetch"
	"github.com/Sternrassler/dexview/pkg/view"
)

type stubRangeFetcher struct {
	records []catalog.Record
	err     error
	calls   int
}

func (f *stubRangeFetcher) FetchRange(ctx context.Context, start, end int) ([]catalog.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func starters() []catalog.Record {
	return []catalog.Record{
		{ID: 1, Name: "bulbasaur", Weight: 69, Types: []string{"grass", "poison"}},
		{ID: 2, Name: "ivysaur", Weight: 130, Types: []string{"grass", "poison"}},
		{ID: 3, Name: "venusaur", Weight: 1000, Types: []string{"grass", "poison"}},
		{ID: 4, Name: "charmander", Weight: 85, Types: []string{"fire"}},
	}
}

func TestSession_LoadReplacesRecords(t *testing.T) {
	s := newSession("s1", time.Now())

	first := &stubRangeFetcher{records: starters()}
	require.NoError(t, s.Load(context.Background(), first, 1, 4))

	snap := s.View()
	assert.True(t, snap.Loaded)
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 1, snap.Start)
	assert.Equal(t, 4, snap.End)

	second := &stubRangeFetcher{records: []catalog.Record{{ID: 25, Name: "pikachu", Types: []string{"electric"}}}}
	require.NoError(t, s.Load(context.Background(), second, 25, 25))

	snap = s.View()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, 25, snap.Records[0].ID)
	assert.Equal(t, 1, snap.Total)
}

func TestSession_FailedLoadKeepsPreviousRecords(t *testing.T) {
	s := newSession("s1", time.Now())
	require.NoError(t, s.Load(context.Background(), &stubRangeFetcher{records: starters()}, 1, 4))

	boom := errors.New("catalog down")
	err := s.Load(context.Background(), &stubRangeFetcher{err: boom}, 10, 20)
	assert.ErrorIs(t, err, boom)

	snap := s.View()
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 1, snap.Start)
	assert.Equal(t, 4, snap.End)
}

func TestSession_InvalidRangeNeverFetches(t *testing.T) {
	s := newSession("s1", time.Now())

	// the real fetcher validates before dispatching anything
	stub := &stubRecordFetcher{}
	err := s.Load(context.Background(), rangefetch.New(stub), 0, 3)

	var rangeErr *rangefetch.InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
	assert.Zero(t, stub.calls)
	assert.False(t, s.View().Loaded)
}

func TestSession_ViewAppliesQuery(t *testing.T) {
	s := newSession("s1", time.Now())
	require.NoError(t, s.Load(context.Background(), &stubRangeFetcher{records: starters()}, 1, 4))

	s.SetQuery(view.Query{SortKey: view.SortByWeight, Direction: view.Descending, Types: []string{"grass"}})

	snap := s.View()
	require.Len(t, snap.Records, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{snap.Records[0].ID, snap.Records[1].ID, snap.Records[2].ID})
	assert.Equal(t, 4, snap.Total, "total counts the unfiltered set")

	// changing the query needs no new fetch
	s.SetQuery(view.DefaultQuery())
	assert.Len(t, s.View().Records, 4)
}

func TestSession_QueryIsCopied(t *testing.T) {
	s := newSession("s1", time.Now())

	q := view.Query{SortKey: view.SortByID, Direction: view.Ascending, Types: []string{"fire"}}
	s.SetQuery(q)
	q.Types[0] = "water"

	assert.Equal(t, []string{"fire"}, s.Query().Types)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := newSession("s1", time.Now())
	fetcher := &syncRangeFetcher{records: starters()}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = s.Load(context.Background(), fetcher, 1, 4)
		}()
		go func() {
			defer wg.Done()
			s.SetQuery(s.Query().ToggleType("fire"))
		}()
		go func() {
			defer wg.Done()
			_ = s.View()
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, s.View().Total)
}

type syncRangeFetcher struct {
	records []catalog.Record
}

func (f *syncRangeFetcher) FetchRange(ctx context.Context, start, end int) ([]catalog.Record, error) {
	return f.records, nil
}

type stubRecordFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *stubRecordFetcher) FetchRecordByID(ctx context.Context, id int) (*catalog.Record, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &catalog.Record{ID: id}, nil
}
