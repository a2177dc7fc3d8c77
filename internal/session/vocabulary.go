package session

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/dexview/pkg/catalog"
)

// TypeFetcher is implemented by *catalog.Client.
type TypeFetcher interface {
	FetchTypeVocabulary(ctx context.Context) ([]catalog.TypeTag, error)
}

// Vocabulary holds the type list for the lifetime of the process. It is
// fetched once; a failed fetch leaves it empty for good.
type Vocabulary struct {
	once sync.Once
	mu   sync.RWMutex
	tags []catalog.TypeTag
	err  error
	done bool
}

// Load fetches the vocabulary on the first call; later calls return the
// outcome of that first call.
func (v *Vocabulary) Load(ctx context.Context, fetcher TypeFetcher) error {
	v.once.Do(func() {
		tags, err := fetcher.FetchTypeVocabulary(ctx)

		v.mu.Lock()
		defer v.mu.Unlock()
		v.done = true
		if err != nil {
			v.err = err
			log.Warn().Err(err).Str("component", "vocabulary").Msg("Type vocabulary unavailable - type filter disabled")
			return
		}
		v.tags = tags
		log.Info().Int("types", len(tags)).Str("component", "vocabulary").Msg("Type vocabulary loaded")
	})

	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Tags returns the vocabulary, empty when it is not (or could not be) loaded.
func (v *Vocabulary) Tags() []catalog.TypeTag {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.tags)
}

// Ready reports whether the vocabulary was loaded successfully.
func (v *Vocabulary) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.done && v.err == nil
}

// Done reports whether the single load attempt has finished.
func (v *Vocabulary) Done() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.done
}

// Err returns the load failure, if any.
func (v *Vocabulary) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}
