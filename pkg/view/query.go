// Package view turns a fetched record set into the ordered, filtered list
// shown to the user. Everything here is pure and safe to call on every
// keystroke.
package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sternrassler/dexview/pkg/catalog"
)

// ErrInvalidQuery is returned when a sort key or direction is not recognised.
var ErrInvalidQuery = errors.New("invalid query")

// SortKey selects the numeric field records are ordered by.
type SortKey string

const (
	SortByID             SortKey = "id"
	SortByWeight         SortKey = "weight"
	SortByHeight         SortKey = "height"
	SortByBaseExperience SortKey = "base_experience"
)

// SortKeys lists the keys in the order the controls present them.
var SortKeys = []SortKey{SortByID, SortByWeight, SortByHeight, SortByBaseExperience}

// Label is the human-readable name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortByWeight:
		return "Weight"
	case SortByHeight:
		return "Height"
	case SortByBaseExperience:
		return "Base Experience"
	default:
		return "ID"
	}
}

// value extracts the field the key sorts by.
func (k SortKey) value(r catalog.Record) int {
	switch k {
	case SortByWeight:
		return r.Weight
	case SortByHeight:
		return r.Height
	case SortByBaseExperience:
		return r.BaseExperience
	default:
		return r.ID
	}
}

// Direction is the sort polarity.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Query is the user's current sort and filter selection.
type Query struct {
	SortKey   SortKey
	Direction Direction
	// Types holds lowercase type names; a record must carry all of them.
	Types []string
}

// DefaultQuery sorts by ID ascending with no filter.
func DefaultQuery() Query {
	return Query{SortKey: SortByID, Direction: Ascending}
}

// ParseSortKey accepts the wire names of SortKeys. Empty means SortByID.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return SortByID, nil
	}
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidQuery, s)
	}
	return key, nil
}

// ParseDirection accepts "asc" or "desc". Empty means Ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("%w: unknown sort direction %q", ErrInvalidQuery, s)
}

// NormalizeTypes lower-cases, trims and de-duplicates type names, keeping
// first-seen order. Comma separated entries are split.
func NormalizeTypes(names []string) []string {
	out := make([]string, 0, len(names))
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" || slices.Contains(out, name) {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

// ParseQuery builds a Query from user-supplied strings.
func ParseQuery(sortKey, direction string, types []string) (Query, error) {
	key, err := ParseSortKey(sortKey)
	if err != nil {
		return Query{}, err
	}
	dir, err := ParseDirection(direction)
	if err != nil {
		return Query{}, err
	}
	return Query{SortKey: key, Direction: dir, Types: NormalizeTypes(types)}, nil
}

// HasType reports whether name is part of the filter selection.
func (q Query) HasType(name string) bool {
	return slices.Contains(q.Types, name)
}

// ToggleType returns a copy of q with name added to, or removed from, the selection.
func (q Query) ToggleType(name string) Query {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return q
	}

	types := make([]string, 0, len(q.Types)+1)
	found := false
	for _, t := range q.Types {
		if t == name {
			found = true
			continue
		}
		types = append(types, t)
	}
	if !found {
		types = append(types, name)
	}

	q.Types = types
	return q
}
