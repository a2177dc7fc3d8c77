package view

import (
	"cmp"
	"slices"

	"github.com/Sternrassler/dexview/pkg/catalog"
)

// Project filters records by q.Types (a record must carry every selected
// type) and stable-sorts the survivors by q.SortKey in q.Direction. Equal
// keys keep their input order in both directions. The input is not modified.
func Project(records []catalog.Record, q Query) []catalog.Record {
	out := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, q.Types) {
			out = append(out, r)
		}
	}

	key := q.SortKey
	desc := q.Direction == Descending
	slices.SortStableFunc(out, func(a, b catalog.Record) int {
		c := cmp.Compare(key.value(a), key.value(b))
		if desc {
			return -c
		}
		return c
	})

	return out
}

func matchesAll(r catalog.Record, types []string) bool {
	for _, t := range types {
		if !r.HasType(t) {
			return false
		}
	}
	return true
}

// AvailableTypes returns the distinct type names carried by records in
// first-seen order.
func AvailableTypes(records []catalog.Record) []string {
	var seen []string
	for _, r := range records {
		for _, t := range r.Types {
			if !slices.Contains(seen, t) {
				seen = append(seen, t)
			}
		}
	}
	return seen
}
