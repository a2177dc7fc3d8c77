package server

import (
	"errors"

	"github.com/Sternrassler/dexview/pkg/rangefetch"
	"github.com/Sternrassler/dexview/pkg/view"
)

// User-facing messages.
const (
	msgInvalidRange  = "Please enter a valid ID range."
	msgRangeTooLarge = "The range cannot exceed 151 Pokémon at a time."
	msgFetchFailed   = "An error occurred while fetching Pokémon. Please try again."
	msgTypesFailed   = "Could not load Pokémon types."
	msgInvalidQuery  = "Unknown sort option."
	msgNoMatches     = "No Pokémon found"
	msgNoMatchesHint = "Try adjusting your type filters."
)

// Error codes returned by the JSON API.
const (
	codeInvalidRange = "invalid_range"
	codeInvalidQuery = "invalid_query"
	codeFetchFailed  = "fetch_failed"
	codeBadRequest   = "bad_request"
)

// describeError maps an error to an API code and a user-facing message.
// Anything that is not a validation error gets the generic fetch message.
func describeError(err error) (string, string) {
	var rangeErr *rangefetch.InvalidRangeError
	switch {
	case errors.As(err, &rangeErr):
		if rangeErr.Reason == rangefetch.ReasonTooLarge {
			return codeInvalidRange, msgRangeTooLarge
		}
		return codeInvalidRange, msgInvalidRange
	case errors.Is(err, view.ErrInvalidQuery):
		return codeInvalidQuery, msgInvalidQuery
	default:
		return codeFetchFailed, msgFetchFailed
	}
}
