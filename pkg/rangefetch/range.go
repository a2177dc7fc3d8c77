package rangefetch

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRangeSize bounds the number of simultaneous in-flight requests.
const MaxRangeSize = 151

// Reasons reported by InvalidRangeError.
const (
	ReasonNotNumeric  = "not_numeric"
	ReasonNotPositive = "not_positive"
	ReasonInverted    = "inverted"
	ReasonTooLarge    = "too_large"
)

// InvalidRangeError reports bounds that cannot be fetched.
type InvalidRangeError struct {
	Start  int
	End    int
	Reason string
}

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	switch e.Reason {
	case ReasonNotNumeric:
		return "invalid range: bounds must be integers"
	case ReasonTooLarge:
		return fmt.Sprintf("invalid range [%d, %d]: at most %d records per fetch", e.Start, e.End, MaxRangeSize)
	case ReasonInverted:
		return fmt.Sprintf("invalid range [%d, %d]: start is after end", e.Start, e.End)
	default:
		return fmt.Sprintf("invalid range [%d, %d]: bounds must be positive", e.Start, e.End)
	}
}

// ValidateRange checks 1 <= start <= end and end-start+1 <= MaxRangeSize.
func ValidateRange(start, end int) error {
	switch {
	case start < 1 || end < 1:
		return &InvalidRangeError{Start: start, End: end, Reason: ReasonNotPositive}
	case start > end:
		return &InvalidRangeError{Start: start, End: end, Reason: ReasonInverted}
	case end-start+1 > MaxRangeSize:
		return &InvalidRangeError{Start: start, End: end, Reason: ReasonTooLarge}
	}
	return nil
}

// ParseRange parses user-entered bounds and validates them.
func ParseRange(startText, endText string) (int, int, error) {
	start, errStart := strconv.Atoi(strings.TrimSpace(startText))
	end, errEnd := strconv.Atoi(strings.TrimSpace(endText))
	if errStart != nil || errEnd != nil {
		return 0, 0, &InvalidRangeError{Start: start, End: end, Reason: ReasonNotNumeric}
	}

	if err := ValidateRange(start, end); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Size returns the number of IDs in [start, end].
func Size(start, end int) int {
	if end < start {
		return 0
	}
	return end - start + 1
}
