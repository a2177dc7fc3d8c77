// Package rangefetch retrieves every catalog record in a contiguous ID range.
//
// A range fetch validates the bounds, starts one request per ID (no worker
// pool, no throttling) and joins them all-or-nothing:
//
//	fetcher := rangefetch.New(catalogClient)
//	records, err := fetcher.FetchRange(ctx, 1, 151)
//
// The fetcher:
//   - Rejects invalid ranges with *InvalidRangeError before any request is sent
//   - Writes each result into its own slot, so the output is in ascending ID order
//   - Cancels in-flight siblings on the first failure and returns that error
//   - Never returns partial results
package rangefetch
