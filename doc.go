// Package gopaginator provides a pagination controller that sequences
// "load first page" and "load next page" requests over a caller-supplied
// fetch function.
//
// Overview
//
// A Controller owns the loading and end-of-data flags and a Strategy
// describing where the next page starts. Two strategies are provided:
//   - NumberedStrategy: pages are identified by an incrementing page number.
//   - KeysetStrategy: pages are identified by the key of the last item seen,
//     extracted through Keyed or an explicit key function.
//
// Concurrency contract
//   - At most one operation is outstanding. Load cancels the outstanding one,
//     whose caller then receives ErrCancelled.
//   - LoadMore never cancels anything: it fails with ErrAlreadyLoading while
//     an operation is outstanding and with ErrEndReached after a short page.
//   - Cancellation reaches the fetch function through its context.Context.
//   - Errors returned by the fetch function are passed through unchanged.
//
// Database sources
//
// GORMSource adapts a gorm query into fetch functions for both strategies:
// LIMIT/OFFSET for numbered pages and a KeysetToken filter built from
// Orderings for keyset pages.
package gopaginator
