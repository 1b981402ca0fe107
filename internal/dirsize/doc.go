// Package dirsize provides directory size calculation.
//
// It walks directory trees using fastwalk for parallel traversal, filters
// files by extension, path segment, visibility, size and modification date,
// and sums their sizes with a fixed pool of workers. Each size is also
// weighted by an estimated compression ratio for its extension, and the
// weighted total can be capped: accumulation stops early once the cap would
// be exceeded.
package dirsize
