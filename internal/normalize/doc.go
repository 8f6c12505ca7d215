// Package normalize reconciles the verse shapes produced by local stores
// and remote providers into one canonical record per verse.
//
// Search results become SearchResult, chapter content becomes Verse, and
// two independently normalized chapters are aligned into VersePair values
// by Pair. Normalizers never re-sort their input: output order is cursor or
// document order. Every call builds a fresh slice; nothing is retained.
package normalize
