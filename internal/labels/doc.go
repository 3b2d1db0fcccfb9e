// Package labels implements the tri-state tagging model at the core of
// mosaic: every item in the library carries, per label, an explicit YES, an
// explicit NO, or no opinion at all (UNSET).
//
// The store keeps one pair of roaring bitmaps per label, indexed by a dense
// item index assigned at registration. The pair encodes the three states as
// yes bit set, no bit set, or neither; never both. Items and labels are
// created lazily on first observation and never removed, so an index is
// stable for the lifetime of the process.
//
// Readers that need a consistent view across several labels (query
// evaluation, record encoding) take a Snapshot rather than holding the store
// lock across calls.
package labels
