package labels

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Snapshot is an immutable copy of the store captured under one read lock.
// Query evaluation runs against a snapshot, so a result is a pure function
// of the expression and the state at capture time, regardless of concurrent
// mutation.
type Snapshot struct {
	names []string
	vecs  map[string]vectors
	items []string
}

// Snapshot captures the current store state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		names: slices.Clone(s.order),
		vecs:  make(map[string]vectors, len(s.vecs)),
		items: slices.Clone(s.items),
	}
	for name, vec := range s.vecs {
		snap.vecs[name] = vectors{yes: vec.yes.Clone(), no: vec.no.Clone()}
	}
	return snap
}

// Labels returns the label names in registration order. The slice is shared
// with the snapshot; callers must not modify it.
func (sn *Snapshot) Labels() []string {
	return sn.names
}

// Items returns the item ids in index order. The slice is shared with the
// snapshot; callers must not modify it.
func (sn *Snapshot) Items() []string {
	return sn.items
}

// Len returns the item count of the snapshot's universe.
func (sn *Snapshot) Len() int {
	return len(sn.items)
}

// Item returns the id at the given dense index.
func (sn *Snapshot) Item(i uint32) (string, bool) {
	if int(i) >= len(sn.items) {
		return "", false
	}
	return sn.items[i], true
}

// Vectors returns clones of the label's yes and no bitmaps; callers may
// mutate the results freely. ok is false for labels the snapshot does not
// know.
func (sn *Snapshot) Vectors(label string) (yes, no *roaring.Bitmap, ok bool) {
	vec, ok := sn.vecs[label]
	if !ok {
		return nil, nil, false
	}
	return vec.yes.Clone(), vec.no.Clone(), true
}
