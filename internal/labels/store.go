package labels

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/unicode/norm"
)

// reservedLabelChars are the expression operators plus the record signs.
// A name containing one could never be tokenized or round-tripped.
const reservedLabelChars = "!?+.()-"

// Normalize canonicalizes a label name: surrounding whitespace is trimmed
// and the result is converted to Unicode NFC, so composed and decomposed
// spellings of the same emoji sequence compare equal byte-wise.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName reports whether a normalized label name is usable.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("labels: empty label name")
	}
	if strings.ContainsAny(name, reservedLabelChars) {
		return fmt.Errorf("labels: name %q contains a reserved character", name)
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return fmt.Errorf("labels: name %q contains whitespace", name)
		}
	}
	return nil
}

type vectors struct {
	yes *roaring.Bitmap
	no  *roaring.Bitmap
}

// Store holds the tri-state label matrix for a library of items.
//
// Items receive dense zero-based indices in registration order; an index is
// never reused or renumbered for the lifetime of the store. Each label owns
// a yes and a no bitmap over the item index space, and for any label/index
// pair at most one of the two bits is set. All methods are safe for
// concurrent use; mutations take the write lock so no reader can observe a
// transient state with both bits set.
type Store struct {
	mu    sync.RWMutex
	index map[string]uint32
	items []string
	vecs  map[string]*vectors
	order []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]uint32),
		vecs:  make(map[string]*vectors),
	}
}

// RegisterItem assigns a dense index to the item id, returning the existing
// index when the id is already known. New items are Unset for every label.
func (s *Store) RegisterItem(id string) (index uint32, added bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.index[id]; ok {
		return idx, false
	}
	idx := uint32(len(s.items))
	s.index[id] = idx
	s.items = append(s.items, id)
	return idx, true
}

// RegisterLabel creates the label's empty bit vectors on first use and
// returns the normalized name. Registering an existing label is a no-op.
func (s *Store) RegisterLabel(name string) (string, error) {
	name = Normalize(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vecs[name]; !ok {
		s.vecs[name] = &vectors{yes: roaring.New(), no: roaring.New()}
		s.order = append(s.order, name)
	}
	return name, nil
}

// SetValue records the tri-state value for the item/label pair, clearing the
// opposite bit in the same critical section. Both the item and the label
// must already be registered; otherwise a NotFoundError is returned.
func (s *Store) SetValue(item, label string, v Value) error {
	label = Normalize(label)
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[item]
	if !ok {
		return &NotFoundError{Kind: "item", Name: item}
	}
	vec, ok := s.vecs[label]
	if !ok {
		return &NotFoundError{Kind: "label", Name: label}
	}
	switch v {
	case Yes:
		vec.no.Remove(idx)
		vec.yes.Add(idx)
	case No:
		vec.yes.Remove(idx)
		vec.no.Add(idx)
	default:
		vec.yes.Remove(idx)
		vec.no.Remove(idx)
	}
	return nil
}

// Value returns the current tri-state value for the item/label pair.
func (s *Store) Value(item, label string) (Value, error) {
	label = Normalize(label)
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[item]
	if !ok {
		return Unset, &NotFoundError{Kind: "item", Name: item}
	}
	vec, ok := s.vecs[label]
	if !ok {
		return Unset, &NotFoundError{Kind: "label", Name: label}
	}
	switch {
	case vec.yes.Contains(idx):
		return Yes, nil
	case vec.no.Contains(idx):
		return No, nil
	default:
		return Unset, nil
	}
}

// Record returns the item's non-Unset assignments in label registration
// order. The order is deterministic, so encoding the result twice for
// unchanged state yields byte-identical records. An item with no set labels
// returns an empty record, not an error.
func (s *Store) Record(item string) ([]Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[item]
	if !ok {
		return nil, &NotFoundError{Kind: "item", Name: item}
	}
	var rec []Assignment
	for _, name := range s.order {
		vec := s.vecs[name]
		switch {
		case vec.yes.Contains(idx):
			rec = append(rec, Assignment{Label: name, Value: Yes})
		case vec.no.Contains(idx):
			rec = append(rec, Assignment{Label: name, Value: No})
		}
	}
	return rec, nil
}

// Index returns the dense index for an item id.
func (s *Store) Index(id string) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[id]
	return idx, ok
}

// Labels returns the registered label names in registration order.
func (s *Store) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Items returns the item ids in index order.
func (s *Store) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of registered items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
