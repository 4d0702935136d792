package store

import "bytes"

// side names where the next key of a merge comes from.
type side int

const (
	fromParent side = iota
	fromCache
	fromBoth
)

// mergeIterator walks pending cache entries together with the parent
// iterator. On equal keys the cache entry wins. Deleted entries hide the
// parent key and are never returned.
type mergeIterator struct {
	pending    []entry
	parent     Iterator
	descending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(pending []entry, parent Iterator, descending bool) *mergeIterator {
	it := &mergeIterator{
		pending:    pending,
		parent:     parent,
		descending: descending,
	}
	it.skipDeleted()
	return it
}

func (it *mergeIterator) Valid() bool {
	return len(it.pending) > 0 || it.parent.Valid()
}

// Next panics when the iterator is exhausted.
func (it *mergeIterator) Next() {
	it.mustBeValid()
	it.advance()
	it.skipDeleted()
}

func (it *mergeIterator) Key() []byte {
	it.mustBeValid()
	if it.head() == fromParent {
		return it.parent.Key()
	}
	return it.pending[0].key
}

func (it *mergeIterator) Value() []byte {
	it.mustBeValid()
	if it.head() == fromParent {
		return it.parent.Value()
	}
	return it.pending[0].value
}

func (it *mergeIterator) Close() {
	it.pending = nil
	it.parent.Close()
}

// head requires a valid iterator.
func (it *mergeIterator) head() side {
	switch {
	case len(it.pending) == 0:
		return fromParent
	case !it.parent.Valid():
		return fromCache
	}
	cmp := bytes.Compare(it.parent.Key(), it.pending[0].key)
	if it.descending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return fromParent
	case cmp > 0:
		return fromCache
	default:
		return fromBoth
	}
}

func (it *mergeIterator) advance() {
	switch it.head() {
	case fromCache:
		it.pending = it.pending[1:]
	case fromBoth:
		it.pending = it.pending[1:]
		it.parent.Next()
	default:
		it.parent.Next()
	}
}

func (it *mergeIterator) skipDeleted() {
	for it.Valid() {
		if it.head() == fromParent || !it.pending[0].deleted {
			return
		}
		it.advance()
	}
}

func (it *mergeIterator) mustBeValid() {
	if !it.Valid() {
		panic("iterator exhausted")
	}
}
