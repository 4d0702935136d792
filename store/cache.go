package store

import (
	"bytes"

	"github.com/google/btree"
)

// MemStore returns an empty store held in memory. Nothing written to it is
// persisted.
func MemStore() CacheableKVStore {
	return NewCache(nothing{}, NewBatch(nothing{}))
}

// Cache keeps uncommitted writes in a btree on top of a read only parent.
// Reads fall through to the parent for keys the cache never touched. Every
// write is queued on the batch as well and Write replays it on the parent.
type Cache struct {
	items  *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = Cache{}

// NewCache returns an empty cache over parent. The batch must write into
// the store parent reads from.
func NewCache(parent ReadOnlyKVStore, batch Batch) Cache {
	return newCache(parent, batch, btree.NewFreeList(btree.DefaultFreeListSize))
}

func newCache(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) Cache {
	return Cache{
		items:  btree.NewWithFreeList(2, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap stacks another cache on top of this one. Nested caches share
// the node free list.
func (c Cache) CacheWrap() KVCacheWrap {
	return newCache(c, c.NewBatch(), c.free)
}

func (c Cache) NewBatch() Batch {
	return NewBatch(c)
}

// Write applies all pending writes to the parent and empties the cache.
func (c Cache) Write() {
	c.batch.Write()
	c.Discard()
}

// Discard drops all pending writes.
func (c Cache) Discard() {
	c.items.Clear(true)
}

func (c Cache) Set(key, value []byte) {
	c.items.ReplaceOrInsert(entry{key: key, value: value})
	c.batch.Set(key, value)
}

func (c Cache) Delete(key []byte) {
	c.items.ReplaceOrInsert(entry{key: key, deleted: true})
	c.batch.Delete(key)
}

func (c Cache) Get(key []byte) []byte {
	if e, ok := c.lookup(key); ok {
		return e.value
	}
	return c.parent.Get(key)
}

func (c Cache) Has(key []byte) bool {
	if e, ok := c.lookup(key); ok {
		return !e.deleted
	}
	return c.parent.Has(key)
}

// lookup returns the pending write for key, if any.
func (c Cache) lookup(key []byte) (entry, bool) {
	item := c.items.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

// Iterator walks [start, end) in ascending order, pending writes merged
// over the parent.
func (c Cache) Iterator(start, end []byte) Iterator {
	return newMergeIterator(c.pending(start, end, false), c.parent.Iterator(start, end), false)
}

// ReverseIterator walks [start, end) in descending order.
func (c Cache) ReverseIterator(start, end []byte) Iterator {
	return newMergeIterator(c.pending(start, end, true), c.parent.ReverseIterator(start, end), true)
}

// pending copies the cached entries within [start, end). The copy keeps
// iteration independent from writes made while an iterator is open.
func (c Cache) pending(start, end []byte, descending bool) []entry {
	var out []entry
	collect := func(i btree.Item) bool {
		out = append(out, i.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		c.items.Ascend(collect)
	case start == nil:
		c.items.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.items.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.items.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	if descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// entry is a pending write. Deleted entries hide the parent value.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

// nothing is the bottom layer of MemStore. It is always empty.
type nothing struct{}

func (nothing) Get([]byte) []byte                    { return nil }
func (nothing) Has([]byte) bool                      { return false }
func (nothing) Set(_, _ []byte)                      {}
func (nothing) Delete([]byte)                        {}
func (nothing) Iterator(_, _ []byte) Iterator        { return NewSliceIterator(nil) }
func (nothing) ReverseIterator(_, _ []byte) Iterator { return NewSliceIterator(nil) }
