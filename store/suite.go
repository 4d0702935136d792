package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Suite runs the same checks against any CacheableKVStore implementation.
// open returns an empty store and a function releasing it.
type Suite struct {
	open func() (CacheableKVStore, func())
}

func NewSuite(open func() (base CacheableKVStore, cleanup func())) Suite {
	return Suite{open: open}
}

// Run executes every check as a subtest.
func (s Suite) Run(t *testing.T) {
	t.Run("get set", s.GetSet)
	t.Run("cache layers", s.CacheLayers)
	t.Run("iterate", s.Iterate)
	t.Run("iterate over shadowed keys", s.IterateShadowed)
}

// GetSet follows an offer through a cache: opened, dropped once and
// finally settled.
func (s Suite) GetSet(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	AssertValues(t, base, map[string]string{"escrow": ""})
	base.Set([]byte("escrow"), []byte("open"))
	AssertValues(t, base, map[string]string{"escrow": "open"})

	cache := base.CacheWrap()
	cache.Set([]byte("custody"), []byte("100"))
	AssertValues(t, cache, map[string]string{"escrow": "open", "custody": "100"})
	AssertValues(t, base, map[string]string{"custody": ""})
	cache.Write()
	AssertValues(t, base, map[string]string{"escrow": "open", "custody": "100"})

	dropped := base.CacheWrap()
	dropped.Delete([]byte("escrow"))
	dropped.Set([]byte("reserve"), []byte("5"))
	AssertValues(t, dropped, map[string]string{"escrow": "", "reserve": "5"})
	dropped.Discard()
	AssertValues(t, base, map[string]string{"escrow": "open", "reserve": ""})

	settled := base.CacheWrap()
	settled.Delete([]byte("escrow"))
	settled.Delete([]byte("custody"))
	settled.Write()
	AssertValues(t, base, map[string]string{"escrow": "", "custody": ""})
}

// CacheLayers checks that a write moves exactly one layer down.
func (s Suite) CacheLayers(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	base.Set([]byte("a"), []byte("1"))
	base.Set([]byte("b"), []byte("2"))

	outer := base.CacheWrap()
	outer.Set([]byte("a"), []byte("one"))
	outer.Delete([]byte("b"))
	outer.Set([]byte("c"), []byte("3"))
	inner := outer.CacheWrap()
	inner.Set([]byte("b"), []byte("two"))

	initial := map[string]string{"a": "1", "b": "2", "c": ""}
	AssertValues(t, base, initial)
	AssertValues(t, outer, map[string]string{"a": "one", "b": "", "c": "3"})
	AssertValues(t, inner, map[string]string{"a": "one", "b": "two", "c": "3"})

	inner.Write()
	AssertValues(t, outer, map[string]string{"a": "one", "b": "two", "c": "3"})
	AssertValues(t, base, initial)

	outer.Write()
	AssertValues(t, base, map[string]string{"a": "one", "b": "two", "c": "3"})
}

// Iterate compares ranged iteration over random writes on two layers with
// the expected state.
func (s Suite) Iterate(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	want := make(map[string][]byte)
	var keys [][]byte
	write := func(kv SetDeleter, n int) {
		for i := 0; i < n; i++ {
			k, v := randBytes(8), randBytes(16)
			kv.Set(k, v)
			want[string(k)] = v
			keys = append(keys, k)
		}
	}
	write(base, 40)
	child := base.CacheWrap()
	write(child, 40)
	// Every third key goes, from either layer, and one key nobody wrote.
	for i := 0; i < len(keys); i += 3 {
		child.Delete(keys[i])
		delete(want, string(keys[i]))
	}
	child.Delete(randBytes(8))

	expect := sortedModels(want)
	n := len(expect)
	ranges := []struct {
		start, end []byte
		models     []Model
	}{
		{nil, nil, expect},
		{expect[10].Key, nil, expect[10:]},
		{nil, expect[n-8].Key, expect[:n-8]},
		{expect[5].Key, expect[30].Key, expect[5:30]},
	}
	for _, r := range ranges {
		AssertIterates(t, child.Iterator(r.start, r.end), r.models)
		AssertIterates(t, child.ReverseIterator(r.start, r.end), reversed(r.models))
	}

	child.Write()
	AssertIterates(t, base.Iterator(nil, nil), expect)
}

// IterateShadowed covers overwritten and deleted parent keys at range
// boundaries.
func (s Suite) IterateShadowed(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	base.Set([]byte("a"), []byte("1"))
	base.Set([]byte("c"), []byte("3"))
	base.Set([]byte("d"), []byte("4"))

	child := base.CacheWrap()
	child.Set([]byte("a"), []byte("one"))
	child.Delete([]byte("b"))
	child.Delete([]byte("c"))
	child.Delete([]byte("d"))
	child.Set([]byte("e"), []byte("5"))

	a := Pair([]byte("a"), []byte("one"))
	e := Pair([]byte("e"), []byte("5"))
	AssertIterates(t, child.Iterator(nil, nil), []Model{a, e})
	AssertIterates(t, child.ReverseIterator(nil, nil), []Model{e, a})
	AssertIterates(t, child.Iterator([]byte("b"), []byte("e")), nil)
	AssertIterates(t, child.ReverseIterator([]byte("a"), []byte("d")), []Model{a})
}

// AssertValues checks Get and Has for every key. An empty value means the
// key must be missing.
func AssertValues(t testing.TB, kv ReadOnlyKVStore, want map[string]string) {
	t.Helper()
	for k, v := range want {
		var val []byte
		if v != "" {
			val = []byte(v)
		}
		assert.Equal(t, val, kv.Get([]byte(k)), "key %q", k)
		assert.Equal(t, v != "", kv.Has([]byte(k)), "key %q", k)
	}
}

// AssertIterates consumes and closes it.
func AssertIterates(t testing.TB, it Iterator, want []Model) {
	t.Helper()
	defer it.Close()
	for i, m := range want {
		require.True(t, it.Valid(), "missing model %d", i)
		assert.Equal(t, m.Key, it.Key(), "model %d", i)
		assert.Equal(t, m.Value, it.Value(), "model %d", i)
		it.Next()
	}
	assert.False(t, it.Valid())
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func sortedModels(kv map[string][]byte) []Model {
	res := make([]Model, 0, len(kv))
	for k, v := range kv {
		res = append(res, Pair([]byte(k), v))
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
