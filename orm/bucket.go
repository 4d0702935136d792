/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object, keyed by its address.
* Easy queries for one and iteration by key prefix.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB. It holds raw values, see
// ModelBucket for a typed access.
type Bucket struct {
	name   string
	prefix []byte
}

var _ pact.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of this bucket.
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket for queries. You can define a name here
// for queries, which is different than the bucket name used to prefix the
// data
func (b Bucket) Register(name string, r pact.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
}

// Query handles queries from the QueryRouter. Returned keys do not contain
// the bucket prefix.
func (b Bucket) Query(db pact.ReadOnlyKVStore, mod string, data []byte) ([]pact.Model, error) {
	switch mod {
	case pact.KeyQueryMod:
		value := db.Get(b.DBKey(data))
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []pact.Model{pact.Pair(data, value)}, nil
	case pact.PrefixQueryMod:
		res, err := queryPrefix(db, b.DBKey(data))
		if err != nil {
			return nil, err
		}
		for i := range res {
			res[i].Key = res[i].Key[len(b.prefix):]
		}
		return res, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get returns the raw value stored under given key or nil.
func (b Bucket) Get(db pact.ReadOnlyKVStore, key []byte) []byte {
	return db.Get(b.DBKey(key))
}

// Has returns true if a value is stored under given key.
func (b Bucket) Has(db pact.ReadOnlyKVStore, key []byte) bool {
	return db.Has(b.DBKey(key))
}

// Set writes raw value under given key.
func (b Bucket) Set(db pact.KVStore, key, value []byte) {
	db.Set(b.DBKey(key), value)
}

// Delete will remove the value at a key
func (b Bucket) Delete(db pact.KVStore, key []byte) {
	db.Delete(b.DBKey(key))
}
