package orm

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	pact.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models rather than
// raw bytes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary key. Result is loaded into given destination model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db pact.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists and ErrNotFound
	// otherwise.
	Has(db pact.ReadOnlyKVStore, key []byte) error

	// Create saves given model only if the key is not in use yet.
	// ErrDuplicate is returned otherwise.
	Create(db pact.KVStore, key []byte, m Model) error

	// Put saves given model in the database, overwriting any previous
	// value.
	Put(db pact.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db pact.KVStore, key []byte) error

	// Keys returns the primary keys of all entities which key starts with
	// given prefix, in ascending order.
	Keys(db pact.ReadOnlyKVStore, prefix []byte) ([][]byte, error)

	// Register registers this bucket for queries.
	Register(name string, r pact.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance storing models under the
// bucket with given name.
func NewModelBucket(name string) ModelBucket {
	return &modelBucket{
		b: NewBucket(name),
	}
}

type modelBucket struct {
	b Bucket
}

func (mb *modelBucket) One(db pact.ReadOnlyKVStore, key []byte, dest Model) error {
	raw := mb.b.Get(db, key)
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db pact.ReadOnlyKVStore, key []byte) error {
	if !mb.b.Has(db, key) {
		return errors.Wrapf(errors.ErrNotFound, "no %s entity", mb.b.Name())
	}
	return nil
}

func (mb *modelBucket) Create(db pact.KVStore, key []byte, m Model) error {
	if mb.b.Has(db, key) {
		return errors.Wrapf(errors.ErrDuplicate, "%s key %X", mb.b.Name(), key)
	}
	return mb.Put(db, key, m)
}

func (mb *modelBucket) Put(db pact.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize")
	}
	mb.b.Set(db, key, raw)
	return nil
}

func (mb *modelBucket) Delete(db pact.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	mb.b.Delete(db, key)
	return nil
}

func (mb *modelBucket) Keys(db pact.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	models, err := mb.b.Query(db, pact.PrefixQueryMod, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, 0, len(models))
	for _, m := range models {
		keys = append(keys, m.Key)
	}
	return keys, nil
}

func (mb *modelBucket) Register(name string, r pact.QueryRouter) {
	mb.b.Register(name, r)
}

var _ ModelBucket = (*modelBucket)(nil)
