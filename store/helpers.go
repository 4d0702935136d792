package store

// op is a write waiting in a batch.
type op struct {
	key     []byte
	value   []byte
	deleted bool
}

// batch queues writes and applies them in order on Write. It gives no
// atomicity guarantee, only use it over in-memory layers.
type batch struct {
	out SetDeleter
	ops []op
}

// NewBatch returns a batch replaying writes on out.
func NewBatch(out SetDeleter) Batch {
	return &batch{out: out}
}

func (b *batch) Set(key, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{key: key, deleted: true})
}

func (b *batch) Write() {
	for _, o := range b.ops {
		if o.deleted {
			b.out.Delete(o.key)
		} else {
			b.out.Set(o.key, o.value)
		}
	}
	b.ops = nil
}

// sliceIterator walks models loaded up front.
type sliceIterator struct {
	models []Model
}

// NewSliceIterator returns an iterator over models in the given order.
func NewSliceIterator(models []Model) Iterator {
	return &sliceIterator{models: models}
}

func (s *sliceIterator) Valid() bool   { return len(s.models) > 0 }
func (s *sliceIterator) Key() []byte   { return s.current().Key }
func (s *sliceIterator) Value() []byte { return s.current().Value }
func (s *sliceIterator) Close()        { s.models = nil }

func (s *sliceIterator) Next() {
	s.current()
	s.models = s.models[1:]
}

func (s *sliceIterator) current() Model {
	if len(s.models) == 0 {
		panic("iterator exhausted")
	}
	return s.models[0]
}
