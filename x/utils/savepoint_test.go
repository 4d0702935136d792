package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/pacttest"
	"github.com/iov-one/pact/store"
	"github.com/stretchr/testify/assert"
)

func TestSavepoint(t *testing.T) {
	// always write ok, ov before calling functions
	ok, ov := []byte("demo"), []byte("data")
	// some key, value to try to write
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}
	// a default error if desired
	derr := fmt.Errorf("something went wrong")

	cases := map[string]struct {
		save    pact.Decorator
		fail    bool // handler returns an error
		check   bool // whether to call Check or Deliver
		written [][]byte
		missing [][]byte
	}{
		"savepoint deactivated, returns error, both written": {
			save:    NewSavepoint(),
			fail:    true,
			check:   true,
			written: [][]byte{ok, nk},
		},
		"savepoint activated, returns error, one written": {
			save:    NewSavepoint().OnCheck(),
			fail:    true,
			check:   true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint activated for deliver, returns error, one written": {
			save:    NewSavepoint().OnDeliver(),
			fail:    true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"double activation maintains both behaviors": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			fail:    true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint check does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			fail:    true,
			written: [][]byte{ok, nk},
		},
		"no rollback when success returned": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			written: [][]byte{ok, nk},
		},
		"no rollback when success returned on check": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			check:   true,
			written: [][]byte{ok, nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			kv.Set(ok, ov)

			h := &pacttest.Handler{Write: &pact.Model{Key: nk, Value: nv}}
			if tc.fail {
				h.CheckErr = derr
				h.DeliverErr = derr
			}
			handler := pacttest.Decorate(h, tc.save)

			ctx := context.Background()
			tx := &pacttest.Tx{}
			var err error
			if tc.check {
				_, err = handler.Check(ctx, kv, tx)
			} else {
				_, err = handler.Deliver(ctx, kv, tx)
			}
			assert.Equal(t, tc.fail, err != nil)

			for _, k := range tc.written {
				assert.True(t, kv.Has(k), "missing %X", k)
			}
			for _, k := range tc.missing {
				assert.False(t, kv.Has(k), "unexpected %X", k)
			}
		})
	}
}
