package orm

import (
	"github.com/iov-one/pact"
)

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr pact.Iterator) []pact.Model {
	defer itr.Close()

	var res []pact.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, pact.Pair(itr.Key(), itr.Value()))
	}
	return res
}

// queryPrefix returns all models which key starts with given prefix, sorted
// by the key.
func queryPrefix(db pact.ReadOnlyKVStore, prefix []byte) ([]pact.Model, error) {
	return ConsumeIterator(db.Iterator(prefixRange(prefix))), nil
}

// prefixRange turns a prefix into (start, end) to create an iterator
// covering all keys with that prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
