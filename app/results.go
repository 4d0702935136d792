package app

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
)

// ResultSet holds the keys or the values of a query result.
type ResultSet struct {
	Results [][]byte
}

func (r *ResultSet) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	for _, res := range r.Results {
		// Encoded as a nested message so that empty entries are kept.
		e.Message(1, rawResult(res))
	}
	return e.Result()
}

type rawResult []byte

func (r rawResult) Marshal() ([]byte, error) {
	return r, nil
}

func (r *ResultSet) Unmarshal(raw []byte) error {
	*r = ResultSet{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			r.Results = append(r.Results, d.Bytes())
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []pact.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []pact.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]pact.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrState, "mismatched result set size")
	}
	mods := make([]pact.Model, len(kref))
	for i := range mods {
		mods[i] = pact.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}
