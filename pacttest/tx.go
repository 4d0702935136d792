package pacttest

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
)

// Tx carries a single message. When Err is set it is returned instead of
// the message.
type Tx struct {
	Msg pact.Msg
	Err error
}

var _ pact.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (pact.Msg, error) {
	return tx.Msg, tx.Err
}

// Marshal returns the serialized message, a Tx adds nothing around it.
func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Err != nil || tx.Msg == nil {
		return nil, tx.Err
	}
	return tx.Msg.Marshal()
}

// Unmarshal is not supported, a Tx does not know which message to decode.
func (tx *Tx) Unmarshal([]byte) error {
	return errors.ErrInput.New("test transaction cannot be decoded")
}

// Msg is a message routed by RoutePath that keeps whatever it was
// unmarshaled from. Err fails validation and both codec methods.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ pact.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}
