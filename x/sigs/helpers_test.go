package sigs

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/pacttest"
)

// stdTx is a transaction mock carrying signatures.
type stdTx struct {
	pacttest.Tx
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*stdTx)(nil)

func newStdTx(payload []byte) *stdTx {
	msg := &pacttest.Msg{RoutePath: "test/sigs", Serialized: payload}
	return &stdTx{Tx: pacttest.Tx{Msg: msg}, Payload: payload}
}

func (tx *stdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *stdTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}

func (tx *stdTx) GetMsg() (pact.Msg, error) {
	return tx.Tx.GetMsg()
}
