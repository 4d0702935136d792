package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/app"
	pactd "github.com/iov-one/pact/cmd/pactd/app"
	"github.com/iov-one/pact/crypto"
	"github.com/iov-one/pact/store/iavl"
	"github.com/tendermint/tendermint/libs/log"
)

// writeTx serializes the transaction. First bytes written contain the
// information how much space the transaction takes, so that several
// transactions can be streamed one after another.
func writeTx(w io.Writer, tx *pactd.Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*pactd.Tx, int, error) {
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx pactd.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const txHeaderSize = 4

// writeMsgTx wraps msg into an unsigned transaction and writes it out.
func writeMsgTx(w io.Writer, msg pact.Msg) error {
	tx, err := pactd.NewTx(msg)
	if err != nil {
		return err
	}
	_, err = writeTx(w, tx)
	return err
}

// node is the application state kept in the home directory. Only one
// process at a time can open it.
type node struct {
	app.BaseApp
	kv iavl.CommitStore
}

func openNode(home, logLevel string) (*node, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("cannot create home directory: %s", err)
	}
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}
	kv, err := pactd.CommitKVStore(filepath.Join(home, "state"))
	if err != nil {
		return nil, err
	}
	a := pactd.Application("pactd", pactd.Stack(), kv, logger, false)
	return &node{BaseApp: a, kv: kv}, nil
}

func (n *node) Close() {
	n.kv.Close()
}

func newLogger(level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stderr)), opt), nil
}

// keyAddress returns the address of the key stored at given path.
func keyAddress(path string) (pact.Address, error) {
	key, err := crypto.LoadPrivateKey(path)
	if err != nil {
		return nil, err
	}
	return key.PublicKey().Address(), nil
}
