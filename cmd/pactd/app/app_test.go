package pactd

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/app"
	"github.com/iov-one/pact/crypto"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/pacttest"
	"github.com/iov-one/pact/x/escrow"
	"github.com/iov-one/pact/x/sigs"
	"github.com/iov-one/pact/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "pact-test-chain"

type user struct {
	key crypto.PrivateKey
	seq uint64
}

func (u *user) addr() pact.Address {
	return u.key.PublicKey().Address()
}

func (u *user) account(ticker string) pact.Address {
	return token.AccountAddress(u.addr(), ticker)
}

// signed returns a serialized transaction carrying msg signed by u.
func (u *user) signed(t testing.TB, msg pact.Msg) []byte {
	t.Helper()
	tx, err := NewTx(msg)
	require.NoError(t, err)
	sig, err := sigs.SignTx(u.key, tx, chainID, u.seq)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)
	u.seq++
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func newApp(t testing.TB, genesis string) app.BaseApp {
	t.Helper()
	kv, err := CommitKVStore("")
	require.NoError(t, err)
	a := Application("pactd-test", Stack(), kv, log.NewNopLogger(), true)
	a.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: []byte(genesis)})
	a.Commit()
	return a
}

func deliver(t testing.TB, a app.BaseApp, raw []byte) abci.ResponseDeliverTx {
	t.Helper()
	info := a.CommitInfo()
	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: chainID, Height: info.Version + 1}})
	chk := a.CheckTx(raw)
	res := a.DeliverTx(raw)
	a.Commit()
	if res.Code == 0 {
		assert.Equal(t, uint32(0), chk.Code, chk.Log)
	}
	return res
}

func balance(t testing.TB, a app.BaseApp, addr pact.Address) uint64 {
	t.Helper()
	models, err := a.QueryModels("/tokens", addr)
	require.NoError(t, err)
	require.Len(t, models, 1, "account %s", addr)
	var acc token.Account
	require.NoError(t, acc.Unmarshal(models[0].Value))
	return acc.Amount
}

func TestSwapThroughApplication(t *testing.T) {
	alice := &user{key: pacttest.NewKey()}
	bob := &user{key: pacttest.NewKey()}

	genesis := fmt.Sprintf(`{
		"token": [
			{"owner": "%s", "ticker": "IOV", "amount": 100},
			{"owner": "%s", "ticker": "ETH", "amount": 0},
			{"owner": "%s", "ticker": "ETH", "amount": 50},
			{"owner": "%s", "ticker": "IOV", "amount": 0}
		],
		"conf": {"escrow": {"reservation": 0}}
	}`, alice.addr(), alice.addr(), bob.addr(), bob.addr())
	a := newApp(t, genesis)
	assert.Equal(t, chainID, a.GetChainID())

	res := deliver(t, a, alice.signed(t, &escrow.InitializeMsg{
		Initializer:       alice.addr(),
		FundingAccount:    alice.account("IOV"),
		ReceiveAccount:    alice.account("ETH"),
		Ticker:            "IOV",
		InitializerAmount: 100,
		TakerAmount:       40,
	}))
	require.Equal(t, uint32(0), res.Code, res.Log)
	record := pact.Address(res.Data)

	models, err := a.QueryModels("/escrows", record)
	require.NoError(t, err)
	require.Len(t, models, 1)
	var e escrow.Escrow
	require.NoError(t, e.Unmarshal(models[0].Value))
	assert.Equal(t, uint64(100), balance(t, a, e.Custody))

	listed, err := a.QueryModels("/escrows?prefix", nil)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	take := escrow.TermsOf(record, &e)
	take.Taker = bob.addr()
	take.TakerPayAccount = bob.account("ETH")
	take.TakerReceiveAccount = bob.account("IOV")

	// A stale view of the terms is rejected and costs only the nonce.
	stale := take
	stale.TakerAmount = 30
	res = deliver(t, a, bob.signed(t, &stale))
	assert.Equal(t, escrow.ErrTermsMismatch.ABCICode(), res.Code, res.Log)
	assert.Equal(t, uint64(50), balance(t, a, bob.account("ETH")))

	res = deliver(t, a, bob.signed(t, &take))
	require.Equal(t, uint32(0), res.Code, res.Log)

	assert.Equal(t, uint64(40), balance(t, a, alice.account("ETH")))
	assert.Equal(t, uint64(100), balance(t, a, bob.account("IOV")))
	assert.Equal(t, uint64(10), balance(t, a, bob.account("ETH")))
	assert.Equal(t, uint64(0), balance(t, a, alice.account("IOV")))

	models, err = a.QueryModels("/escrows", record)
	require.NoError(t, err)
	assert.Empty(t, models)

	// Replay with a fresh signature finds no escrow.
	res = deliver(t, a, bob.signed(t, &take))
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code, res.Log)
}

func TestUnsignedTransactionRejected(t *testing.T) {
	alice := &user{key: pacttest.NewKey()}
	a := newApp(t, fmt.Sprintf(`{"token": [{"owner": "%s", "ticker": "IOV", "amount": 10}]}`, alice.addr()))

	tx, err := NewTx(&token.CreateAccountMsg{Owner: alice.addr(), Ticker: "ETH"})
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	res := deliver(t, a, raw)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code, res.Log)

	// Signed by someone else than the owner.
	mallory := &user{key: pacttest.NewKey()}
	res = deliver(t, a, mallory.signed(t, &token.CreateAccountMsg{Owner: alice.addr(), Ticker: "ETH"}))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code, res.Log)

	res = deliver(t, a, alice.signed(t, &token.CreateAccountMsg{Owner: alice.addr(), Ticker: "ETH"}))
	assert.Equal(t, uint32(0), res.Code, res.Log)
}

func TestTxEncoding(t *testing.T) {
	key := pacttest.NewKey()
	msg := &token.SendMsg{
		Source:      pacttest.NewCondition().Address(),
		Destination: pacttest.NewCondition().Address(),
		Amount:      7,
		Memo:        "lunch",
	}
	tx, err := NewTx(msg)
	require.NoError(t, err)
	sig, err := sigs.SignTx(key, tx, chainID, 3)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}

	raw, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(raw)
	require.NoError(t, err)
	got, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, msg, got)
	require.Len(t, decoded.(*Tx).GetSignatures(), 1)
	assert.Equal(t, uint64(3), decoded.(*Tx).GetSignatures()[0].Sequence)

	// Signatures are not part of the signed bytes.
	withSig, err := tx.GetSignBytes()
	require.NoError(t, err)
	tx.Signatures = nil
	without, err := tx.Marshal()
	require.NoError(t, err)
	assert.Equal(t, without, withSig)

	_, err = NewTx(&pacttest.Msg{RoutePath: "unknown/msg"})
	assert.True(t, errors.ErrType.Is(err))

	_, err = (&Tx{}).GetMsg()
	assert.True(t, errors.ErrState.Is(err))
	_, err = (&Tx{SendMsg: msg, TakeMsg: &escrow.TakeMsg{}}).GetMsg()
	assert.True(t, errors.ErrState.Is(err))
}

func TestGenesisRejected(t *testing.T) {
	kv, err := CommitKVStore("")
	require.NoError(t, err)
	a := Application("pactd-test", Stack(), kv, log.NewNopLogger(), false)

	var opts pact.Options
	require.NoError(t, json.Unmarshal([]byte(`{"token": [{"owner": "00", "ticker": "IOV"}]}`), &opts))
	err = a.InitFromGenesis(&app.Genesis{ChainID: chainID, AppState: opts})
	assert.Error(t, err)
}
