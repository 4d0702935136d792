package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type command func(io.Reader, io.Writer, []string) error

func run(t *testing.T, cmd command, input []byte, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, cmd(bytes.NewReader(input), &out, args))
	return out.Bytes()
}

func parseAddr(t *testing.T, raw []byte) pact.Address {
	t.Helper()
	addr, err := pact.ParseAddress(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	return addr
}

func TestEscrowPipeline(t *testing.T) {
	dir, err := ioutil.TempDir("", "pactd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	home := filepath.Join(dir, "home")

	aliceKey := filepath.Join(dir, "alice.key")
	bobKey := filepath.Join(dir, "bob.key")
	const seed = "000102030405060708090a0b0c0d0e0f"
	alice := parseAddr(t, run(t, cmdKeygen, nil, "-key", aliceKey, "-seed", seed))
	bob := parseAddr(t, run(t, cmdKeygen, nil, "-key", bobKey, "-seed", seed, "-path", "m/44'/234'/1'"))
	assert.NotEqual(t, alice, bob)
	assert.Equal(t, alice, parseAddr(t, run(t, cmdKeyaddr, nil, "-key", aliceKey)))

	genesis := filepath.Join(dir, "genesis.json")
	require.NoError(t, ioutil.WriteFile(genesis, []byte(fmt.Sprintf(`{
		"chain_id": "pactd-test",
		"app_state": {
			"token": [
				{"owner": "%s", "ticker": "IOV", "amount": 100},
				{"owner": "%s", "ticker": "ETH", "amount": 50}
			]
		}
	}`, alice, bob)), 0600))
	out := run(t, cmdInit, nil, "-home", home, "-genesis", genesis, "-log-level", "none")
	assert.Equal(t, "pactd-test\n", string(out))

	assert.Error(t, cmdInit(nil, ioutil.Discard, []string{"-home", home, "-genesis", genesis, "-log-level", "none"}),
		"a ledger is initialized only once")

	submit := func(key string, tx []byte) []byte {
		signed := run(t, cmdSign, tx, "-home", home, "-key", key)
		return run(t, cmdSubmit, signed, "-home", home, "-log-level", "none")
	}

	aliceETH := token.AccountAddress(alice, "ETH")
	bobIOV := token.AccountAddress(bob, "IOV")
	submit(aliceKey, run(t, cmdCreateAccount, nil, "-key", aliceKey, "-ticker", "ETH"))
	submit(bobKey, run(t, cmdCreateAccount, nil, "-key", bobKey, "-ticker", "IOV"))

	record := parseAddr(t, submit(aliceKey, run(t, cmdInitialize, nil,
		"-key", aliceKey,
		"-ticker", "IOV",
		"-amount", "100",
		"-ask", "40",
		"-receive", aliceETH.String(),
	)))

	derived := string(run(t, cmdEscrowAddress, nil, "-key", aliceKey, "-ticker", "IOV"))
	assert.Contains(t, derived, "record\t"+record.String())

	// Asking for more than the offer holds is rejected.
	greedy := run(t, cmdTake, nil, "-home", home, "-key", bobKey, "-escrow", record.String(),
		"-pay", token.AccountAddress(bob, "ETH").String(), "-amount", "200")
	signed := run(t, cmdSign, greedy, "-home", home, "-key", bobKey)
	assert.Error(t, cmdSubmit(bytes.NewReader(signed), ioutil.Discard, []string{"-home", home, "-log-level", "none"}))

	submit(bobKey, run(t, cmdTake, nil, "-home", home, "-key", bobKey, "-escrow", record.String(),
		"-pay", token.AccountAddress(bob, "ETH").String()))

	assert.Equal(t, uint64(40), queryAmount(t, home, aliceETH))
	assert.Equal(t, uint64(100), queryAmount(t, home, bobIOV))
	assert.Equal(t, uint64(10), queryAmount(t, home, token.AccountAddress(bob, "ETH")))

	out = run(t, cmdQuery, nil, "-home", home, "-path", "/escrows")
	assert.JSONEq(t, "[]", string(out))

	// The record is gone, so there is nothing to take anymore.
	assert.Error(t, cmdTake(nil, ioutil.Discard, []string{"-home", home, "-key", bobKey, "-escrow", record.String()}))
}

func queryAmount(t *testing.T, home string, addr pact.Address) uint64 {
	t.Helper()
	out := run(t, cmdQuery, nil, "-home", home, "-path", "/tokens", "-data", addr.String())
	var res []struct {
		Key   pact.Address
		Value token.Account
	}
	require.NoError(t, json.Unmarshal(out, &res))
	require.Len(t, res, 1)
	assert.Equal(t, addr, res[0].Key)
	return res[0].Value.Amount
}

func TestKeygenNeverOverwrites(t *testing.T) {
	dir, err := ioutil.TempDir("", "pactd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	key := filepath.Join(dir, "key")
	first := run(t, cmdKeygen, nil, "-key", key)
	assert.Error(t, cmdKeygen(nil, ioutil.Discard, []string{"-key", key}))
	assert.Equal(t, first, run(t, cmdKeyaddr, nil, "-key", key))

	out := run(t, cmdKeyaddr, nil, "-key", key, "-bech32", "tpact")
	assert.True(t, strings.HasPrefix(string(out), "tpact1"), string(out))
}

func TestTxStream(t *testing.T) {
	var buf bytes.Buffer
	for _, ticker := range []string{"IOV", "ETH"} {
		require.NoError(t, writeMsgTx(&buf, &token.CreateAccountMsg{Ticker: ticker}))
	}
	for _, want := range []string{"IOV", "ETH"} {
		tx, _, err := readTx(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, tx.CreateAccountMsg.Ticker)
	}
	_, _, err := readTx(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, pact.Version()+"\n", string(run(t, cmdVersion, nil)))
}
