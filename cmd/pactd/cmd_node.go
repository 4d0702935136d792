package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/app"
	"github.com/iov-one/pact/x/escrow"
	"github.com/iov-one/pact/x/sigs"
	"github.com/iov-one/pact/x/token"
	abci "github.com/tendermint/tendermint/abci/types"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize the ledger state from a genesis file.

The genesis file declares the chain id and the application state: the
initial token accounts and the escrow configuration. A ledger can be
initialized only once.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory holding the ledger state. You can use PACTD_HOME environment variable to set it.")
		genesisFl  = fl.String("genesis", "genesis.json", "Path to the genesis file.")
		logLevelFl = fl.String("log-level", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	gen, err := app.LoadGenesis(*genesisFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, *logLevelFl)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.InitFromGenesis(gen); err != nil {
		return fmt.Errorf("cannot initialize: %s", err)
	}
	n.Commit()
	_, err = fmt.Fprintln(output, n.GetChainID())
	return err
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a signed transaction from the input and execute it in a new block.

A transaction rejected by the check is not executed. A transaction that
fails during execution still consumes the signer sequence. The hex encoded
result data is printed on success.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory holding the ledger state. You can use PACTD_HOME environment variable to set it.")
		logLevelFl = fl.String("log-level", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}

	n, err := openNode(*homeFl, *logLevelFl)
	if err != nil {
		return err
	}
	defer n.Close()
	if n.GetChainID() == "" {
		return fmt.Errorf("ledger not initialized, run init first")
	}

	height := n.CommitInfo().Version + 1
	n.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{ChainID: n.GetChainID(), Height: height},
	})
	if chk := n.CheckTx(raw); chk.Code != 0 {
		return fmt.Errorf("transaction rejected (code %d): %s", chk.Code, chk.Log)
	}
	res := n.DeliverTx(raw)
	n.EndBlock(abci.RequestEndBlock{Height: height})
	n.Commit()

	if res.Code != 0 {
		return fmt.Errorf("transaction failed (code %d): %s", res.Code, res.Log)
	}
	_, err = fmt.Fprintln(output, hex.EncodeToString(res.Data))
	return err
}

// queries lists all supported query paths together with the model that
// each of them returns.
var queries = map[string]func() pact.Persistent{
	"/escrows": func() pact.Persistent { return &escrow.Escrow{} },
	"/tokens":  func() pact.Persistent { return &token.Account{} },
	"/auth":    func() pact.Persistent { return &sigs.UserData{} },
}

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Query the committed ledger state and print JSON encoded result.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory holding the ledger state. You can use PACTD_HOME environment variable to set it.")
		pathFl        = fl.String("path", "", "Path to be queried. Must be one of the supported.")
		dataFl        = fl.String("data", "", "Queried key, usually an address.")
		prefixQueryFl = fl.Bool("prefix", false, "If true, use prefix queries instead of the exact match with provided data.")
	)
	fl.Parse(args)

	newObj, ok := queries[*pathFl]
	if !ok {
		paths := make([]string, 0, len(queries))
		for p := range queries {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return fmt.Errorf("available query paths:\n\t- %s", strings.Join(paths, "\n\t- "))
	}

	var data []byte
	if *dataFl != "" {
		addr, err := pact.ParseAddress(*dataFl)
		if err != nil {
			return fmt.Errorf("cannot decode data: %s", err)
		}
		data = addr
	}
	queryPath := *pathFl
	if *prefixQueryFl || *dataFl == "" {
		queryPath += "?" + pact.PrefixQueryMod
	}

	n, err := openNode(*homeFl, "none")
	if err != nil {
		return err
	}
	defer n.Close()

	models, err := n.QueryModels(queryPath, data)
	if err != nil {
		return fmt.Errorf("failed to run query: %s", err)
	}
	result := make([]keyval, 0, len(models))
	for i, m := range models {
		obj := newObj()
		if err := obj.Unmarshal(m.Value); err != nil {
			return fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		result = append(result, keyval{Key: pact.Address(m.Key), Value: obj})
	}
	pretty, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

type keyval struct {
	Key   pact.Address
	Value pact.Persistent
}
