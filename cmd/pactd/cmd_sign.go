package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/pact/crypto"
	"github.com/iov-one/pact/x/sigs"
)

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a transaction from the input, sign it and write it to the output.

The chain id and the signer sequence are read from the ledger state. Use
the seq flag when signing several transactions before submitting them.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory holding the ledger state. You can use PACTD_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		seqFl = fl.Int64("seq", -1, "Signer sequence. Read from the ledger state when negative.")
	)
	fl.Parse(args)

	key, err := crypto.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}

	chainID, seq, err := signerState(*homeFl, key.PublicKey())
	if err != nil {
		return err
	}
	if *seqFl >= 0 {
		seq = uint64(*seqFl)
	}

	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)
	_, err = writeTx(output, tx)
	return err
}

// signerState returns the chain id and the next sequence expected from
// given signer.
func signerState(home string, pub crypto.PublicKey) (string, uint64, error) {
	n, err := openNode(home, "none")
	if err != nil {
		return "", 0, err
	}
	defer n.Close()

	chainID := n.GetChainID()
	if chainID == "" {
		return "", 0, fmt.Errorf("ledger not initialized, run init first")
	}
	models, err := n.QueryModels("/auth", pub.Address())
	if err != nil {
		return "", 0, fmt.Errorf("cannot query signer: %s", err)
	}
	if len(models) == 0 {
		return chainID, 0, nil
	}
	var user sigs.UserData
	if err := user.Unmarshal(models[0].Value); err != nil {
		return "", 0, fmt.Errorf("cannot decode signer: %s", err)
	}
	return chainID, user.Sequence, nil
}
