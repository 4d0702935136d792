package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/pact/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

A hex encoded seed makes the key deterministic. It is used as the SLIP-10
master seed, keys are then derived along the given path.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Hex encoded master seed. A random key is generated if not given.")
		pathFl = fl.String("path", crypto.DefaultDerivationPath, "SLIP-10 derivation path used together with a seed.")
	)
	fl.Parse(args)

	var (
		key crypto.PrivateKey
		err error
	)
	if *seedFl == "" {
		key, err = crypto.GenPrivateKey()
	} else {
		var seed []byte
		if seed, err = hex.DecodeString(*seedFl); err != nil {
			return fmt.Errorf("cannot decode seed: %s", err)
		}
		key, err = crypto.DeriveKey(seed, *pathFl)
	}
	if err != nil {
		return fmt.Errorf("cannot generate key: %s", err)
	}
	if err := crypto.SavePrivateKey(*keyPathFl, key); err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.PublicKey().Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		bech32Fl = fl.String("bech32", "", "Human readable part. If given, the address is printed in bech32 format.")
	)
	fl.Parse(args)

	addr, err := keyAddress(*keyPathFl)
	if err != nil {
		return err
	}
	if *bech32Fl == "" {
		_, err = fmt.Fprintln(output, addr)
		return err
	}
	enc, err := addr.Bech32(*bech32Fl)
	if err != nil {
		return fmt.Errorf("cannot encode address: %s", err)
	}
	_, err = fmt.Fprintln(output, enc)
	return err
}
