package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/pact"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. Any
// format understood by pact.ParseAddress is accepted.
// If given value cannot be deserialized, process is terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *pact.Address {
	var a flagaddr
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*pact.Address)(&a)
}

type flagaddr pact.Address

func (a flagaddr) String() string {
	if len(a) == 0 {
		return ""
	}
	return pact.Address(a).String()
}

func (a *flagaddr) Set(raw string) error {
	addr, err := pact.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagaddr(addr)
	return nil
}
