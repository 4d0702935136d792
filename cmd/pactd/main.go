package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/pact"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function reads from input and writes to output only. Given args
// are the command line arguments without the program and the command name.
// Transactions are passed between commands as length prefixed binaries, so
// that creating, signing and submitting can be combined into a pipeline:
//
//   $ pactd initialize -ticker IOV -amount 100 -ask 40 -receive <addr> \
//       | pactd sign \
//       | pactd submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"create-account": cmdCreateAccount,
	"escrow-address": cmdEscrowAddress,
	"init":           cmdInit,
	"initialize":     cmdInitialize,
	"keyaddr":        cmdKeyaddr,
	"keygen":         cmdKeygen,
	"query":          cmdQuery,
	"send":           cmdSend,
	"sign":           cmdSign,
	"submit":         cmdSubmit,
	"take":           cmdTake,
	"version":        cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s runs a local escrow ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(input io.Reader, output io.Writer, args []string) error {
	_, err := fmt.Fprintln(output, pact.Version())
	return err
}
