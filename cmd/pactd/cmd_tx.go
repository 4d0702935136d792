package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/x/escrow"
	"github.com/iov-one/pact/x/token"
)

func cmdCreateAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that opens an empty token account.

The account is owned by the private key holder unless an owner is given.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		ownerFl  = flAddress(fl, "owner", "", "Account owner. Defaults to the private key address.")
		tickerFl = fl.String("ticker", "", "Token held by the account.")
	)
	fl.Parse(args)

	owner := *ownerFl
	if owner == nil {
		var err error
		if owner, err = keyAddress(*keyPathFl); err != nil {
			return err
		}
	}
	msg := &token.CreateAccountMsg{
		Owner:  owner,
		Ticker: *tickerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeMsgTx(output, msg)
}

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring tokens between two accounts of the
same ticker.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl    = flAddress(fl, "src", "", "Account the tokens are taken from.")
		dstFl    = flAddress(fl, "dst", "", "Account the tokens are sent to.")
		amountFl = fl.Uint64("amount", 0, "Amount of tokens to transfer.")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer.")
	)
	fl.Parse(args)

	msg := &token.SendMsg{
		Source:      *srcFl,
		Destination: *dstFl,
		Amount:      *amountFl,
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeMsgTx(output, msg)
}

func cmdInitialize(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that opens an escrow offer.

The given amount is moved from the funding account into custody. Whoever
pays the asked amount into the receive account gets the escrowed tokens.
The private key holder is the initializer.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		tickerFl  = fl.String("ticker", "", "Ticker of the escrowed tokens.")
		fundingFl = flAddress(fl, "funding", "", "Account the escrowed tokens are taken from. Defaults to the initializer account of given ticker.")
		receiveFl = flAddress(fl, "receive", "", "Account the taker payment is sent to.")
		amountFl  = fl.Uint64("amount", 0, "Amount of tokens put into escrow.")
		askFl     = fl.Uint64("ask", 0, "Amount of tokens expected from the taker.")
	)
	fl.Parse(args)

	initializer, err := keyAddress(*keyPathFl)
	if err != nil {
		return err
	}
	funding := *fundingFl
	if funding == nil {
		funding = token.AccountAddress(initializer, *tickerFl)
	}
	msg := &escrow.InitializeMsg{
		Initializer:       initializer,
		FundingAccount:    funding,
		ReceiveAccount:    *receiveFl,
		Ticker:            *tickerFl,
		InitializerAmount: *amountFl,
		TakerAmount:       *askFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeMsgTx(output, msg)
}

func cmdTake(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that accepts an escrow offer.

Terms of the offer are read from the ledger state. The transaction carries
them along and is rejected if the offer changed before it is executed.
The private key holder is the taker.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Directory holding the ledger state. You can use PACTD_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		escrowFl  = flAddress(fl, "escrow", "", "Address of the escrow record.")
		payFl     = flAddress(fl, "pay", "", "Account the taker pays from.")
		receiveFl = flAddress(fl, "receive", "", "Account the escrowed tokens are sent to. Defaults to the taker account of the escrowed ticker.")
		amountFl  = fl.Uint64("amount", 0, "Expected amount held in escrow. Defaults to the recorded amount.")
		askFl     = fl.Uint64("ask", 0, "Expected amount paid by the taker. Defaults to the recorded amount.")
	)
	fl.Parse(args)

	taker, err := keyAddress(*keyPathFl)
	if err != nil {
		return err
	}
	e, err := loadEscrow(*homeFl, *escrowFl)
	if err != nil {
		return err
	}

	msg := escrow.TermsOf(*escrowFl, e)
	msg.Taker = taker
	msg.TakerPayAccount = *payFl
	msg.TakerReceiveAccount = *receiveFl
	if msg.TakerReceiveAccount == nil {
		msg.TakerReceiveAccount = token.AccountAddress(taker, e.Ticker)
	}
	if *amountFl != 0 {
		msg.InitializerAmount = *amountFl
	}
	if *askFl != 0 {
		msg.TakerAmount = *askFl
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeMsgTx(output, &msg)
}

func loadEscrow(home string, addr pact.Address) (*escrow.Escrow, error) {
	if err := addr.Validate(); err != nil {
		return nil, fmt.Errorf("invalid escrow address: %s", err)
	}
	n, err := openNode(home, "none")
	if err != nil {
		return nil, err
	}
	defer n.Close()

	models, err := n.QueryModels("/escrows", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot query escrow: %s", err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("escrow %s not found", addr)
	}
	var e escrow.Escrow
	if err := e.Unmarshal(models[0].Value); err != nil {
		return nil, fmt.Errorf("cannot decode escrow: %s", err)
	}
	return &e, nil
}

func cmdEscrowAddress(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the addresses derived for an escrow of given initializer and ticker.

These are the escrow record, the custody account, the reserve account and
the custodial authority together with its bump.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKey(),
			"Path to the private key file. You can use PACTD_PRIV_KEY environment variable to set it.")
		initializerFl = flAddress(fl, "initializer", "", "Escrow initializer. Defaults to the private key address.")
		tickerFl      = fl.String("ticker", "", "Ticker of the escrowed tokens.")
	)
	fl.Parse(args)

	initializer := *initializerFl
	if initializer == nil {
		var err error
		if initializer, err = keyAddress(*keyPathFl); err != nil {
			return err
		}
	}
	if !token.IsTicker(*tickerFl) {
		return fmt.Errorf("invalid ticker %q", *tickerFl)
	}

	record, err := escrow.RecordAddress(initializer, *tickerFl)
	if err != nil {
		return err
	}
	custody, err := escrow.CustodyAddress(initializer, *tickerFl)
	if err != nil {
		return err
	}
	reserve, err := escrow.ReserveAddress(initializer, *tickerFl)
	if err != nil {
		return err
	}
	authority, bump, err := escrow.Authority(initializer, *tickerFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "record\t%s\ncustody\t%s\nreserve\t%s\nauthority\t%s\nbump\t%d\n",
		record, custody, reserve, authority.Address(), bump)
	return err
}
