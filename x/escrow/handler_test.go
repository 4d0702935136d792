package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/gconf"
	"github.com/iov-one/pact/pacttest"
	"github.com/iov-one/pact/store"
	"github.com/iov-one/pact/x"
	"github.com/iov-one/pact/x/token"
	"github.com/iov-one/pact/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registry collects handlers by path.
type registry map[string]pact.Handler

func (r registry) Handle(path string, h pact.Handler) {
	r[path] = h
}

// market is a ledger with an initializer selling IOV for ETH and a taker
// buying them.
type market struct {
	db   pact.CacheableKVStore
	ctrl token.BaseController
	auth *pacttest.CtxAuth

	initialize pact.Handler
	take       pact.Handler

	initializer pact.Condition
	taker       pact.Condition

	funding   pact.Address // initializer IOV
	receive   pact.Address // initializer ETH
	pay       pact.Address // taker ETH
	takerRecv pact.Address // taker IOV
}

func newMarket(t testing.TB, funding, pay, reservation uint64) *market {
	t.Helper()

	m := &market{
		db:          store.MemStore(),
		ctrl:        token.NewController(),
		auth:        &pacttest.CtxAuth{Key: "auth"},
		initializer: pacttest.NewCondition(),
		taker:       pacttest.NewCondition(),
	}
	r := make(registry)
	RegisterRoutes(r, m.auth, m.ctrl)
	m.initialize = r[pathInitializeMsg]
	m.take = r[pathTakeMsg]
	require.NotNil(t, m.initialize)
	require.NotNil(t, m.take)

	m.funding = m.account(t, m.initializer, "IOV", funding)
	m.receive = m.account(t, m.initializer, "ETH", 0)
	m.pay = m.account(t, m.taker, "ETH", pay)
	m.takerRecv = m.account(t, m.taker, "IOV", 0)

	if reservation > 0 {
		require.NoError(t, gconf.Save(m.db, BucketName, &Configuration{Reservation: reservation}))
	}
	return m
}

func (m *market) account(t testing.TB, owner pact.Condition, ticker string, amount uint64) pact.Address {
	t.Helper()
	addr := token.AccountAddress(owner.Address(), ticker)
	_, err := m.ctrl.CreateAccount(m.db, addr, owner.Address(), ticker)
	require.NoError(t, err)
	if amount > 0 {
		require.NoError(t, m.ctrl.Mint(m.db, addr, amount))
	}
	return addr
}

func (m *market) balance(t testing.TB, addr pact.Address) uint64 {
	t.Helper()
	acc, err := m.ctrl.Account(m.db, addr)
	require.NoError(t, err)
	return acc.Amount
}

func (m *market) signedBy(signers ...pact.Condition) pact.Context {
	return m.auth.SetConditions(context.Background(), signers...)
}

func (m *market) offer(amount, price uint64) *InitializeMsg {
	return &InitializeMsg{
		Initializer:       m.initializer.Address(),
		FundingAccount:    m.funding,
		ReceiveAccount:    m.receive,
		Ticker:            "IOV",
		InitializerAmount: amount,
		TakerAmount:       price,
	}
}

func (m *market) open(t testing.TB, amount, price uint64) (pact.Address, *Escrow) {
	t.Helper()
	res, err := m.initialize.Deliver(m.signedBy(m.initializer), m.db, &pacttest.Tx{Msg: m.offer(amount, price)})
	require.NoError(t, err)
	var e Escrow
	require.NoError(t, NewBucket().One(m.db, res.Data, &e))
	return res.Data, &e
}

func (m *market) takeMsg(addr pact.Address, e *Escrow) *TakeMsg {
	msg := TermsOf(addr, e)
	msg.Taker = m.taker.Address()
	msg.TakerPayAccount = m.pay
	msg.TakerReceiveAccount = m.takerRecv
	return &msg
}

func TestSwap(t *testing.T) {
	m := newMarket(t, 100, 40, 0)
	ctx := m.signedBy(m.initializer)
	initTx := &pacttest.Tx{Msg: m.offer(100, 40)}

	chk, err := m.initialize.Check(ctx, m.db, initTx)
	require.NoError(t, err)
	assert.Equal(t, int64(initializeCost), chk.GasAllocated)
	assert.Equal(t, uint64(100), m.balance(t, m.funding), "check must not write")

	res, err := m.initialize.Deliver(ctx, m.db, initTx)
	require.NoError(t, err)
	record, err := RecordAddress(m.initializer.Address(), "IOV")
	require.NoError(t, err)
	assert.Equal(t, []byte(record), res.Data)

	var e Escrow
	require.NoError(t, NewBucket().One(m.db, record, &e))
	custody, err := CustodyAddress(m.initializer.Address(), "IOV")
	require.NoError(t, err)
	authority, bump, err := Authority(m.initializer.Address(), "IOV")
	require.NoError(t, err)
	assert.Equal(t, Escrow{
		Initialized:        true,
		Initializer:        m.initializer.Address(),
		InitializerReceive: m.receive,
		Custody:            custody,
		InitializerAmount:  100,
		TakerAmount:        40,
		Ticker:             "IOV",
		Bump:               uint32(bump),
		Funding:            m.funding,
	}, e)

	assert.Equal(t, uint64(0), m.balance(t, m.funding))
	assert.Equal(t, uint64(100), m.balance(t, custody))
	acc, err := m.ctrl.Account(m.db, custody)
	require.NoError(t, err)
	assert.Equal(t, authority.Address(), acc.Owner)

	takeTx := &pacttest.Tx{Msg: m.takeMsg(record, &e)}
	tctx := m.signedBy(m.taker)
	_, err = m.take.Check(tctx, m.db, takeTx)
	require.NoError(t, err)
	res, err = m.take.Deliver(tctx, m.db, takeTx)
	require.NoError(t, err)
	assert.Equal(t, []byte(record), res.Data)

	assert.Equal(t, uint64(40), m.balance(t, m.receive))
	assert.Equal(t, uint64(100), m.balance(t, m.takerRecv))
	assert.Equal(t, uint64(0), m.balance(t, m.pay))
	assert.True(t, errors.ErrNotFound.Is(NewBucket().Has(m.db, record)))
	_, err = m.ctrl.Account(m.db, custody)
	assert.True(t, errors.ErrNotFound.Is(err), "custody account must be closed")

	// Replaying the settlement finds nothing to take.
	_, err = m.take.Deliver(tctx, m.db, takeTx)
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
	assert.Equal(t, uint64(40), m.balance(t, m.receive))
	assert.Equal(t, uint64(100), m.balance(t, m.takerRecv))

	// Once settled, the same pair may open a new offer.
	require.NoError(t, m.ctrl.Mint(m.db, m.funding, 10))
	_, err = m.initialize.Deliver(ctx, m.db, &pacttest.Tx{Msg: m.offer(10, 1)})
	assert.NoError(t, err)
}

func TestInitializeRejected(t *testing.T) {
	stranger := pacttest.NewCondition()

	cases := map[string]struct {
		funding uint64
		signer  func(m *market) pact.Condition
		msg     func(m *market) *InitializeMsg
		before  func(t testing.TB, m *market)
		wantErr *errors.Error
		// balance of the funding account left afterwards
		wantFunding uint64
	}{
		"insufficient funds": {
			funding:     50,
			msg:         func(m *market) *InitializeMsg { return m.offer(100, 40) },
			wantErr:     errors.ErrInsufficientAmount,
			wantFunding: 50,
		},
		"initializer did not sign": {
			funding:     100,
			signer:      func(*market) pact.Condition { return stranger },
			msg:         func(m *market) *InitializeMsg { return m.offer(100, 40) },
			wantErr:     errors.ErrUnauthorized,
			wantFunding: 100,
		},
		"funding account of someone else": {
			funding: 100,
			msg: func(m *market) *InitializeMsg {
				msg := m.offer(10, 40)
				msg.FundingAccount = m.pay
				msg.Ticker = "ETH"
				return msg
			},
			wantErr:     errors.ErrUnauthorized,
			wantFunding: 100,
		},
		"funding account holds another ticker": {
			funding: 100,
			msg: func(m *market) *InitializeMsg {
				msg := m.offer(100, 40)
				msg.Ticker = "BTC"
				return msg
			},
			wantErr:     ErrTermsMismatch,
			wantFunding: 100,
		},
		"missing funding account": {
			funding: 100,
			msg: func(m *market) *InitializeMsg {
				msg := m.offer(100, 40)
				msg.FundingAccount = token.AccountAddress(m.initializer.Address(), "BTC")
				return msg
			},
			wantErr:     errors.ErrNotFound,
			wantFunding: 100,
		},
		"missing receive account": {
			funding: 100,
			msg: func(m *market) *InitializeMsg {
				msg := m.offer(100, 40)
				msg.ReceiveAccount = token.AccountAddress(m.initializer.Address(), "BTC")
				return msg
			},
			wantErr:     errors.ErrNotFound,
			wantFunding: 100,
		},
		"record collision": {
			funding: 300,
			before: func(t testing.TB, m *market) {
				m.open(t, 100, 40)
			},
			msg:         func(m *market) *InitializeMsg { return m.offer(100, 99) },
			wantErr:     errors.ErrDuplicate,
			wantFunding: 200,
		},
		"invalid message": {
			funding:     100,
			msg:         func(m *market) *InitializeMsg { return m.offer(0, 40) },
			wantErr:     errors.ErrAmount,
			wantFunding: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := newMarket(t, tc.funding, 0, 0)
			if tc.before != nil {
				tc.before(t, m)
			}
			signer := m.initializer
			if tc.signer != nil {
				signer = tc.signer(m)
			}
			ctx := m.signedBy(signer)
			msg := tc.msg(m)
			tx := &pacttest.Tx{Msg: msg}

			var before Escrow
			record, err := RecordAddress(m.initializer.Address(), "IOV")
			require.NoError(t, err)
			hadRecord := NewBucket().One(m.db, record, &before) == nil

			_, err = m.initialize.Check(ctx, m.db, tx)
			assert.True(t, tc.wantErr.Is(err), "check: %+v", err)
			_, err = m.initialize.Deliver(ctx, m.db, tx)
			assert.True(t, tc.wantErr.Is(err), "deliver: %+v", err)

			assert.Equal(t, tc.wantFunding, m.balance(t, m.funding))
			var after Escrow
			if hadRecord {
				require.NoError(t, NewBucket().One(m.db, record, &after))
				assert.Equal(t, before, after)
			} else {
				assert.True(t, errors.ErrNotFound.Is(NewBucket().One(m.db, record, &after)))
			}
		})
	}
}

func TestTakeRejected(t *testing.T) {
	stranger := pacttest.NewCondition()

	cases := map[string]struct {
		pay     uint64
		signer  func(m *market) pact.Condition
		modify  func(m *market, msg *TakeMsg)
		wantErr *errors.Error
	}{
		"taker amount mismatch": {
			pay:     100,
			modify:  func(_ *market, msg *TakeMsg) { msg.TakerAmount = 39 },
			wantErr: ErrTermsMismatch,
		},
		"initializer amount mismatch": {
			pay:     100,
			modify:  func(_ *market, msg *TakeMsg) { msg.InitializerAmount = 101 },
			wantErr: ErrTermsMismatch,
		},
		"initializer mismatch": {
			pay:     100,
			modify:  func(_ *market, msg *TakeMsg) { msg.Initializer = stranger.Address() },
			wantErr: ErrTermsMismatch,
		},
		"receive account mismatch": {
			pay:     100,
			modify:  func(m *market, msg *TakeMsg) { msg.InitializerReceive = m.pay },
			wantErr: ErrTermsMismatch,
		},
		"custody mismatch": {
			pay:     100,
			modify:  func(m *market, msg *TakeMsg) { msg.Custody = m.funding },
			wantErr: ErrTermsMismatch,
		},
		"unknown escrow": {
			pay: 100,
			modify: func(_ *market, msg *TakeMsg) {
				msg.Escrow = stranger.Address()
			},
			wantErr: errors.ErrNotFound,
		},
		"taker did not sign": {
			pay:     100,
			signer:  func(*market) pact.Condition { return stranger },
			wantErr: errors.ErrUnauthorized,
		},
		"pay account of someone else": {
			pay: 100,
			signer: func(m *market) pact.Condition {
				return m.initializer
			},
			modify: func(m *market, msg *TakeMsg) {
				msg.Taker = m.initializer.Address()
			},
			wantErr: errors.ErrUnauthorized,
		},
		"insufficient funds": {
			pay:     39,
			wantErr: errors.ErrInsufficientAmount,
		},
		"receive account holds another ticker": {
			pay: 100,
			modify: func(m *market, msg *TakeMsg) {
				msg.TakerReceiveAccount = m.pay
			},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := newMarket(t, 100, tc.pay, 0)
			record, e := m.open(t, 100, 40)

			msg := m.takeMsg(record, e)
			if tc.modify != nil {
				tc.modify(m, msg)
			}
			signer := m.taker
			if tc.signer != nil {
				signer = tc.signer(m)
			}
			ctx := m.signedBy(signer)
			tx := &pacttest.Tx{Msg: msg}

			_, err := m.take.Check(ctx, m.db, tx)
			assert.True(t, tc.wantErr.Is(err), "check: %+v", err)
			_, err = m.take.Deliver(ctx, m.db, tx)
			assert.True(t, tc.wantErr.Is(err), "deliver: %+v", err)

			// No leg of the swap happened and the offer is still open.
			assert.Equal(t, tc.pay, m.balance(t, m.pay))
			assert.Equal(t, uint64(0), m.balance(t, m.receive))
			assert.Equal(t, uint64(0), m.balance(t, m.takerRecv))
			assert.Equal(t, uint64(100), m.balance(t, e.Custody))
			assert.NoError(t, NewBucket().Has(m.db, record))

			// The correct settlement still succeeds afterwards.
			if tc.pay >= 40 {
				_, err = m.take.Deliver(m.signedBy(m.taker), m.db, &pacttest.Tx{Msg: m.takeMsg(record, e)})
				assert.NoError(t, err)
			}
		})
	}
}

func TestReservation(t *testing.T) {
	m := newMarket(t, 110, 40, 5)
	record, e := m.open(t, 100, 40)
	assert.Equal(t, uint64(5), e.Reservation)
	assert.Equal(t, m.funding, e.Funding)

	reserve, err := ReserveAddress(m.initializer.Address(), "IOV")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), m.balance(t, reserve))
	assert.Equal(t, uint64(5), m.balance(t, m.funding))

	_, err = m.take.Deliver(m.signedBy(m.taker), m.db, &pacttest.Tx{Msg: m.takeMsg(record, e)})
	require.NoError(t, err)

	assert.Equal(t, uint64(10), m.balance(t, m.funding))
	_, err = m.ctrl.Account(m.db, reserve)
	assert.True(t, errors.ErrNotFound.Is(err), "reserve account must be closed")
}

func TestDustDoesNotBlockTake(t *testing.T) {
	m := newMarket(t, 110, 40, 5)
	record, e := m.open(t, 100, 40)
	reserve, err := ReserveAddress(m.initializer.Address(), "IOV")
	require.NoError(t, err)

	// Anyone can top up accounts held by the escrow authority.
	stranger := pacttest.NewCondition()
	tip := m.account(t, stranger, "IOV", 2)
	sctx := m.signedBy(stranger)
	require.NoError(t, m.ctrl.Transfer(sctx, m.auth, m.db, tip, e.Custody, 1))
	require.NoError(t, m.ctrl.Transfer(sctx, m.auth, m.db, tip, reserve, 1))

	_, err = m.take.Deliver(m.signedBy(m.taker), m.db, &pacttest.Tx{Msg: m.takeMsg(record, e)})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), m.balance(t, m.takerRecv))
	assert.Equal(t, uint64(40), m.balance(t, m.receive))
	// 5 left after opening, 1 custody surplus and 6 held in reserve.
	assert.Equal(t, uint64(12), m.balance(t, m.funding))
	_, err = m.ctrl.Account(m.db, e.Custody)
	assert.True(t, errors.ErrNotFound.Is(err), "custody account must be closed")
	_, err = m.ctrl.Account(m.db, reserve)
	assert.True(t, errors.ErrNotFound.Is(err), "reserve account must be closed")
}

func TestSurplusReopensClosedFunding(t *testing.T) {
	m := newMarket(t, 100, 40, 0)
	record, e := m.open(t, 100, 40)

	// Funding is empty once the offer is open and its owner closes it.
	require.NoError(t, m.ctrl.CloseAccount(m.signedBy(m.initializer), m.auth, m.db, m.funding))
	stranger := pacttest.NewCondition()
	tip := m.account(t, stranger, "IOV", 3)
	require.NoError(t, m.ctrl.Transfer(m.signedBy(stranger), m.auth, m.db, tip, e.Custody, 3))

	_, err := m.take.Deliver(m.signedBy(m.taker), m.db, &pacttest.Tx{Msg: m.takeMsg(record, e)})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), m.balance(t, m.funding))
}

// failingRelease refuses to move funds out of one account.
type failingRelease struct {
	token.Controller
	frozen pact.Address
}

func (f failingRelease) Transfer(ctx pact.Context, auth x.Authenticator, db pact.KVStore, src, dest pact.Address, amount uint64) error {
	if src.Equals(f.frozen) {
		return errors.Wrapf(errors.ErrState, "account %s frozen", src)
	}
	return f.Controller.Transfer(ctx, auth, db, src, dest, amount)
}

func TestFailedReleaseRollsBackPayment(t *testing.T) {
	m := newMarket(t, 100, 40, 0)
	record, e := m.open(t, 100, 40)

	h := TakeHandler{
		auth:    m.auth,
		bucket:  NewBucket(),
		control: failingRelease{Controller: m.ctrl, frozen: e.Custody},
	}
	ctx := m.signedBy(m.taker)
	tx := &pacttest.Tx{Msg: m.takeMsg(record, e)}

	// Without a savepoint the taker payment is already written when the
	// release fails.
	cache := m.db.CacheWrap()
	_, err := h.Deliver(ctx, cache, tx)
	assert.True(t, errors.ErrState.Is(err), "%+v", err)
	paid, err := m.ctrl.Account(cache, m.pay)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), paid.Amount)
	cache.Discard()

	_, err = pacttest.Decorate(h, utils.NewSavepoint().OnDeliver()).Deliver(ctx, m.db, tx)
	assert.True(t, errors.ErrState.Is(err), "%+v", err)

	assert.Equal(t, uint64(40), m.balance(t, m.pay))
	assert.Equal(t, uint64(0), m.balance(t, m.receive))
	assert.Equal(t, uint64(0), m.balance(t, m.takerRecv))
	assert.Equal(t, uint64(100), m.balance(t, e.Custody))
	var stored Escrow
	require.NoError(t, NewBucket().One(m.db, record, &stored))
	assert.Equal(t, *e, stored)
}

func TestReservationNotCovered(t *testing.T) {
	m := newMarket(t, 100, 40, 1)
	_, err := m.initialize.Deliver(m.signedBy(m.initializer), m.db, &pacttest.Tx{Msg: m.offer(100, 40)})
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)
	assert.Equal(t, uint64(100), m.balance(t, m.funding))
}

func TestRacingTakes(t *testing.T) {
	m := newMarket(t, 100, 40, 0)
	record, e := m.open(t, 100, 40)

	rival := pacttest.NewCondition()
	rivalPay := m.account(t, rival, "ETH", 40)
	rivalRecv := m.account(t, rival, "IOV", 0)

	take := pacttest.Decorate(m.take, utils.NewSavepoint().OnDeliver())

	_, err := take.Deliver(m.signedBy(m.taker), m.db, &pacttest.Tx{Msg: m.takeMsg(record, e)})
	require.NoError(t, err)

	late := TermsOf(record, e)
	late.Taker = rival.Address()
	late.TakerPayAccount = rivalPay
	late.TakerReceiveAccount = rivalRecv
	_, err = take.Deliver(m.signedBy(rival), m.db, &pacttest.Tx{Msg: &late})
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	assert.Equal(t, uint64(40), m.balance(t, rivalPay))
	assert.Equal(t, uint64(0), m.balance(t, rivalRecv))
	assert.Equal(t, uint64(100), m.balance(t, m.takerRecv))
	assert.Equal(t, uint64(40), m.balance(t, m.receive))
}

func TestCustodyOnlyReleasedByTake(t *testing.T) {
	m := newMarket(t, 100, 40, 0)
	_, e := m.open(t, 100, 40)

	// Neither the initializer nor the escrow authenticator outside of a
	// settlement can move funds held in custody.
	auth := x.ChainAuth(m.auth, Authenticate{})
	ctx := m.signedBy(m.initializer, m.taker)
	assert.Empty(t, Authenticate{}.GetConditions(ctx))

	err := m.ctrl.Transfer(ctx, auth, m.db, e.Custody, m.takerRecv, 100)
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)
	err = m.ctrl.CloseAccount(ctx, auth, m.db, e.Custody)
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)
	assert.Equal(t, uint64(100), m.balance(t, e.Custody))

	authority, err := authorityWithBump(e.Initializer, e.Ticker, uint8(e.Bump))
	require.NoError(t, err)
	cctx := withCustody(ctx, authority)
	assert.True(t, Authenticate{}.HasAddress(cctx, authority.Address()))
	assert.False(t, Authenticate{}.HasAddress(cctx, m.initializer.Address()))
}
