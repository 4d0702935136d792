package escrow

import (
	"testing"

	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/pacttest"
	"github.com/iov-one/pact/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeMsgValidate(t *testing.T) {
	addr := pacttest.NewCondition().Address()

	cases := map[string]struct {
		msg     InitializeMsg
		wantErr *errors.Error
	}{
		"valid": {
			msg: InitializeMsg{Initializer: addr, FundingAccount: addr, ReceiveAccount: addr,
				Ticker: "IOV", InitializerAmount: 100, TakerAmount: 40},
		},
		"missing initializer": {
			msg: InitializeMsg{FundingAccount: addr, ReceiveAccount: addr,
				Ticker: "IOV", InitializerAmount: 100, TakerAmount: 40},
			wantErr: errors.ErrInput,
		},
		"bad ticker": {
			msg: InitializeMsg{Initializer: addr, FundingAccount: addr, ReceiveAccount: addr,
				Ticker: "iov", InitializerAmount: 100, TakerAmount: 40},
			wantErr: errors.ErrCurrency,
		},
		"nothing wanted in return": {
			msg: InitializeMsg{Initializer: addr, FundingAccount: addr, ReceiveAccount: addr,
				Ticker: "IOV", InitializerAmount: 100},
			wantErr: errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
		})
	}
}

func TestTakeMsgValidate(t *testing.T) {
	addr := pacttest.NewCondition().Address()
	valid := TakeMsg{
		Escrow: addr, Taker: addr, TakerPayAccount: addr, TakerReceiveAccount: addr,
		Initializer: addr, InitializerReceive: addr, Custody: addr,
		InitializerAmount: 100, TakerAmount: 40,
	}
	assert.NoError(t, valid.Validate())

	noCustody := valid
	noCustody.Custody = nil
	err := noCustody.Validate()
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
	assert.Len(t, errors.FieldErrors(err, "Custody"), 1)

	free := valid
	free.TakerAmount = 0
	assert.True(t, errors.ErrAmount.Is(free.Validate()))
}

func TestMsgEncoding(t *testing.T) {
	addr := pacttest.NewCondition().Address()
	take := TakeMsg{
		Escrow: addr, Taker: addr, TakerPayAccount: addr, TakerReceiveAccount: addr,
		Initializer: addr, InitializerReceive: addr, Custody: addr,
		InitializerAmount: 100, TakerAmount: 40,
	}
	raw, err := take.Marshal()
	require.NoError(t, err)
	var got TakeMsg
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, take, got)

	e := Escrow{
		Initialized: true, Initializer: addr, InitializerReceive: addr, Custody: addr,
		InitializerAmount: 100, TakerAmount: 40, Ticker: "IOV", Bump: 254,
		Funding: addr, Reservation: 3,
	}
	x.MustValidate(&e)
	var stored Escrow
	x.MustUnmarshal(&stored, x.MustMarshal(&e))
	assert.Equal(t, e, stored)

	e.Initialized = false
	assert.True(t, errors.ErrState.Is(e.Validate()))
}
