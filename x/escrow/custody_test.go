package escrow

import (
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/pacttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedAddresses(t *testing.T) {
	alice := pacttest.NewCondition().Address()
	bob := pacttest.NewCondition().Address()

	derivations := map[string]func(pact.Address, string) (pact.Address, error){
		"record":  RecordAddress,
		"custody": CustodyAddress,
		"reserve": ReserveAddress,
	}

	seen := make(map[string]string)
	for name, fn := range derivations {
		for _, owner := range []pact.Address{alice, bob} {
			for _, ticker := range []string{"IOV", "ETH"} {
				addr, err := fn(owner, ticker)
				require.NoError(t, err)
				require.NoError(t, addr.Validate())

				again, err := fn(owner, ticker)
				require.NoError(t, err)
				assert.Equal(t, addr, again, "%s derivation must be deterministic", name)

				if prev, ok := seen[addr.String()]; ok {
					t.Fatalf("%s collides with %s", name, prev)
				}
				seen[addr.String()] = name
			}
		}
	}
}

func TestAuthority(t *testing.T) {
	initializer := pacttest.NewCondition().Address()

	authority, bump, err := Authority(initializer, "IOV")
	require.NoError(t, err)

	ext, typ, data, err := authority.Parse()
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ext)
	assert.Equal(t, "pda", typ)
	assert.False(t, pact.IsOnCurve(data), "authority must not have a private key")

	again, err := authorityWithBump(initializer, "IOV", bump)
	require.NoError(t, err)
	assert.Equal(t, authority, again)

	other, _, err := Authority(initializer, "ETH")
	require.NoError(t, err)
	assert.NotEqual(t, authority, other)

	custody, err := CustodyAddress(initializer, "IOV")
	require.NoError(t, err)
	assert.NotEqual(t, authority.Address(), custody)
}
