package pact

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))

	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	ctx := WithLogInfo(WithLogger(bg, logger), "escrow", "E1")
	GetLogger(ctx).Info("escrow settled", "taker", "T1")
	assert.Contains(t, buf.String(), "escrow=E1")
	assert.Contains(t, buf.String(), "taker=T1")
}

func TestContextBlockInfo(t *testing.T) {
	ctx := context.Background()

	_, ok := GetHeight(ctx)
	assert.False(t, ok)
	assert.Panics(t, func() { GetChainID(ctx) })

	ctx = WithChainID(WithHeight(ctx, 42), "pact-test")
	height, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), height)
	assert.Equal(t, "pact-test", GetChainID(ctx))

	// Block information is set once per block.
	assert.Panics(t, func() { WithHeight(ctx, 43) })
	assert.Panics(t, func() { WithChainID(ctx, "pact-other") })

	// Logger changes keep the block information.
	ctx = WithLogInfo(ctx, "height", 42)
	height, _ = GetHeight(ctx)
	assert.Equal(t, int64(42), height)
}

func TestChainID(t *testing.T) {
	cases := map[string]bool{
		"":                                  false,
		"pact":                              false,
		"pact-test":                         true,
		"pact_Main-01":                      true,
		"pact;test":                         false,
		"pact-chain-id-far-too-long-to-use": false,
	}
	for id, valid := range cases {
		assert.Equal(t, valid, IsValidChainID(id), id)
	}
	assert.Panics(t, func() { WithChainID(context.Background(), "pact;test") })
}
