package simtest

import (
	"testing"

	"github.com/nspcc-dev/ticketsim/pkg/config"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewChain creates a new in-memory chain with default configuration. It's
// closed automatically when the test ends.
func NewChain(t testing.TB) *core.Blockchain {
	return NewChainWithConfig(t, config.Default())
}

// NewChainWithConfig creates a new in-memory chain with the given
// configuration.
func NewChainWithConfig(t testing.TB, cfg config.Config) *core.Blockchain {
	bc, err := core.NewBlockchain(storage.NewMemoryStore(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bc.Close() })
	return bc
}
