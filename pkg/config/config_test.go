package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/ticketsim/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

const devnetConfigPath = "../../config/devnet.yml"

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ProtocolConfiguration.Validate())
	require.NoError(t, cfg.ApplicationConfiguration.Validate())
	require.Len(t, cfg.ProtocolConfiguration.Accounts, 9)
	require.Equal(t, uint64(100), cfg.ProtocolConfiguration.TicketsNFT.Price)
	require.Equal(t, uint32(10), cfg.ProtocolConfiguration.TicketsNFT.UseByHeight)
}

func TestLoadDevnetMatchesDefault(t *testing.T) {
	cfg, err := LoadFile(devnetConfigPath)
	require.NoError(t, err)
	def := Default()
	require.Equal(t, def.ProtocolConfiguration, cfg.ProtocolConfiguration)
	require.Equal(t, dbconfig.InMemoryDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.Equal(t, []string{":2112"}, cfg.ApplicationConfiguration.Prometheus.Addresses)
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
	})
	t.Run("partial file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "partial.yml")
		require.NoError(t, os.WriteFile(p, []byte(`
ProtocolConfiguration:
  TimePerBlock: 5s
  Accounts:
    - Name: deployer
      Balance: 1000
    - Name: alice
      Balance: 500
  TicketsNFT:
    UseByHeight: 3
`), 0644))
		cfg, err := Load(p)
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.ProtocolConfiguration.TimePerBlock)
		require.Equal(t, []Account{{Name: "deployer", Balance: 1000}, {Name: "alice", Balance: 500}},
			cfg.ProtocolConfiguration.Accounts)
		require.Equal(t, uint32(3), cfg.ProtocolConfiguration.TicketsNFT.UseByHeight)
		require.Equal(t, uint64(100), cfg.ProtocolConfiguration.TicketsNFT.Price)
	})
	t.Run("unknown field", func(t *testing.T) {
		_, err := Decode([]byte("ProtocolConfiguration:\n  Magic: 42\n"))
		require.Error(t, err)
	})
}

func TestProtocolConfigurationValidation(t *testing.T) {
	for name, mod := range map[string]func(p *ProtocolConfiguration){
		"zero time per block": func(p *ProtocolConfiguration) { p.TimePerBlock = 0 },
		"zero block size":     func(p *ProtocolConfiguration) { p.MaxTransactionsPerBlock = 0 },
		"no accounts":         func(p *ProtocolConfiguration) { p.Accounts = nil },
		"unknown deployer":    func(p *ProtocolConfiguration) { p.Deployer = "nobody" },
		"empty account name":  func(p *ProtocolConfiguration) { p.Accounts[1].Name = "" },
		"duplicate account":   func(p *ProtocolConfiguration) { p.Accounts[2].Name = p.Accounts[1].Name },
		"zero price":          func(p *ProtocolConfiguration) { p.TicketsNFT.Price = 0 },
		"zero use-by height":  func(p *ProtocolConfiguration) { p.TicketsNFT.UseByHeight = 0 },
		"empty contract name": func(p *ProtocolConfiguration) { p.TicketsNFT.Name = "" },
		"bad address":         func(p *ProtocolConfiguration) { p.Accounts[1].Address = "not an address" },
	} {
		t.Run(name, func(t *testing.T) {
			p := Default().ProtocolConfiguration
			mod(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestAccountScriptHash(t *testing.T) {
	a := Account{Name: "wallet_1"}
	h1, err := a.ScriptHash()
	require.NoError(t, err)
	h2, err := a.ScriptHash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	other, err := Account{Name: "wallet_2"}.ScriptHash()
	require.NoError(t, err)
	require.NotEqual(t, h1, other)
}

func TestApplicationConfigurationValidation(t *testing.T) {
	a := Default().ApplicationConfiguration
	a.LogLevel = "loud"
	require.Error(t, a.Validate())

	a = Default().ApplicationConfiguration
	a.ReceiptCacheSize = -1
	require.Error(t, a.Validate())

	a = Default().ApplicationConfiguration
	a.Prometheus.Enabled = true
	require.Error(t, a.Validate())
	a.Prometheus.Addresses = []string{"localhost:2112"}
	require.NoError(t, a.Validate())
}
