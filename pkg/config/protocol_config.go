package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DefaultTimePerBlock is the default simulated interval between blocks.
const DefaultTimePerBlock = 10 * time.Minute

// accountSeedPrefix is mixed into the account name to derive its key.
const accountSeedPrefix = "ticketsim account "

type (
	// ProtocolConfiguration represents the chain parameters.
	ProtocolConfiguration struct {
		// GenesisTimestamp is the timestamp of the genesis block in milliseconds.
		GenesisTimestamp uint64 `yaml:"GenesisTimestamp"`
		// TimePerBlock is the simulated interval between blocks, it only
		// affects block timestamps.
		TimePerBlock            time.Duration `yaml:"TimePerBlock"`
		MaxTransactionsPerBlock uint32        `yaml:"MaxTransactionsPerBlock"`
		// Deployer is the name of the account deploying contracts in genesis.
		Deployer string `yaml:"Deployer"`
		// Accounts are funded in the genesis block.
		Accounts   []Account  `yaml:"Accounts"`
		TicketsNFT TicketsNFT `yaml:"TicketsNFT"`
	}

	// Account is a named genesis account.
	Account struct {
		Name string `yaml:"Name"`
		// Address is optional, a deterministic one derived from the name is
		// used if it's empty.
		Address string `yaml:"Address"`
		Balance uint64 `yaml:"Balance"`
	}

	// TicketsNFT configures the tickets contract.
	TicketsNFT struct {
		Name string `yaml:"Name"`
		// Price of a single ticket in STX.
		Price uint64 `yaml:"Price"`
		// UseByHeight is the first block height at which tickets can't be
		// claimed anymore.
		UseByHeight uint32 `yaml:"UseByHeight"`
		BaseURI     string `yaml:"BaseURI"`
	}
)

// Validate checks ProtocolConfiguration for internal consistency and returns
// an error if anything inappropriate found.
func (p *ProtocolConfiguration) Validate() error {
	if p.TimePerBlock <= 0 {
		return errors.New("TimePerBlock must be positive")
	}
	if p.MaxTransactionsPerBlock == 0 {
		return errors.New("MaxTransactionsPerBlock must be positive")
	}
	if len(p.Accounts) == 0 {
		return errors.New("no accounts configured")
	}
	var (
		names  = make(map[string]bool, len(p.Accounts))
		hashes = make(map[util.Uint160]string, len(p.Accounts))
	)
	for _, acc := range p.Accounts {
		if acc.Name == "" {
			return errors.New("account with empty name")
		}
		if names[acc.Name] {
			return fmt.Errorf("duplicate account %s", acc.Name)
		}
		names[acc.Name] = true
		h, err := acc.ScriptHash()
		if err != nil {
			return fmt.Errorf("account %s: %w", acc.Name, err)
		}
		if other, ok := hashes[h]; ok {
			return fmt.Errorf("accounts %s and %s have the same address", other, acc.Name)
		}
		hashes[h] = acc.Name
	}
	if !names[p.Deployer] {
		return fmt.Errorf("deployer account %q is not configured", p.Deployer)
	}
	if p.TicketsNFT.Name == "" {
		return errors.New("TicketsNFT.Name is empty")
	}
	if p.TicketsNFT.Price == 0 {
		return errors.New("TicketsNFT.Price must be positive")
	}
	if p.TicketsNFT.UseByHeight == 0 {
		return errors.New("TicketsNFT.UseByHeight must be positive")
	}
	return nil
}

// ScriptHash returns the principal of the account, either parsed from the
// Address or derived from the Name.
func (a Account) ScriptHash() (util.Uint160, error) {
	if a.Address != "" {
		return address.StringToUint160(a.Address)
	}
	seed := hash.Sha256([]byte(accountSeedPrefix + a.Name))
	pk, err := keys.NewPrivateKeyFromBytes(seed.BytesBE())
	if err != nil {
		return util.Uint160{}, fmt.Errorf("failed to derive key: %w", err)
	}
	return pk.GetScriptHash(), nil
}
