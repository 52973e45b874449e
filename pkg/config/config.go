package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/nspcc-dev/ticketsim/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxTransactionsPerBlock is the default block size limit.
	DefaultMaxTransactionsPerBlock = 512
	// DefaultReceiptCacheSize is the default number of receipts kept in memory.
	DefaultReceiptCacheSize = 1024
	// DefaultAccountBalance is the default genesis STX balance of an account.
	DefaultAccountBalance = 100_000_000_000_000
	// DefaultConfigPath is the default path to the config file.
	DefaultConfigPath = "./config/devnet.yml"
)

// Version is the version of the simulator, set at build time.
var Version string

// Config top level struct representing the config
// for the simulator.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns devnet configuration with a deployer and eight funded
// wallets, the same setup the contract tests rely on.
func Default() Config {
	accounts := []Account{{Name: "deployer", Balance: DefaultAccountBalance}}
	for i := 1; i <= 8; i++ {
		accounts = append(accounts, Account{
			Name:    fmt.Sprintf("wallet_%d", i),
			Balance: DefaultAccountBalance,
		})
	}
	return Config{
		ProtocolConfiguration: ProtocolConfiguration{
			GenesisTimestamp:        1_700_000_000_000,
			TimePerBlock:            DefaultTimePerBlock,
			MaxTransactionsPerBlock: DefaultMaxTransactionsPerBlock,
			Deployer:                "deployer",
			Accounts:                accounts,
			TicketsNFT: TicketsNFT{
				Name:        "tickets-nft",
				Price:       100,
				UseByHeight: 10,
				BaseURI:     "ipfs://tickets/",
			},
		},
		ApplicationConfiguration: ApplicationConfiguration{
			LogLevel: "info",
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			ReceiptCacheSize: DefaultReceiptCacheSize,
		},
	}
}

// Load attempts to load the config from the given path; default config is
// returned for an empty path.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads config from the provided path. Fields missing in the file
// keep their default values.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Decode(configData)
}

// Decode parses YAML config data on top of the default configuration and
// validates the result.
func Decode(data []byte) (Config, error) {
	config := Default()
	// Accounts from the file replace the default ones rather than being
	// merged into them.
	config.ProtocolConfiguration.Accounts = nil

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if len(config.ProtocolConfiguration.Accounts) == 0 {
		config.ProtocolConfiguration.Accounts = Default().ProtocolConfiguration.Accounts
	}

	err = config.ProtocolConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
