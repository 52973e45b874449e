package storage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ticketsim/pkg/core/storage/dbconfig"
)

// KeyPrefix constants.
const (
	// DataBlock is used for blocks stored by their index.
	DataBlock KeyPrefix = 0x01
	// DataReceipt is used for transaction receipts stored by transaction hash.
	DataReceipt KeyPrefix = 0x02
	// STBalance stores STX balances of principals.
	STBalance KeyPrefix = 0x60
	// STStorage stores contract data variables and maps.
	STStorage KeyPrefix = 0x70
	// STNFTOwner maps non-fungible asset identifiers to their owners.
	STNFTOwner      KeyPrefix = 0x71
	SYSCurrentBlock KeyPrefix = 0xc0
	SYSVersion      KeyPrefix = 0xf0
)

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend for the chain data, it's
	// not intended to be used directly, you wrap it with some memory cache
	// layer most of the time.
	Store interface {
		Get([]byte) ([]byte, error)
		// PutChangeSet allows to push prepared changeset to the Store. Keys
		// with nil values are deleted.
		PutChangeSet(puts map[string][]byte) error
		// Seek calls f for every key-value pair with the given prefix in
		// ascending key order until f returns false. Key and value slices
		// should not be modified.
		Seek(prefix []byte, f func(k, v []byte) bool)
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	case dbconfig.InMemoryDB, "":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
