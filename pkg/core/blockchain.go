package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/config"
	"github.com/nspcc-dev/ticketsim/pkg/contracts/ticketsnft"
	"github.com/nspcc-dev/ticketsim/pkg/core/block"
	"github.com/nspcc-dev/ticketsim/pkg/core/dao"
	"github.com/nspcc-dev/ticketsim/pkg/core/interop"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"go.uber.org/zap"
)

// version is the version of the chain data format, it's checked on resume.
const version = "0.1.0"

// Various errors returned by Blockchain.
var (
	ErrInvalidTargetHeight = errors.New("target height is lower than the current one")
	ErrTooManyTransactions = errors.New("too many transactions in block")
	ErrAlreadyExists       = errors.New("transaction already exists")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrUnknownContract     = errors.New("unknown contract")
	ErrUnknownMethod       = errors.New("unknown method")
	ErrNotReadOnly         = errors.New("method is not read-only")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrVersionMismatch     = errors.New("incompatible chain data version")
)

// Account is a named genesis account.
type Account struct {
	Name       string
	ScriptHash util.Uint160
}

// Blockchain represents the simulated chain. It's safe for concurrent use,
// blocks are mined one at a time.
type Blockchain struct {
	lock sync.RWMutex

	config config.ProtocolConfiguration

	dao *dao.Simple
	log *zap.Logger
	id  uuid.UUID

	height        uint32
	topHash       util.Uint256
	nextTimestamp uint64
	nonce         uint32

	receipts *lru.Cache

	contracts       map[string]interop.Contract
	contractsByHash map[util.Uint160]interop.Contract

	accounts       []Account
	accountsByName map[string]util.Uint160
}

// NewBlockchain returns a new Blockchain over the given store. A genesis
// block is created for an empty store, otherwise the chain continues from the
// last persisted block.
func NewBlockchain(s storage.Store, cfg config.Config, log *zap.Logger) (*Blockchain, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	if err := cfg.ProtocolConfiguration.Validate(); err != nil {
		return nil, fmt.Errorf("invalid protocol configuration: %w", err)
	}
	cacheSize := cfg.ApplicationConfiguration.ReceiptCacheSize
	if cacheSize == 0 {
		cacheSize = config.DefaultReceiptCacheSize
	}
	receipts, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	bc := &Blockchain{
		config:          cfg.ProtocolConfiguration,
		dao:             dao.NewSimple(s),
		id:              uuid.New(),
		receipts:        receipts,
		contracts:       make(map[string]interop.Contract),
		contractsByHash: make(map[util.Uint160]interop.Contract),
		accountsByName:  make(map[string]util.Uint160),
	}
	bc.log = log.With(zap.Stringer("session", bc.id))

	for _, acc := range bc.config.Accounts {
		h, err := acc.ScriptHash()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Name, err)
		}
		bc.accounts = append(bc.accounts, Account{Name: acc.Name, ScriptHash: h})
		bc.accountsByName[acc.Name] = h
	}
	bc.registerContract(ticketsnft.New(bc.config.TicketsNFT, bc.accountsByName[bc.config.Deployer]))

	if err := bc.init(); err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *Blockchain) registerContract(c interop.Contract) {
	md := c.Metadata()
	bc.contracts[md.Name] = c
	bc.contractsByHash[md.Hash] = c
}

func (bc *Blockchain) init() error {
	topHash, height, err := bc.dao.GetCurrentBlock()
	if errors.Is(err, dao.ErrNoCurrentBlock) {
		bc.log.Info("no storage version found, creating genesis block")
		return bc.createGenesisBlock()
	}
	if err != nil {
		return fmt.Errorf("failed to read current block: %w", err)
	}
	ver, err := bc.dao.GetVersion()
	if err != nil {
		return fmt.Errorf("failed to read storage version: %w", err)
	}
	if ver != version {
		return fmt.Errorf("%w: %s (expected %s)", ErrVersionMismatch, ver, version)
	}
	top, err := bc.dao.GetBlock(height)
	if err != nil {
		return fmt.Errorf("failed to read block %d: %w", height, err)
	}
	bc.height = height
	bc.topHash = topHash
	bc.nextTimestamp = top.Timestamp + bc.timePerBlock()
	// Nonces issued before the restart are unknown.
	bc.nonce = binary.BigEndian.Uint32(bc.id[:4])
	updateBlockHeightMetric(height)
	bc.log.Info("restoring blockchain", zap.Uint32("height", height), zap.Stringer("hash", topHash))
	return nil
}

func (bc *Blockchain) createGenesisBlock() error {
	d := bc.dao.GetPrivate()
	d.PutVersion(version)
	for _, acc := range bc.config.Accounts {
		if acc.Balance != 0 {
			d.PutSTXBalance(bc.accountsByName[acc.Name], uint256.NewInt(acc.Balance))
		}
	}
	deployer := bc.accountsByName[bc.config.Deployer]
	for _, name := range bc.contractNames() {
		c := bc.contracts[name]
		ic := interop.NewContext(d, 0, bc.config.GenesisTimestamp, nil, deployer, bc.log)
		ic.Contract = c.Metadata().Hash
		if err := c.Initialize(ic); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", name, err)
		}
	}
	genesis := block.New(0, bc.config.GenesisTimestamp, util.Uint256{}, nil)
	if err := d.StoreAsBlock(genesis, nil); err != nil {
		return err
	}
	d.StoreAsCurrentBlock(genesis)
	if _, err := d.Persist(); err != nil {
		return fmt.Errorf("failed to persist genesis: %w", err)
	}
	if _, err := bc.dao.Persist(); err != nil {
		return fmt.Errorf("failed to persist genesis: %w", err)
	}
	bc.topHash = genesis.Hash()
	bc.nextTimestamp = genesis.Timestamp + bc.timePerBlock()
	updateBlockHeightMetric(0)
	return nil
}

func (bc *Blockchain) timePerBlock() uint64 {
	return uint64(bc.config.TimePerBlock.Milliseconds())
}

func (bc *Blockchain) contractNames() []string {
	names := make([]string, 0, len(bc.contracts))
	for name := range bc.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetConfig returns the protocol configuration of the chain.
func (bc *Blockchain) GetConfig() config.ProtocolConfiguration {
	return bc.config
}

// SessionID returns the identifier of this Blockchain instance, it's attached
// to all log entries.
func (bc *Blockchain) SessionID() uuid.UUID {
	return bc.id
}

// BlockHeight returns the index of the last mined block.
func (bc *Blockchain) BlockHeight() uint32 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.height
}

// CurrentBlockHash returns the hash of the last mined block.
func (bc *Blockchain) CurrentBlockHash() util.Uint256 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.topHash
}

// NextNonce returns a nonce not used by transactions created with it before.
func (bc *Blockchain) NextNonce() uint32 {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	bc.nonce++
	return bc.nonce
}

// MineBlock executes the given transactions in order in a new block and
// returns this block with one receipt per transaction in the same order.
func (bc *Blockchain) MineBlock(txs ...*transaction.Transaction) (*block.Block, []*state.Receipt, error) {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	return bc.mineBlock(txs)
}

// mineBlock mines a new block, bc.lock must be held by the caller.
func (bc *Blockchain) mineBlock(txs []*transaction.Transaction) (*block.Block, []*state.Receipt, error) {
	if uint32(len(txs)) > bc.config.MaxTransactionsPerBlock || len(txs) > block.MaxTransactionsPerBlock {
		return nil, nil, fmt.Errorf("%w: %d", ErrTooManyTransactions, len(txs))
	}
	for i, tx := range txs {
		if tx == nil || tx.Bytes() == nil {
			return nil, nil, fmt.Errorf("%w: #%d", ErrInvalidTransaction, i)
		}
		_, err := bc.dao.GetReceipt(tx.Hash())
		if err == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrAlreadyExists, tx.Hash().StringLE())
		}
		if !errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil, fmt.Errorf("failed to check receipt %s: %w", tx.Hash().StringLE(), err)
		}
	}
	b := block.New(bc.height+1, bc.nextTimestamp, bc.topHash, txs)
	if err := b.Verify(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	d := bc.dao.GetPrivate()
	receipts := make([]*state.Receipt, 0, len(txs))
	for _, tx := range txs {
		receipts = append(receipts, bc.execute(d, b, tx))
	}
	if err := d.StoreAsBlock(b, receipts); err != nil {
		return nil, nil, err
	}
	d.StoreAsCurrentBlock(b)
	if _, err := d.Persist(); err != nil {
		return nil, nil, fmt.Errorf("failed to persist block %d: %w", b.Index, err)
	}
	if _, err := bc.dao.Persist(); err != nil {
		// Change sets are applied atomically, the store still holds the
		// previous block.
		bc.dao.Store.Discard()
		bc.log.Error("failed to persist block", zap.Uint32("index", b.Index), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to persist block %d: %w", b.Index, err)
	}

	bc.height = b.Index
	bc.topHash = b.Hash()
	bc.nextTimestamp = b.Timestamp + bc.timePerBlock()
	for _, r := range receipts {
		bc.receipts.Add(r.TxHash, r)
	}
	updateBlockHeightMetric(b.Index)
	bc.log.Debug("block mined",
		zap.Uint32("index", b.Index),
		zap.Int("txs", len(txs)),
		zap.Stringer("hash", bc.topHash))
	return b, receipts, nil
}

// execute runs the transaction in its own storage layer, the layer is only
// merged into d for (ok ...) results.
func (bc *Blockchain) execute(d *dao.Simple, b *block.Block, tx *transaction.Transaction) *state.Receipt {
	txDAO := d.GetPrivate()
	ic := interop.NewContext(txDAO, b.Index, b.Timestamp, tx, tx.Sender, bc.log)
	res, err := bc.invoke(ic, tx)

	r := &state.Receipt{
		TxHash:     tx.Hash(),
		BlockIndex: b.Index,
	}
	var codeErr *interop.CodeError
	switch {
	case err == nil:
		if _, err = txDAO.Persist(); err != nil {
			r.FaultException = err.Error()
			break
		}
		r.Result = state.NewOk(res)
		r.Events = ic.Events
	case errors.As(err, &codeErr):
		r.Result = codeErr.Response()
	default:
		r.FaultException = err.Error()
	}
	if r.Result == nil || !r.Result.Ok {
		failedTxs.Inc()
	}
	if r.Faulted() {
		bc.log.Warn("transaction faulted",
			zap.Stringer("tx", r.TxHash),
			zap.Uint32("block", b.Index),
			zap.String("exception", r.FaultException))
	}
	processedTxs.Inc()
	return r
}

func (bc *Blockchain) invoke(ic *interop.Context, tx *transaction.Transaction) (res stackitem.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	switch tx.Type {
	case transaction.STXTransferType:
		amount := tx.Amount
		if amount == nil {
			amount = new(uint256.Int)
		}
		if err := ic.TransferSTX(amount, tx.Sender, tx.Recipient); err != nil {
			return nil, err
		}
		return stackitem.NewBool(true), nil
	case transaction.ContractCallType:
		c, m, err := bc.getMethod(tx.Contract, tx.Method)
		if err != nil {
			return nil, err
		}
		return bc.call(ic, c, m, tx.Args)
	default:
		return nil, fmt.Errorf("%w: %s", transaction.ErrInvalidType, tx.Type)
	}
}

func (bc *Blockchain) getMethod(contract, method string) (interop.Contract, *interop.MethodMD, error) {
	c, ok := bc.contracts[contract]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
	}
	m, ok := c.Metadata().GetMethod(method)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, contract, method)
	}
	return c, m, nil
}

func (bc *Blockchain) call(ic *interop.Context, c interop.Contract, m *interop.MethodMD, args []stackitem.Item) (stackitem.Item, error) {
	if err := m.CheckArgs(args); err != nil {
		return nil, err
	}
	ic.ContractCaller = ic.TxSender
	ic.Contract = c.Metadata().Hash
	res, err := m.Func(ic, args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = stackitem.Null{}
	}
	return res, nil
}

// MineEmptyBlock mines a block without transactions.
func (bc *Blockchain) MineEmptyBlock() (*block.Block, error) {
	b, _, err := bc.MineBlock()
	return b, err
}

// MineEmptyBlockUntil mines empty blocks until the chain height reaches
// target. It's a no-op if the chain is already at target and an error if it's
// above it. No other block can be mined in between, so the resulting height
// is exactly target.
func (bc *Blockchain) MineEmptyBlockUntil(target uint32) (uint32, error) {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	if target < bc.height {
		return bc.height, fmt.Errorf("%w: %d < %d", ErrInvalidTargetHeight, target, bc.height)
	}
	for bc.height < target {
		if _, _, err := bc.mineBlock(nil); err != nil {
			return bc.height, err
		}
	}
	return bc.height, nil
}

// GetBlock returns the block with the given index.
func (bc *Blockchain) GetBlock(index uint32) (*block.Block, error) {
	return bc.dao.GetBlock(index)
}

// GetReceipt returns the receipt of the transaction with the given hash.
func (bc *Blockchain) GetReceipt(h util.Uint256) (*state.Receipt, error) {
	if r, ok := bc.receipts.Get(h); ok {
		return r.(*state.Receipt), nil
	}
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	r, err := bc.dao.GetReceipt(h)
	if err != nil {
		return nil, err
	}
	bc.receipts.Add(h, r)
	return r, nil
}

// CallReadOnly calls the read-only method of the contract at the current
// height. The state is never changed by it, the result is wrapped into
// (ok ...) unless the method returns an error code.
func (bc *Blockchain) CallReadOnly(sender util.Uint160, contract, method string, args ...stackitem.Item) (*state.Response, error) {
	c, m, err := bc.getMethod(contract, method)
	if err != nil {
		return nil, err
	}
	if !m.ReadOnly {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotReadOnly, contract, method)
	}
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	ic := interop.NewContext(bc.dao.GetPrivate(), bc.height, bc.nextTimestamp, nil, sender, bc.log)
	res, err := func() (res stackitem.Item, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return bc.call(ic, c, m, args)
	}()
	var codeErr *interop.CodeError
	switch {
	case err == nil:
		return state.NewOk(res), nil
	case errors.As(err, &codeErr):
		return codeErr.Response(), nil
	default:
		return nil, err
	}
}

// GetSTXBalance returns the STX balance of the principal.
func (bc *Blockchain) GetSTXBalance(acc util.Uint160) (*uint256.Int, error) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.dao.GetSTXBalance(acc)
}

// GetContract returns the contract by its name.
func (bc *Blockchain) GetContract(name string) (interop.Contract, error) {
	c, ok := bc.contracts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	return c, nil
}

// Contracts returns metadata of all deployed contracts sorted by name.
func (bc *Blockchain) Contracts() []*interop.ContractMD {
	names := bc.contractNames()
	res := make([]*interop.ContractMD, 0, len(names))
	for _, name := range names {
		res = append(res, bc.contracts[name].Metadata())
	}
	return res
}

// Accounts returns genesis accounts in configuration order.
func (bc *Blockchain) Accounts() []Account {
	res := make([]Account, len(bc.accounts))
	copy(res, bc.accounts)
	return res
}

// GetAccount returns the principal of the named account.
func (bc *Blockchain) GetAccount(name string) (util.Uint160, error) {
	h, ok := bc.accountsByName[name]
	if !ok {
		return util.Uint160{}, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}
	return h, nil
}

// ResolvePrincipal resolves account or contract name into a principal, it
// can be used as interop.PrincipalResolver.
func (bc *Blockchain) ResolvePrincipal(name string) (util.Uint160, bool) {
	if h, ok := bc.accountsByName[name]; ok {
		return h, true
	}
	if c, ok := bc.contracts[name]; ok {
		return c.Metadata().Hash, true
	}
	return util.Uint160{}, false
}

// PrincipalName returns the account or contract name of the principal, its
// address is returned for unknown ones.
func (bc *Blockchain) PrincipalName(h util.Uint160) string {
	for _, acc := range bc.accounts {
		if acc.ScriptHash.Equals(h) {
			return acc.Name
		}
	}
	if c, ok := bc.contractsByHash[h]; ok {
		return c.Metadata().Name
	}
	return address.Uint160ToString(h)
}

// Close flushes pending changes and closes the underlying store.
func (bc *Blockchain) Close() error {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	if _, err := bc.dao.Persist(); err != nil {
		bc.log.Warn("failed to persist pending changes", zap.Error(err))
	}
	bc.log.Info("blockchain closed", zap.Uint32("height", bc.height))
	return bc.dao.Store.Close()
}
