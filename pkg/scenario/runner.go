package scenario

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/interop"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"go.uber.org/zap"
)

// FaultExpectation matches faulted transactions in Tx.Expect.
const FaultExpectation = "fault"

type (
	// Report is the outcome of a scenario run.
	Report struct {
		Scenario string        `json:"scenario"`
		Height   uint32        `json:"height"`
		Blocks   []BlockReport `json:"blocks"`
		Failures []string      `json:"failures,omitempty"`
	}

	// BlockReport describes a block mined by a Transactions step.
	BlockReport struct {
		Step     int              `json:"step"`
		Index    uint32           `json:"index"`
		Hash     util.Uint256     `json:"hash"`
		Receipts []*state.Receipt `json:"receipts"`
	}
)

// Passed returns true if all expectations were met.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes the scenario against the chain. Unmet expectations are
// collected into the report, an error is only returned when the scenario
// can't be executed.
func Run(bc *core.Blockchain, sc *Scenario, log *zap.Logger) (*Report, error) {
	rep := &Report{
		Scenario: sc.Name,
		Blocks:   make([]BlockReport, 0),
	}
	for i, step := range sc.Steps {
		switch {
		case len(step.Transactions) != 0:
			txs := make([]*transaction.Transaction, len(step.Transactions))
			for j := range step.Transactions {
				tx, err := makeTx(bc, step.Transactions[j])
				if err != nil {
					return nil, fmt.Errorf("step #%d, transaction #%d: %w", i, j, err)
				}
				txs[j] = tx
			}
			b, receipts, err := bc.MineBlock(txs...)
			if err != nil {
				return nil, fmt.Errorf("step #%d: %w", i, err)
			}
			rep.Blocks = append(rep.Blocks, BlockReport{
				Step:     i,
				Index:    b.Index,
				Hash:     b.Hash(),
				Receipts: receipts,
			})
			for j, r := range receipts {
				exp := step.Transactions[j].Expect
				if exp == "" {
					continue
				}
				if got := resultString(r); got != exp {
					rep.Failures = append(rep.Failures,
						fmt.Sprintf("step #%d, transaction #%d: expected %s, got %s", i, j, exp, got))
				}
			}
		case step.EmptyBlocks != 0:
			for k := uint32(0); k < step.EmptyBlocks; k++ {
				if _, err := bc.MineEmptyBlock(); err != nil {
					return nil, fmt.Errorf("step #%d: %w", i, err)
				}
			}
		default:
			if _, err := bc.MineEmptyBlockUntil(step.AdvanceTo); err != nil {
				return nil, fmt.Errorf("step #%d: %w", i, err)
			}
		}
		log.Debug("scenario step done", zap.Int("step", i), zap.Uint32("height", bc.BlockHeight()))
	}
	rep.Height = bc.BlockHeight()
	if !rep.Passed() {
		log.Warn("scenario expectations failed", zap.String("scenario", sc.Name), zap.Int("failures", len(rep.Failures)))
	}
	return rep, nil
}

func resultString(r *state.Receipt) string {
	if r.Faulted() {
		return FaultExpectation
	}
	return r.Result.String()
}

func makeTx(bc *core.Blockchain, t Tx) (*transaction.Transaction, error) {
	sender, err := interop.ParsePrincipal(t.Sender, bc.ResolvePrincipal)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	var tx *transaction.Transaction
	if t.Transfer != nil {
		recipient, err := interop.ParsePrincipal(t.Transfer.Recipient, bc.ResolvePrincipal)
		if err != nil {
			return nil, fmt.Errorf("recipient: %w", err)
		}
		tx = transaction.NewSTXTransfer(uint256.NewInt(t.Transfer.Amount), recipient, sender)
	} else {
		c, err := bc.GetContract(t.Contract)
		if err != nil {
			return nil, err
		}
		m, ok := c.Metadata().GetMethod(t.Method)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", core.ErrUnknownMethod, t.Contract, t.Method)
		}
		args, err := m.ParseParams(t.Args, bc.ResolvePrincipal)
		if err != nil {
			return nil, err
		}
		tx = transaction.NewContractCall(t.Contract, t.Method, args, sender)
	}
	tx.Nonce = bc.NextNonce()
	return tx, nil
}
