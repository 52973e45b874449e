/*
Package scenario implements scripted chain sessions described in YAML.

A scenario is a list of steps, each step either mines a block with the given
transactions, mines a number of empty blocks or advances the chain to the
given height. Transaction arguments are given as text and parsed according to
the parameter types of the called method.
*/
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// Scenario is a named list of steps.
	Scenario struct {
		Name  string `yaml:"Name"`
		Steps []Step `yaml:"Steps"`
	}

	// Step is a single scenario action, exactly one of its fields must be
	// set.
	Step struct {
		Transactions []Tx   `yaml:"Transactions"`
		EmptyBlocks  uint32 `yaml:"EmptyBlocks"`
		AdvanceTo    uint32 `yaml:"AdvanceTo"`
	}

	// Tx describes a transaction, either a contract call or an STX transfer.
	Tx struct {
		Sender   string    `yaml:"Sender"`
		Contract string    `yaml:"Contract"`
		Method   string    `yaml:"Method"`
		Args     []string  `yaml:"Args"`
		Transfer *Transfer `yaml:"Transfer"`
		// Expect is the expected result, e.g. "(ok true)" or "(err u102)",
		// "fault" matches faulted transactions. It's not checked if empty.
		Expect string `yaml:"Expect"`
	}

	// Transfer is an STX transfer payload.
	Transfer struct {
		Amount    uint64 `yaml:"Amount"`
		Recipient string `yaml:"Recipient"`
	}
)

// ErrInvalidStep is returned for steps with no or several actions.
var ErrInvalidStep = errors.New("invalid scenario step")

// LoadFile reads scenario from the YAML file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read scenario: %w", err)
	}
	return Decode(data)
}

// Decode parses and validates YAML scenario.
func Decode(data []byte) (*Scenario, error) {
	sc := new(Scenario)
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(sc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks scenario steps for consistency.
func (sc *Scenario) Validate() error {
	for i, s := range sc.Steps {
		var actions int
		if len(s.Transactions) != 0 {
			actions++
		}
		if s.EmptyBlocks != 0 {
			actions++
		}
		if s.AdvanceTo != 0 {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("%w #%d: exactly one of Transactions, EmptyBlocks or AdvanceTo is required", ErrInvalidStep, i)
		}
		for j, tx := range s.Transactions {
			if tx.Sender == "" {
				return fmt.Errorf("%w #%d: transaction #%d has no sender", ErrInvalidStep, i, j)
			}
			if (tx.Transfer == nil) == (tx.Contract == "") {
				return fmt.Errorf("%w #%d: transaction #%d must be either a contract call or a transfer", ErrInvalidStep, i, j)
			}
			if tx.Transfer == nil && tx.Method == "" {
				return fmt.Errorf("%w #%d: transaction #%d has no method", ErrInvalidStep, i, j)
			}
		}
	}
	return nil
}
