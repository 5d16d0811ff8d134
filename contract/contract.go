// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the interface between the chain runtime and
// stateful precompiled contracts.
package contract

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/precompileconfig"
)

// ErrOutOfGas is returned when the supplied gas does not cover the gas
// required by a precompile invocation.
var ErrOutOfGas = errors.New("out of gas")

// StatefulPrecompiledContract is the interface every precompile in this
// repository implements. Run receives the raw call input, the gas budget
// supplied by the caller, and returns the output bytes together with the
// gas remaining after the call.
type StatefulPrecompiledContract interface {
	// Address returns the reserved address the precompile is registered at.
	Address() common.Address

	// RequiredGas returns the gas charged for [input]. It must be
	// deterministic and derivable from the raw input alone.
	RequiredGas(input []byte) uint64

	// Run executes the precompile. Implementations must confirm the gas
	// budget covers RequiredGas before performing any work.
	Run(
		accessibleState AccessibleState,
		caller common.Address,
		addr common.Address,
		input []byte,
		suppliedGas uint64,
		readOnly bool,
	) (ret []byte, remainingGas uint64, err error)
}

// AccessibleState provides the runtime state a precompile may read during
// execution. Pure verification precompiles ignore it.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}

// StateDB is the subset of the runtime state database precompiles touch.
type StateDB interface {
	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	GetNonce(common.Address) uint64
	SetNonce(common.Address, uint64)

	GetBalance(common.Address) *big.Int

	Exist(common.Address) bool
}

// BlockContext supplies block metadata during precompile execution.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// ConfigurationBlockContext supplies block metadata during precompile
// activation.
type ConfigurationBlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// Configurator performs one-time state setup when a precompile module is
// activated by a network upgrade.
type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(
		chainConfig precompileconfig.ChainConfig,
		precompileConfig precompileconfig.Config,
		state StateDB,
		blockContext ConfigurationBlockContext,
	) error
}

// DeductGas subtracts [requiredGas] from [suppliedGas], returning
// ErrOutOfGas if the budget is insufficient.
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, ErrOutOfGas
	}
	return suppliedGas - requiredGas, nil
}
