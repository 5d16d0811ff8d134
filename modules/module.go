// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package modules maintains the registry of stateful precompile modules.
// Modules register themselves at init time and are iterated in
// deterministic address order by the chain runtime.
package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/contract"
)

// Module binds a precompile contract to its reserved address and its
// upgrade configurator.
type Module struct {
	// ConfigKey is the unique JSON key identifying the precompile in the
	// chain upgrade config.
	ConfigKey string

	// Address is the reserved address the contract executes at.
	Address common.Address

	// Contract is the precompile implementation.
	Contract contract.StatefulPrecompiledContract

	// Configurator activates the precompile on upgrade.
	Configurator contract.Configurator
}

type moduleArray []Module

func (m moduleArray) Len() int {
	return len(m)
}

func (m moduleArray) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func (m moduleArray) Less(i, j int) bool {
	return bytes.Compare(m[i].Address.Bytes(), m[j].Address.Bytes()) < 0
}
