// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/luxfi/geth/common"
)

// AddressRange represents a continuous range of addresses
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff [addr] is contained within the (inclusive)
// range of addresses defined by [a].
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// BlackholeAddr is the address where assets are burned
var BlackholeAddr = common.Address{
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var (
	// registeredModules is a list of Module to preserve order
	// for deterministic iteration
	registeredModules = make([]Module, 0)

	// Reserved address ranges for stateful precompiles
	//
	// HIGH-BYTE RANGES (legacy format: 0xXX00...00II):
	// 0x0200-0x02FF: Cryptographic verification (PQ signatures, threshold)
	// 0x0800-0x08FF: Threshold signature coordination
	//
	// LOW-BYTE RANGES (EIP-collision-free, aligned with LP numbering —
	// see registry/registry.go for the full scheme):
	// 0x2000-0x2FFF: LP-2xxx PQ Identity
	// 0x5000-0x5FFF: LP-5xxx Threshold/MPC
	reservedRanges = []AddressRange{
		// Cryptographic verification (0x0200-0x02FF)
		{
			Start: common.HexToAddress("0x0200000000000000000000000000000000000000"),
			End:   common.HexToAddress("0x02000000000000000000000000000000000000ff"),
		},
		// Threshold signature coordination (0x0800-0x08FF)
		{
			Start: common.HexToAddress("0x0800000000000000000000000000000000000000"),
			End:   common.HexToAddress("0x08000000000000000000000000000000000000ff"),
		},
		// LP-2xxx: PQ Identity (0x0..2000 - 0x0..2FFF)
		{
			Start: common.HexToAddress("0x0000000000000000000000000000000000002000"),
			End:   common.HexToAddress("0x0000000000000000000000000000000000002fff"),
		},
		// LP-5xxx: Threshold/MPC (0x0..5000 - 0x0..5FFF)
		{
			Start: common.HexToAddress("0x0000000000000000000000000000000000005000"),
			End:   common.HexToAddress("0x0000000000000000000000000000000000005fff"),
		},
	}
)

// ReservedAddress returns true if [addr] is in a reserved range for custom precompiles
func ReservedAddress(addr common.Address) bool {
	for _, reservedRange := range reservedRanges {
		if reservedRange.Contains(addr) {
			return true
		}
	}

	return false
}

// RegisterModule registers a stateful precompile module
func RegisterModule(stm Module) error {
	address := stm.Address
	key := stm.ConfigKey

	if address == BlackholeAddr {
		return fmt.Errorf("address %s overlaps with blackhole address", address)
	}
	if !ReservedAddress(address) {
		return fmt.Errorf("address %s not in a reserved range", address)
	}

	for _, registeredModule := range registeredModules {
		if registeredModule.ConfigKey == key {
			return fmt.Errorf("name %s already used by a stateful precompile", key)
		}
		if registeredModule.Address == address {
			return fmt.Errorf("address %s already used by a stateful precompile", address)
		}
	}
	// sort by address to ensure deterministic iteration
	registeredModules = insertSortedByAddress(registeredModules, stm)
	return nil
}

func GetPrecompileModuleByAddress(address common.Address) (Module, bool) {
	for _, stm := range registeredModules {
		if stm.Address == address {
			return stm, true
		}
	}
	return Module{}, false
}

func GetPrecompileModule(key string) (Module, bool) {
	for _, stm := range registeredModules {
		if stm.ConfigKey == key {
			return stm, true
		}
	}
	return Module{}, false
}

func RegisteredModules() []Module {
	return registeredModules
}

func insertSortedByAddress(data []Module, stm Module) []Module {
	data = append(data, stm)
	sort.Sort(moduleArray(data))
	return data
}
