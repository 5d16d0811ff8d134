// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestReservedAddress(t *testing.T) {
	tests := []struct {
		addr     string
		reserved bool
	}{
		{"0x0200000000000000000000000000000000000000", true},
		{"0x020000000000000000000000000000000000000A", true},
		{"0x02000000000000000000000000000000000000ff", true},
		{"0x0800000000000000000000000000000000000001", true},
		{"0x0000000000000000000000000000000000002200", true},
		{"0x0000000000000000000000000000000000005201", true},
		{"0x0300000000000000000000000000000000000000", false},
		{"0x0000000000000000000000000000000000000001", false},
		{"0x0000000000000000000000000000000000009010", false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.reserved, ReservedAddress(common.HexToAddress(tt.addr)), tt.addr)
	}
}

func TestRegisterModuleValidation(t *testing.T) {
	// Outside every reserved range
	err := RegisterModule(Module{
		ConfigKey: "outOfRange",
		Address:   common.HexToAddress("0x0300000000000000000000000000000000000001"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in a reserved range")

	// Blackhole address is never registrable
	err = RegisterModule(Module{
		ConfigKey: "blackhole",
		Address:   BlackholeAddr,
	})
	require.Error(t, err)
}

func TestRegisterModuleDuplicates(t *testing.T) {
	first := Module{
		ConfigKey: "dupTestA",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000f0"),
	}
	require.NoError(t, RegisterModule(first))

	// Same key, different address
	err := RegisterModule(Module{
		ConfigKey: "dupTestA",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000f1"),
	})
	require.Error(t, err)

	// Different key, same address
	err = RegisterModule(Module{
		ConfigKey: "dupTestB",
		Address:   first.Address,
	})
	require.Error(t, err)
}

func TestRegisteredModulesSortedByAddress(t *testing.T) {
	require.NoError(t, RegisterModule(Module{
		ConfigKey: "sortTestHigh",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000e2"),
	}))
	require.NoError(t, RegisterModule(Module{
		ConfigKey: "sortTestLow",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000e1"),
	}))

	mods := RegisteredModules()
	for i := 1; i < len(mods); i++ {
		require.True(t, mods[i-1].Address.Cmp(mods[i].Address) < 0,
			"modules must iterate in address order")
	}

	low, ok := GetPrecompileModule("sortTestLow")
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x02000000000000000000000000000000000000e1"), low.Address)

	byAddr, ok := GetPrecompileModuleByAddress(low.Address)
	require.True(t, ok)
	require.Equal(t, "sortTestLow", byAddr.ConfigKey)

	_, ok = GetPrecompileModule("neverRegistered")
	require.False(t, ok)
}
