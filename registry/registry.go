// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry maps the crypto verification precompiles onto the
// LP-aligned address scheme and records which chains enable them.
package registry

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// PRECOMPILE ADDRESS SCHEME - Aligned with LP Numbering (LP-0099)
// ============================================================================
//
// Lux-native precompiles use trailing-significant 20-byte addresses:
//   Format: 0x0000000000000000000000000000000000PCII
//
// The address ends with the 16-bit LP number (PCII):
//   0x 0000...0000 P C II
//                  │ │ └┴─ Item/function (8 bits)
//                  │ └──── Chain slot    (4 bits)
//                  └────── Family page   (4 bits, aligned with LP-Pxxx)
//
// P nibble = LP range first digit:
//   P=2 → LP-2xxx (PQ Identity)
//   P=5 → LP-5xxx (Threshold/MPC)
//
// C nibble = Chain slot:
//   C=2 → C-Chain (main EVM)
//   C=3 → Q-Chain
//
// The legacy high-byte range 0x0200...00II predates this scheme and remains
// the execution address for the verification precompiles; the LP-aligned
// addresses are the forward-compatible aliases used in chain configs.

const (
	// Legacy verification range (0x0200-0x02FF): execution addresses
	MLDSAVerify   = "0x0200000000000000000000000000000000000006"
	MLKEM         = "0x0200000000000000000000000000000000000007"
	SLHDSAVerify  = "0x0200000000000000000000000000000000000009"
	CGGMP21Verify = "0x020000000000000000000000000000000000000A"

	// PQ Identity (P=2) → LP-2xxx
	MLDSACChain  = "0x0000000000000000000000000000000000002200" // C-Chain ML-DSA (LP-2200)
	MLDSAQChain  = "0x0000000000000000000000000000000000002300" // Q-Chain ML-DSA (LP-2300)
	MLKEMCChain  = "0x0000000000000000000000000000000000002201" // C-Chain ML-KEM (LP-2201)
	MLKEMQChain  = "0x0000000000000000000000000000000000002301" // Q-Chain ML-KEM (LP-2301)
	SLHDSACChain = "0x0000000000000000000000000000000000002202" // C-Chain SLH-DSA (LP-2202)
	SLHDSAQChain = "0x0000000000000000000000000000000000002302" // Q-Chain SLH-DSA (LP-2302)

	// Threshold/MPC (P=5) → LP-5xxx
	CGGMP21CChain = "0x0000000000000000000000000000000000005201" // C-Chain CGGMP21 (LP-5201)
	CGGMP21QChain = "0x0000000000000000000000000000000000005301" // Q-Chain CGGMP21 (LP-5301)
)

// PrecompileAddress calculates an address from (P, C, II) nibbles.
// P = family page, C = chain slot, II = item. Returns the
// trailing-significant format 0x0000000000000000000000000000000000PCII.
func PrecompileAddress(p, c, ii uint8) common.Address {
	if p > 15 || c > 15 {
		return common.Address{}
	}
	selector := fmt.Sprintf("%x%x%02x", p, c, ii)
	return common.HexToAddress("0x0000000000000000000000000000000000" + selector)
}

// ChainSlot returns the C-nibble for a chain name
func ChainSlot(chain string) uint8 {
	switch chain {
	case "P", "p":
		return 0
	case "X", "x":
		return 1
	case "C", "c":
		return 2
	case "Q", "q":
		return 3
	case "A", "a":
		return 4
	case "B", "b":
		return 5
	case "Z", "z":
		return 6
	case "M", "m":
		return 7
	default:
		return 0xFF
	}
}

// FamilyPage returns the P-nibble for a family name (aligned with LP-Pxxx)
func FamilyPage(family string) uint8 {
	switch family {
	case "PQ", "pq":
		return 2 // LP-2xxx
	case "Threshold", "threshold", "MPC", "mpc":
		return 5 // LP-5xxx
	default:
		return 0xFF
	}
}

// ChainPrecompiles defines which precompiles are enabled for each chain
var ChainPrecompiles = map[string][]string{
	// C-Chain (main EVM) - full verification suite
	"C": {
		MLDSACChain, MLKEMCChain, SLHDSACChain,
		CGGMP21CChain,
	},

	// Q-Chain (Quantum) - PQ and threshold focused
	"Q": {
		MLDSAQChain, MLKEMQChain, SLHDSAQChain,
		CGGMP21QChain,
	},
}

// PrecompileInfo contains metadata about a precompile
type PrecompileInfo struct {
	Address     string
	Name        string
	Description string
	GasBase     uint64
	Chains      []string
	LPRange     string // LP-Pxxx range alignment
}

// AllPrecompiles lists all available precompiles with their metadata
var AllPrecompiles = []PrecompileInfo{
	// PQ Identity (P=2) → LP-2xxx
	{MLDSACChain, "ML_DSA", "NIST ML-DSA post-quantum signatures", 75_000, []string{"C", "Q"}, "LP-2xxx"},
	{MLKEMCChain, "ML_KEM", "NIST ML-KEM key encapsulation", 50_000, []string{"C", "Q"}, "LP-2xxx"},
	{SLHDSACChain, "SLH_DSA", "NIST SLH-DSA hash-based signatures", 50_000, []string{"C", "Q"}, "LP-2xxx"},

	// Threshold/MPC (P=5) → LP-5xxx
	{CGGMP21CChain, "CGGMP21", "CGGMP21 threshold ECDSA verification", 75_000, []string{"C", "Q"}, "LP-5xxx"},
}

// GetPrecompileAddress returns the address for a precompile by name
func GetPrecompileAddress(name string) common.Address {
	for _, p := range AllPrecompiles {
		if p.Name == name {
			return common.HexToAddress(p.Address)
		}
	}
	return common.Address{}
}

// GetChainPrecompiles returns all precompile addresses for a chain
func GetChainPrecompiles(chainLetter string) []common.Address {
	addrs, ok := ChainPrecompiles[chainLetter]
	if !ok {
		return nil
	}

	result := make([]common.Address, len(addrs))
	for i, addr := range addrs {
		result[i] = common.HexToAddress(addr)
	}
	return result
}

// IsPrecompileEnabled checks if a precompile is enabled for a chain
func IsPrecompileEnabled(chainLetter string, precompileAddr common.Address) bool {
	for _, addr := range ChainPrecompiles[chainLetter] {
		if common.HexToAddress(addr) == precompileAddr {
			return true
		}
	}
	return false
}

// GetPrecompilesByFamily returns all precompiles for a family page
func GetPrecompilesByFamily(family string) []PrecompileInfo {
	page := FamilyPage(family)
	if page == 0xFF {
		return nil
	}

	lpRange := "LP-" + string('0'+page) + "xxx"
	var result []PrecompileInfo
	for _, p := range AllPrecompiles {
		if p.LPRange == lpRange {
			result = append(result, p)
		}
	}
	return result
}
