// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package slhdsa implements the SLH-DSA (FIPS 205) signature verification
// precompile. All twelve parameter sets share one address; the mode byte
// encodes hash family in the high nibble (0 = SHA2, 1 = SHAKE) and security
// level plus variant in the low nibble.
package slhdsa

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/crypto/slhdsa"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/contract"
)

var (
	// ContractSLHDSAVerifyAddress is the address of the SLH-DSA verify precompile
	ContractSLHDSAVerifyAddress = common.HexToAddress("0x0200000000000000000000000000000000000009")

	// Singleton instance
	SLHDSAVerifyPrecompile = &slhdsaVerifyPrecompile{}

	_ contract.StatefulPrecompiledContract = &slhdsaVerifyPrecompile{}

	ErrInvalidInputLength = errors.New("invalid input length")
	ErrUnsupportedMode    = errors.New("unsupported SLH-DSA mode")
)

// SLH-DSA modes supported by this precompile
const (
	ModeSHA2_128s uint8 = 0x00
	ModeSHA2_128f uint8 = 0x01
	ModeSHA2_192s uint8 = 0x02
	ModeSHA2_192f uint8 = 0x03
	ModeSHA2_256s uint8 = 0x04
	ModeSHA2_256f uint8 = 0x05

	ModeSHAKE_128s uint8 = 0x10
	ModeSHAKE_128f uint8 = 0x11
	ModeSHAKE_192s uint8 = 0x12
	ModeSHAKE_192f uint8 = 0x13
	ModeSHAKE_256s uint8 = 0x14
	ModeSHAKE_256f uint8 = 0x15
)

const (
	ModeByte       = 1 // Mode indicator byte
	PubKeyLenSize  = 2 // Public key length field (uint16)
	MessageLenSize = 2 // Message length field (uint16)

	// Per-byte gas for the message
	SLHDSAVerifyPerByteGas uint64 = 10

	// Default gas for input whose mode cannot be determined
	SLHDSADefaultGas uint64 = 100_000
)

// modeParams holds the per-mode sizes and cost. The "f" (fast signing)
// variants trade much larger signatures for quicker signing, which makes
// their verification proportionally more expensive.
type modeParams struct {
	name          string
	publicKeySize int
	signatureSize int
	baseGas       uint64
	mode          slhdsa.Mode
}

var modeTable = map[uint8]modeParams{
	ModeSHA2_128s:  {name: "SLH-DSA-SHA2-128s", publicKeySize: 32, signatureSize: 7856, baseGas: 50_000, mode: slhdsa.SHA2_128s},
	ModeSHA2_128f:  {name: "SLH-DSA-SHA2-128f", publicKeySize: 32, signatureSize: 17088, baseGas: 75_000, mode: slhdsa.SHA2_128f},
	ModeSHA2_192s:  {name: "SLH-DSA-SHA2-192s", publicKeySize: 48, signatureSize: 16224, baseGas: 100_000, mode: slhdsa.SHA2_192s},
	ModeSHA2_192f:  {name: "SLH-DSA-SHA2-192f", publicKeySize: 48, signatureSize: 35664, baseGas: 150_000, mode: slhdsa.SHA2_192f},
	ModeSHA2_256s:  {name: "SLH-DSA-SHA2-256s", publicKeySize: 64, signatureSize: 29792, baseGas: 175_000, mode: slhdsa.SHA2_256s},
	ModeSHA2_256f:  {name: "SLH-DSA-SHA2-256f", publicKeySize: 64, signatureSize: 49856, baseGas: 250_000, mode: slhdsa.SHA2_256f},
	ModeSHAKE_128s: {name: "SLH-DSA-SHAKE-128s", publicKeySize: 32, signatureSize: 7856, baseGas: 50_000, mode: slhdsa.SHAKE_128s},
	ModeSHAKE_128f: {name: "SLH-DSA-SHAKE-128f", publicKeySize: 32, signatureSize: 17088, baseGas: 75_000, mode: slhdsa.SHAKE_128f},
	ModeSHAKE_192s: {name: "SLH-DSA-SHAKE-192s", publicKeySize: 48, signatureSize: 16224, baseGas: 100_000, mode: slhdsa.SHAKE_192s},
	ModeSHAKE_192f: {name: "SLH-DSA-SHAKE-192f", publicKeySize: 48, signatureSize: 35664, baseGas: 150_000, mode: slhdsa.SHAKE_192f},
	ModeSHAKE_256s: {name: "SLH-DSA-SHAKE-256s", publicKeySize: 64, signatureSize: 29792, baseGas: 175_000, mode: slhdsa.SHAKE_256s},
	ModeSHAKE_256f: {name: "SLH-DSA-SHAKE-256f", publicKeySize: 64, signatureSize: 49856, baseGas: 250_000, mode: slhdsa.SHAKE_256f},
}

type slhdsaVerifyPrecompile struct{}

// Address returns the address of the SLH-DSA verify precompile
func (p *slhdsaVerifyPrecompile) Address() common.Address {
	return ContractSLHDSAVerifyAddress
}

// RequiredGas calculates the gas required for SLH-DSA verification
func (p *slhdsaVerifyPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < ModeByte {
		return SLHDSADefaultGas
	}

	params, ok := modeTable[input[0]]
	if !ok {
		return SLHDSADefaultGas
	}

	// Format: [mode(1)][pubKeyLen(2)][pubKey][msgLen(2)][message][signature]
	header := ModeByte + PubKeyLenSize
	if len(input) < header {
		return params.baseGas
	}

	pubKeyLen := int(binary.BigEndian.Uint16(input[ModeByte:header]))
	if pubKeyLen != params.publicKeySize {
		return params.baseGas
	}

	msgLenOffset := header + pubKeyLen
	if len(input) < msgLenOffset+MessageLenSize {
		return params.baseGas
	}

	msgLen := binary.BigEndian.Uint16(input[msgLenOffset : msgLenOffset+MessageLenSize])

	return params.baseGas + (uint64(msgLen) * SLHDSAVerifyPerByteGas)
}

// Run implements the SLH-DSA signature verification precompile.
// Input format:
//
//	[0]             = mode byte (parameter set)
//	[1:3]           = public key length as uint16
//	[3:pubKeyEnd]   = public key
//	[pubKeyEnd:+2]  = message length as uint16
//	[+2:msgEnd]     = message
//	[msgEnd:sigEnd] = signature (size fixed by mode)
//
// Output: 32-byte word (1 = valid, 0 = invalid)
func (p *slhdsaVerifyPrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	gasCost := p.RequiredGas(input)
	if suppliedGas < gasCost {
		return nil, 0, contract.ErrOutOfGas
	}
	remainingGas := suppliedGas - gasCost

	header := ModeByte + PubKeyLenSize
	if len(input) < header {
		return nil, remainingGas, fmt.Errorf("%w: need at least %d bytes", ErrInvalidInputLength, header)
	}

	mode := input[0]
	params, ok := modeTable[mode]
	if !ok {
		return nil, remainingGas, fmt.Errorf("%w: 0x%02x", ErrUnsupportedMode, mode)
	}

	pubKeyLen := int(binary.BigEndian.Uint16(input[ModeByte:header]))
	if pubKeyLen != params.publicKeySize {
		return nil, remainingGas, fmt.Errorf("%w: expected pubkey size %d for %s, got %d",
			ErrInvalidInputLength, params.publicKeySize, params.name, pubKeyLen)
	}

	pubKeyEnd := header + pubKeyLen
	msgLenEnd := pubKeyEnd + MessageLenSize
	if len(input) < msgLenEnd {
		return nil, remainingGas, fmt.Errorf("%w: input too short for message length", ErrInvalidInputLength)
	}

	msgLen := int(binary.BigEndian.Uint16(input[pubKeyEnd:msgLenEnd]))
	msgEnd := msgLenEnd + msgLen
	sigEnd := msgEnd + params.signatureSize

	if len(input) < sigEnd {
		return nil, remainingGas, fmt.Errorf("%w: expected at least %d bytes, got %d",
			ErrInvalidInputLength, sigEnd, len(input))
	}

	publicKey := input[header:pubKeyEnd]
	message := input[msgLenEnd:msgEnd]
	signature := input[msgEnd:sigEnd]

	pub, err := slhdsa.PublicKeyFromBytes(publicKey, params.mode)
	if err != nil {
		return nil, remainingGas, fmt.Errorf("invalid public key: %w", err)
	}

	valid := pub.Verify(message, signature, nil)

	result := make([]byte, 32)
	if valid {
		result[31] = 1
	}

	return result, remainingGas, nil
}

// ModeName returns a human-readable name for the mode
func ModeName(mode uint8) string {
	params, ok := modeTable[mode]
	if !ok {
		return "unknown"
	}
	return params.name
}
