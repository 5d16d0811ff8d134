// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mldsa implements the ML-DSA (FIPS 204) signature verification
// precompile. All three parameter sets share one precompile address and are
// selected by the leading mode byte.
package mldsa

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto/mldsa"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/contract"
)

var (
	// ContractMLDSAVerifyAddress is the address of the ML-DSA verify precompile
	ContractMLDSAVerifyAddress = common.HexToAddress("0x0200000000000000000000000000000000000006")

	// Singleton instance
	MLDSAVerifyPrecompile = &mldsaVerifyPrecompile{}

	_ contract.StatefulPrecompiledContract = &mldsaVerifyPrecompile{}

	ErrInvalidInputLength = errors.New("invalid input length")
	ErrUnsupportedMode    = errors.New("unsupported ML-DSA mode")
	ErrMessageTooLarge    = errors.New("message length exceeds input")
)

// ML-DSA modes supported by this precompile
const (
	ModeMLDSA44 uint8 = 0x44 // NIST Level 2
	ModeMLDSA65 uint8 = 0x65 // NIST Level 3
	ModeMLDSA87 uint8 = 0x87 // NIST Level 5
)

const (
	ModeByte       = 1  // Mode indicator byte
	MessageLenSize = 32 // Message length field (uint256, big-endian)

	// Per-byte gas for the message
	MLDSAVerifyPerByteGas uint64 = 10
)

// modeParams holds the per-mode sizes and cost. Larger parameter sets cost
// more to verify.
type modeParams struct {
	publicKeySize int
	signatureSize int
	baseGas       uint64
	mode          mldsa.Mode
}

var modeTable = map[uint8]modeParams{
	ModeMLDSA44: {publicKeySize: 1312, signatureSize: 2420, baseGas: 75_000, mode: mldsa.MLDSA44},
	ModeMLDSA65: {publicKeySize: 1952, signatureSize: 3309, baseGas: 100_000, mode: mldsa.MLDSA65},
	ModeMLDSA87: {publicKeySize: 2592, signatureSize: 4627, baseGas: 150_000, mode: mldsa.MLDSA87},
}

// defaultBaseGas is charged when the mode cannot be determined from the
// input, so malformed calls still pay a realistic floor.
const defaultBaseGas uint64 = 100_000

type mldsaVerifyPrecompile struct{}

// Address returns the address of the ML-DSA verify precompile
func (p *mldsaVerifyPrecompile) Address() common.Address {
	return ContractMLDSAVerifyAddress
}

// RequiredGas calculates the gas required for ML-DSA verification
func (p *mldsaVerifyPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < ModeByte {
		return defaultBaseGas
	}

	params, ok := modeTable[input[0]]
	if !ok {
		return defaultBaseGas
	}

	msgLenOffset := ModeByte + params.publicKeySize
	if len(input) < msgLenOffset+MessageLenSize {
		return params.baseGas
	}

	msgLen := messageLength(input[msgLenOffset : msgLenOffset+MessageLenSize])

	return params.baseGas + (msgLen * MLDSAVerifyPerByteGas)
}

// maxMessageLen bounds the declared message length. No real calldata comes
// close, so larger declarations price the call out instead of overflowing
// the gas arithmetic.
const maxMessageLen = 1 << 32

// messageLength interprets a 32-byte big-endian word as a message length,
// saturating at [maxMessageLen].
func messageLength(word []byte) uint64 {
	n := new(uint256.Int).SetBytes(word)
	if !n.IsUint64() || n.Uint64() > maxMessageLen {
		return maxMessageLen
	}
	return n.Uint64()
}

// Run implements the ML-DSA signature verification precompile.
// Input format:
//
//	[0]              = mode byte (0x44, 0x65, or 0x87)
//	[1:pubKeyEnd]    = public key (size depends on mode)
//	[pubKeyEnd:+32]  = message length as uint256 (32 bytes)
//	[+32:sigEnd]     = signature (size depends on mode)
//	[sigEnd:]        = message (exactly the declared length)
//
// Output: 32-byte word (1 = valid, 0 = invalid)
func (p *mldsaVerifyPrecompile) Run(
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

	if len(input) < ModeByte {
		return nil, remainingGas, fmt.Errorf("%w: need at least mode byte", ErrInvalidInputLength)
	}

	mode := input[0]
	params, ok := modeTable[mode]
	if !ok {
		return nil, remainingGas, fmt.Errorf("%w: 0x%02x", ErrUnsupportedMode, mode)
	}

	pubKeyEnd := ModeByte + params.publicKeySize
	msgLenEnd := pubKeyEnd + MessageLenSize
	sigEnd := msgLenEnd + params.signatureSize

	if len(input) < sigEnd {
		return nil, remainingGas, fmt.Errorf("%w: expected at least %d bytes for mode 0x%02x, got %d",
			ErrInvalidInputLength, sigEnd, mode, len(input))
	}

	publicKey := input[ModeByte:pubKeyEnd]
	signature := input[msgLenEnd:sigEnd]

	msgLen := messageLength(input[pubKeyEnd:msgLenEnd])
	expectedSize := uint64(sigEnd) + msgLen
	if uint64(len(input)) != expectedSize {
		return nil, remainingGas, fmt.Errorf("%w: declared %d message bytes, input has %d total",
			ErrMessageTooLarge, msgLen, len(input))
	}

	message := input[sigEnd:expectedSize]

	pub, err := mldsa.PublicKeyFromBytes(publicKey, params.mode)
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
