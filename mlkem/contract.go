// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mlkem implements the ML-KEM (FIPS 203) key encapsulation
// precompile. One address serves both operations; the leading byte selects
// encapsulation or decapsulation and the second byte the parameter set.
package mlkem

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/mlkem"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/contract"
)

var (
	// ContractAddress is the address of the ML-KEM precompile
	ContractAddress = common.HexToAddress("0x0200000000000000000000000000000000000007")

	// Singleton instance
	MLKEMPrecompile = &mlkemPrecompile{}

	_ contract.StatefulPrecompiledContract = &mlkemPrecompile{}

	ErrInvalidInputLength   = errors.New("invalid input length")
	ErrUnsupportedMode      = errors.New("unsupported ML-KEM mode")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrEncapsulationFailed  = errors.New("encapsulation failed")
	ErrDecapsulationFailed  = errors.New("decapsulation failed")
)

// Operation selectors
const (
	OpEncapsulate = 0x01
	OpDecapsulate = 0x02
)

// ML-KEM modes (FIPS 203)
const (
	ModeMLKEM512  uint8 = 0x00 // NIST Level 1
	ModeMLKEM768  uint8 = 0x01 // NIST Level 3
	ModeMLKEM1024 uint8 = 0x02 // NIST Level 5
)

// SharedSecretSize is the shared secret length for every parameter set.
const SharedSecretSize = 32

// headerSize covers the operation byte and the mode byte.
const headerSize = 2

// modeParams holds the per-mode sizes and costs. Decapsulation carries the
// implicit-rejection re-encryption, so it costs more than encapsulation.
type modeParams struct {
	publicKeySize  int
	privateKeySize int
	ciphertextSize int
	encapsulateGas uint64
	decapsulateGas uint64
	mode           mlkem.Mode
}

var modeTable = map[uint8]modeParams{
	ModeMLKEM512: {
		publicKeySize:  800,
		privateKeySize: 1632,
		ciphertextSize: 768,
		encapsulateGas: 50_000,
		decapsulateGas: 60_000,
		mode:           mlkem.MLKEM512,
	},
	ModeMLKEM768: {
		publicKeySize:  1184,
		privateKeySize: 2400,
		ciphertextSize: 1088,
		encapsulateGas: 75_000,
		decapsulateGas: 90_000,
		mode:           mlkem.MLKEM768,
	},
	ModeMLKEM1024: {
		publicKeySize:  1568,
		privateKeySize: 3168,
		ciphertextSize: 1568,
		encapsulateGas: 100_000,
		decapsulateGas: 120_000,
		mode:           mlkem.MLKEM1024,
	},
}

// defaultGas is charged when operation or mode cannot be determined.
const defaultGas uint64 = 75_000

type mlkemPrecompile struct{}

// Address returns the address of the ML-KEM precompile
func (p *mlkemPrecompile) Address() common.Address {
	return ContractAddress
}

// RequiredGas calculates the gas required for ML-KEM operations
func (p *mlkemPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < headerSize {
		return defaultGas
	}

	params, ok := modeTable[input[1]]
	if !ok {
		return defaultGas
	}

	switch input[0] {
	case OpEncapsulate:
		return params.encapsulateGas
	case OpDecapsulate:
		return params.decapsulateGas
	default:
		return defaultGas
	}
}

// Run implements the ML-KEM precompile.
// Input format:
//
//	[0]   = operation byte (0x01 = encapsulate, 0x02 = decapsulate)
//	[1]   = mode byte (0x00 = 512, 0x01 = 768, 0x02 = 1024)
//	[2:]  = operation-specific payload
//
// Encapsulate payload: public key. Output: ciphertext || shared secret.
// Decapsulate payload: private key || ciphertext. Output: shared secret.
func (p *mlkemPrecompile) Run(
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

	if len(input) < headerSize {
		return nil, remainingGas, fmt.Errorf("%w: need operation and mode bytes", ErrInvalidInputLength)
	}

	op := input[0]
	mode := input[1]

	params, ok := modeTable[mode]
	if !ok {
		return nil, remainingGas, fmt.Errorf("%w: 0x%02x", ErrUnsupportedMode, mode)
	}

	var result []byte
	var err error

	switch op {
	case OpEncapsulate:
		result, err = encapsulate(params, input[headerSize:])
	case OpDecapsulate:
		result, err = decapsulate(params, input[headerSize:])
	default:
		err = fmt.Errorf("%w: 0x%02x", ErrUnsupportedOperation, op)
	}

	if err != nil {
		return nil, remainingGas, err
	}

	return result, remainingGas, nil
}

// encapsulate generates a fresh shared secret for the given public key and
// returns ciphertext || shared secret.
func encapsulate(params modeParams, payload []byte) ([]byte, error) {
	if len(payload) != params.publicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes for public key, got %d",
			ErrInvalidInputLength, params.publicKeySize, len(payload))
	}

	pk, err := mlkem.PublicKeyFromBytes(payload, params.mode)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	ciphertext, sharedSecret, err := pk.Encapsulate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncapsulationFailed, err)
	}

	result := make([]byte, params.ciphertextSize+SharedSecretSize)
	copy(result[:params.ciphertextSize], ciphertext)
	copy(result[params.ciphertextSize:], sharedSecret)

	return result, nil
}

// decapsulate recovers the shared secret from private key || ciphertext.
func decapsulate(params modeParams, payload []byte) ([]byte, error) {
	expectedLen := params.privateKeySize + params.ciphertextSize
	if len(payload) != expectedLen {
		return nil, fmt.Errorf("%w: expected %d bytes (privKey=%d + ct=%d), got %d",
			ErrInvalidInputLength, expectedLen, params.privateKeySize, params.ciphertextSize, len(payload))
	}

	sk, err := mlkem.PrivateKeyFromBytes(payload[:params.privateKeySize], params.mode)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	sharedSecret, err := sk.Decapsulate(payload[params.privateKeySize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecapsulationFailed, err)
	}

	return sharedSecret, nil
}
