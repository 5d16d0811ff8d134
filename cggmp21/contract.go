// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cggmp21 implements the CGGMP21 threshold-ECDSA signature
// verification precompile.
//
// A completed CGGMP21 threshold signature is indistinguishable from a
// single-party ECDSA signature over secp256k1, so verification at this
// boundary is standard ECDSA verification against the aggregated group
// public key. The threshold parameters (t, n) are carried in the input for
// validation and gas metering only; the multi-party signing protocol itself
// lives in github.com/luxfi/threshold and is never executed here.
package cggmp21

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/contract"
)

var (
	// ContractCGGMP21VerifyAddress is the address of the CGGMP21 verify precompile
	ContractCGGMP21VerifyAddress = common.HexToAddress("0x020000000000000000000000000000000000000A")

	// Singleton instance
	CGGMP21VerifyPrecompile = &cggmp21VerifyPrecompile{verifier: ecdsaVerifier{}}

	_ contract.StatefulPrecompiledContract = &cggmp21VerifyPrecompile{}

	ErrInvalidInputLength = errors.New("invalid input length")
	ErrInvalidThreshold   = errors.New("invalid threshold: t must be > 0 and <= n")
)

const (
	// Gas costs for CGGMP21 threshold signature verification.
	// The per-signer component covers the group-key bookkeeping the host
	// performs per party; the ECDSA check itself is constant cost.
	CGGMP21VerifyBaseGas      uint64 = 75_000
	CGGMP21VerifyPerSignerGas uint64 = 10_000

	// Input format field sizes
	ThresholdSize    = 4  // uint32 threshold t
	TotalSignersSize = 4  // uint32 total signers n
	PublicKeySize    = 65 // uncompressed secp256k1 point (0x04 || X || Y)
	MessageHashSize  = 32 // 32-byte message hash
	SignatureSize    = 65 // r || s || v

	// MinInputSize is the exact size of the fixed-layout input
	MinInputSize = ThresholdSize + TotalSignersSize + PublicKeySize + MessageHashSize + SignatureSize

	// Field offsets within the input buffer
	publicKeyOffset   = ThresholdSize + TotalSignersSize
	messageHashOffset = publicKeyOffset + PublicKeySize
	signatureOffset   = messageHashOffset + MessageHashSize

	// uncompressedPointPrefix marks an uncompressed SEC1 point encoding
	uncompressedPointPrefix = 0x04
)

// SignatureVerifier checks a completed threshold signature against the
// aggregated group public key. The interface boundary keeps the gateway
// (decode, gas, encode) independent of the cryptographic backend, which can
// be swapped or mocked without touching dispatch logic.
type SignatureVerifier interface {
	// Verify reports whether [signature] is a valid ECDSA signature by
	// [publicKey] over [messageHash]. Cryptographic invalidity is a false
	// result, never an error.
	Verify(publicKey, messageHash, signature []byte) bool
}

// ecdsaVerifier is the default secp256k1 backend. It recovers the signer
// from the recoverable signature and compares against the supplied key,
// which checks (r, s) and the recovery id in one pass.
type ecdsaVerifier struct{}

func (ecdsaVerifier) Verify(publicKey, messageHash, signature []byte) bool {
	if len(publicKey) != PublicKeySize || publicKey[0] != uncompressedPointPrefix {
		return false
	}
	if len(messageHash) != MessageHashSize || len(signature) != SignatureSize {
		return false
	}

	// Reject non-canonical signatures deterministically: s in the upper
	// half of the curve order or a recovery id outside {0, 1}.
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:64])
	v := signature[64]
	if !luxcrypto.ValidateSignatureValues(v, r, s, true) {
		return false
	}

	recovered, err := luxcrypto.Ecrecover(messageHash, signature)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(recovered, publicKey) == 1
}

type cggmp21VerifyPrecompile struct {
	verifier SignatureVerifier
}

// verifyInput is the decoded fixed-layout call input.
type verifyInput struct {
	Threshold    uint32
	TotalSigners uint32
	PublicKey    []byte
	MessageHash  []byte
	Signature    []byte
}

// Address returns the address of the CGGMP21 verify precompile
func (p *cggmp21VerifyPrecompile) Address() common.Address {
	return ContractCGGMP21VerifyAddress
}

// RequiredGas calculates the gas required for CGGMP21 threshold verification
func (p *cggmp21VerifyPrecompile) RequiredGas(input []byte) uint64 {
	return CGGMP21VerifyGasCost(input)
}

// CGGMP21VerifyGasCost calculates the gas cost for threshold verification.
// The cost depends only on the total signer count, never on the threshold
// or on whether the signature turns out valid.
func CGGMP21VerifyGasCost(input []byte) uint64 {
	if len(input) < ThresholdSize+TotalSignersSize {
		return CGGMP21VerifyBaseGas
	}

	totalSigners := binary.BigEndian.Uint32(input[ThresholdSize : ThresholdSize+TotalSignersSize])

	return CGGMP21VerifyBaseGas + (uint64(totalSigners) * CGGMP21VerifyPerSignerGas)
}

// EstimateGas estimates gas for a given number of signers
func EstimateGas(totalSigners uint32) uint64 {
	return CGGMP21VerifyBaseGas + (uint64(totalSigners) * CGGMP21VerifyPerSignerGas)
}

// decodeInput parses the fixed-layout input buffer:
//
//	[0:4]     = threshold t (uint32, big-endian)
//	[4:8]     = total signers n (uint32, big-endian)
//	[8:73]    = aggregated public key (65 bytes, uncompressed)
//	[73:105]  = message hash (32 bytes)
//	[105:170] = signature (65 bytes, r || s || v)
//
// Trailing bytes beyond the fixed layout are ignored. Decoding is pure and
// has no side effects.
func decodeInput(input []byte) (*verifyInput, error) {
	if len(input) < MinInputSize {
		return nil, fmt.Errorf("%w: expected at least %d bytes, got %d",
			ErrInvalidInputLength, MinInputSize, len(input))
	}

	threshold := binary.BigEndian.Uint32(input[0:ThresholdSize])
	totalSigners := binary.BigEndian.Uint32(input[ThresholdSize : ThresholdSize+TotalSignersSize])

	if threshold == 0 || threshold > totalSigners {
		return nil, fmt.Errorf("%w: t=%d, n=%d", ErrInvalidThreshold, threshold, totalSigners)
	}

	return &verifyInput{
		Threshold:    threshold,
		TotalSigners: totalSigners,
		PublicKey:    input[publicKeyOffset:messageHashOffset],
		MessageHash:  input[messageHashOffset:signatureOffset],
		Signature:    input[signatureOffset:MinInputSize],
	}, nil
}

// encodeResult packs the verification result into a fixed 32-byte word with
// the boolean right-aligned (1 = valid, 0 = invalid). On-chain consumers
// compare this byte-for-byte, so the encoding is exact.
func encodeResult(valid bool) []byte {
	result := make([]byte, 32)
	if valid {
		result[31] = 1
	}
	return result
}

// Run implements the CGGMP21 threshold signature verification precompile.
// The call sequences decode, gas confirmation, verification, and encoding
// strictly in that order: verification never starts before the gas charge
// is confirmed affordable, and rejections produce only an error, never a
// partial result. The gateway holds no state across calls.
func (p *cggmp21VerifyPrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	gasCost := p.RequiredGas(input)

	in, err := decodeInput(input)
	if err != nil {
		// Structural rejections consume the full charge for the call.
		remainingGas, _ := contract.DeductGas(suppliedGas, gasCost)
		return nil, remainingGas, err
	}

	remainingGas, err := contract.DeductGas(suppliedGas, gasCost)
	if err != nil {
		return nil, 0, err
	}

	valid := p.verifier.Verify(in.PublicKey, in.MessageHash, in.Signature)

	return encodeResult(valid), remainingGas, nil
}
