// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cggmp21

import (
	"sync"
	"testing"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
	"github.com/luxfi/threshold/pkg/ecdsa"
	"github.com/luxfi/threshold/pkg/math/curve"
	"github.com/luxfi/threshold/pkg/party"
	"github.com/luxfi/threshold/pkg/pool"
	"github.com/luxfi/threshold/pkg/protocol"
	"github.com/luxfi/threshold/protocols/cmp"
	"github.com/stretchr/testify/require"
)

// mpcNetwork is an in-memory message router for running all parties of an
// MPC protocol inside a single test process.
type mpcNetwork struct {
	channels map[party.ID]chan *protocol.Message
	mu       sync.RWMutex
	done     chan struct{}
}

func newMPCNetwork(parties []party.ID) *mpcNetwork {
	n := &mpcNetwork{
		channels: make(map[party.ID]chan *protocol.Message),
		done:     make(chan struct{}),
	}
	for _, p := range parties {
		n.channels[p] = make(chan *protocol.Message, 1000)
	}
	return n
}

func (n *mpcNetwork) send(msg *protocol.Message) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	select {
	case <-n.done:
		return
	default:
	}

	if msg.Broadcast || msg.To == "" {
		for p, ch := range n.channels {
			if p != msg.From {
				select {
				case ch <- msg:
				default:
				}
			}
		}
		return
	}

	if ch, ok := n.channels[msg.To]; ok {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (n *mpcNetwork) close() {
	close(n.done)
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.channels {
		close(ch)
	}
}

// route pumps a party's handler: outgoing messages onto the network,
// incoming messages back into the handler.
func (n *mpcNetwork) route(id party.ID, h *protocol.Handler) {
	go func() {
		for msg := range h.Listen() {
			n.send(msg)
		}
	}()

	n.mu.RLock()
	in := n.channels[id]
	n.mu.RUnlock()

	for msg := range in {
		if h.CanAccept(msg) {
			h.Accept(msg)
		}
	}
}

// runKeygen executes distributed key generation across all parties and
// returns each party's key share config. With [threshold] = t, any t+1
// shares can sign.
func runKeygen(t *testing.T, participants []party.ID, threshold int, p *pool.Pool) map[party.ID]*cmp.Config {
	net := newMPCNetwork(participants)
	defer net.close()

	configs := make(map[party.ID]*cmp.Config, len(participants))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range participants {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()

			h, err := protocol.NewMultiHandler(
				cmp.Keygen(curve.Secp256k1{}, id, participants, threshold, p),
				nil,
			)
			require.NoError(t, err)

			go net.route(id, h)

			result, err := h.WaitForResult()
			require.NoError(t, err)

			mu.Lock()
			configs[id] = result.(*cmp.Config)
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	require.Len(t, configs, len(participants))
	return configs
}

// runSign executes the signing protocol among [signers] and returns the
// 65-byte Ethereum-format signature (r || s || v).
func runSign(t *testing.T, configs map[party.ID]*cmp.Config, signers []party.ID, messageHash []byte, p *pool.Pool) []byte {
	net := newMPCNetwork(signers)
	defer net.close()

	var signatures []*ecdsa.Signature
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range signers {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()

			h, err := protocol.NewMultiHandler(
				cmp.Sign(configs[id], signers, messageHash, p),
				nil,
			)
			require.NoError(t, err)

			go net.route(id, h)

			result, err := h.WaitForResult()
			require.NoError(t, err)

			mu.Lock()
			signatures = append(signatures, result.(*ecdsa.Signature))
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	require.NotEmpty(t, signatures)

	// Every signer converges on the same signature
	sigBytes, err := signatures[0].SigEthereum()
	require.NoError(t, err)
	require.Len(t, sigBytes, SignatureSize)
	return sigBytes
}

// groupPublicKey converts a party's key share config into the 65-byte
// uncompressed aggregated group key.
func groupPublicKey(t *testing.T, config *cmp.Config) []byte {
	compressed, err := config.PublicPoint().MarshalBinary()
	require.NoError(t, err)

	pub, err := luxcrypto.DecompressPubkey(compressed)
	require.NoError(t, err)

	return luxcrypto.FromECDSAPub(pub)
}

// A genuine 3-of-5 threshold signature produced by the full CGGMP21 signing
// protocol verifies through the precompile like any single-party signature.
func TestCGGMP21Verify_ThresholdSignature3of5(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-party signing protocol in short mode")
	}

	logger := log.NewTestLogger(log.InfoLevel)

	p := pool.NewPool(0)
	defer p.TearDown()

	participants := []party.ID{"alpha", "bravo", "charlie", "delta", "echo"}
	// Library threshold t tolerates t corrupted parties; t+1 signers produce
	// a signature, so t=2 gives the 3-of-5 scheme.
	configs := runKeygen(t, participants, 2, p)
	logger.Info("distributed keygen complete", log.Int("parties", len(participants)))

	publicKey := groupPublicKey(t, configs[participants[0]])

	// All parties hold the same group key
	for _, id := range participants[1:] {
		require.Equal(t, publicKey, groupPublicKey(t, configs[id]))
	}

	messageHash := luxcrypto.Keccak256([]byte("cross-chain transfer authorization"))

	signers := participants[:3]
	signature := runSign(t, configs, signers, messageHash, p)
	logger.Info("threshold signing complete", log.Int("signers", len(signers)))

	input := createInput(3, 5, publicKey, messageHash, signature)

	gas := CGGMP21VerifyPrecompile.RequiredGas(input)
	require.Equal(t, uint64(125_000), gas)

	result, remainingGas, err := CGGMP21VerifyPrecompile.Run(
		nil, common.Address{}, ContractCGGMP21VerifyAddress, input, gas, true)
	require.NoError(t, err)
	require.Equal(t, uint64(0), remainingGas)
	require.Equal(t, byte(1), result[31], "Threshold signature should verify")

	// The same signature fails against a different message
	otherHash := luxcrypto.Keccak256([]byte("a different authorization"))
	badInput := createInput(3, 5, publicKey, otherHash, signature)

	result, _, err = CGGMP21VerifyPrecompile.Run(
		nil, common.Address{}, ContractCGGMP21VerifyAddress, badInput, 1_000_000, true)
	require.NoError(t, err)
	require.Equal(t, byte(0), result[31])
}

// Different signer subsets of the same key produce signatures that all
// verify against the one group key.
func TestCGGMP21Verify_SignerSubsets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-party signing protocol in short mode")
	}

	p := pool.NewPool(0)
	defer p.TearDown()

	participants := []party.ID{"alpha", "bravo", "charlie", "delta"}
	configs := runKeygen(t, participants, 1, p)

	publicKey := groupPublicKey(t, configs[participants[0]])
	messageHash := luxcrypto.Keccak256([]byte("subset signing"))

	subsets := [][]party.ID{
		{"alpha", "bravo"},
		{"charlie", "delta"},
		{"bravo", "delta"},
	}

	for _, signers := range subsets {
		signature := runSign(t, configs, signers, messageHash, p)

		input := createInput(2, 4, publicKey, messageHash, signature)

		result, _, err := CGGMP21VerifyPrecompile.Run(
			nil, common.Address{}, ContractCGGMP21VerifyAddress, input, 1_000_000, true)
		require.NoError(t, err)
		require.Equal(t, byte(1), result[31], "signers %v", signers)
	}
}
