// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the activation configuration shared by
// all precompile modules. Each module embeds an Upgrade, which carries the
// activation timestamp and an optional disable flag used to deactivate a
// previously activated precompile.
package precompileconfig

import (
	"github.com/luxfi/geth/common"
)

// Config is the interface every precompile config implements.
type Config interface {
	// Key returns the unique config key of the precompile, used as the
	// JSON key in the chain upgrade config.
	Key() string

	// Timestamp returns the activation timestamp, or nil if the
	// precompile is never activated.
	Timestamp() *uint64

	// IsDisabled returns true if this config deactivates the precompile.
	IsDisabled() bool

	// Equal reports whether [other] describes the same upgrade.
	Equal(other Config) bool

	// Verify checks the config is well formed for [chainConfig].
	Verify(chainConfig ChainConfig) error
}

// ChainConfig is the subset of the host chain config precompile configs
// consult during verification.
type ChainConfig interface {
	// IsPrecompileEnabled reports whether the precompile at [addr] is
	// active at [timestamp].
	IsPrecompileEnabled(addr common.Address, timestamp uint64) bool
}

// Upgrade carries the activation state shared by all precompile configs.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp,omitempty"`
	Disable        bool    `json:"disable,omitempty"`
}

// Timestamp returns the upgrade activation timestamp.
func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

// Equal reports whether [other] describes the same upgrade.
func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	if (u.BlockTimestamp == nil) != (other.BlockTimestamp == nil) {
		return false
	}
	return u.BlockTimestamp == nil || *u.BlockTimestamp == *other.BlockTimestamp
}
