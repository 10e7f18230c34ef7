// Copyright 2025 The swift-governance-contract Authors
// This file is part of the swift-governance-contract library.
//
// The swift-governance-contract library is free software: you can redistribute
// it and/or modify it under the terms of the GNU Lesser General Public License
// as published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// The swift-governance-contract library is distributed in the hope that it
// will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
// of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the swift-governance-contract library. If not, see
// <http://www.gnu.org/licenses/>.

package governance

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceReader reads current token balances from the external token ledger.
// It is consulted exactly once per delegation, to snapshot the delegator's
// balance; voting power otherwise follows balance-change notifications only.
type BalanceReader interface {
	// BalanceOf returns the current token balance of an identity.
	BalanceOf(identity common.Address) *big.Int
}

// ActionCaller performs the external calls recorded on a proposal. A batch of
// calls framed by Snapshot/RevertToSnapshot must apply all-or-nothing: the
// dispatcher reverts to the snapshot when any call in the batch fails.
type ActionCaller interface {
	// Snapshot captures the caller's state and returns a revision id.
	Snapshot() int

	// RevertToSnapshot discards all state changes made since the given
	// revision.
	RevertToSnapshot(revision int)

	// Call performs a single external call.
	Call(target common.Address, value *big.Int, data []byte) error
}
