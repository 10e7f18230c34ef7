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

// Events are the only notification mechanism exposed to external observers.
// Each component publishes through an event.Feed; subscribers receive typed
// event values on their channels.

// ProposalCreatedEvent is emitted when a proposal is created.
type ProposalCreatedEvent struct {
	ID        uint64
	Proposer  common.Address
	Title     string
	StartTime uint64
	EndTime   uint64
}

// VoteCastEvent is emitted when a vote is recorded.
type VoteCastEvent struct {
	ID      uint64
	Voter   common.Address
	Support VoteSupport
	Weight  *big.Int
	Reason  string
}

// ProposalExecutedEvent is emitted after a proposal's actions have all been
// dispatched successfully.
type ProposalExecutedEvent struct {
	ID     uint64
	Caller common.Address
}

// ProposalCancelledEvent is emitted when a proposal is cancelled. Admin is
// true when the registry owner, rather than the proposer, cancelled it.
type ProposalCancelledEvent struct {
	ID    uint64
	Admin bool
}

// DelegateChangedEvent is emitted when a participant changes its delegate.
type DelegateChangedEvent struct {
	Delegator   common.Address
	OldDelegate common.Address
	NewDelegate common.Address
}

// PowerUpdatedEvent is emitted whenever an identity's voting power changes.
type PowerUpdatedEvent struct {
	Identity common.Address
	NewPower *big.Int
}

// WhitelistUpdatedEvent is emitted when a whitelist entry changes.
type WhitelistUpdatedEvent struct {
	Identity    common.Address
	Whitelisted bool
}

// FundsWithdrawnEvent is emitted when stray funds are swept by the owner.
type FundsWithdrawnEvent struct {
	To     common.Address
	Amount *big.Int
}
