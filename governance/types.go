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
	"github.com/ethereum/go-ethereum/crypto"
)

// VoteSupport encodes the direction of a cast vote.
type VoteSupport uint8

const (
	SupportAgainst VoteSupport = 0x00
	SupportFor     VoteSupport = 0x01
	SupportAbstain VoteSupport = 0x02
)

// Valid reports whether the support value is one of the three known directions.
func (s VoteSupport) Valid() bool {
	return s <= SupportAbstain
}

// ProposalState represents the lifecycle state of a proposal as derived by
// the engine's state function. States are computed, never stored.
type ProposalState uint8

const (
	StatePending   ProposalState = 0x00
	StateActive    ProposalState = 0x01
	StateCancelled ProposalState = 0x02
	StateDefeated  ProposalState = 0x03
	StateSucceeded ProposalState = 0x04
	StateQueued    ProposalState = 0x05
	StateExecuted  ProposalState = 0x06
)

// String returns a human-readable name for the state.
func (s ProposalState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateActive:
		return "Active"
	case StateCancelled:
		return "Cancelled"
	case StateDefeated:
		return "Defeated"
	case StateSucceeded:
		return "Succeeded"
	case StateQueued:
		return "Queued"
	case StateExecuted:
		return "Executed"
	default:
		return "Unknown"
	}
}

// Proposal represents a governance proposal
type Proposal struct {
	ID           uint64         // unique, monotonically assigned, starts at 1
	Proposer     common.Address // creator of the proposal
	Title        string         // 1-100 characters
	Description  string         // 1-5000 characters
	StartTime    uint64         // voting window start (Unix seconds)
	EndTime      uint64         // voting window end (Unix seconds, inclusive)
	ForVotes     *big.Int       // accumulated weight voting for
	AgainstVotes *big.Int       // accumulated weight voting against
	AbstainVotes *big.Int       // accumulated weight abstaining
	Executed     bool
	Cancelled    bool
}

// TotalVotes returns the sum of all cast vote weights.
func (p *Proposal) TotalVotes() *big.Int {
	total := new(big.Int).Add(p.ForVotes, p.AgainstVotes)
	return total.Add(total, p.AbstainVotes)
}

// ProposalAction is a single external call recorded on a proposal. Actions
// are immutable once attached and owned exclusively by their proposal.
type ProposalAction struct {
	Target    common.Address // call target
	Value     *big.Int       // amount to transfer with the call
	Signature string         // optional function signature, e.g. "transfer(address,uint256)"
	Payload   []byte         // opaque call payload
}

// CallData returns the payload dispatched for this action. When a function
// signature is present the payload is prefixed with the 4-byte selector
// derived from the Keccak256 hash of the signature; otherwise the raw
// payload is used verbatim.
func (a *ProposalAction) CallData() []byte {
	if a.Signature == "" {
		return a.Payload
	}
	selector := crypto.Keccak256([]byte(a.Signature))[:4]
	data := make([]byte, 0, 4+len(a.Payload))
	data = append(data, selector...)
	return append(data, a.Payload...)
}

// Receipt records a single cast vote on a proposal.
type Receipt struct {
	Voter   common.Address
	Support VoteSupport
	Weight  *big.Int // voter's power at vote time
	Reason  string
}

// Delegation records the active delegation of a participant. A participant
// has at most one delegate; DelegatedVotes is the participant's balance
// snapshotted at delegation time (or at the last balance notification).
type Delegation struct {
	Delegate           common.Address
	DelegatedVotes     *big.Int
	LastDelegationTime uint64
}

// Validation limits for proposal contents. Fixed by the governance rules,
// not configurable.
const (
	minTitleLen       = 1
	maxTitleLen       = 100
	minDescriptionLen = 1
	maxDescriptionLen = 5000
	minActions        = 1
	maxActions        = 10
)

// Config holds the governance timing and threshold parameters.
type Config struct {
	VotingDelay       uint64   // delay from creation to voting start (seconds)
	VotingPeriod      uint64   // voting window length (seconds)
	ExecutionDelay    uint64   // delay from voting end to executability (seconds)
	ProposalThreshold *big.Int // minimum voting power to create a proposal
	QuorumThreshold   *big.Int // minimum total votes for a proposal to pass
}

// DefaultConfig returns the default governance configuration.
func DefaultConfig() *Config {
	return &Config{
		VotingDelay:       24 * 60 * 60,     // 1 day
		VotingPeriod:      3 * 24 * 60 * 60, // 3 days
		ExecutionDelay:    24 * 60 * 60,     // 1 day
		ProposalThreshold: big.NewInt(100),
		QuorumThreshold:   big.NewInt(1000),
	}
}
