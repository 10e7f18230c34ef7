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
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// storedProposal is the durable record of a proposal, its actions and its
// per-voter receipts.
type storedProposal struct {
	proposal Proposal
	actions  []ProposalAction
	receipts map[common.Address]*Receipt
}

// ProposalStore is the append-only record of proposals. Proposal ids are
// positive and monotonically assigned; records are never deleted.
type ProposalStore struct {
	mu        sync.RWMutex
	counter   uint64
	proposals map[uint64]*storedProposal
}

// NewProposalStore creates an empty in-memory proposal store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		proposals: make(map[uint64]*storedProposal),
	}
}

// Put stores a new proposal together with its action list and returns the
// assigned id. The actions are copied verbatim.
func (s *ProposalStore) Put(p Proposal, actions []ProposalAction) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	p.ID = s.counter
	p.ForVotes = new(big.Int)
	p.AgainstVotes = new(big.Int)
	p.AbstainVotes = new(big.Int)

	copied := make([]ProposalAction, len(actions))
	for i, a := range actions {
		copied[i] = a
		if a.Value != nil {
			copied[i].Value = new(big.Int).Set(a.Value)
		} else {
			copied[i].Value = new(big.Int)
		}
		copied[i].Payload = append([]byte(nil), a.Payload...)
	}

	s.proposals[p.ID] = &storedProposal{
		proposal: p,
		actions:  copied,
		receipts: make(map[common.Address]*Receipt),
	}
	return p.ID
}

// Get returns a copy of a proposal.
func (s *ProposalStore) Get(id uint64) (*Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return copyProposal(&sp.proposal), nil
}

// Actions returns a copy of a proposal's action list in recorded order.
func (s *ProposalStore) Actions(id uint64) ([]ProposalAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	actions := make([]ProposalAction, len(sp.actions))
	for i, a := range sp.actions {
		actions[i] = a
		actions[i].Value = new(big.Int).Set(a.Value)
		actions[i].Payload = append([]byte(nil), a.Payload...)
	}
	return actions, nil
}

// HasVoted reports whether a voter has already voted on a proposal.
func (s *ProposalStore) HasVoted(id uint64, voter common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.proposals[id]
	if !ok {
		return false, ErrProposalNotFound
	}
	_, voted := sp.receipts[voter]
	return voted, nil
}

// Receipt returns the recorded vote receipt of a voter on a proposal, or nil
// when the voter has not voted.
func (s *ProposalStore) Receipt(id uint64, voter common.Address) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	r, voted := sp.receipts[voter]
	if !voted {
		return nil, nil
	}
	copied := *r
	copied.Weight = new(big.Int).Set(r.Weight)
	return &copied, nil
}

// RecordVote appends a receipt and adds its weight to the matching tally.
// The receipt map and the tallies mutate together, so the sum of recorded
// weights always equals forVotes+againstVotes+abstainVotes.
func (s *ProposalStore) RecordVote(id uint64, r *Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	if _, voted := sp.receipts[r.Voter]; voted {
		return ErrAlreadyVoted
	}

	copied := *r
	copied.Weight = new(big.Int).Set(r.Weight)
	sp.receipts[r.Voter] = &copied

	switch r.Support {
	case SupportFor:
		sp.proposal.ForVotes.Add(sp.proposal.ForVotes, r.Weight)
	case SupportAgainst:
		sp.proposal.AgainstVotes.Add(sp.proposal.AgainstVotes, r.Weight)
	case SupportAbstain:
		sp.proposal.AbstainVotes.Add(sp.proposal.AbstainVotes, r.Weight)
	}
	return nil
}

// MarkExecuted flags a proposal as executed.
func (s *ProposalStore) MarkExecuted(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	sp.proposal.Executed = true
	return nil
}

// MarkCancelled flags a proposal as cancelled.
func (s *ProposalStore) MarkCancelled(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	sp.proposal.Cancelled = true
	return nil
}

// Count returns the number of proposals ever created.
func (s *ProposalStore) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counter
}

// All returns copies of every proposal, ordered by id.
func (s *ProposalStore) All() []*Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposals := make([]*Proposal, 0, len(s.proposals))
	for id := uint64(1); id <= s.counter; id++ {
		if sp, ok := s.proposals[id]; ok {
			proposals = append(proposals, copyProposal(&sp.proposal))
		}
	}
	return proposals
}

func copyProposal(p *Proposal) *Proposal {
	copied := *p
	copied.ForVotes = new(big.Int).Set(p.ForVotes)
	copied.AgainstVotes = new(big.Int).Set(p.AgainstVotes)
	copied.AbstainVotes = new(big.Int).Set(p.AbstainVotes)
	return &copied
}
