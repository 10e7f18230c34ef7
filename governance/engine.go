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
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// Engine orchestrates proposal creation, voting, cancellation and execution.
// It is the facade that aggregates the AccessRegistry, PowerLedger,
// ProposalStore and ExecutionDispatcher and enforces all timing and
// threshold rules.
type Engine struct {
	cfg        *Config
	registry   *AccessRegistry
	ledger     *PowerLedger
	store      *ProposalStore
	dispatcher *ExecutionDispatcher

	mu         sync.Mutex
	paused     bool
	strayFunds *big.Int

	proposalFeed  event.Feed
	voteFeed      event.Feed
	executedFeed  event.Feed
	cancelledFeed event.Feed
	fundsFeed     event.Feed

	now func() uint64
}

// NewEngine creates a governance engine over the given components.
func NewEngine(cfg *Config, registry *AccessRegistry, ledger *PowerLedger, store *ProposalStore, dispatcher *ExecutionDispatcher) *Engine {
	return &Engine{
		cfg:        cfg,
		registry:   registry,
		ledger:     ledger,
		store:      store,
		dispatcher: dispatcher,
		strayFunds: new(big.Int),
		now:        func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Registry returns the access registry.
func (e *Engine) Registry() *AccessRegistry {
	return e.registry
}

// Ledger returns the power ledger.
func (e *Engine) Ledger() *PowerLedger {
	return e.ledger
}

// CreateProposal validates and records a new proposal. The caller must be
// whitelisted or the owner and hold at least the proposal threshold of
// voting power. Voting starts VotingDelay after creation and lasts
// VotingPeriod.
func (e *Engine) CreateProposal(caller common.Address, title, description string, actions []ProposalAction) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return 0, ErrPaused
	}
	if !e.registry.IsWhitelisted(caller) && caller != e.registry.Owner() {
		return 0, ErrNotWhitelisted
	}
	if e.ledger.PowerOf(caller).Cmp(e.cfg.ProposalThreshold) < 0 {
		return 0, ErrBelowThreshold
	}
	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return 0, ErrTitleLength
	}
	if len(description) < minDescriptionLen || len(description) > maxDescriptionLen {
		return 0, ErrDescriptionLength
	}
	if len(actions) < minActions || len(actions) > maxActions {
		return 0, ErrActionCount
	}

	now := e.now()
	proposal := Proposal{
		Proposer:    caller,
		Title:       title,
		Description: description,
		StartTime:   now + e.cfg.VotingDelay,
		EndTime:     now + e.cfg.VotingDelay + e.cfg.VotingPeriod,
	}
	id := e.store.Put(proposal, actions)

	log.Info("Proposal created", "id", id, "proposer", caller, "title", title, "start", proposal.StartTime, "end", proposal.EndTime)
	proposalCreatedMeter.Mark(1)
	e.proposalFeed.Send(ProposalCreatedEvent{
		ID:        id,
		Proposer:  caller,
		Title:     title,
		StartTime: proposal.StartTime,
		EndTime:   proposal.EndTime,
	})
	return id, nil
}

// Vote records the caller's vote on a proposal. The full current voting
// power of the caller is cast; re-voting is never permitted.
func (e *Engine) Vote(caller common.Address, id uint64, support VoteSupport, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return ErrPaused
	}
	proposal, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if !support.Valid() {
		return ErrInvalidSupport
	}
	t := e.now()
	if t < proposal.StartTime {
		return ErrVotingNotStarted
	}
	if t > proposal.EndTime {
		return ErrVotingEnded
	}
	if proposal.Executed {
		return ErrProposalExecuted
	}
	if proposal.Cancelled {
		return ErrProposalCancelled
	}
	voted, err := e.store.HasVoted(id, caller)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}
	weight := e.ledger.PowerOf(caller)
	if weight.Sign() == 0 {
		return ErrNoVotingPower
	}

	receipt := &Receipt{Voter: caller, Support: support, Weight: weight, Reason: reason}
	if err := e.store.RecordVote(id, receipt); err != nil {
		return err
	}

	log.Info("Vote cast", "id", id, "voter", caller, "support", support, "weight", weight)
	voteCastMeter.Mark(1)
	e.voteFeed.Send(VoteCastEvent{ID: id, Voter: caller, Support: support, Weight: weight, Reason: reason})
	return nil
}

// State evaluates the state function for a proposal at the current time.
func (e *Engine) State(id uint64) (ProposalState, error) {
	proposal, err := e.store.Get(id)
	if err != nil {
		return StatePending, err
	}
	return stateAt(proposal, e.now(), e.cfg), nil
}

// stateAt is the pure proposal state function. The clauses are evaluated in
// precedence order; the first match wins.
func stateAt(p *Proposal, t uint64, cfg *Config) ProposalState {
	switch {
	case p.Cancelled:
		return StateCancelled
	case p.Executed:
		return StateExecuted
	case t < p.StartTime:
		return StatePending
	case t <= p.EndTime:
		return StateActive
	case p.ForVotes.Cmp(p.AgainstVotes) <= 0:
		return StateDefeated
	case p.TotalVotes().Cmp(cfg.QuorumThreshold) < 0:
		return StateDefeated
	case t <= p.EndTime+cfg.ExecutionDelay:
		return StateSucceeded
	default:
		return StateQueued
	}
}

// ExecuteProposal dispatches the actions of a passed proposal. The proposal
// is marked executed before any external call is made, so a re-entrant
// attempt observes the flag already set; the dispatcher's single-entry guard
// rejects nested execution outright as defense in depth.
//
// When an action call fails the action effects are reverted as a batch but
// the executed flag is retained: the failed attempt is terminal and the
// proposal can never be executed again. This is a deliberate contract, not
// an oversight.
func (e *Engine) ExecuteProposal(caller common.Address, id uint64) error {
	if e.dispatcher.InFlight() {
		return ErrReentrantExecution
	}

	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return ErrPaused
	}
	proposal, err := e.store.Get(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	t := e.now()
	if t < proposal.EndTime+e.cfg.ExecutionDelay {
		e.mu.Unlock()
		return ErrExecutionDelayNotMet
	}
	if proposal.Executed {
		e.mu.Unlock()
		return ErrProposalExecuted
	}
	if proposal.Cancelled {
		e.mu.Unlock()
		return ErrProposalCancelled
	}
	if proposal.ForVotes.Cmp(proposal.AgainstVotes) <= 0 {
		e.mu.Unlock()
		return ErrMajorityNotReached
	}
	if proposal.TotalVotes().Cmp(e.cfg.QuorumThreshold) < 0 {
		e.mu.Unlock()
		return ErrQuorumNotReached
	}

	// Effects before interactions: the executed flag is final from here on.
	if err := e.store.MarkExecuted(id); err != nil {
		e.mu.Unlock()
		return err
	}
	actions, err := e.store.Actions(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if err := e.dispatcher.Dispatch(id, actions); err != nil {
		executionFailedMeter.Mark(1)
		return err
	}

	log.Info("Proposal executed", "id", id, "caller", caller, "actions", len(actions))
	proposalExecutedMeter.Mark(1)
	e.executedFeed.Send(ProposalExecutedEvent{ID: id, Caller: caller})
	return nil
}

// CancelProposal cancels a proposal. Only the original proposer or the
// registry owner may cancel, and only before execution or a prior cancel.
func (e *Engine) CancelProposal(caller common.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	proposal, err := e.store.Get(id)
	if err != nil {
		return err
	}
	admin := caller == e.registry.Owner() && caller != proposal.Proposer
	if caller != proposal.Proposer && !admin {
		return ErrNotProposer
	}
	if proposal.Executed {
		return ErrProposalExecuted
	}
	if proposal.Cancelled {
		return ErrProposalCancelled
	}
	if err := e.store.MarkCancelled(id); err != nil {
		return err
	}

	log.Info("Proposal cancelled", "id", id, "caller", caller, "admin", admin)
	proposalCancelledMeter.Mark(1)
	e.cancelledFeed.Send(ProposalCancelledEvent{ID: id, Admin: admin})
	return nil
}

// Delegate moves the caller's voting power to a delegate. Rejected while the
// engine is paused; the move itself is the ledger's concern.
func (e *Engine) Delegate(from, to common.Address) error {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return ErrPaused
	}
	e.mu.Unlock()

	return e.ledger.Delegate(from, to)
}

// PowerOf returns the current voting power of an identity.
func (e *Engine) PowerOf(identity common.Address) *big.Int {
	return e.ledger.PowerOf(identity)
}

// SetWhitelisted grants or revokes proposal-creation rights.
func (e *Engine) SetWhitelisted(caller, identity common.Address, whitelisted bool) error {
	return e.registry.SetWhitelisted(caller, identity, whitelisted)
}

// IsWhitelisted checks if an identity may create proposals.
func (e *Engine) IsWhitelisted(identity common.Address) bool {
	return e.registry.IsWhitelisted(identity)
}

// GetProposal returns a copy of a proposal.
func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	return e.store.Get(id)
}

// GetActions returns a proposal's recorded actions.
func (e *Engine) GetActions(id uint64) ([]ProposalAction, error) {
	return e.store.Actions(id)
}

// HasVoted reports whether a voter has voted on a proposal.
func (e *Engine) HasVoted(id uint64, voter common.Address) (bool, error) {
	return e.store.HasVoted(id, voter)
}

// ReceiptOf returns the vote receipt of a voter on a proposal, or nil.
func (e *Engine) ReceiptOf(id uint64, voter common.Address) (*Receipt, error) {
	return e.store.Receipt(id, voter)
}

// ProposalCount returns the number of proposals ever created.
func (e *Engine) ProposalCount() uint64 {
	return e.store.Count()
}

// Proposals returns all proposals ordered by id.
func (e *Engine) Proposals() []*Proposal {
	return e.store.All()
}

// ProposalsByState returns all proposals currently in the given state.
func (e *Engine) ProposalsByState(state ProposalState) []*Proposal {
	t := e.now()
	matched := make([]*Proposal, 0)
	for _, p := range e.store.All() {
		if stateAt(p, t, e.cfg) == state {
			matched = append(matched, p)
		}
	}
	return matched
}

// Pause stops delegation, proposal creation, voting and execution. Reads and
// whitelist/pause administration stay available.
func (e *Engine) Pause(caller common.Address) error {
	if caller != e.registry.Owner() {
		return ErrNotOwner
	}
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()

	log.Warn("Governance paused", "owner", caller)
	return nil
}

// Unpause resumes normal operation.
func (e *Engine) Unpause(caller common.Address) error {
	if caller != e.registry.Owner() {
		return ErrNotOwner
	}
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()

	log.Info("Governance unpaused", "owner", caller)
	return nil
}

// IsPaused reports whether the engine is paused.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused
}

// ReceiveFunds credits stray funds sent to the governance account.
func (e *Engine) ReceiveFunds(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.strayFunds.Add(e.strayFunds, amount)
	return nil
}

// StrayFunds returns the current stray-funds balance.
func (e *Engine) StrayFunds() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return new(big.Int).Set(e.strayFunds)
}

// WithdrawStrayFunds sweeps the full stray-funds balance to a recipient.
// Owner-only; rejects the zero recipient and an empty balance.
func (e *Engine) WithdrawStrayFunds(caller, to common.Address) error {
	if caller != e.registry.Owner() {
		return ErrNotOwner
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}

	e.mu.Lock()
	if e.strayFunds.Sign() == 0 {
		e.mu.Unlock()
		return ErrNothingToWithdraw
	}
	amount := new(big.Int).Set(e.strayFunds)
	e.mu.Unlock()

	if err := e.dispatcher.Transfer(to, amount); err != nil {
		return err
	}

	e.mu.Lock()
	e.strayFunds.Sub(e.strayFunds, amount)
	e.mu.Unlock()

	log.Info("Stray funds withdrawn", "to", to, "amount", amount)
	e.fundsFeed.Send(FundsWithdrawnEvent{To: to, Amount: amount})
	return nil
}

// SubscribeProposalCreated subscribes to proposal creation events.
func (e *Engine) SubscribeProposalCreated(ch chan<- ProposalCreatedEvent) event.Subscription {
	return e.proposalFeed.Subscribe(ch)
}

// SubscribeVoteCast subscribes to vote events.
func (e *Engine) SubscribeVoteCast(ch chan<- VoteCastEvent) event.Subscription {
	return e.voteFeed.Subscribe(ch)
}

// SubscribeProposalExecuted subscribes to execution events.
func (e *Engine) SubscribeProposalExecuted(ch chan<- ProposalExecutedEvent) event.Subscription {
	return e.executedFeed.Subscribe(ch)
}

// SubscribeProposalCancelled subscribes to cancellation events.
func (e *Engine) SubscribeProposalCancelled(ch chan<- ProposalCancelledEvent) event.Subscription {
	return e.cancelledFeed.Subscribe(ch)
}

// SubscribeFundsWithdrawn subscribes to stray-funds withdrawal events.
func (e *Engine) SubscribeFundsWithdrawn(ch chan<- FundsWithdrawnEvent) event.Subscription {
	return e.fundsFeed.Subscribe(ch)
}
