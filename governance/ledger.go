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

// PowerLedger tracks each participant's current voting power and delegation
// relationships. Power follows a push model: it changes only through
// delegation moves and balance-change notifications from the token ledger.
// An identity that never delegates and is never notified has zero power.
type PowerLedger struct {
	balances BalanceReader  // external balance source, read at delegation time only
	ledgerID common.Address // sole identity allowed to push balance changes

	mu          sync.RWMutex
	power       map[common.Address]*big.Int
	delegations map[common.Address]*Delegation

	delegateFeed event.Feed
	powerFeed    event.Feed

	now func() uint64
}

// NewPowerLedger creates a ledger bound to the given balance source. Only
// ledgerID may deliver balance-change notifications.
func NewPowerLedger(balances BalanceReader, ledgerID common.Address) *PowerLedger {
	return &PowerLedger{
		balances:    balances,
		ledgerID:    ledgerID,
		power:       make(map[common.Address]*big.Int),
		delegations: make(map[common.Address]*Delegation),
		now:         func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Delegate moves from's voting power to a new delegate. The weight moved is a
// snapshot of from's current token balance; it is not live-tracked afterwards
// unless a balance-change notification arrives for from. Any weight
// previously attributed through from's old delegation is removed from the old
// delegate first, so power is conserved across the move.
func (l *PowerLedger) Delegate(from, to common.Address) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if to == from {
		return ErrSelfDelegation
	}

	snapshot := new(big.Int).Set(l.balances.BalanceOf(from))

	l.mu.Lock()
	var oldDelegate common.Address
	if old, ok := l.delegations[from]; ok {
		oldDelegate = old.Delegate
		l.decreasePower(old.Delegate, old.DelegatedVotes)
	} else {
		// First delegation: from's directly held share of its own balance
		// moves to the delegate. Weight delegated to from by others stays.
		l.decreasePower(from, snapshot)
	}
	l.delegations[from] = &Delegation{
		Delegate:           to,
		DelegatedVotes:     new(big.Int).Set(snapshot),
		LastDelegationTime: l.now(),
	}
	l.increasePower(to, snapshot)

	touched := from
	if oldDelegate != (common.Address{}) {
		touched = oldDelegate
	}
	touchedPower := l.powerOf(touched)
	newDelegatePower := l.powerOf(to)
	l.mu.Unlock()

	log.Info("Delegate changed", "delegator", from, "oldDelegate", oldDelegate, "newDelegate", to, "weight", snapshot)
	delegationMeter.Mark(1)
	l.delegateFeed.Send(DelegateChangedEvent{Delegator: from, OldDelegate: oldDelegate, NewDelegate: to})
	l.powerFeed.Send(PowerUpdatedEvent{Identity: touched, NewPower: touchedPower})
	l.powerFeed.Send(PowerUpdatedEvent{Identity: to, NewPower: newDelegatePower})
	return nil
}

// OnBalanceChanged is the notification path from the external token ledger;
// any other caller is rejected. For a delegating identity the delta between
// the new balance and the recorded snapshot is applied to the delegate's
// power and the snapshot updated; otherwise the identity's own power is set
// to the new balance directly.
func (l *PowerLedger) OnBalanceChanged(caller, identity common.Address, newBalance *big.Int) error {
	if caller != l.ledgerID {
		return ErrNotTokenLedger
	}
	if newBalance == nil || newBalance.Sign() < 0 {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	var updated common.Address
	if d, ok := l.delegations[identity]; ok {
		delta := new(big.Int).Sub(newBalance, d.DelegatedVotes)
		if delta.Sign() >= 0 {
			l.increasePower(d.Delegate, delta)
		} else {
			l.decreasePower(d.Delegate, new(big.Int).Neg(delta))
		}
		d.DelegatedVotes = new(big.Int).Set(newBalance)
		updated = d.Delegate
	} else {
		l.power[identity] = new(big.Int).Set(newBalance)
		updated = identity
	}
	newPower := l.powerOf(updated)
	l.mu.Unlock()

	log.Debug("Voting power updated", "identity", updated, "power", newPower)
	l.powerFeed.Send(PowerUpdatedEvent{Identity: updated, NewPower: newPower})
	return nil
}

// PowerOf returns the current voting power of an identity.
func (l *PowerLedger) PowerOf(identity common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.powerOf(identity)
}

// DelegationOf returns the active delegation of an identity, if any.
func (l *PowerLedger) DelegationOf(identity common.Address) (*Delegation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	d, ok := l.delegations[identity]
	if !ok {
		return nil, false
	}
	copied := *d
	copied.DelegatedVotes = new(big.Int).Set(d.DelegatedVotes)
	return &copied, true
}

// SubscribeDelegateChanged subscribes to delegation change events.
func (l *PowerLedger) SubscribeDelegateChanged(ch chan<- DelegateChangedEvent) event.Subscription {
	return l.delegateFeed.Subscribe(ch)
}

// SubscribePowerUpdated subscribes to voting power update events.
func (l *PowerLedger) SubscribePowerUpdated(ch chan<- PowerUpdatedEvent) event.Subscription {
	return l.powerFeed.Subscribe(ch)
}

// powerOf returns a copy of an identity's power. Callers must hold l.mu.
func (l *PowerLedger) powerOf(identity common.Address) *big.Int {
	if p, ok := l.power[identity]; ok {
		return new(big.Int).Set(p)
	}
	return new(big.Int)
}

// increasePower adds weight to an identity's power. Callers must hold l.mu.
func (l *PowerLedger) increasePower(identity common.Address, weight *big.Int) {
	p, ok := l.power[identity]
	if !ok {
		p = new(big.Int)
		l.power[identity] = p
	}
	p.Add(p, weight)
}

// decreasePower removes weight from an identity's power, flooring at zero so
// the non-negative invariant holds even against stale snapshots. Callers must
// hold l.mu.
func (l *PowerLedger) decreasePower(identity common.Address, weight *big.Int) {
	p, ok := l.power[identity]
	if !ok {
		return
	}
	p.Sub(p, weight)
	if p.Sign() < 0 {
		p.SetInt64(0)
	}
}
