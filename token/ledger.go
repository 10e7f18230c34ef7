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

// Package token provides the reference in-process fungible-token ledger used
// as the governance engine's balance source. Every balance mutation is pushed
// to the bound notifier, keeping voting power in sync with token ownership.
package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

var (
	ErrNotOwner            = errors.New("caller is not the token owner")
	ErrNegativeAmount      = errors.New("amount must be non-negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSnapshot     = errors.New("invalid snapshot revision")
)

// Notifier receives balance-change notifications. The governance PowerLedger
// implements it.
type Notifier interface {
	OnBalanceChanged(caller, identity common.Address, newBalance *big.Int) error
}

// CallRecord is one external call performed through the ledger.
type CallRecord struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

// Ledger is an in-memory fungible-token ledger. It doubles as the
// governance action caller: dispatched value transfers debit the treasury
// account, and Snapshot/RevertToSnapshot give action batches all-or-nothing
// semantics.
type Ledger struct {
	id    common.Address // the ledger's caller identity toward governance
	owner common.Address // mint authority

	mu          sync.RWMutex
	balances    map[common.Address]*big.Int
	totalSupply *big.Int
	notifier    Notifier
	treasury    common.Address
	snapshots   []map[common.Address]*big.Int
	calls       []CallRecord
}

// NewLedger creates an empty ledger. id is the identity the ledger presents
// when notifying governance; owner is the mint authority.
func NewLedger(id, owner common.Address) *Ledger {
	return &Ledger{
		id:          id,
		owner:       owner,
		balances:    make(map[common.Address]*big.Int),
		totalSupply: new(big.Int),
	}
}

// ID returns the ledger's caller identity.
func (l *Ledger) ID() common.Address {
	return l.id
}

// BindGovernance attaches the notifier that receives balance changes and the
// treasury account debited by dispatched value transfers.
func (l *Ledger) BindGovernance(n Notifier, treasury common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notifier = n
	l.treasury = treasury
}

// BalanceOf returns the current balance of an identity.
func (l *Ledger) BalanceOf(identity common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.balances[identity]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.totalSupply)
}

// Mint credits newly issued tokens to an account. Owner-only.
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int) error {
	if caller != l.owner {
		return ErrNotOwner
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	l.credit(to, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	newBalance := new(big.Int).Set(l.balances[to])
	l.mu.Unlock()

	log.Info("Tokens minted", "to", to, "amount", amount)
	l.notify(to, newBalance)
	return nil
}

// Transfer moves tokens between accounts and notifies governance for both.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	if err := l.debit(from, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	l.credit(to, amount)
	fromBalance := new(big.Int).Set(l.balances[from])
	toBalance := new(big.Int).Set(l.balances[to])
	l.mu.Unlock()

	l.notify(from, fromBalance)
	l.notify(to, toBalance)
	return nil
}

// Snapshot captures the full balance state and returns a revision id.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make(map[common.Address]*big.Int, len(l.balances))
	for a, b := range l.balances {
		copied[a] = new(big.Int).Set(b)
	}
	l.snapshots = append(l.snapshots, copied)
	return len(l.snapshots) - 1
}

// RevertToSnapshot restores the balance state of a revision and re-notifies
// governance for every account whose balance moved back.
func (l *Ledger) RevertToSnapshot(revision int) {
	l.mu.Lock()
	if revision < 0 || revision >= len(l.snapshots) {
		l.mu.Unlock()
		log.Error("Invalid ledger snapshot revision", "revision", revision)
		return
	}
	restored := l.snapshots[revision]
	l.snapshots = l.snapshots[:revision]

	changed := make(map[common.Address]*big.Int)
	for a, b := range l.balances {
		if r, ok := restored[a]; !ok || r.Cmp(b) != 0 {
			changed[a] = nil
		}
	}
	for a, b := range restored {
		if cur, ok := l.balances[a]; !ok || cur.Cmp(b) != 0 {
			changed[a] = nil
		}
	}
	l.balances = restored
	for a := range changed {
		if b, ok := restored[a]; ok {
			changed[a] = new(big.Int).Set(b)
		} else {
			changed[a] = new(big.Int)
		}
	}
	l.mu.Unlock()

	for a, b := range changed {
		l.notify(a, b)
	}
}

// Call performs a dispatched proposal action. A positive value moves tokens
// from the treasury to the target; the payload is recorded for observers.
// There is no bytecode to run, so the payload itself is opaque here.
func (l *Ledger) Call(target common.Address, value *big.Int, data []byte) error {
	l.mu.Lock()
	if value != nil && value.Sign() > 0 {
		if err := l.debit(l.treasury, value); err != nil {
			l.mu.Unlock()
			return err
		}
		l.credit(target, value)
	}
	record := CallRecord{Target: target, Value: new(big.Int).Set(valueOrZero(value)), Data: append([]byte(nil), data...)}
	l.calls = append(l.calls, record)
	var treasuryBalance, targetBalance *big.Int
	moved := value != nil && value.Sign() > 0
	if moved {
		treasuryBalance = new(big.Int).Set(l.balances[l.treasury])
		targetBalance = new(big.Int).Set(l.balances[target])
	}
	treasury := l.treasury
	l.mu.Unlock()

	log.Debug("Action call performed", "target", target, "value", valueOrZero(value), "data", len(data))
	if moved {
		l.notify(treasury, treasuryBalance)
		l.notify(target, targetBalance)
	}
	return nil
}

// Calls returns all calls performed so far, in order.
func (l *Ledger) Calls() []CallRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	calls := make([]CallRecord, len(l.calls))
	copy(calls, l.calls)
	return calls
}

// credit adds to an account. Callers must hold l.mu.
func (l *Ledger) credit(to common.Address, amount *big.Int) {
	b, ok := l.balances[to]
	if !ok {
		b = new(big.Int)
		l.balances[to] = b
	}
	b.Add(b, amount)
}

// debit removes from an account. Callers must hold l.mu.
func (l *Ledger) debit(from common.Address, amount *big.Int) error {
	b, ok := l.balances[from]
	if !ok || b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}

func (l *Ledger) notify(identity common.Address, newBalance *big.Int) {
	l.mu.RLock()
	n := l.notifier
	l.mu.RUnlock()

	if n == nil {
		return
	}
	if err := n.OnBalanceChanged(l.id, identity, newBalance); err != nil {
		log.Error("Balance notification rejected", "identity", identity, "err", err)
	}
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
