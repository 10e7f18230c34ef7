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
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ExecutionDispatcher performs the external calls recorded on a succeeded
// proposal. A single-entry guard covers the whole dispatch: any call back
// into proposal execution while a dispatch is in flight is rejected, for the
// same or any other proposal.
type ExecutionDispatcher struct {
	caller ActionCaller
	busy   atomic.Bool
}

// NewExecutionDispatcher creates a dispatcher backed by the given caller.
func NewExecutionDispatcher(caller ActionCaller) *ExecutionDispatcher {
	return &ExecutionDispatcher{caller: caller}
}

// InFlight reports whether a dispatch is currently in progress.
func (d *ExecutionDispatcher) InFlight() bool {
	return d.busy.Load()
}

// Dispatch performs the actions in recorded order. When any single call
// fails the caller's state is reverted to the pre-dispatch snapshot and an
// external-call error naming the failed action is returned, so the batch
// applies all-or-nothing.
func (d *ExecutionDispatcher) Dispatch(id uint64, actions []ProposalAction) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrReentrantExecution
	}
	defer d.busy.Store(false)

	revision := d.caller.Snapshot()
	for i, action := range actions {
		if err := d.caller.Call(action.Target, action.Value, action.CallData()); err != nil {
			d.caller.RevertToSnapshot(revision)
			log.Warn("Proposal action failed", "proposal", id, "action", i, "target", action.Target, "err", err)
			return fmt.Errorf("%w: action %d on %s: %v", ErrExternalCall, i, action.Target.Hex(), err)
		}
	}
	return nil
}

// Transfer performs a single value-only call outside of any proposal, used
// for the stray-funds sweep. It takes the same single-entry guard as
// Dispatch.
func (d *ExecutionDispatcher) Transfer(to common.Address, amount *big.Int) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrReentrantExecution
	}
	defer d.busy.Store(false)

	if err := d.caller.Call(to, amount, nil); err != nil {
		return fmt.Errorf("%w: transfer to %s: %v", ErrExternalCall, to.Hex(), err)
	}
	return nil
}
