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
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestCallDataSelector(t *testing.T) {
	action := ProposalAction{
		Target:    addr(0x10),
		Value:     big.NewInt(0),
		Signature: "transfer(address,uint256)",
		Payload:   []byte{0x01, 0x02},
	}

	data := action.CallData()
	selector := crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
	if !bytes.Equal(data[:4], selector) {
		t.Errorf("wrong selector: %x", data[:4])
	}
	if !bytes.Equal(data[4:], []byte{0x01, 0x02}) {
		t.Errorf("payload not appended: %x", data)
	}

	// Without a signature the raw payload passes through verbatim.
	action.Signature = ""
	if !bytes.Equal(action.CallData(), []byte{0x01, 0x02}) {
		t.Errorf("raw payload expected, got %x", action.CallData())
	}
}

func TestDispatchOrderAndRevert(t *testing.T) {
	caller := newMockCaller()
	dispatcher := NewExecutionDispatcher(caller)

	actions := []ProposalAction{
		{Target: addr(0x10), Value: big.NewInt(1)},
		{Target: addr(0x11), Value: big.NewInt(2)},
		{Target: addr(0x12), Value: big.NewInt(3)},
	}
	if err := dispatcher.Dispatch(1, actions); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(caller.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(caller.calls))
	}
	for i, call := range caller.calls {
		if call.target != actions[i].Target {
			t.Errorf("call %d out of order", i)
		}
	}
	if len(caller.reverts) != 0 {
		t.Error("unexpected revert on success")
	}

	// A mid-batch failure reverts to the pre-dispatch snapshot.
	caller = newMockCaller()
	caller.failAt = 1
	dispatcher = NewExecutionDispatcher(caller)
	err := dispatcher.Dispatch(2, actions)
	if !errors.Is(err, ErrExternalCall) {
		t.Fatalf("expected ErrExternalCall, got %v", err)
	}
	if len(caller.reverts) != 1 {
		t.Fatalf("expected 1 revert, got %d", len(caller.reverts))
	}
}

func TestReentrantExecutionRejected(t *testing.T) {
	env := newTestEnv(t)
	proposer := addr(0x01)
	voter := addr(0x02)
	env.whitelistWithPower(t, proposer, 2000)
	env.setBalance(t, voter, 1500)

	// Two passed proposals, the first of which tries to execute the second
	// from inside its own dispatch.
	first := env.createDefaultProposal(t, proposer)
	second := env.createDefaultProposal(t, proposer)
	env.advance(env.engine.cfg.VotingDelay)
	for _, id := range []uint64{first, second} {
		if err := env.engine.Vote(voter, id, SupportFor, ""); err != nil {
			t.Fatal(err)
		}
	}
	env.advance(env.engine.cfg.VotingPeriod + env.engine.cfg.ExecutionDelay)

	var nestedErr error
	env.caller.onCall = func() {
		nestedErr = env.engine.ExecuteProposal(proposer, second)
	}
	if err := env.engine.ExecuteProposal(proposer, first); err != nil {
		t.Fatalf("outer execution failed: %v", err)
	}
	if !errors.Is(nestedErr, ErrReentrantExecution) {
		t.Errorf("expected ErrReentrantExecution from nested call, got %v", nestedErr)
	}

	// The second proposal is still executable afterwards.
	if err := env.engine.ExecuteProposal(proposer, second); err != nil {
		t.Errorf("second execution after dispatch failed: %v", err)
	}
}
