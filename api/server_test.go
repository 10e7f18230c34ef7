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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winsznx/swift-governance-contract/governance"
	"github.com/winsznx/swift-governance-contract/token"
)

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

var (
	owner    = addr(0xAA)
	treasury = addr(0xFD)
)

// newTestServer wires a complete in-memory stack behind the HTTP handler.
// Voting opens immediately so handlers can be exercised without a mock clock.
func newTestServer(t *testing.T) (*Server, *token.Ledger) {
	t.Helper()

	cfg := &governance.Config{
		VotingDelay:       0,
		VotingPeriod:      3600,
		ExecutionDelay:    0,
		ProposalThreshold: big.NewInt(100),
		QuorumThreshold:   big.NewInt(1000),
	}
	ledger := token.NewLedger(addr(0xFE), owner)
	power := governance.NewPowerLedger(ledger, ledger.ID())
	registry := governance.NewAccessRegistry(owner)
	store := governance.NewProposalStore()
	dispatcher := governance.NewExecutionDispatcher(ledger)
	engine := governance.NewEngine(cfg, registry, power, store, dispatcher)
	ledger.BindGovernance(power, treasury)

	return NewServer(engine, "127.0.0.1:0"), ledger
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func whitelistWithPower(t *testing.T, s *Server, ledger *token.Ledger, identity common.Address, amount int64) {
	t.Helper()

	rec := doJSON(t, s.Handler(), "POST", "/api/whitelist", whitelistRequest{
		Caller:      owner,
		Identity:    identity,
		Whitelisted: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, ledger.Mint(owner, identity, big.NewInt(amount)))
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), "GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		ProposalCount uint64         `json:"proposalCount"`
		Paused        bool           `json:"paused"`
		Owner         common.Address `json:"owner"`
	}
	decode(t, rec, &status)
	assert.Zero(t, status.ProposalCount)
	assert.False(t, status.Paused)
	assert.Equal(t, owner, status.Owner)
}

func TestCreateProposalEndpoint(t *testing.T) {
	s, ledger := newTestServer(t)
	proposer := addr(0x01)
	whitelistWithPower(t, s, ledger, proposer, 500)

	rec := doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "Fund the relay program",
		Description: "Move treasury funds to the relay operators.",
		Actions: []actionRequest{
			{Target: addr(0x30), Value: "250", Signature: "transfer(address,uint256)"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]uint64
	decode(t, rec, &created)
	assert.Equal(t, uint64(1), created["id"])

	rec = doJSON(t, s.Handler(), "GET", "/api/proposals/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view proposalView
	decode(t, rec, &view)
	assert.Equal(t, proposer, view.Proposer)
	assert.Equal(t, "Fund the relay program", view.Title)
	assert.Equal(t, "0", view.ForVotes)

	rec = doJSON(t, s.Handler(), "GET", "/api/proposals/1/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var actions []actionRequest
	decode(t, rec, &actions)
	require.Len(t, actions, 1)
	assert.Equal(t, "250", actions[0].Value)
	assert.Equal(t, "transfer(address,uint256)", actions[0].Signature)
}

func TestVoteAndStateEndpoints(t *testing.T) {
	s, ledger := newTestServer(t)
	proposer := addr(0x01)
	voter := addr(0x02)
	whitelistWithPower(t, s, ledger, proposer, 500)
	require.NoError(t, ledger.Mint(owner, voter, big.NewInt(1500)))

	rec := doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "Adjust parameters",
		Description: "Raise the operational budget.",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s.Handler(), "GET", "/api/proposals/1/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state map[string]string
	decode(t, rec, &state)
	assert.Equal(t, "Active", state["state"])

	rec = doJSON(t, s.Handler(), "POST", "/api/proposals/1/votes", voteRequest{
		Voter:   voter,
		Support: uint8(governance.SupportFor),
		Reason:  "needed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/proposals/1/votes/%s", voter.Hex()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt struct {
		HasVoted bool   `json:"hasVoted"`
		Weight   string `json:"weight"`
		Reason   string `json:"reason"`
	}
	decode(t, rec, &receipt)
	assert.True(t, receipt.HasVoted)
	assert.Equal(t, "1500", receipt.Weight)
	assert.Equal(t, "needed", receipt.Reason)

	// A voter who hasn't voted gets hasVoted=false, not an error.
	rec = doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/proposals/1/votes/%s", addr(0x09).Hex()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty struct {
		HasVoted bool `json:"hasVoted"`
	}
	decode(t, rec, &empty)
	assert.False(t, empty.HasVoted)
}

func TestDelegateAndPowerEndpoints(t *testing.T) {
	s, ledger := newTestServer(t)
	from, to := addr(0x01), addr(0x02)
	require.NoError(t, ledger.Mint(owner, from, big.NewInt(700)))

	rec := doJSON(t, s.Handler(), "POST", "/api/delegate", delegateRequest{From: from, To: to})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/power/%s", to.Hex()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var power map[string]string
	decode(t, rec, &power)
	assert.Equal(t, "700", power["power"])

	rec = doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/power/%s", from.Hex()), nil)
	decode(t, rec, &power)
	assert.Equal(t, "0", power["power"])
}

func TestErrorStatusMapping(t *testing.T) {
	s, ledger := newTestServer(t)
	proposer := addr(0x01)
	whitelistWithPower(t, s, ledger, proposer, 500)

	// Unknown proposal -> 404.
	rec := doJSON(t, s.Handler(), "GET", "/api/proposals/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-numeric id -> 400.
	rec = doJSON(t, s.Handler(), "GET", "/api/proposals/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Proposer without whitelist -> 403.
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    addr(0x66),
		Title:       "t",
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Empty title -> 400.
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Double vote -> 409.
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "t",
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	vote := voteRequest{Voter: proposer, Support: uint8(governance.SupportFor)}
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals/1/votes", vote)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals/1/votes", vote)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Malformed action value -> 400.
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "t",
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30), Value: "not-a-number"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPauseEndpoints(t *testing.T) {
	s, ledger := newTestServer(t)
	proposer := addr(0x01)
	whitelistWithPower(t, s, ledger, proposer, 500)

	// Only the owner may pause.
	rec := doJSON(t, s.Handler(), "POST", "/api/pause", callerRequest{Caller: proposer})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s.Handler(), "POST", "/api/pause", callerRequest{Caller: owner})
	require.Equal(t, http.StatusOK, rec.Code)

	// Gated operations report a conflict while paused.
	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "t",
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s.Handler(), "POST", "/api/unpause", callerRequest{Caller: owner})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Handler(), "POST", "/api/proposals", createProposalRequest{
		Proposer:    proposer,
		Title:       "t",
		Description: "d",
		Actions:     []actionRequest{{Target: addr(0x30)}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWhitelistEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	identity := addr(0x01)

	rec := doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/whitelist/%s", identity.Hex()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]bool
	decode(t, rec, &status)
	assert.False(t, status["whitelisted"])

	// Non-owner callers are rejected.
	rec = doJSON(t, s.Handler(), "POST", "/api/whitelist", whitelistRequest{
		Caller:      identity,
		Identity:    identity,
		Whitelisted: true,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s.Handler(), "POST", "/api/whitelist", whitelistRequest{
		Caller:      owner,
		Identity:    identity,
		Whitelisted: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Handler(), "GET", fmt.Sprintf("/api/whitelist/%s", identity.Hex()), nil)
	decode(t, rec, &status)
	assert.True(t, status["whitelisted"])
}
