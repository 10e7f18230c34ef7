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

// Package api exposes the governance engine over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/winsznx/swift-governance-contract/governance"
)

// Server serves the governance HTTP API.
type Server struct {
	engine *governance.Engine
	router *mux.Router
	srv    *http.Server
}

// NewServer creates a server for the given engine listening on addr.
func NewServer(engine *governance.Engine, addr string) *Server {
	s := &Server{
		engine: engine,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Addr:    addr,
		Handler: cors.Default().Handler(s.router),
	}
	return s
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info("Governance API listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/status", s.getStatus).Methods("GET")

	s.router.HandleFunc("/api/proposals", s.listProposals).Methods("GET")
	s.router.HandleFunc("/api/proposals", s.createProposal).Methods("POST")
	s.router.HandleFunc("/api/proposals/{id}", s.getProposal).Methods("GET")
	s.router.HandleFunc("/api/proposals/{id}/actions", s.getActions).Methods("GET")
	s.router.HandleFunc("/api/proposals/{id}/state", s.getState).Methods("GET")
	s.router.HandleFunc("/api/proposals/{id}/votes", s.castVote).Methods("POST")
	s.router.HandleFunc("/api/proposals/{id}/votes/{address}", s.getReceipt).Methods("GET")
	s.router.HandleFunc("/api/proposals/{id}/execute", s.executeProposal).Methods("POST")
	s.router.HandleFunc("/api/proposals/{id}/cancel", s.cancelProposal).Methods("POST")

	s.router.HandleFunc("/api/delegate", s.delegate).Methods("POST")
	s.router.HandleFunc("/api/power/{address}", s.getPower).Methods("GET")

	s.router.HandleFunc("/api/whitelist", s.setWhitelisted).Methods("POST")
	s.router.HandleFunc("/api/whitelist/{address}", s.getWhitelisted).Methods("GET")

	s.router.HandleFunc("/api/pause", s.pause).Methods("POST")
	s.router.HandleFunc("/api/unpause", s.unpause).Methods("POST")
	s.router.HandleFunc("/api/withdraw", s.withdraw).Methods("POST")
}

// proposalView is the JSON rendering of a proposal.
type proposalView struct {
	ID           uint64         `json:"id"`
	Proposer     common.Address `json:"proposer"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	StartTime    uint64         `json:"startTime"`
	EndTime      uint64         `json:"endTime"`
	ForVotes     string         `json:"forVotes"`
	AgainstVotes string         `json:"againstVotes"`
	AbstainVotes string         `json:"abstainVotes"`
	Executed     bool           `json:"executed"`
	Cancelled    bool           `json:"cancelled"`
}

func newProposalView(p *governance.Proposal) proposalView {
	return proposalView{
		ID:           p.ID,
		Proposer:     p.Proposer,
		Title:        p.Title,
		Description:  p.Description,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		ForVotes:     p.ForVotes.String(),
		AgainstVotes: p.AgainstVotes.String(),
		AbstainVotes: p.AbstainVotes.String(),
		Executed:     p.Executed,
		Cancelled:    p.Cancelled,
	}
}

type actionRequest struct {
	Target    common.Address `json:"target"`
	Value     string         `json:"value"`
	Signature string         `json:"signature"`
	Payload   hexutil.Bytes  `json:"payload"`
}

type createProposalRequest struct {
	Proposer    common.Address  `json:"proposer"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Actions     []actionRequest `json:"actions"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"proposalCount": s.engine.ProposalCount(),
		"paused":        s.engine.IsPaused(),
		"owner":         s.engine.Registry().Owner(),
	})
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	proposals := s.engine.Proposals()
	views := make([]proposalView, len(proposals))
	for i, p := range proposals {
		views[i] = newProposalView(p)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	actions := make([]governance.ProposalAction, len(req.Actions))
	for i, a := range req.Actions {
		value := new(big.Int)
		if a.Value != "" {
			if _, ok := value.SetString(a.Value, 10); !ok {
				writeError(w, http.StatusBadRequest, errors.New("invalid action value"))
				return
			}
		}
		actions[i] = governance.ProposalAction{
			Target:    a.Target,
			Value:     value,
			Signature: a.Signature,
			Payload:   a.Payload,
		}
	}
	id, err := s.engine.CreateProposal(req.Proposer, req.Title, req.Description, actions)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	proposal, err := s.engine.GetProposal(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProposalView(proposal))
}

func (s *Server) getActions(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	actions, err := s.engine.GetActions(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	views := make([]actionRequest, len(actions))
	for i, a := range actions {
		views[i] = actionRequest{
			Target:    a.Target,
			Value:     a.Value.String(),
			Signature: a.Signature,
			Payload:   a.Payload,
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	state, err := s.engine.State(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}

type voteRequest struct {
	Voter   common.Address `json:"voter"`
	Support uint8          `json:"support"`
	Reason  string         `json:"reason"`
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.Vote(req.Voter, id, governance.VoteSupport(req.Support), req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	voter := common.HexToAddress(mux.Vars(r)["address"])
	receipt, err := s.engine.ReceiptOf(id, voter)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if receipt == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"hasVoted": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasVoted": true,
		"support":  receipt.Support,
		"weight":   receipt.Weight.String(),
		"reason":   receipt.Reason,
	})
}

type callerRequest struct {
	Caller common.Address `json:"caller"`
}

func (s *Server) executeProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.ExecuteProposal(req.Caller, id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"executed": true})
}

func (s *Server) cancelProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.CancelProposal(req.Caller, id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

type delegateRequest struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
}

func (s *Server) delegate(w http.ResponseWriter, r *http.Request) {
	var req delegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.Delegate(req.From, req.To); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) getPower(w http.ResponseWriter, r *http.Request) {
	identity := common.HexToAddress(mux.Vars(r)["address"])
	writeJSON(w, http.StatusOK, map[string]string{"power": s.engine.PowerOf(identity).String()})
}

type whitelistRequest struct {
	Caller      common.Address `json:"caller"`
	Identity    common.Address `json:"identity"`
	Whitelisted bool           `json:"whitelisted"`
}

func (s *Server) setWhitelisted(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.SetWhitelisted(req.Caller, req.Identity, req.Whitelisted); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) getWhitelisted(w http.ResponseWriter, r *http.Request) {
	identity := common.HexToAddress(mux.Vars(r)["address"])
	writeJSON(w, http.StatusOK, map[string]bool{"whitelisted": s.engine.IsWhitelisted(identity)})
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.Pause(req.Caller); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) unpause(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.Unpause(req.Caller); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

type withdrawRequest struct {
	Caller common.Address `json:"caller"`
	To     common.Address `json:"to"`
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.WithdrawStrayFunds(req.Caller, req.To); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func proposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid proposal id"))
		return 0, false
	}
	return id, true
}

// writeEngineError maps governance error kinds onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, governance.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, governance.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, governance.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, governance.ErrState):
		status = http.StatusConflict
	case errors.Is(err, governance.ErrExternalCall):
		status = http.StatusBadGateway
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}
