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
	"errors"
	"fmt"
)

// Error kind roots. Every sentinel below wraps exactly one root, so callers
// discriminate failure classes with errors.Is.
var (
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrState         = errors.New("state error")
	ErrExternalCall  = errors.New("external call error")
)

// Authorization errors
var (
	ErrNotOwner       = fmt.Errorf("%w: caller is not the owner", ErrAuthorization)
	ErrNotWhitelisted = fmt.Errorf("%w: caller is not whitelisted", ErrAuthorization)
	ErrNotProposer    = fmt.Errorf("%w: caller is neither the proposer nor the owner", ErrAuthorization)
	ErrNotTokenLedger = fmt.Errorf("%w: caller is not the token ledger", ErrAuthorization)
)

// Validation errors
var (
	ErrZeroAddress       = fmt.Errorf("%w: zero address", ErrValidation)
	ErrSelfDelegation    = fmt.Errorf("%w: self-delegation is not allowed", ErrValidation)
	ErrTitleLength       = fmt.Errorf("%w: title must be 1-100 characters", ErrValidation)
	ErrDescriptionLength = fmt.Errorf("%w: description must be 1-5000 characters", ErrValidation)
	ErrActionCount       = fmt.Errorf("%w: proposal must carry 1-10 actions", ErrValidation)
	ErrInvalidSupport    = fmt.Errorf("%w: support must be 0 (against), 1 (for) or 2 (abstain)", ErrValidation)
	ErrNegativeAmount    = fmt.Errorf("%w: amount must be non-negative", ErrValidation)
)

// Lookup errors
var (
	ErrProposalNotFound = fmt.Errorf("%w: proposal does not exist", ErrNotFound)
)

// State errors
var (
	ErrPaused               = fmt.Errorf("%w: governance is paused", ErrState)
	ErrVotingNotStarted     = fmt.Errorf("%w: voting has not started", ErrState)
	ErrVotingEnded          = fmt.Errorf("%w: voting period has ended", ErrState)
	ErrProposalExecuted     = fmt.Errorf("%w: proposal already executed", ErrState)
	ErrProposalCancelled    = fmt.Errorf("%w: proposal already cancelled", ErrState)
	ErrAlreadyVoted         = fmt.Errorf("%w: voter has already voted on this proposal", ErrState)
	ErrNoVotingPower        = fmt.Errorf("%w: caller has no voting power", ErrState)
	ErrBelowThreshold       = fmt.Errorf("%w: voting power below proposal threshold", ErrState)
	ErrExecutionDelayNotMet = fmt.Errorf("%w: execution delay not met", ErrState)
	ErrMajorityNotReached   = fmt.Errorf("%w: for votes do not exceed against votes", ErrState)
	ErrQuorumNotReached     = fmt.Errorf("%w: quorum threshold not reached", ErrState)
	ErrReentrantExecution   = fmt.Errorf("%w: execution already in progress", ErrState)
	ErrNothingToWithdraw    = fmt.Errorf("%w: no stray funds to withdraw", ErrState)
)
