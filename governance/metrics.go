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

import "github.com/ethereum/go-ethereum/metrics"

var (
	proposalCreatedMeter   = metrics.NewRegisteredMeter("governance/proposal/created", nil)
	proposalCancelledMeter = metrics.NewRegisteredMeter("governance/proposal/cancelled", nil)
	proposalExecutedMeter  = metrics.NewRegisteredMeter("governance/proposal/executed", nil)
	executionFailedMeter   = metrics.NewRegisteredMeter("governance/proposal/execfailed", nil)
	voteCastMeter          = metrics.NewRegisteredMeter("governance/vote/cast", nil)
	delegationMeter        = metrics.NewRegisteredMeter("governance/delegation/changed", nil)
)
