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
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// AccessRegistry is the owner-controlled whitelist of addresses permitted to
// create proposals.
type AccessRegistry struct {
	owner common.Address

	mu        sync.RWMutex
	whitelist mapset.Set[common.Address]

	feed event.Feed
}

// NewAccessRegistry creates a registry owned by the given address. The owner
// is whitelisted automatically.
func NewAccessRegistry(owner common.Address) *AccessRegistry {
	r := &AccessRegistry{
		owner:     owner,
		whitelist: mapset.NewThreadUnsafeSet[common.Address](),
	}
	r.whitelist.Add(owner)
	return r
}

// Owner returns the registry owner.
func (r *AccessRegistry) Owner() common.Address {
	return r.owner
}

// SetWhitelisted grants or revokes proposal-creation rights for an identity.
// Only the owner may call; the zero identity is rejected.
func (r *AccessRegistry) SetWhitelisted(caller, identity common.Address, whitelisted bool) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	if identity == (common.Address{}) {
		return ErrZeroAddress
	}

	r.mu.Lock()
	if whitelisted {
		r.whitelist.Add(identity)
	} else {
		r.whitelist.Remove(identity)
	}
	r.mu.Unlock()

	log.Info("Whitelist updated", "identity", identity, "whitelisted", whitelisted)
	r.feed.Send(WhitelistUpdatedEvent{Identity: identity, Whitelisted: whitelisted})
	return nil
}

// IsWhitelisted checks if an identity may create proposals.
func (r *AccessRegistry) IsWhitelisted(identity common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.whitelist.Contains(identity)
}

// SubscribeWhitelistUpdated subscribes to whitelist change events.
func (r *AccessRegistry) SubscribeWhitelistUpdated(ch chan<- WhitelistUpdatedEvent) event.Subscription {
	return r.feed.Subscribe(ch)
}
