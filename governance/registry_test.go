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
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestOwnerAutoWhitelisted(t *testing.T) {
	owner := addr(0xAA)
	registry := NewAccessRegistry(owner)

	if !registry.IsWhitelisted(owner) {
		t.Error("owner should be whitelisted at construction")
	}
	if registry.Owner() != owner {
		t.Errorf("wrong owner: %v", registry.Owner())
	}
}

func TestSetWhitelisted(t *testing.T) {
	owner := addr(0xAA)
	other := addr(0x01)
	registry := NewAccessRegistry(owner)

	if registry.IsWhitelisted(other) {
		t.Error("unknown identity should not be whitelisted")
	}
	if err := registry.SetWhitelisted(owner, other, true); err != nil {
		t.Fatalf("SetWhitelisted failed: %v", err)
	}
	if !registry.IsWhitelisted(other) {
		t.Error("identity should be whitelisted after grant")
	}
	if err := registry.SetWhitelisted(owner, other, false); err != nil {
		t.Fatalf("SetWhitelisted failed: %v", err)
	}
	if registry.IsWhitelisted(other) {
		t.Error("identity should not be whitelisted after revoke")
	}
}

func TestSetWhitelistedAuthorization(t *testing.T) {
	owner := addr(0xAA)
	other := addr(0x01)
	registry := NewAccessRegistry(owner)

	err := registry.SetWhitelisted(other, other, true)
	if !errors.Is(err, ErrNotOwner) || !errors.Is(err, ErrAuthorization) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := registry.SetWhitelisted(owner, common.Address{}, true); !errors.Is(err, ErrZeroAddress) {
		t.Errorf("expected ErrZeroAddress, got %v", err)
	}
}

func TestWhitelistEvents(t *testing.T) {
	owner := addr(0xAA)
	other := addr(0x01)
	registry := NewAccessRegistry(owner)

	ch := make(chan WhitelistUpdatedEvent, 1)
	sub := registry.SubscribeWhitelistUpdated(ch)
	defer sub.Unsubscribe()

	if err := registry.SetWhitelisted(owner, other, true); err != nil {
		t.Fatal(err)
	}
	ev := <-ch
	if ev.Identity != other || !ev.Whitelisted {
		t.Errorf("wrong event: %+v", ev)
	}
}
