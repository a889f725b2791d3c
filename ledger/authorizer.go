// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package ledger

import (
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/ledger/ledgercore"
)

// An Authorizer decides whether the signers of a transaction hold a
// permission level claimed by one of its actions.
type Authorizer interface {
	Authorize(pl basics.PermissionLevel, signers []crypto.PublicKey) error
}

// KeyAuthorizer grants an account's active permission to a signature by
// the account's genesis key.
type KeyAuthorizer struct {
	keys map[basics.Name]crypto.PublicKey
}

// MakeKeyAuthorizer collects the account keys of genesis.
func MakeKeyAuthorizer(genesis bookkeeping.Genesis) *KeyAuthorizer {
	ka := &KeyAuthorizer{keys: make(map[basics.Name]crypto.PublicKey, len(genesis.Accounts))}
	for _, acct := range genesis.Accounts {
		ka.keys[acct.Name] = acct.PublicKey
	}
	return ka
}

// Authorize implements Authorizer.
func (ka *KeyAuthorizer) Authorize(pl basics.PermissionLevel, signers []crypto.PublicKey) error {
	key, ok := ka.keys[pl.Actor]
	if !ok {
		return &ledgercore.UnknownAccountError{Account: pl.Actor}
	}
	if pl.Permission != basics.ActivePermission {
		return &ledgercore.AuthorizationError{Actor: pl.Actor, Permission: pl.Permission, Reason: "unknown permission"}
	}
	if key == (crypto.PublicKey{}) {
		return &ledgercore.AuthorizationError{Actor: pl.Actor, Permission: pl.Permission, Reason: "account has no key"}
	}
	for _, signer := range signers {
		if signer == key {
			return nil
		}
	}
	return &ledgercore.AuthorizationError{Actor: pl.Actor, Permission: pl.Permission, Reason: "transaction not signed by account key"}
}

// StaticAuthorizer grants the active permission of the accounts it maps
// to true, whoever signed. It lets tests skip key management.
type StaticAuthorizer map[basics.Name]bool

// Authorize implements Authorizer.
func (sa StaticAuthorizer) Authorize(pl basics.PermissionLevel, signers []crypto.PublicKey) error {
	if pl.Permission == basics.ActivePermission && sa[pl.Actor] {
		return nil
	}
	return &ledgercore.AuthorizationError{Actor: pl.Actor, Permission: pl.Permission, Reason: "not allowed"}
}
