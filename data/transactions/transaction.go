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

package transactions

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/protocol"
)

// Txid is a hash used to uniquely identify individual transactions
type Txid crypto.Digest

// String converts txid to a pretty-printable string
func (txid Txid) String() string {
	return fmt.Sprintf("%v", crypto.Digest(txid))
}

// FromString initializes the Txid from a string
func (txid *Txid) FromString(text string) error {
	d, err := crypto.DigestFromString(text)
	*txid = Txid(d)
	return err
}

// MarshalText encodes the txid for JSON.
func (txid Txid) MarshalText() ([]byte, error) {
	return []byte(txid.String()), nil
}

// UnmarshalText decodes a txid from JSON.
func (txid *Txid) UnmarshalText(text []byte) error {
	return txid.FromString(string(text))
}

// Transaction is an ordered list of actions executed atomically: either
// every action (and every inline action they send) takes effect, or none.
type Transaction struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// ChainID is the genesis hash of the host the transaction is meant for.
	ChainID crypto.Digest `codec:"chain"`

	// Expiration is a unix timestamp after which the transaction is rejected.
	Expiration int64 `codec:"exp"`

	// Nonce lets otherwise identical transactions have distinct ids.
	Nonce uuid.UUID `codec:"nonce"`

	Actions []Action `codec:"actions"`
}

// MakeTransaction builds a transaction with a fresh nonce, expiring after lifetime.
func MakeTransaction(chainID crypto.Digest, now time.Time, lifetime time.Duration, actions ...Action) Transaction {
	return Transaction{
		ChainID:    chainID,
		Expiration: now.Add(lifetime).Unix(),
		Nonce:      uuid.New(),
		Actions:    actions,
	}
}

// ToBeHashed implements the crypto.Hashable interface.
func (tx Transaction) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Transaction, protocol.Encode(&tx)
}

// ID returns the Txid (i.e., hash) of the transaction.
func (tx Transaction) ID() Txid {
	return Txid(crypto.HashObj(tx))
}

// WellFormed checks that the transaction looks reasonable on its own, with
// respect to params and the current time, but not necessarily valid against
// any ledger state.
func (tx Transaction) WellFormed(params config.ExecParams, now time.Time) error {
	if len(tx.Actions) == 0 {
		return TxnNotWellFormedError("transaction has no actions")
	}
	if len(tx.Actions) > params.MaxActionsPerTxn {
		return TxnNotWellFormedError(fmt.Sprintf("transaction has %d actions, more than the %d allowed", len(tx.Actions), params.MaxActionsPerTxn))
	}
	if tx.Nonce == uuid.Nil {
		return TxnNotWellFormedError("transaction nonce is not set")
	}

	expires := time.Unix(tx.Expiration, 0)
	if !now.Before(expires) {
		return &TxnExpiredError{Expiration: tx.Expiration, Now: now.Unix()}
	}
	if expires.Sub(now) > params.MaxTxnLifetime {
		return TxnNotWellFormedError(fmt.Sprintf("transaction expires in %v, more than the %v allowed", expires.Sub(now), params.MaxTxnLifetime))
	}

	for i, act := range tx.Actions {
		if err := act.wellFormed(params); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func (a Action) wellFormed(params config.ExecParams) error {
	if a.Account.IsEmpty() {
		return TxnNotWellFormedError("action has no account")
	}
	if a.Name.IsEmpty() {
		return TxnNotWellFormedError("action has no name")
	}
	if len(a.Data) > params.MaxActionDataBytes {
		return TxnNotWellFormedError(fmt.Sprintf("action data is %d bytes, more than the %d allowed", len(a.Data), params.MaxActionDataBytes))
	}
	seen := make(map[string]bool, len(a.Authorization))
	for _, pl := range a.Authorization {
		if pl.Actor.IsEmpty() || pl.Permission.IsEmpty() {
			return TxnNotWellFormedError(fmt.Sprintf("invalid authorization %v", pl))
		}
		if seen[pl.String()] {
			return TxnNotWellFormedError(fmt.Sprintf("duplicate authorization %v", pl))
		}
		seen[pl.String()] = true
	}
	return nil
}
