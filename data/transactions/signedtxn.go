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
	"github.com/algorand/testwax/crypto"
)

// TxnSignature is one signer's signature over the transaction.
type TxnSignature struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Signer crypto.PublicKey `codec:"signer"`
	Sig    crypto.Signature `codec:"sig"`
}

// SignedTxn wraps a transaction and its signatures.
type SignedTxn struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Txn  Transaction    `codec:"txn"`
	Sigs []TxnSignature `codec:"sigs"`
}

// ID returns the Txid of the underlying transaction.
func (s SignedTxn) ID() Txid {
	return s.Txn.ID()
}

// Sign signs a transaction using given keys.
func (tx Transaction) Sign(secrets ...*crypto.SignatureSecrets) SignedTxn {
	s := SignedTxn{Txn: tx}
	for _, sk := range secrets {
		s.AddSignature(sk)
	}
	return s
}

// AddSignature appends a signature by secrets, unless that key already signed.
func (s *SignedTxn) AddSignature(secrets *crypto.SignatureSecrets) {
	if _, ok := s.signedBy(secrets.PublicKey); ok {
		return
	}
	s.Sigs = append(s.Sigs, TxnSignature{
		Signer: secrets.PublicKey,
		Sig:    secrets.Sign(s.Txn),
	})
}

// Signers returns the keys that signed, in signature order.
func (s SignedTxn) Signers() []crypto.PublicKey {
	signers := make([]crypto.PublicKey, len(s.Sigs))
	for i, sig := range s.Sigs {
		signers[i] = sig.Signer
	}
	return signers
}

func (s SignedTxn) signedBy(pk crypto.PublicKey) (int, bool) {
	for i, sig := range s.Sigs {
		if sig.Signer == pk {
			return i, true
		}
	}
	return 0, false
}

// VerifySignatures checks every attached signature in one batch.
func (s SignedTxn) VerifySignatures() error {
	seen := make(map[crypto.PublicKey]bool, len(s.Sigs))
	bv := crypto.MakeBatchVerifier(len(s.Sigs))
	for _, sig := range s.Sigs {
		if seen[sig.Signer] {
			return TxnNotWellFormedError("duplicate signature by " + sig.Signer.String())
		}
		seen[sig.Signer] = true
		bv.EnqueueSignature(sig.Signer, s.Txn, sig.Sig)
	}
	failed, err := bv.VerifyWithFeedback()
	if err == nil {
		return nil
	}
	for i := range failed {
		if failed[i] {
			return &SignatureError{Signer: s.Sigs[i].Signer}
		}
	}
	return err
}
