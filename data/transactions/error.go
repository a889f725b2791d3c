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

	"github.com/algorand/testwax/crypto"
)

// TxnNotWellFormedError indicates a transaction failed its stateless checks.
type TxnNotWellFormedError string

func (err TxnNotWellFormedError) Error() string {
	return string(err)
}

// TxnExpiredError defines an error type which indicates a transaction is
// past its expiration time.
type TxnExpiredError struct {
	Expiration int64
	Now        int64
}

func (err *TxnExpiredError) Error() string {
	return fmt.Sprintf("txn expired: expiration %d is not after now %d", err.Expiration, err.Now)
}

// SignatureError reports the first signature that did not verify.
type SignatureError struct {
	Signer crypto.PublicKey
}

func (err *SignatureError) Error() string {
	return fmt.Sprintf("signature by %v does not verify", err.Signer)
}

func (err *SignatureError) Unwrap() error {
	return crypto.ErrBadSignature
}
