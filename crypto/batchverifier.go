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

package crypto

import (
	"errors"

	"github.com/hdevalence/ed25519consensus"
)

// ErrBatchHasFailedSigs is returned when at least one signature in the batch failed.
var ErrBatchHasFailedSigs = errors.New("at least one signature didn't pass verification")

const minBatchVerifierAlloc = 4

// BatchVerifier enqueues signatures to be validated in batch.
type BatchVerifier struct {
	messages   [][]byte
	publicKeys []PublicKey
	signatures []Signature
	bv         ed25519consensus.BatchVerifier
}

// MakeBatchVerifier creates a BatchVerifier sized for hint signatures.
func MakeBatchVerifier(hint int) *BatchVerifier {
	if hint <= 0 {
		hint = minBatchVerifierAlloc
	}
	return &BatchVerifier{
		messages:   make([][]byte, 0, hint),
		publicKeys: make([]PublicKey, 0, hint),
		signatures: make([]Signature, 0, hint),
		bv:         ed25519consensus.NewPreallocatedBatchVerifier(hint),
	}
}

// EnqueueSignature enqueues a signature to be verified over HashRep(message).
func (b *BatchVerifier) EnqueueSignature(pk PublicKey, message Hashable, sig Signature) {
	msg := HashRep(message)
	b.messages = append(b.messages, msg)
	b.publicKeys = append(b.publicKeys, pk)
	b.signatures = append(b.signatures, sig)
	b.bv.Add(pk[:], msg, sig[:])
}

// GetNumberOfEnqueuedSignatures returns the number of signatures currently enqueued.
func (b *BatchVerifier) GetNumberOfEnqueuedSignatures() int {
	return len(b.messages)
}

// Verify verifies that all the signatures are valid.
func (b *BatchVerifier) Verify() error {
	if len(b.messages) == 0 {
		return nil
	}
	if !b.bv.Verify() {
		return ErrBatchHasFailedSigs
	}
	return nil
}

// VerifyWithFeedback verifies the batch and, on failure, reports which
// entries failed.
func (b *BatchVerifier) VerifyWithFeedback() (failed []bool, err error) {
	if b.Verify() == nil {
		return nil, nil
	}
	failed = make([]bool, len(b.messages))
	for i := range b.messages {
		failed[i] = !b.publicKeys[i].VerifyBytes(b.messages[i], b.signatures[i])
	}
	return failed, ErrBatchHasFailedSigs
}
