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
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"

	"github.com/hdevalence/ed25519consensus"
)

// PublicKey is an ed25519 public key that can verify signatures made by the
// matching SignatureSecrets.
type PublicKey [ed25519.PublicKeySize]byte

// Signature is an ed25519 signature over HashRep of some Hashable.
type Signature [ed25519.SignatureSize]byte

// Seed is the 32-byte private seed a key pair is derived from.
type Seed [ed25519.SeedSize]byte

// SignatureSecrets holds a private key together with its public half.
type SignatureSecrets struct {
	PublicKey
	SK ed25519.PrivateKey
}

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ErrBadSignature is returned when a signature does not verify.
var ErrBadSignature = errors.New("signature does not verify")

// GenerateSignatureSecrets derives a key pair from seed.
func GenerateSignatureSecrets(seed Seed) *SignatureSecrets {
	sk := ed25519.NewKeyFromSeed(seed[:])
	var pk PublicKey
	copy(pk[:], sk.Public().(ed25519.PublicKey))
	return &SignatureSecrets{PublicKey: pk, SK: sk}
}

// RandomSeed reads a fresh seed from r, or from crypto/rand when r is nil.
func RandomSeed(r io.Reader) (s Seed, err error) {
	if r == nil {
		r = rand.Reader
	}
	_, err = io.ReadFull(r, s[:])
	return
}

// Sign produces a signature over HashRep(message).
func (s *SignatureSecrets) Sign(message Hashable) Signature {
	return s.SignBytes(HashRep(message))
}

// SignBytes signs raw bytes without a domain separation prefix.
func (s *SignatureSecrets) SignBytes(data []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(s.SK, data))
	return sig
}

// Verify checks sig over HashRep(message).
func (pk PublicKey) Verify(message Hashable, sig Signature) bool {
	return pk.VerifyBytes(HashRep(message), sig)
}

// VerifyBytes checks sig over raw bytes, using the ZIP-215 verification rules.
func (pk PublicKey) VerifyBytes(data []byte, sig Signature) bool {
	return ed25519consensus.Verify(pk[:], data, sig[:])
}

// String returns the base32 form of the key.
func (pk PublicKey) String() string {
	return keyEncoding.EncodeToString(pk[:])
}

// PublicKeyFromString parses the base32 form of a key.
func PublicKeyFromString(s string) (pk PublicKey, err error) {
	decoded, err := keyEncoding.DecodeString(s)
	if err != nil {
		return pk, err
	}
	if len(decoded) != len(pk) {
		return pk, fmt.Errorf("public key %q has %d bytes, expected %d", s, len(decoded), len(pk))
	}
	copy(pk[:], decoded)
	return pk, nil
}

// MarshalText encodes the key for JSON.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText decodes a key from JSON.
func (pk *PublicKey) UnmarshalText(text []byte) (err error) {
	*pk, err = PublicKeyFromString(string(text))
	return
}
