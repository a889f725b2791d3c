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

package main

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/util/codecs"
)

// KeysFilename holds the account seeds of a data directory created by init.
const KeysFilename = "keys.json"

// keyring maps account names to their signing secrets.
type keyring map[basics.Name]*crypto.SignatureSecrets

func keysPath(dir string) string {
	return filepath.Join(dir, KeysFilename)
}

// loadKeys reads dir/keys.json: an object of account name to base64 seed.
func loadKeys(dir string) (keyring, error) {
	var raw map[string]string
	if err := codecs.LoadObjectFromFile(keysPath(dir), &raw); err != nil {
		return nil, err
	}
	keys := make(keyring, len(raw))
	for name, encoded := range raw {
		acct, err := basics.NameFromString(name)
		if err != nil {
			return nil, fmt.Errorf("%s: account %q: %w", KeysFilename, name, err)
		}
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: seed of %s: %w", KeysFilename, name, err)
		}
		var seed crypto.Seed
		if len(b) != len(seed) {
			return nil, fmt.Errorf("%s: seed of %s has %d bytes, want %d", KeysFilename, name, len(b), len(seed))
		}
		copy(seed[:], b)
		keys[acct] = crypto.GenerateSignatureSecrets(seed)
	}
	return keys, nil
}

func saveKeys(dir string, seeds map[basics.Name]crypto.Seed) error {
	raw := make(map[string]string, len(seeds))
	for name, seed := range seeds {
		raw[name.String()] = base64.StdEncoding.EncodeToString(seed[:])
	}
	return codecs.SaveObjectToFile(keysPath(dir), raw, true)
}
