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

package bookkeeping

import (
	"fmt"
	"os"

	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/protocol"
	"github.com/algorand/testwax/util/codecs"
)

// A Genesis object defines the starting state of a host: the accounts that
// exist, the keys that authorize them, and which contract code runs on
// which account. Its hash is the chain id transactions are signed against.
type Genesis struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// ChainName is a human readable label; it is part of the hash.
	ChainName string `codec:"chain"`

	// Timestamp of genesis creation, unix seconds.
	Timestamp int64 `codec:"timestamp"`

	Accounts []GenesisAccount `codec:"accounts"`

	Deployments []GenesisDeployment `codec:"deploy"`

	// Arbitrary genesis comment string - will be excluded from file if empty
	Comment string `codec:"comment"`
}

// GenesisAccount is an account that exists from the start.
// A zero PublicKey means nobody can sign for the account; contracts
// still act on their own behalf through inline actions.
type GenesisAccount struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Name      basics.Name      `codec:"name"`
	PublicKey crypto.PublicKey `codec:"pk"`

	// RAMQuota overrides ExecParams.RAMQuota for this account when non-zero.
	RAMQuota uint64 `codec:"ram"`
}

// GenesisDeployment binds a registered contract code name to an account.
type GenesisDeployment struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Account basics.Name `codec:"account"`
	Code    string      `codec:"code"`
}

// LoadGenesisFromFile attempts to load a Genesis structure from a (presumably) genesis.json file.
func LoadGenesisFromFile(genesisFile string) (genesis Genesis, err error) {
	genesisText, err := os.ReadFile(genesisFile)
	if err != nil {
		return
	}

	err = protocol.DecodeJSON(genesisText, &genesis)
	if err != nil {
		return
	}
	err = genesis.Validate()
	return
}

// SaveToFile writes the genesis as JSON.
func (genesis Genesis) SaveToFile(genesisFile string) error {
	return codecs.WriteFileAtomic(genesisFile, protocol.EncodeJSON(&genesis))
}

// ToBeHashed impements the crypto.Hashable interface.
func (genesis Genesis) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Genesis, protocol.Encode(&genesis)
}

// ID is the chain id: the hash of the genesis.
func (genesis Genesis) ID() crypto.Digest {
	return crypto.HashObj(genesis)
}

// Account looks up a genesis account by name.
func (genesis Genesis) Account(name basics.Name) (GenesisAccount, bool) {
	for _, acct := range genesis.Accounts {
		if acct.Name == name {
			return acct, true
		}
	}
	return GenesisAccount{}, false
}

// Validate checks that account names are unique and that every deployment
// targets a declared account.
func (genesis Genesis) Validate() error {
	if genesis.ChainName == "" {
		return fmt.Errorf("genesis has no chain name")
	}
	seen := make(map[basics.Name]bool, len(genesis.Accounts))
	for _, acct := range genesis.Accounts {
		if acct.Name.IsEmpty() {
			return fmt.Errorf("genesis account with an empty name")
		}
		if seen[acct.Name] {
			return fmt.Errorf("genesis account %s declared twice", acct.Name)
		}
		seen[acct.Name] = true
	}
	deployed := make(map[basics.Name]bool, len(genesis.Deployments))
	for _, dep := range genesis.Deployments {
		if !seen[dep.Account] {
			return fmt.Errorf("deployment of %q targets unknown account %s", dep.Code, dep.Account)
		}
		if deployed[dep.Account] {
			return fmt.Errorf("account %s has more than one deployment", dep.Account)
		}
		deployed[dep.Account] = true
	}
	return nil
}
