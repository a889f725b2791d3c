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

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/protocol"
)

// Action is one call into a contract: the account whose code handles it,
// the action name, the permissions it claims, and its packed arguments.
type Action struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Account       basics.Name              `codec:"account"`
	Name          basics.Name              `codec:"name"`
	Authorization []basics.PermissionLevel `codec:"auth"`

	// Data holds the arguments as a msgpack array, in declaration order.
	Data []byte `codec:"data"`
}

// MakeAction packs args (a struct tagged codec:",toarray") into an Action.
func MakeAction(account, name basics.Name, args interface{}, auth ...basics.PermissionLevel) Action {
	return Action{
		Account:       account,
		Name:          name,
		Authorization: auth,
		Data:          protocol.Encode(args),
	}
}

// DecodeArgs unpacks the action arguments into argsptr.
func (a Action) DecodeArgs(argsptr interface{}) error {
	return protocol.Decode(a.Data, argsptr)
}

// HasAuthorization reports whether actor appears among the claimed permissions.
func (a Action) HasAuthorization(actor basics.Name) bool {
	for _, pl := range a.Authorization {
		if pl.Actor == actor {
			return true
		}
	}
	return false
}

// String returns account::name.
func (a Action) String() string {
	return fmt.Sprintf("%s::%s", a.Account, a.Name)
}
