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

package basics

import (
	"fmt"
	"strings"
)

// ActivePermission is the permission contracts use when they send inline
// actions on their own behalf.
var ActivePermission = MustName("active")

// PermissionLevel names an actor together with the permission it signs under.
type PermissionLevel struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Actor      Name `codec:"actor" json:"actor"`
	Permission Name `codec:"permission" json:"permission"`
}

// String returns actor@permission.
func (pl PermissionLevel) String() string {
	return fmt.Sprintf("%s@%s", pl.Actor, pl.Permission)
}

// ParsePermissionLevel accepts "actor" or "actor@permission"; the
// permission defaults to active.
func ParsePermissionLevel(s string) (pl PermissionLevel, err error) {
	actor, perm, found := strings.Cut(s, "@")
	pl.Actor, err = NameFromString(actor)
	if err != nil {
		return
	}
	if pl.Actor.IsEmpty() {
		return pl, fmt.Errorf("permission level %q has an empty actor", s)
	}
	pl.Permission = ActivePermission
	if found {
		pl.Permission, err = NameFromString(perm)
	}
	return
}
