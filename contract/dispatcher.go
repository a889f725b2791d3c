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

package contract

import (
	"fmt"
	"sort"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/protocol"
)

type handlerEntry struct {
	newArgs func() interface{}
	call    func(ctx Context, args interface{}) error
}

// Dispatcher routes actions by name to typed handlers. Handler arguments
// are structs tagged `codec:",toarray"` so they pack positionally.
type Dispatcher struct {
	handlers map[basics.Name]handlerEntry
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[basics.Name]handlerEntry)}
}

// Register binds action name to handler. Registering a name twice panics.
func Register[T any](d *Dispatcher, name string, handler func(ctx Context, args *T) error) {
	action := basics.MustName(name)
	if _, ok := d.handlers[action]; ok {
		panic(fmt.Sprintf("action %s registered twice", name))
	}
	d.handlers[action] = handlerEntry{
		newArgs: func() interface{} { return new(T) },
		call: func(ctx Context, args interface{}) error {
			return handler(ctx, args.(*T))
		},
	}
}

func (d *Dispatcher) lookup(contract, action basics.Name) (handlerEntry, error) {
	h, ok := d.handlers[action]
	if !ok {
		return handlerEntry{}, &ledgercore.UnknownActionError{Contract: contract, Action: action}
	}
	return h, nil
}

// Apply decodes the arguments of ctx.Action() and runs its handler.
func (d *Dispatcher) Apply(ctx Context) error {
	act := ctx.Action()
	h, err := d.lookup(ctx.Self(), act.Name)
	if err != nil {
		return err
	}
	args := h.newArgs()
	if err := protocol.Decode(act.Data, args); err != nil {
		return &ledgercore.ActionDataError{Action: act.String(), Err: err}
	}
	return h.call(ctx, args)
}

// PackJSON converts a JSON argument array, such as ["alice","hi",false],
// into packed action data.
func (d *Dispatcher) PackJSON(action basics.Name, js []byte) ([]byte, error) {
	h, err := d.lookup(0, action)
	if err != nil {
		return nil, err
	}
	args := h.newArgs()
	if err := protocol.DecodeJSON(js, args); err != nil {
		return nil, &ledgercore.ActionDataError{Action: action.String(), Err: err}
	}
	return protocol.Encode(args), nil
}

// UnpackJSON renders packed action data as a JSON argument array.
func (d *Dispatcher) UnpackJSON(action basics.Name, data []byte) ([]byte, error) {
	h, err := d.lookup(0, action)
	if err != nil {
		return nil, err
	}
	args := h.newArgs()
	if err := protocol.Decode(data, args); err != nil {
		return nil, &ledgercore.ActionDataError{Action: action.String(), Err: err}
	}
	return protocol.EncodeJSON(args), nil
}

// Actions lists the registered action names in name order.
func (d *Dispatcher) Actions() []basics.Name {
	names := make([]basics.Name, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names
}
