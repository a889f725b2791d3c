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

package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/serr"
)

// ActionTrace records one executed action, top-level or inline.
type ActionTrace struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Index is the position of the action in execution order.
	Index int `codec:"index"`
	// Parent is the Index of the action that sent this one inline, or -1.
	Parent   int                 `codec:"parent"`
	Depth    int                 `codec:"depth"`
	Receiver basics.Name         `codec:"receiver"`
	Action   transactions.Action `codec:"act"`

	// ComputeUsed covers the action itself, not the inline actions it sent.
	ComputeUsed uint64 `codec:"cpu"`
	// NoCode is set when the receiver has no contract deployed.
	NoCode bool `codec:"nocode"`
}

// RAMDelta is the net change of storage billed to an account.
type RAMDelta struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Account basics.Name `codec:"account"`
	Delta   int64       `codec:"delta"`
}

// Receipt describes a committed transaction.
type Receipt struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Txid        transactions.Txid `codec:"txid"`
	ComputeUsed uint64            `codec:"cpu"`
	RowsWritten uint64            `codec:"rows"`
	RAMDeltas   []RAMDelta        `codec:"ram"`
	Traces      []ActionTrace     `codec:"traces"`
}

// evaluator runs the actions of one transaction against a cow, metering
// compute across every action it runs.
type evaluator struct {
	ctx    context.Context
	l      *Ledger
	params config.ExecParams

	used   uint64
	traces []ActionTrace
}

// charge consumes units of the compute budget. It is also the point at
// which a cancelled or timed out caller stops execution.
func (ev *evaluator) charge(units uint64) error {
	if err := ev.ctx.Err(); err != nil {
		return fmt.Errorf("execution interrupted after %d compute units: %w", ev.used, err)
	}
	used, overflowed := basics.OAdd(ev.used, units)
	if overflowed || used > ev.params.MaxTxnComputeUnits {
		return &ledgercore.ComputeBudgetExceededError{Used: used, Limit: ev.params.MaxTxnComputeUnits}
	}
	ev.used = used
	return nil
}

// execute runs act in a child of cow and, once it succeeded, the inline
// actions it sent, depth first. Nothing act did reaches cow unless act
// succeeded; the caller drops cow when any inline action fails.
func (ev *evaluator) execute(cow *stateCow, act transactions.Action, parent, depth int) error {
	if depth > ev.params.MaxInlineDepth {
		return &ledgercore.InlineDepthExceededError{Depth: depth, Limit: ev.params.MaxInlineDepth}
	}
	if !ev.l.accountExists(act.Account) {
		return &ledgercore.UnknownAccountError{Account: act.Account}
	}

	idx := len(ev.traces)
	ev.traces = append(ev.traces, ActionTrace{
		Index:    idx,
		Parent:   parent,
		Depth:    depth,
		Receiver: act.Account,
		Action:   act,
	})
	before := ev.used

	child := cow.child()
	actx := &applyContext{ev: ev, cow: child, act: act}
	err := ev.apply(actx)
	ev.traces[idx].ComputeUsed = ev.used - before
	if err != nil {
		return serr.Wrap(err, "", "action", act.String(), "depth", depth)
	}
	child.commitToParent()

	for _, inline := range actx.inline {
		if err := ev.execute(cow, inline, idx, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) apply(actx *applyContext) error {
	if err := ev.charge(ev.params.ActionCost); err != nil {
		return err
	}
	c, ok := ev.l.contractOf(actx.act.Account)
	if !ok {
		ev.traces[len(ev.traces)-1].NoCode = true
		return nil
	}
	if err := safeApply(c, actx); err != nil {
		return err
	}
	return actx.checkRAMAuthorization()
}

// safeApply turns a panicking contract into a failed action.
func safeApply(c contract.Contract, actx *applyContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("contract panic: %w", perr)
			} else {
				err = fmt.Errorf("contract panic: %v", r)
			}
		}
	}()
	return c.Apply(actx)
}

func (ev *evaluator) ramDeltas(cow *stateCow) []RAMDelta {
	deltas := make([]RAMDelta, 0, len(cow.ram))
	for acct, delta := range cow.ram {
		if delta != 0 {
			deltas = append(deltas, RAMDelta{Account: acct, Delta: delta})
		}
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Account < deltas[j].Account })
	return deltas
}

// applyContext is the contract.Context of one running action.
type applyContext struct {
	ev     *evaluator
	cow    *stateCow
	act    transactions.Action
	inline []transactions.Action
}

func (ac *applyContext) Self() basics.Name {
	return ac.act.Account
}

func (ac *applyContext) Receiver() basics.Name {
	return ac.act.Account
}

func (ac *applyContext) Action() transactions.Action {
	return ac.act
}

func (ac *applyContext) HasAuth(actor basics.Name) bool {
	return ac.act.HasAuthorization(actor)
}

func (ac *applyContext) RequireAuth(actor basics.Name) error {
	if ac.HasAuth(actor) {
		return nil
	}
	return &ledgercore.AuthorizationError{Actor: actor, Action: ac.act.String()}
}

func (ac *applyContext) Checkpoint() error {
	return ac.ev.charge(ac.ev.params.CheckpointCost)
}

func (ac *applyContext) SendInline(act transactions.Action) error {
	if act.Account.IsEmpty() || act.Name.IsEmpty() {
		return transactions.TxnNotWellFormedError(fmt.Sprintf("inline action %v has no account or name", act))
	}
	if len(act.Data) > ac.ev.params.MaxActionDataBytes {
		return transactions.TxnNotWellFormedError(fmt.Sprintf("inline action data is %d bytes, more than the %d allowed", len(act.Data), ac.ev.params.MaxActionDataBytes))
	}
	for _, pl := range act.Authorization {
		if pl.Actor != ac.Self() || pl.Permission != basics.ActivePermission {
			return &ledgercore.AuthorizationError{
				Actor:      pl.Actor,
				Permission: pl.Permission,
				Action:     act.String(),
				Reason:     fmt.Sprintf("inline actions sent by %s may only claim %s@active", ac.Self(), ac.Self()),
			}
		}
	}

	act.Authorization = append([]basics.PermissionLevel(nil), act.Authorization...)
	act.Data = append([]byte(nil), act.Data...)
	ac.inline = append(ac.inline, act)
	return nil
}

func (ac *applyContext) tableID(scope, table basics.Name) tableID {
	return tableID{code: ac.Self(), scope: scope, table: table}
}

func (ac *applyContext) Find(scope, table basics.Name, pk uint64) (basics.Name, []byte, bool, error) {
	if err := ac.ev.charge(ac.ev.params.RowReadCost); err != nil {
		return 0, nil, false, err
	}
	return ac.find(ac.tableID(scope, table), pk)
}

func (ac *applyContext) find(tid tableID, pk uint64) (basics.Name, []byte, bool, error) {
	value, found, err := ac.cow.lookupRow(rowKey(tid, pk))
	if err != nil || !found {
		return 0, nil, false, err
	}
	payer, data, err := decodeRowValue(value)
	if err != nil {
		return 0, nil, false, err
	}
	return payer, append([]byte(nil), data...), true, nil
}

func (ac *applyContext) Store(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error {
	if err := ac.ev.charge(ac.ev.params.RowWriteCost); err != nil {
		return err
	}
	tid := ac.tableID(scope, table)
	_, _, found, err := ac.find(tid, pk)
	if err != nil {
		return err
	}
	if found {
		return &ledgercore.RowError{Table: table, Scope: scope, PK: pk, Msg: "primary key already exists"}
	}
	if err := ac.bill(payer, ac.rowSize(data)); err != nil {
		return err
	}
	ac.cow.putRow(rowKey(tid, pk), encodeRowValue(payer, data))
	return nil
}

func (ac *applyContext) Update(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error {
	if err := ac.ev.charge(ac.ev.params.RowWriteCost); err != nil {
		return err
	}
	tid := ac.tableID(scope, table)
	oldPayer, oldData, found, err := ac.find(tid, pk)
	if err != nil {
		return err
	}
	if !found {
		return &ledgercore.RowError{Table: table, Scope: scope, PK: pk, Msg: "cannot update a row that does not exist"}
	}
	if oldPayer == payer {
		err = ac.bill(payer, ac.rowSize(data)-ac.rowSize(oldData))
	} else {
		err = ac.bill(oldPayer, -ac.rowSize(oldData))
		if err == nil {
			err = ac.bill(payer, ac.rowSize(data))
		}
	}
	if err != nil {
		return err
	}
	ac.cow.putRow(rowKey(tid, pk), encodeRowValue(payer, data))
	return nil
}

func (ac *applyContext) Remove(scope, table basics.Name, pk uint64) error {
	if err := ac.ev.charge(ac.ev.params.RowWriteCost); err != nil {
		return err
	}
	tid := ac.tableID(scope, table)
	payer, data, found, err := ac.find(tid, pk)
	if err != nil {
		return err
	}
	if !found {
		return &ledgercore.RowError{Table: table, Scope: scope, PK: pk, Msg: "cannot remove a row that does not exist"}
	}
	if err := ac.bill(payer, -ac.rowSize(data)); err != nil {
		return err
	}
	ac.cow.deleteRow(rowKey(tid, pk))
	return nil
}

func (ac *applyContext) LowerBound(scope, table basics.Name, pk uint64) (uint64, bool, error) {
	if err := ac.ev.charge(ac.ev.params.RowReadCost); err != nil {
		return 0, false, err
	}
	tid := ac.tableID(scope, table)
	key, _, found, err := ac.cow.firstRow(rowKey(tid, pk), store.PrefixEnd(tablePrefix(tid)))
	if err != nil || !found {
		return 0, false, err
	}
	_, at, err := parseRowKey(key)
	if err != nil {
		return 0, false, err
	}
	return at, true, nil
}

func (ac *applyContext) NextPrimaryKey(scope, table basics.Name) (uint64, error) {
	if err := ac.ev.charge(ac.ev.params.RowReadCost); err != nil {
		return 0, err
	}
	key := seqKey(ac.tableID(scope, table))
	next, err := ac.cow.nextPK(key)
	if err != nil {
		return 0, err
	}
	if next == ^uint64(0) {
		return 0, &ledgercore.RowError{Table: table, Scope: scope, PK: next, Msg: "primary keys exhausted"}
	}
	ac.cow.setNextPK(key, next+1)
	return next, nil
}

// rowSize is the number of bytes billed for a row holding data.
func (ac *applyContext) rowSize(data []byte) int64 {
	return int64(len(data)) + int64(ac.ev.params.RowOverhead)
}

// bill changes the storage billed to payer by delta bytes, failing when
// an increase takes payer past its quota.
func (ac *applyContext) bill(payer basics.Name, delta int64) error {
	if delta == 0 {
		return nil
	}
	if !ac.ev.l.accountExists(payer) {
		return &ledgercore.UnknownAccountError{Account: payer}
	}
	usage, err := ac.cow.ramUsage(payer)
	if err != nil {
		return err
	}
	newUsage, overflowed := basics.ApplyDelta(usage, delta)
	if overflowed {
		return fmt.Errorf("billing %d bytes to %s with usage %d overflows", delta, payer, usage)
	}
	if quota := ac.ev.l.ramQuota(payer); delta > 0 && newUsage > quota {
		return &ledgercore.StorageQuotaExceededError{Account: payer, Needed: newUsage, Quota: quota}
	}
	ac.cow.addRAM(payer, delta)
	return nil
}

// checkRAMAuthorization requires every account whose storage bill grew
// during the action to have authorized it, or to be the contract itself.
func (ac *applyContext) checkRAMAuthorization() error {
	payers := make([]basics.Name, 0, len(ac.cow.ram))
	for acct, delta := range ac.cow.ram {
		if delta > 0 && acct != ac.Self() && !ac.act.HasAuthorization(acct) {
			payers = append(payers, acct)
		}
	}
	if len(payers) == 0 {
		return nil
	}
	sort.Slice(payers, func(i, j int) bool { return payers[i] < payers[j] })
	return &ledgercore.AuthorizationError{Actor: payers[0], Action: ac.act.String(), Reason: "unauthorized RAM usage increase"}
}
