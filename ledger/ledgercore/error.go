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

package ledgercore

import (
	"context"
	"errors"
	"fmt"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
)

// ErrLedgerClosed is returned by calls made after the ledger was closed.
var ErrLedgerClosed = errors.New("ledger is closed")

// TransactionInLedgerError is returned when a transaction cannot be added because it has already been done
type TransactionInLedgerError struct {
	Txid transactions.Txid
}

// Error satisfies builtin interface `error`
func (tile TransactionInLedgerError) Error() string {
	return fmt.Sprintf("transaction already in ledger: %v", tile.Txid)
}

// AuthorizationError is returned when an action needs authority it was not given,
// either by a contract asking for it or by the host checking signatures and RAM payers.
type AuthorizationError struct {
	Actor      basics.Name
	Permission basics.Name
	Action     string
	Reason     string
}

// Error satisfies builtin interface `error`
func (ae *AuthorizationError) Error() string {
	who := ae.Actor.String()
	if !ae.Permission.IsEmpty() {
		who += "@" + ae.Permission.String()
	}
	msg := fmt.Sprintf("missing authority of %s", who)
	if ae.Action != "" {
		msg += " for " + ae.Action
	}
	if ae.Reason != "" {
		msg += ": " + ae.Reason
	}
	return msg
}

// AssertionError is raised by a contract check that did not hold.
// A caller asking update to fail gets one of these.
type AssertionError struct {
	Msg string
}

// Error satisfies builtin interface `error`
func (ae *AssertionError) Error() string {
	return "assertion failure with message: " + ae.Msg
}

// ComputeBudgetExceededError is returned when a transaction uses more compute units than allowed.
type ComputeBudgetExceededError struct {
	Used  uint64
	Limit uint64
}

// Error satisfies builtin interface `error`
func (cbe *ComputeBudgetExceededError) Error() string {
	return fmt.Sprintf("compute budget exceeded: %d > %d", cbe.Used, cbe.Limit)
}

// StorageQuotaExceededError is returned when a row insert or growth would bill
// an account for more storage than its quota.
type StorageQuotaExceededError struct {
	Account basics.Name
	Needed  uint64
	Quota   uint64
}

// Error satisfies builtin interface `error`
func (sqe *StorageQuotaExceededError) Error() string {
	return fmt.Sprintf("account %s has insufficient ram; needs %d bytes has %d bytes", sqe.Account, sqe.Needed, sqe.Quota)
}

// UnknownActionError is returned when a contract has no handler for an action.
type UnknownActionError struct {
	Contract basics.Name
	Action   basics.Name
}

// Error satisfies builtin interface `error`
func (uae *UnknownActionError) Error() string {
	return fmt.Sprintf("contract %s has no action %s", uae.Contract, uae.Action)
}

// UnknownContractError is returned when deploying a code name nothing registered.
type UnknownContractError struct {
	Code string
}

// Error satisfies builtin interface `error`
func (uce *UnknownContractError) Error() string {
	return fmt.Sprintf("no contract registered as %q", uce.Code)
}

// UnknownAccountError is returned when an action, authorization or RAM payer names
// an account that does not exist.
type UnknownAccountError struct {
	Account basics.Name
}

// Error satisfies builtin interface `error`
func (uae *UnknownAccountError) Error() string {
	return fmt.Sprintf("account %s does not exist", uae.Account)
}

// InlineDepthExceededError is returned when inline actions nest deeper than allowed.
type InlineDepthExceededError struct {
	Depth int
	Limit int
}

// Error satisfies builtin interface `error`
func (ide *InlineDepthExceededError) Error() string {
	return fmt.Sprintf("inline action depth %d exceeds %d", ide.Depth, ide.Limit)
}

// ActionDataError is returned when the packed arguments of an action do not
// decode into the handler's argument type.
type ActionDataError struct {
	Action string
	Err    error
}

// Error satisfies builtin interface `error`
func (ade *ActionDataError) Error() string {
	return fmt.Sprintf("cannot decode arguments of %s: %v", ade.Action, ade.Err)
}

func (ade *ActionDataError) Unwrap() error {
	return ade.Err
}

// RowError reports a misuse of the row primitives, such as inserting an
// existing primary key or erasing a missing one.
type RowError struct {
	Table basics.Name
	Scope basics.Name
	PK    uint64
	Msg   string
}

// Error satisfies builtin interface `error`
func (re *RowError) Error() string {
	return fmt.Sprintf("table %s scope %s pk %d: %s", re.Table, re.Scope, re.PK, re.Msg)
}

// Reason returns a short, stable label for the kind of failure err is.
// It is used as a metrics label and in API responses.
func Reason(err error) string {
	var (
		tile TransactionInLedgerError
		auth *AuthorizationError
		asrt *AssertionError
		cbe  *ComputeBudgetExceededError
		sqe  *StorageQuotaExceededError
		uae  *UnknownActionError
		uce  *UnknownContractError
		uacc *UnknownAccountError
		ide  *InlineDepthExceededError
		ade  *ActionDataError
		re   *RowError
		nwf  transactions.TxnNotWellFormedError
		exp  *transactions.TxnExpiredError
		sig  *transactions.SignatureError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &tile):
		return "duplicate"
	case errors.As(err, &auth), errors.As(err, &sig):
		return "authorization"
	case errors.As(err, &asrt):
		return "assertion"
	case errors.As(err, &cbe):
		return "compute_budget"
	case errors.As(err, &sqe):
		return "storage_quota"
	case errors.As(err, &uae), errors.As(err, &uce), errors.As(err, &uacc):
		return "unknown"
	case errors.As(err, &ide):
		return "inline_depth"
	case errors.As(err, &ade), errors.As(err, &nwf):
		return "malformed"
	case errors.As(err, &exp):
		return "expired"
	case errors.As(err, &re):
		return "row"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.Is(err, ErrLedgerClosed):
		return "interrupted"
	default:
		return "internal"
	}
}
