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

// Package ledger executes transactions against contracts and keeps the
// resulting state in a store.Store. Transactions are applied one at a
// time; each commits atomically or leaves no trace.
package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/algorand/go-deadlock"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/serr"
)

type deployment struct {
	code     string
	contract contract.Contract
}

// Ledger is a single-instance host: the genesis accounts, the contracts
// deployed on them and the rows those contracts stored.
type Ledger struct {
	mu deadlock.Mutex

	st       store.Store
	genesis  bookkeeping.Genesis
	chainID  crypto.Digest
	params   config.ExecParams
	accounts map[basics.Name]bookkeeping.GenesisAccount

	contracts  map[basics.Name]deployment
	authorizer Authorizer
	clock      func() time.Time

	log logging.Logger
}

// Row is a stored row with the account paying for it.
type Row struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	PK    uint64      `codec:"pk"`
	Payer basics.Name `codec:"payer"`
	Data  []byte      `codec:"data"`
}

// Open builds a ledger over st, which must be empty or belong to the same
// genesis. Contracts named by the genesis deployments are looked up in the
// contract registry.
func Open(st store.Store, genesis bookkeeping.Genesis, params config.ExecParams, log logging.Logger) (*Ledger, error) {
	if err := genesis.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		st:         st,
		genesis:    genesis,
		chainID:    genesis.ID(),
		params:     params,
		accounts:   make(map[basics.Name]bookkeeping.GenesisAccount, len(genesis.Accounts)),
		contracts:  make(map[basics.Name]deployment),
		authorizer: MakeKeyAuthorizer(genesis),
		clock:      time.Now,
		log:        log,
	}
	for _, acct := range genesis.Accounts {
		l.accounts[acct.Name] = acct
	}
	for _, dep := range genesis.Deployments {
		if err := l.Deploy(dep.Account, dep.Code); err != nil {
			return nil, err
		}
	}

	if err := l.checkChainID(); err != nil {
		return nil, err
	}
	if err := l.pruneTxids(); err != nil {
		return nil, err
	}
	total, err := l.totalRAM()
	if err != nil {
		return nil, err
	}
	ledgerRAMBytes.Set(total)

	log.Infof("ledger: opened chain %s (%s) with %d accounts and %d contracts", genesis.ChainName, l.chainID, len(l.accounts), len(l.contracts))
	return l, nil
}

// checkChainID stamps an empty store with the chain id and refuses a store
// stamped by another genesis.
func (l *Ledger) checkChainID() error {
	key := []byte{chainIDPrefix}
	value, found, err := storeBase{l.st}.get(key)
	if err != nil {
		return err
	}
	if !found {
		return l.st.Commit([]store.Write{{Key: key, Value: l.chainID[:]}})
	}
	if !bytes.Equal(value, l.chainID[:]) {
		return fmt.Errorf("store belongs to chain %x, not %s", value, l.chainID)
	}
	return nil
}

// pruneTxids forgets transactions that have expired: they can no longer
// be replayed, being rejected as expired.
func (l *Ledger) pruneTxids() error {
	now := l.clock().Unix()
	var writes []store.Write
	prefix := []byte{txidPrefix}
	err := l.st.Scan(prefix, store.PrefixEnd(prefix), func(key, value []byte) error {
		exp, err := decodeUint64(value)
		if err != nil {
			return err
		}
		if int64(exp) <= now {
			writes = append(writes, store.Write{Key: append([]byte(nil), key...), Delete: true})
		}
		return nil
	})
	if err != nil || len(writes) == 0 {
		return err
	}
	l.log.Debugf("ledger: pruning %d expired transaction ids", len(writes))
	return l.st.Commit(writes)
}

func (l *Ledger) totalRAM() (total uint64, err error) {
	prefix := []byte{ramPrefix}
	err = l.st.Scan(prefix, store.PrefixEnd(prefix), func(key, value []byte) error {
		usage, err := decodeUint64(value)
		if err != nil {
			return err
		}
		total = basics.AddSaturate(total, usage)
		return nil
	})
	return
}

// Deploy runs the contract registered as code on account.
func (l *Ledger) Deploy(account basics.Name, code string) error {
	c, ok := contract.Lookup(code)
	if !ok {
		return &ledgercore.UnknownContractError{Code: code}
	}
	return l.DeployContract(account, code, c)
}

// DeployContract runs c, labelled code, on account, replacing any
// contract deployed there before. Rows stored by the previous contract
// stay where they are.
func (l *Ledger) DeployContract(account basics.Name, code string, c contract.Contract) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[account]; !ok {
		return &ledgercore.UnknownAccountError{Account: account}
	}
	l.contracts[account] = deployment{code: code, contract: c}
	l.log.Debugf("ledger: deployed %q on %s", code, account)
	return nil
}

// SetAuthorizer replaces the genesis key authorizer.
func (l *Ledger) SetAuthorizer(a Authorizer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.authorizer = a
}

// SetClock replaces the clock used to check expirations.
func (l *Ledger) SetClock(clock func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = clock
}

// ChainID returns the hash of the genesis.
func (l *Ledger) ChainID() crypto.Digest {
	return l.chainID
}

// Genesis returns the genesis the ledger was opened with.
func (l *Ledger) Genesis() bookkeeping.Genesis {
	return l.genesis
}

// Params returns the execution limits.
func (l *Ledger) Params() config.ExecParams {
	return l.params
}

// Contract returns the contract deployed on account and its code name.
func (l *Ledger) Contract(account basics.Name) (contract.Contract, string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	dep, ok := l.contracts[account]
	return dep.contract, dep.code, ok
}

// Deployments maps each account with a contract to its code name.
func (l *Ledger) Deployments() map[basics.Name]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make(map[basics.Name]string, len(l.contracts))
	for acct, dep := range l.contracts {
		res[acct] = dep.code
	}
	return res
}

func (l *Ledger) contractOf(account basics.Name) (contract.Contract, bool) {
	dep, ok := l.contracts[account]
	return dep.contract, ok
}

func (l *Ledger) accountExists(account basics.Name) bool {
	_, ok := l.accounts[account]
	return ok
}

func (l *Ledger) ramQuota(account basics.Name) uint64 {
	if acct, ok := l.accounts[account]; ok && acct.RAMQuota != 0 {
		return acct.RAMQuota
	}
	return l.params.RAMQuota
}

// RAMQuota returns the number of storage bytes account may be billed for.
func (l *Ledger) RAMQuota(account basics.Name) uint64 {
	return l.ramQuota(account)
}

// Apply verifies and executes stxn. On success every effect of the
// transaction is committed to the store before Apply returns; on failure
// nothing is. Cancelling ctx stops execution at the next compute charge.
func (l *Ledger) Apply(ctx context.Context, stxn transactions.SignedTxn) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txid := stxn.ID()
	if l.st == nil {
		return Receipt{}, serr.Extend(ledgercore.ErrLedgerClosed, "txid", txid.String())
	}
	receipt, err := l.apply(ctx, txid, stxn)
	if err != nil {
		reason := ledgercore.Reason(err)
		ledgerTransactionsRejected.Inc(map[string]string{"reason": reason})
		l.log.WithFields(logging.Fields{
			"txid":   txid.String(),
			"reason": reason,
		}).Infof("ledger: transaction rejected: %v", err)
		return Receipt{}, serr.Extend(err, "txid", txid.String())
	}

	ledgerTransactionsCount.Inc(nil)
	ledgerActionsCount.AddUint64(uint64(len(receipt.Traces)), nil)
	ledgerComputeUnits.AddUint64(receipt.ComputeUsed, nil)
	ledgerRowsWritten.AddUint64(receipt.RowsWritten, nil)
	for _, d := range receipt.RAMDeltas {
		ledgerRAMBytes.Add(d.Delta)
	}
	l.log.WithFields(logging.Fields{
		"txid":    txid.String(),
		"actions": len(receipt.Traces),
		"cpu":     receipt.ComputeUsed,
	}).Debug("ledger: transaction applied")
	return receipt, nil
}

func (l *Ledger) apply(ctx context.Context, txid transactions.Txid, stxn transactions.SignedTxn) (Receipt, error) {
	txn := stxn.Txn
	if txn.ChainID != l.chainID {
		return Receipt{}, transactions.TxnNotWellFormedError(fmt.Sprintf("transaction is for chain %s, this is chain %s", txn.ChainID, l.chainID))
	}
	if err := txn.WellFormed(l.params, l.clock()); err != nil {
		return Receipt{}, err
	}

	_, dup, err := storeBase{l.st}.get(txidKey(txid))
	if err != nil {
		return Receipt{}, err
	}
	if dup {
		return Receipt{}, ledgercore.TransactionInLedgerError{Txid: txid}
	}

	if err := stxn.VerifySignatures(); err != nil {
		return Receipt{}, err
	}
	signers := stxn.Signers()
	for i, act := range txn.Actions {
		for _, pl := range act.Authorization {
			if err := l.authorizer.Authorize(pl, signers); err != nil {
				return Receipt{}, serr.Wrap(err, "", "action", act.String(), "index", i)
			}
		}
	}

	ev := &evaluator{ctx: ctx, l: l, params: l.params}
	cow := makeStateCow(storeBase{l.st})
	for i, act := range txn.Actions {
		if err := ev.execute(cow, act, -1, 0); err != nil {
			return Receipt{}, serr.Extend(err, "index", i)
		}
	}

	writes, err := cow.storeWrites()
	if err != nil {
		return Receipt{}, err
	}
	writes = append(writes, store.Write{Key: txidKey(txid), Value: encodeUint64(uint64(txn.Expiration))})
	if err := l.st.Commit(writes); err != nil {
		return Receipt{}, fmt.Errorf("committing transaction: %w", err)
	}

	return Receipt{
		Txid:        txid,
		ComputeUsed: ev.used,
		RowsWritten: cow.rowsWritten,
		RAMDeltas:   ev.ramDeltas(cow),
		Traces:      ev.traces,
	}, nil
}

// Rows returns every row of a table in primary key order.
func (l *Ledger) Rows(code, scope, table basics.Name) ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st == nil {
		return nil, ledgercore.ErrLedgerClosed
	}

	prefix := tablePrefix(tableID{code: code, scope: scope, table: table})
	var rows []Row
	err := l.st.Scan(prefix, store.PrefixEnd(prefix), func(key, value []byte) error {
		_, pk, err := parseRowKey(key)
		if err != nil {
			return err
		}
		payer, data, err := decodeRowValue(value)
		if err != nil {
			return err
		}
		rows = append(rows, Row{PK: pk, Payer: payer, Data: append([]byte(nil), data...)})
		return nil
	})
	return rows, err
}

// DecodedRows returns the rows of a table decoded by the contract on code.
func (l *Ledger) DecodedRows(code, scope, table basics.Name) ([]interface{}, error) {
	c, _, ok := l.Contract(code)
	if !ok {
		return nil, fmt.Errorf("account %s has no contract", code)
	}
	rows, err := l.Rows(code, scope, table)
	if err != nil {
		return nil, err
	}
	res := make([]interface{}, len(rows))
	for i, row := range rows {
		res[i], err = c.DecodeRow(table, row.Data)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", row.PK, table, err)
		}
	}
	return res, nil
}

// RAMUsage returns the number of storage bytes billed to account.
func (l *Ledger) RAMUsage(account basics.Name) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st == nil {
		return 0, ledgercore.ErrLedgerClosed
	}
	if !l.accountExists(account) {
		return 0, &ledgercore.UnknownAccountError{Account: account}
	}
	return storeBase{l.st}.ramUsage(account)
}

// Accounts returns the account names in name order.
func (l *Ledger) Accounts() []basics.Name {
	names := make([]basics.Name, 0, len(l.accounts))
	for name := range l.accounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st == nil {
		return ledgercore.ErrLedgerClosed
	}
	err := l.st.Close()
	l.st = nil
	return err
}
