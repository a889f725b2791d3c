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
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger/ledgercore"
)

type mockRow struct {
	payer basics.Name
	data  []byte
}

type mockKey struct {
	scope basics.Name
	table basics.Name
}

// mockContext keeps rows in maps and records what the handler asked for.
type mockContext struct {
	self   basics.Name
	act    transactions.Action
	rows   map[mockKey]map[uint64]mockRow
	seqs   map[mockKey]uint64
	inline []transactions.Action
	checks int
}

func makeMockContext(self basics.Name, act transactions.Action) *mockContext {
	return &mockContext{
		self: self,
		act:  act,
		rows: make(map[mockKey]map[uint64]mockRow),
		seqs: make(map[mockKey]uint64),
	}
}

func (m *mockContext) Self() basics.Name              { return m.self }
func (m *mockContext) Receiver() basics.Name          { return m.self }
func (m *mockContext) Action() transactions.Action    { return m.act }
func (m *mockContext) HasAuth(actor basics.Name) bool { return m.act.HasAuthorization(actor) }

func (m *mockContext) RequireAuth(actor basics.Name) error {
	if !m.HasAuth(actor) {
		return &ledgercore.AuthorizationError{Actor: actor, Action: m.act.String()}
	}
	return nil
}

func (m *mockContext) Checkpoint() error {
	m.checks++
	return nil
}

func (m *mockContext) SendInline(act transactions.Action) error {
	m.inline = append(m.inline, act)
	return nil
}

func (m *mockContext) table(scope, table basics.Name) map[uint64]mockRow {
	k := mockKey{scope, table}
	if m.rows[k] == nil {
		m.rows[k] = make(map[uint64]mockRow)
	}
	return m.rows[k]
}

func (m *mockContext) Find(scope, table basics.Name, pk uint64) (basics.Name, []byte, bool, error) {
	r, ok := m.table(scope, table)[pk]
	return r.payer, r.data, ok, nil
}

func (m *mockContext) Store(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error {
	t := m.table(scope, table)
	if _, ok := t[pk]; ok {
		return fmt.Errorf("pk %d exists", pk)
	}
	t[pk] = mockRow{payer, data}
	return nil
}

func (m *mockContext) Update(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error {
	t := m.table(scope, table)
	if _, ok := t[pk]; !ok {
		return fmt.Errorf("pk %d missing", pk)
	}
	t[pk] = mockRow{payer, data}
	return nil
}

func (m *mockContext) Remove(scope, table basics.Name, pk uint64) error {
	t := m.table(scope, table)
	if _, ok := t[pk]; !ok {
		return fmt.Errorf("pk %d missing", pk)
	}
	delete(t, pk)
	return nil
}

func (m *mockContext) LowerBound(scope, table basics.Name, pk uint64) (uint64, bool, error) {
	var pks []uint64
	for k := range m.table(scope, table) {
		if k >= pk {
			pks = append(pks, k)
		}
	}
	if len(pks) == 0 {
		return 0, false, nil
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i] < pks[j] })
	return pks[0], true, nil
}

func (m *mockContext) NextPrimaryKey(scope, table basics.Name) (uint64, error) {
	k := mockKey{scope, table}
	id := m.seqs[k]
	m.seqs[k] = id + 1
	return id, nil
}
