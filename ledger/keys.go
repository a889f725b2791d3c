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
	"encoding/binary"
	"fmt"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
)

// Key layout. Every integer is big-endian so that bytewise key order is
// numeric order:
//
//	r | code | scope | table | pk   -> payer | row data
//	s | code | scope | table        -> next primary key of the table
//	m | account                     -> bytes of storage billed to the account
//	t | txid                        -> expiration of an applied transaction
//	g                               -> chain id the store belongs to
const (
	rowPrefix     byte = 'r'
	seqPrefix     byte = 's'
	ramPrefix     byte = 'm'
	txidPrefix    byte = 't'
	chainIDPrefix byte = 'g'
)

const (
	tablePrefixLen = 1 + 3*8
	rowKeyLen      = tablePrefixLen + 8
)

// tableID names one table instance: a contract's table within a scope.
type tableID struct {
	code  basics.Name
	scope basics.Name
	table basics.Name
}

func (tid tableID) String() string {
	return fmt.Sprintf("%s/%s/%s", tid.code, tid.scope, tid.table)
}

func appendTableID(key []byte, tid tableID) []byte {
	key = binary.BigEndian.AppendUint64(key, uint64(tid.code))
	key = binary.BigEndian.AppendUint64(key, uint64(tid.scope))
	return binary.BigEndian.AppendUint64(key, uint64(tid.table))
}

// tablePrefix is the common prefix of every row key of tid.
func tablePrefix(tid tableID) []byte {
	return appendTableID(append(make([]byte, 0, rowKeyLen), rowPrefix), tid)
}

func rowKey(tid tableID, pk uint64) []byte {
	return binary.BigEndian.AppendUint64(tablePrefix(tid), pk)
}

func parseRowKey(key []byte) (tid tableID, pk uint64, err error) {
	if len(key) != rowKeyLen || key[0] != rowPrefix {
		return tid, 0, fmt.Errorf("malformed row key %x", key)
	}
	tid.code = basics.Name(binary.BigEndian.Uint64(key[1:9]))
	tid.scope = basics.Name(binary.BigEndian.Uint64(key[9:17]))
	tid.table = basics.Name(binary.BigEndian.Uint64(key[17:25]))
	pk = binary.BigEndian.Uint64(key[25:33])
	return
}

func seqKey(tid tableID) []byte {
	return appendTableID(append(make([]byte, 0, tablePrefixLen), seqPrefix), tid)
}

func ramKey(account basics.Name) []byte {
	return binary.BigEndian.AppendUint64([]byte{ramPrefix}, uint64(account))
}

func txidKey(txid transactions.Txid) []byte {
	return append([]byte{txidPrefix}, txid[:]...)
}

func encodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("expected 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// encodeRowValue prefixes the row data with the account paying for it.
func encodeRowValue(payer basics.Name, data []byte) []byte {
	v := make([]byte, 0, 8+len(data))
	v = binary.BigEndian.AppendUint64(v, uint64(payer))
	return append(v, data...)
}

func decodeRowValue(v []byte) (payer basics.Name, data []byte, err error) {
	if len(v) < 8 {
		return 0, nil, fmt.Errorf("malformed row value of %d bytes", len(v))
	}
	return basics.Name(binary.BigEndian.Uint64(v[:8])), v[8:], nil
}
