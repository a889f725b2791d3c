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

package sqlitedriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/util/db"
)

// storeDBVersion is the schema version this driver writes.
const storeDBVersion = int32(1)

var storeSchema = []string{
	`CREATE TABLE IF NOT EXISTS kvstore (
		k BLOB PRIMARY KEY,
		v BLOB NOT NULL)`,
}

type kvRow struct {
	Key   []byte `db:"k"`
	Value []byte `db:"v"`
}

type sqlStore struct {
	acc db.Accessor
	log logging.Logger
}

// Open opens (creating if needed) the sqlite ledger database under dbdir
func Open(dbdir string, inMem bool, log logging.Logger) (store.Store, error) {
	acc, err := db.MakeAccessor(filepath.Join(dbdir, "ledger.sqlite"), false, inMem)
	if err != nil {
		return nil, err
	}
	s := &sqlStore{acc: acc, log: log}
	err = acc.Atomic("sqlitedriver.migrate", s.runMigrations)
	if err != nil {
		acc.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) runMigrations(ctx context.Context, tx *sqlx.Tx) error {
	version, err := db.GetUserVersion(ctx, tx)
	if err != nil {
		return err
	}
	if version > storeDBVersion {
		return fmt.Errorf("ledger database version %d is newer than supported version %d", version, storeDBVersion)
	}
	if version == storeDBVersion {
		return nil
	}
	for _, stmt := range storeSchema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	s.log.Infof("sqlitedriver: upgraded ledger database from version %d to %d", version, storeDBVersion)
	_, err = db.SetUserVersion(ctx, tx, storeDBVersion)
	return err
}

// rangeQuery builds the select for [start, end); a nil end is unbounded.
func rangeQuery(start, end []byte, limit int) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{start}
	sb.WriteString("SELECT k, v FROM kvstore WHERE k >= ?")
	if end != nil {
		sb.WriteString(" AND k < ?")
		args = append(args, end)
	}
	sb.WriteString(" ORDER BY k")
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	return sb.String(), args
}

// Get implements store.Store
func (s *sqlStore) Get(key []byte) (value []byte, err error) {
	err = db.Retry(func() error {
		return s.acc.Handle.Get(&value, "SELECT v FROM kvstore WHERE k = ?", key)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return value, err
}

// First implements store.Store
func (s *sqlStore) First(start, end []byte) (key, value []byte, found bool, err error) {
	if start == nil {
		start = []byte{}
	}
	query, args := rangeQuery(start, end, 1)
	var row kvRow
	err = db.Retry(func() error {
		return s.acc.Handle.Get(&row, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return row.Key, row.Value, true, nil
}

// Scan implements store.Store
func (s *sqlStore) Scan(start, end []byte, fn store.ScanFn) error {
	if start == nil {
		start = []byte{}
	}
	query, args := rangeQuery(start, end, 0)
	rows, err := s.acc.Handle.Queryx(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var row kvRow
		if err = rows.StructScan(&row); err != nil {
			return err
		}
		err = fn(row.Key, row.Value)
		if errors.Is(err, store.ErrStopScan) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return rows.Err()
}

// Commit implements store.Store
func (s *sqlStore) Commit(writes []store.Write) error {
	return s.acc.Atomic("sqlitedriver.commit", func(ctx context.Context, tx *sqlx.Tx) error {
		for _, w := range writes {
			var err error
			if w.Delete {
				_, err = tx.ExecContext(ctx, "DELETE FROM kvstore WHERE k = ?", w.Key)
			} else {
				_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO kvstore (k, v) VALUES (?, ?)", w.Key, w.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements store.Store
func (s *sqlStore) Close() error {
	return s.acc.Close()
}
