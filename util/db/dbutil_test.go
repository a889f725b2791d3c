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

package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/test/partitiontest"
)

func TestInMemoryDisposal(t *testing.T) {
	partitiontest.PartitionTest(t)

	fn := filepath.Join(t.TempDir(), "fn.db")
	acc, err := MakeAccessor(fn, false, true)
	require.NoError(t, err)
	err = acc.Atomic("create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("create table Service (data blob)")
		return err
	})
	require.NoError(t, err)

	err = acc.Atomic("insert", func(ctx context.Context, tx *sqlx.Tx) error {
		raw := []byte{0, 1, 2}
		_, err := tx.Exec("insert or replace into Service (rowid, data) values (1, ?)", raw)
		return err
	})
	require.NoError(t, err)

	anotherAcc, err := MakeAccessor(fn, false, true)
	require.NoError(t, err)
	var nrows int
	require.NoError(t, anotherAcc.Handle.Get(&nrows, "select count(*) from Service"))
	require.Equal(t, 1, nrows)
	anotherAcc.Close()

	acc.Close()

	acc, err = MakeAccessor(fn, false, true)
	require.NoError(t, err)
	err = acc.Handle.Get(&nrows, "select count(*) from Service")
	require.Error(t, err, "table Service present while it should not")
	acc.Close()
}

func TestInMemoryUniqueDB(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := t.TempDir()
	acc, err := MakeAccessor(filepath.Join(dir, "fn.db"), false, true)
	require.NoError(t, err)
	defer acc.Close()
	err = acc.Atomic("create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("create table Service (data blob)")
		return err
	})
	require.NoError(t, err)

	anotherAcc, err := MakeAccessor(filepath.Join(dir, "fn2.db"), false, true)
	require.NoError(t, err)
	defer anotherAcc.Close()
	var nrows int
	require.Error(t, anotherAcc.Handle.Get(&nrows, "select count(*) from Service"))
}

func TestAtomicRollback(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc, err := MakeAccessor(filepath.Join(t.TempDir(), "rollback.sqlite3"), false, false)
	require.NoError(t, err)
	defer acc.Close()

	err = acc.Atomic("create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("CREATE TABLE foo (a INTEGER, b INTEGER)")
		return err
	})
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = acc.Atomic("fail", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO foo (a, b) VALUES (?, ?)", 1, 1)
		require.NoError(t, err)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	err = acc.Atomic("panic", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO foo (a, b) VALUES (?, ?)", 2, 2)
		require.NoError(t, err)
		panic(fmt.Sprintf("handler blew up after %d rows", 1))
	})
	require.ErrorContains(t, err, "handler blew up")

	var nrows int64
	require.NoError(t, acc.Handle.Get(&nrows, "SELECT COUNT(*) FROM foo"))
	require.Zero(t, nrows)
}

func TestDBConcurrency(t *testing.T) {
	partitiontest.PartitionTest(t)

	fn := filepath.Join(t.TempDir(), "concurrency.sqlite3")
	acc, err := MakeAccessor(fn, false, false)
	require.NoError(t, err)
	defer acc.Close()

	acc2, err := MakeAccessor(fn, true, false)
	require.NoError(t, err)
	defer acc2.Close()

	err = acc.Atomic("create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.Exec("CREATE TABLE foo (a INTEGER, b INTEGER)")
		if err != nil {
			return err
		}
		_, err = tx.Exec("INSERT INTO foo (a, b) VALUES (?, ?)", 1, 1)
		return err
	})
	require.NoError(t, err)

	c1 := make(chan struct{})
	c2 := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- acc.Atomic("writer", func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.Exec("INSERT INTO foo (a, b) VALUES (?, ?)", 2, 2)
			if err != nil {
				return err
			}
			c1 <- struct{}{}
			<-c2
			_, err = tx.Exec("INSERT INTO foo (a, b) VALUES (?, ?)", 3, 3)
			return err
		})
	}()

	<-c1
	countRows := func() (nrows int64) {
		err := acc2.Atomic("count", func(ctx context.Context, tx *sqlx.Tx) error {
			return tx.Get(&nrows, "SELECT COUNT(*) FROM foo")
		})
		require.NoError(t, err)
		return
	}
	require.EqualValues(t, 1, countRows())

	c2 <- struct{}{}
	require.NoError(t, <-done)
	require.EqualValues(t, 3, countRows())
}

func TestVersioning(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc, err := MakeAccessor(filepath.Join(t.TempDir(), "fn.db"), false, true)
	require.NoError(t, err)
	defer acc.Close()

	err = acc.Atomic("versioning", func(ctx context.Context, tx *sqlx.Tx) error {
		ver, err := GetUserVersion(ctx, tx)
		require.NoError(t, err)
		require.Equal(t, int32(0), ver)

		previousVersion, err := SetUserVersion(ctx, tx, 5)
		require.NoError(t, err)
		require.Equal(t, int32(0), previousVersion)

		previousVersion, err = SetUserVersion(ctx, tx, 9)
		require.NoError(t, err)
		require.Equal(t, int32(5), previousVersion)

		// check that expired context doesn't work:
		expiredContext, expiredContextCancelFunc := context.WithCancel(ctx)
		expiredContextCancelFunc()
		_, err = GetUserVersion(expiredContext, tx)
		require.Equal(t, expiredContext.Err(), err)
		return nil
	})
	require.NoError(t, err)
}
