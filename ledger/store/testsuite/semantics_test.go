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

package testsuite

import (
	"errors"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/ledger/store"
)

func init() {
	// register tests that will run on each store implementation
	registerTest("get-commit", CustomTestGetCommit)
	registerTest("ordering", CustomTestOrdering)
	registerTest("first", CustomTestFirst)
	registerTest("scan-stop", CustomTestScanStop)
	registerTest("prefix-end", CustomTestPrefixEnd)
}

// CustomTestGetCommit checks that committed values are visible and deletes remove them.
func CustomTestGetCommit(t *customT) {
	_, err := t.db.Get([]byte("missing"))
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, t.db.Commit([]store.Write{set("a", "1"), set("b", "2")}))
	v, err := t.db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, t.db.Commit([]store.Write{set("a", "3"), del("b"), del("never-written")}))
	v, err = t.db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("3"), v)
	_, err = t.db.Get([]byte("b"))
	require.ErrorIs(t, err, store.ErrNotFound)

	// later writes in one batch win
	require.NoError(t, t.db.Commit([]store.Write{set("c", "x"), set("c", "y")}))
	v, err = t.db.Get([]byte("c"))
	require.NoError(t, err)
	require.Equal(t, []byte("y"), v)
}

// CustomTestOrdering checks that keys are ordered bytewise, as big-endian integers rely on.
func CustomTestOrdering(t *customT) {
	writes := []store.Write{
		{Key: []byte{'r', 0x00, 0x02}, Value: []byte("two")},
		{Key: []byte{'r', 0x01, 0x00}, Value: []byte("256")},
		{Key: []byte{'r', 0x00, 0x01}, Value: []byte("one")},
		{Key: []byte{'r', 0xff}, Value: []byte("ff")},
		{Key: []byte{'s'}, Value: []byte("other")},
	}
	require.NoError(t, t.db.Commit(writes))

	var values []string
	err := t.db.Scan([]byte{'r'}, store.PrefixEnd([]byte{'r'}), func(key, value []byte) error {
		values = append(values, string(value))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two", "256", "ff"}, values)

	require.Equal(t, []string{"s=other"}, collect(t, []byte{'s'}, nil))
}

// CustomTestFirst checks range bounds of First.
func CustomTestFirst(t *customT) {
	_, _, found, err := t.db.First([]byte("a"), []byte("z"))
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, t.db.Commit([]store.Write{set("b", "1"), set("d", "2")}))

	key, value, found, err := t.db.First([]byte("a"), []byte("z"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", string(key))
	require.Equal(t, "1", string(value))

	key, _, found, err = t.db.First([]byte("c"), nil)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "d", string(key))

	// end is exclusive
	_, _, found, err = t.db.First([]byte("c"), []byte("d"))
	require.NoError(t, err)
	require.False(t, found)
}

// CustomTestScanStop checks that ErrStopScan ends a scan quietly and other errors propagate.
func CustomTestScanStop(t *customT) {
	require.NoError(t, t.db.Commit([]store.Write{set("k1", "a"), set("k2", "b"), set("k3", "c")}))

	seen := 0
	err := t.db.Scan([]byte("k"), nil, func(key, value []byte) error {
		seen++
		if seen == 2 {
			return store.ErrStopScan
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)

	errBoom := errors.New("boom")
	err = t.db.Scan([]byte("k"), nil, func(key, value []byte) error {
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	require.Equal(t, []string{"k1=a", "k2=b", "k3=c"}, collect(t, nil, nil))
}

// CustomTestPrefixEnd checks prefix ranges exclude neighbouring prefixes.
func CustomTestPrefixEnd(t *customT) {
	require.Equal(t, []byte("ab"), store.PrefixEnd([]byte("aa")))
	require.Equal(t, []byte{0x01}, store.PrefixEnd([]byte{0x00, 0xff}))
	require.Nil(t, store.PrefixEnd([]byte{0xff, 0xff}))

	require.NoError(t, t.db.Commit([]store.Write{set("aa1", "x"), set("ab", "y"), set("a", "z")}))
	require.Equal(t, []string{"aa1=x"}, collect(t, []byte("aa"), store.PrefixEnd([]byte("aa"))))
}
