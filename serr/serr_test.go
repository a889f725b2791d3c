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

package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/test/partitiontest"
)

var errCause = errors.New("quota exceeded")

func TestWrapKeepsCause(t *testing.T) {
	partitiontest.PartitionTest(t)

	err := Wrap(errCause, "action failed", "action", "useram", "index", 0)
	require.ErrorIs(t, err, errCause)
	require.Contains(t, err.Error(), "action failed: quota exceeded")
	require.Contains(t, err.Error(), "action=useram")
	require.Contains(t, err.Error(), "index=0")

	v, ok := Attr(err, "action")
	require.True(t, ok)
	require.Equal(t, "useram", v)
}

func TestExtend(t *testing.T) {
	partitiontest.PartitionTest(t)

	err := Extend(errCause, "receiver", "testwax")
	require.ErrorIs(t, err, errCause)
	require.Equal(t, `msg="quota exceeded" receiver=testwax`, err.Error())

	err2 := Extend(err, "txid", "ABC")
	require.Same(t, err, err2)
	v, ok := Attr(err2, "txid")
	require.True(t, ok)
	require.Equal(t, "ABC", v)

	require.Equal(t, "plain", New("plain").Error())

	_, ok = Attr(errCause, "txid")
	require.False(t, ok)
}
