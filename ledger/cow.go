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
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/ledger/store"
)

//   ___________________
// < cow = Copy On Write >
//   -------------------
//          \   ^__^
//           \  (oo)\_______
//              (__)\       )\/\
//                  ||----w |
//                  ||     ||

type cowParent interface {
	lookupRow(key []byte) (value []byte, found bool, err error)
	firstRow(start, end []byte) (key, value []byte, found bool, err error)
	nextPK(key []byte) (uint64, error)
	ramUsage(account basics.Name) (uint64, error)
}

type rowMod struct {
	value   []byte
	deleted bool
}

// stateCow buffers the writes of a transaction, or of one action within
// it, over a parent state. A failed action drops its child; a successful
// one is merged into its parent with commitToParent.
type stateCow struct {
	lookupParent cowParent
	commitParent *stateCow

	rows map[string]rowMod
	seqs map[string]uint64

	// live holds the keys of rows that are live in this layer, sorted
	live []string
	// shadowed caches ordered lookups that walked the parent's rows
	// deleted here. It stays valid because a parent never changes while
	// it has a child.
	shadowed shadowSet

	// ram holds the change in billed bytes per account made in this layer
	ram map[basics.Name]int64

	rowsWritten uint64
}

func makeStateCow(b cowParent) *stateCow {
	return &stateCow{
		lookupParent: b,
		rows:         make(map[string]rowMod),
		seqs:         make(map[string]uint64),
		ram:          make(map[basics.Name]int64),
	}
}

func (cb *stateCow) child() *stateCow {
	c := makeStateCow(cb)
	c.commitParent = cb
	return c
}

func (cb *stateCow) commitToParent() {
	if len(cb.rows) > 0 {
		cb.commitParent.live = mergeLive(cb.commitParent.live, cb.rows)
	}
	for k, mod := range cb.rows {
		cb.commitParent.rows[k] = mod
	}
	for k, next := range cb.seqs {
		cb.commitParent.seqs[k] = next
	}
	for acct, delta := range cb.ram {
		cb.commitParent.ram[acct] += delta
	}
	cb.commitParent.rowsWritten += cb.rowsWritten
}

func (cb *stateCow) lookupRow(key []byte) ([]byte, bool, error) {
	if mod, ok := cb.rows[string(key)]; ok {
		if mod.deleted {
			return nil, false, nil
		}
		return mod.value, true, nil
	}
	return cb.lookupParent.lookupRow(key)
}

// firstRow returns the smallest live key in [start, end), merging this
// layer's rows over the parent's.
func (cb *stateCow) firstRow(start, end []byte) ([]byte, []byte, bool, error) {
	localKey, localValue, haveLocal := cb.firstLocal(start, end)
	if haveLocal {
		// nothing past the local candidate can win
		end = localKey
	}

	from := cb.shadowed.skip(start)
	for end == nil || bytes.Compare(from, end) < 0 {
		pk, pv, found, err := cb.lookupParent.firstRow(from, end)
		if err != nil {
			return nil, nil, false, err
		}
		if !found {
			break
		}
		if _, shadowed := cb.rows[string(pk)]; !shadowed {
			return pk, pv, true, nil
		}
		next := keyAfter(pk)
		cb.shadowed.add(from, next)
		from = cb.shadowed.skip(next)
	}
	if haveLocal {
		return localKey, localValue, true, nil
	}
	return nil, nil, false, nil
}

func (cb *stateCow) firstLocal(start, end []byte) (key, value []byte, found bool) {
	i := sort.SearchStrings(cb.live, string(start))
	if i == len(cb.live) {
		return nil, nil, false
	}
	k := cb.live[i]
	if end != nil && k >= string(end) {
		return nil, nil, false
	}
	return []byte(k), cb.rows[k].value, true
}

func (cb *stateCow) markLive(key string) {
	i := sort.SearchStrings(cb.live, key)
	if i < len(cb.live) && cb.live[i] == key {
		return
	}
	cb.live = append(cb.live, "")
	copy(cb.live[i+1:], cb.live[i:])
	cb.live[i] = key
}

func (cb *stateCow) unmarkLive(key string) {
	i := sort.SearchStrings(cb.live, key)
	if i < len(cb.live) && cb.live[i] == key {
		cb.live = append(cb.live[:i], cb.live[i+1:]...)
	}
}

// mergeLive applies a child's row changes to the parent's sorted live keys.
func mergeLive(live []string, rows map[string]rowMod) []string {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make([]string, 0, len(live)+len(keys))
	i, j := 0, 0
	for i < len(live) || j < len(keys) {
		if j == len(keys) || (i < len(live) && live[i] < keys[j]) {
			merged = append(merged, live[i])
			i++
			continue
		}
		k := keys[j]
		j++
		if i < len(live) && live[i] == k {
			i++
		}
		if !rows[k].deleted {
			merged = append(merged, k)
		}
	}
	return merged
}

// keyRange is the half-open key range [start, end).
type keyRange struct {
	start, end string
}

// shadowSet is a sorted set of disjoint, non-adjacent key ranges in which
// every row of the parent is known to be shadowed by the child.
type shadowSet []keyRange

// skip returns the first key at or after from that is not inside a range.
func (s shadowSet) skip(from []byte) []byte {
	f := string(from)
	i := sort.Search(len(s), func(i int) bool { return s[i].end > f })
	if i < len(s) && s[i].start <= f {
		return []byte(s[i].end)
	}
	return from
}

// add inserts [start, end), merging it with the ranges it overlaps or touches.
func (s *shadowSet) add(start, end []byte) {
	r := keyRange{start: string(start), end: string(end)}
	ranges := *s
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].end >= r.start })
	j := i
	for j < len(ranges) && ranges[j].start <= r.end {
		if ranges[j].start < r.start {
			r.start = ranges[j].start
		}
		if ranges[j].end > r.end {
			r.end = ranges[j].end
		}
		j++
	}
	if j == i+1 {
		ranges[i] = r
		return
	}
	merged := make(shadowSet, 0, len(ranges)-(j-i)+1)
	merged = append(merged, ranges[:i]...)
	merged = append(merged, r)
	merged = append(merged, ranges[j:]...)
	*s = merged
}

// keyAfter is the smallest key greater than key.
func keyAfter(key []byte) []byte {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return next
}

func (cb *stateCow) nextPK(key []byte) (uint64, error) {
	if next, ok := cb.seqs[string(key)]; ok {
		return next, nil
	}
	return cb.lookupParent.nextPK(key)
}

func (cb *stateCow) ramUsage(account basics.Name) (uint64, error) {
	usage, err := cb.lookupParent.ramUsage(account)
	if err != nil {
		return 0, err
	}
	res, overflowed := basics.ApplyDelta(usage, cb.ram[account])
	if overflowed {
		return 0, fmt.Errorf("ram usage of %s overflowed: %d%+d", account, usage, cb.ram[account])
	}
	return res, nil
}

func (cb *stateCow) putRow(key, value []byte) {
	k := string(key)
	if mod, ok := cb.rows[k]; !ok || mod.deleted {
		cb.markLive(k)
	}
	cb.rows[k] = rowMod{value: value}
	cb.rowsWritten++
}

func (cb *stateCow) deleteRow(key []byte) {
	k := string(key)
	if mod, ok := cb.rows[k]; ok && !mod.deleted {
		cb.unmarkLive(k)
	}
	cb.rows[k] = rowMod{deleted: true}
	cb.rowsWritten++
}

func (cb *stateCow) setNextPK(key []byte, next uint64) {
	cb.seqs[string(key)] = next
}

func (cb *stateCow) addRAM(account basics.Name, delta int64) {
	cb.ram[account] += delta
}

// storeWrites flattens the buffered state into one batch for the store,
// in key order.
func (cb *stateCow) storeWrites() ([]store.Write, error) {
	writes := make([]store.Write, 0, len(cb.rows)+len(cb.seqs)+len(cb.ram))
	for k, mod := range cb.rows {
		if mod.deleted {
			writes = append(writes, store.Write{Key: []byte(k), Delete: true})
		} else {
			writes = append(writes, store.Write{Key: []byte(k), Value: mod.value})
		}
	}
	for k, next := range cb.seqs {
		writes = append(writes, store.Write{Key: []byte(k), Value: encodeUint64(next)})
	}
	for acct, delta := range cb.ram {
		if delta == 0 {
			continue
		}
		usage, err := cb.ramUsage(acct)
		if err != nil {
			return nil, err
		}
		if usage == 0 {
			writes = append(writes, store.Write{Key: ramKey(acct), Delete: true})
		} else {
			writes = append(writes, store.Write{Key: ramKey(acct), Value: encodeUint64(usage)})
		}
	}
	sort.Slice(writes, func(i, j int) bool { return bytes.Compare(writes[i].Key, writes[j].Key) < 0 })
	return writes, nil
}

// storeBase is the committed state the outermost cow reads through to.
type storeBase struct {
	st store.Store
}

func (b storeBase) get(key []byte) ([]byte, bool, error) {
	value, err := b.st.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (b storeBase) lookupRow(key []byte) ([]byte, bool, error) {
	return b.get(key)
}

func (b storeBase) firstRow(start, end []byte) ([]byte, []byte, bool, error) {
	return b.st.First(start, end)
}

func (b storeBase) getUint64(key []byte) (uint64, error) {
	value, found, err := b.get(key)
	if err != nil || !found {
		return 0, err
	}
	return decodeUint64(value)
}

func (b storeBase) nextPK(key []byte) (uint64, error) {
	return b.getUint64(key)
}

func (b storeBase) ramUsage(account basics.Name) (uint64, error) {
	return b.getUint64(ramKey(account))
}
