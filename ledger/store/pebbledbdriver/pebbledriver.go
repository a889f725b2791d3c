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

package pebbledbdriver

import (
	"errors"
	"path/filepath"

	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/util/kvstore"
)

type kvStore struct {
	kvs kvstore.KVStore
}

// Open opens a Pebble db database under dbdir
func Open(dbdir string, inMem bool, log logging.Logger) (store.Store, error) {
	kvs, err := kvstore.NewKVStore("pebbledb", filepath.Join(dbdir, "ledger"), inMem)
	if err != nil {
		return nil, err
	}
	log.Debugf("pebbledbdriver: opened %s (in memory: %v)", dbdir, inMem)
	return &kvStore{kvs: kvs}, nil
}

func mapPebbleErrors(err error) error {
	if errors.Is(err, kvstore.ErrNotFound) {
		return store.ErrNotFound
	}
	return err
}

// Get implements store.Store
func (s *kvStore) Get(key []byte) ([]byte, error) {
	value, err := s.kvs.Get(key)
	return value, mapPebbleErrors(err)
}

// First implements store.Store
func (s *kvStore) First(start, end []byte) (key, value []byte, found bool, err error) {
	iter := s.kvs.NewIterator(start, end)
	defer iter.Close()
	if !iter.Valid() {
		return nil, nil, false, nil
	}
	value, err = iter.Value()
	if err != nil {
		return nil, nil, false, err
	}
	return iter.Key(), value, true, nil
}

// Scan implements store.Store
func (s *kvStore) Scan(start, end []byte, fn store.ScanFn) (err error) {
	iter := s.kvs.NewIterator(start, end)
	defer func() {
		closeErr := iter.Close()
		if err == nil {
			err = closeErr
		}
	}()
	for ; iter.Valid(); iter.Next() {
		var value []byte
		value, err = iter.Value()
		if err != nil {
			return err
		}
		err = fn(iter.Key(), value)
		if errors.Is(err, store.ErrStopScan) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Commit implements store.Store
func (s *kvStore) Commit(writes []store.Write) error {
	batch := s.kvs.NewBatch()
	defer batch.Cancel()
	for _, w := range writes {
		var err error
		if w.Delete {
			err = batch.Delete(w.Key)
		} else {
			err = batch.Set(w.Key, w.Value)
		}
		if err != nil {
			return err
		}
	}
	return batch.Commit()
}

// Close implements store.Store
func (s *kvStore) Close() error {
	return s.kvs.Close()
}
