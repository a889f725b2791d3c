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
	"fmt"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/ledger/store/pebbledbdriver"
	"github.com/algorand/testwax/ledger/store/sqlitedriver"
	"github.com/algorand/testwax/logging"
)

// OpenStore opens the store driver named by engine under dir.
func OpenStore(engine string, dir string, inMem bool, log logging.Logger) (store.Store, error) {
	switch engine {
	case config.StorageEnginePebble, "":
		return pebbledbdriver.Open(dir, inMem, log)
	case config.StorageEngineSQLite:
		return sqlitedriver.Open(dir, inMem, log)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}
}
