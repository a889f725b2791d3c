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

package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/algorand/testwax/util/codecs"
)

// ExecParamsFilename is the optional file in the data directory overriding
// the execution limits.
const ExecParamsFilename = "exec.json"

// ExecParams are the resource limits and costs the host enforces on every
// transaction. They play the role a chain's consensus parameters would.
type ExecParams struct {
	// MaxTxnComputeUnits is the compute budget of one transaction, inline
	// actions included. Running out fails the whole transaction.
	MaxTxnComputeUnits uint64

	// ActionCost is charged once per dispatched action.
	ActionCost uint64

	// RowReadCost is charged per row lookup or ordered seek.
	RowReadCost uint64

	// RowWriteCost is charged per row insert, update or removal.
	RowWriteCost uint64

	// CheckpointCost is charged when a contract reports progress through a loop.
	CheckpointCost uint64

	// RAMQuota is the number of storage bytes an account may be billed for,
	// unless genesis overrides it for that account.
	RAMQuota uint64

	// RowOverhead is the number of bytes billed per row on top of its encoding.
	RowOverhead uint64

	// MaxInlineDepth bounds how deep inline actions may nest.
	MaxInlineDepth int

	// MaxActionsPerTxn bounds the number of top-level actions.
	MaxActionsPerTxn int

	// MaxActionDataBytes bounds the packed arguments of one action.
	MaxActionDataBytes int

	// MaxTxnLifetime bounds how far in the future a transaction may expire.
	MaxTxnLifetime time.Duration
}

// DefaultExecParams returns the limits used when exec.json is absent.
func DefaultExecParams() ExecParams {
	return ExecParams{
		MaxTxnComputeUnits: 200000,
		ActionCost:         100,
		RowReadCost:        10,
		RowWriteCost:       50,
		CheckpointCost:     1,
		RAMQuota:           64 * 1024,
		RowOverhead:        112,
		MaxInlineDepth:     4,
		MaxActionsPerTxn:   16,
		MaxActionDataBytes: 4096,
		MaxTxnLifetime:     time.Hour,
	}
}

// Validate rejects parameter sets the executor cannot run with.
func (p ExecParams) Validate() error {
	if p.MaxTxnComputeUnits == 0 {
		return errors.New("exec params: MaxTxnComputeUnits must be positive")
	}
	if p.MaxInlineDepth < 0 {
		return errors.New("exec params: MaxInlineDepth must not be negative")
	}
	if p.MaxActionsPerTxn <= 0 {
		return errors.New("exec params: MaxActionsPerTxn must be positive")
	}
	if p.MaxActionDataBytes <= 0 {
		return errors.New("exec params: MaxActionDataBytes must be positive")
	}
	return nil
}

// LoadExecParams merges dataDir/exec.json over the defaults. A missing
// file yields the defaults.
func LoadExecParams(dataDir string) (ExecParams, error) {
	params := DefaultExecParams()
	err := codecs.LoadObjectFromFile(filepath.Join(dataDir, ExecParamsFilename), &params)
	if errors.Is(err, fs.ErrNotExist) {
		return params, nil
	}
	if err != nil {
		return params, err
	}
	return params, params.Validate()
}

// SaveExecParams writes the non-default parameters to dataDir/exec.json.
func SaveExecParams(dataDir string, params ExecParams) error {
	return codecs.SaveNonDefaultValuesToFile(filepath.Join(dataDir, ExecParamsFilename), params, DefaultExecParams(), nil, true)
}

func saveNonDefaultValuesToFile(filename string, object, defaultObject interface{}, alwaysInclude []string) error {
	return codecs.SaveNonDefaultValuesToFile(filename, object, defaultObject, alwaysInclude, true)
}
