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

// Package node hosts a ledger in a data directory: it owns the directory
// lock, the configuration and the store, and is what the REST API and the
// command line tool talk to.
package node

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/gofrs/flock"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/logging"
)

// ErrDataDirLocked is returned when another process holds the data directory.
var ErrDataDirLocked = errors.New("data directory is locked; is another instance running in this data directory?")

// ErrNoContract is returned when querying tables of an account without code.
var ErrNoContract = errors.New("account has no contract")

// StatusReport represents the current basic status of the node
type StatusReport struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ChainName     string                          `codec:"chain"`
	ChainID       crypto.Digest                   `codec:"chain-id"`
	StorageEngine string                          `codec:"storage"`
	InMemory      bool                            `codec:"in-memory"`
	Accounts      []basics.Name                   `codec:"accounts"`
	Deployments   []bookkeeping.GenesisDeployment `codec:"deployments"`
	StartedAt     time.Time                       `codec:"started"`

	TransactionsApplied  uint64 `codec:"applied"`
	TransactionsRejected uint64 `codec:"rejected"`
}

// WaxNode is a ledger opened over a locked data directory.
type WaxNode struct {
	mu deadlock.Mutex

	rootDir  string
	config   config.Local
	genesis  bookkeeping.Genesis
	ledger   *ledger.Ledger
	fileLock *flock.Flock
	log      logging.Logger

	startedAt time.Time
	applied   uint64
	rejected  uint64
	closed    bool
}

// Open loads config.json and genesis.json from rootDir and makes a node.
func Open(rootDir string, log logging.Logger) (*WaxNode, error) {
	cfg, err := config.LoadConfigFromDisk(rootDir)
	if err != nil {
		return nil, fmt.Errorf("node: cannot load config: %w", err)
	}
	genesis, err := bookkeeping.LoadGenesisFromFile(filepath.Join(rootDir, config.GenesisJSONFile))
	if err != nil {
		return nil, fmt.Errorf("node: cannot load genesis: %w", err)
	}
	return MakeNode(log, rootDir, cfg, genesis)
}

// MakeNode locks rootDir and opens the ledger store for genesis under
// rootDir/<chain name>. Execution parameters come from rootDir/exec.json.
func MakeNode(log logging.Logger, rootDir string, cfg config.Local, genesis bookkeeping.Genesis) (*WaxNode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(rootDir, 0700); err != nil {
		return nil, err
	}

	fileLock := flock.New(filepath.Join(rootDir, config.LockFilename))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("node: unexpected failure in establishing %s: %w", config.LockFilename, err)
	}
	if !locked {
		return nil, ErrDataDirLocked
	}

	n, err := makeLocked(log, rootDir, cfg, genesis, fileLock)
	if err != nil {
		fileLock.Unlock()
		return nil, err
	}
	return n, nil
}

func makeLocked(log logging.Logger, rootDir string, cfg config.Local, genesis bookkeeping.Genesis, fileLock *flock.Flock) (*WaxNode, error) {
	params, err := config.LoadExecParams(rootDir)
	if err != nil {
		return nil, err
	}

	storeDir := filepath.Join(rootDir, genesis.ChainName)
	if !cfg.InMemory {
		if err := os.MkdirAll(storeDir, 0700); err != nil {
			return nil, fmt.Errorf("node: unable to create store directory %s: %w", storeDir, err)
		}
	}
	st, err := ledger.OpenStore(cfg.StorageEngine, storeDir, cfg.InMemory, log)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Open(st, genesis, params, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	log.Infof("node: %s opened in %s (storage %s, in-memory %v)", genesis.ChainName, rootDir, cfg.StorageEngine, cfg.InMemory)
	return &WaxNode{
		rootDir:   rootDir,
		config:    cfg,
		genesis:   genesis,
		ledger:    l,
		fileLock:  fileLock,
		log:       log,
		startedAt: time.Now(),
	}, nil
}

// Apply executes a signed transaction against the ledger.
func (node *WaxNode) Apply(ctx context.Context, stxn transactions.SignedTxn) (ledger.Receipt, error) {
	if err := node.checkOpen(); err != nil {
		return ledger.Receipt{}, err
	}
	receipt, err := node.ledger.Apply(ctx, stxn)

	node.mu.Lock()
	defer node.mu.Unlock()
	if err != nil {
		node.rejected++
	} else {
		node.applied++
	}
	return receipt, err
}

// Rows returns the decoded rows of a contract table.
func (node *WaxNode) Rows(code, scope, table basics.Name) ([]interface{}, error) {
	if err := node.checkOpen(); err != nil {
		return nil, err
	}
	if _, _, ok := node.ledger.Contract(code); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, code)
	}
	return node.ledger.DecodedRows(code, scope, table)
}

// RAMUsage returns the bytes billed to account and its quota.
func (node *WaxNode) RAMUsage(account basics.Name) (usage uint64, quota uint64, err error) {
	if err = node.checkOpen(); err != nil {
		return
	}
	usage, err = node.ledger.RAMUsage(account)
	if err != nil {
		return
	}
	return usage, node.ledger.RAMQuota(account), nil
}

// Status returns a summary of the hosted chain.
func (node *WaxNode) Status() (s StatusReport, err error) {
	if err = node.checkOpen(); err != nil {
		return
	}
	node.mu.Lock()
	defer node.mu.Unlock()

	s.ChainName = node.genesis.ChainName
	s.ChainID = node.ledger.ChainID()
	s.StorageEngine = node.config.StorageEngine
	s.InMemory = node.config.InMemory
	s.Accounts = node.ledger.Accounts()
	deployments := node.ledger.Deployments()
	for _, account := range s.Accounts {
		if code, ok := deployments[account]; ok {
			s.Deployments = append(s.Deployments, bookkeeping.GenesisDeployment{Account: account, Code: code})
		}
	}
	s.StartedAt = node.startedAt
	s.TransactionsApplied = node.applied
	s.TransactionsRejected = node.rejected
	return
}

// Ledger returns the hosted ledger.
func (node *WaxNode) Ledger() *ledger.Ledger {
	return node.ledger
}

// Config returns a copy of the node's Local configuration
func (node *WaxNode) Config() config.Local {
	return node.config
}

// Genesis returns the node's genesis.
func (node *WaxNode) Genesis() bookkeeping.Genesis {
	return node.genesis
}

// RootDir returns the data directory.
func (node *WaxNode) RootDir() string {
	return node.rootDir
}

func (node *WaxNode) checkOpen() error {
	node.mu.Lock()
	defer node.mu.Unlock()
	if node.closed {
		return fmt.Errorf("node: %w", ledgercore.ErrLedgerClosed)
	}
	return nil
}

// Close closes the ledger and releases the data directory lock.
func (node *WaxNode) Close() error {
	node.mu.Lock()
	if node.closed {
		node.mu.Unlock()
		return nil
	}
	node.closed = true
	node.mu.Unlock()

	err := node.ledger.Close()
	if unlockErr := node.fileLock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	node.log.Infof("node: %s closed", node.genesis.ChainName)
	return err
}
