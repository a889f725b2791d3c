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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
)

var (
	initChainName  string
	initAccounts   []string
	initDeploys    []string
	initEngine     string
	initRAMQuota   uint64
	initAPIToken   string
	initListenAddr string
)

func init() {
	initCmd.Flags().StringVar(&initChainName, "chain", "testwax-local", "Chain name recorded in the genesis")
	initCmd.Flags().StringSliceVarP(&initAccounts, "account", "a", []string{"testwax", "logger", "alice", "bob", "carol"}, "Accounts to create, each with a fresh key")
	initCmd.Flags().StringSliceVar(&initDeploys, "deploy", []string{"testwax=testwax"}, "Deployments as account=code")
	initCmd.Flags().StringVar(&initEngine, "engine", config.StorageEnginePebble, "Storage engine: pebbledb or sqlite")
	initCmd.Flags().Uint64Var(&initRAMQuota, "ramquota", 0, "Per-account RAM quota in bytes (0 keeps the default)")
	initCmd.Flags().StringVar(&initAPIToken, "apitoken", "", "API token waxd requires (empty disables authentication)")
	initCmd.Flags().StringVar(&initListenAddr, "listen", "", "Address waxd listens on")
}

// initOptions describes the data directory initDataDir creates.
type initOptions struct {
	chainName  string
	accounts   []basics.Name
	deploys    []bookkeeping.GenesisDeployment
	cfg        config.Local
	ramQuota   uint64
	now        time.Time
	seedSource func() (crypto.Seed, error)
}

func parseDeploy(s string) (bookkeeping.GenesisDeployment, error) {
	account, code, ok := strings.Cut(s, "=")
	if !ok {
		return bookkeeping.GenesisDeployment{}, fmt.Errorf("deployment %q is not account=code", s)
	}
	name, err := basics.NameFromString(account)
	if err != nil {
		return bookkeeping.GenesisDeployment{}, fmt.Errorf(errorParseName, account, err)
	}
	if _, ok := contract.Lookup(code); !ok {
		return bookkeeping.GenesisDeployment{}, fmt.Errorf(errorUnknownContractCode, code, strings.Join(contract.Codes(), ", "))
	}
	return bookkeeping.GenesisDeployment{Account: name, Code: code}, nil
}

// initDataDir writes config.json, genesis.json and keys.json into dir.
func initDataDir(dir string, opts initOptions) (bookkeeping.Genesis, error) {
	genesisPath := filepath.Join(dir, config.GenesisJSONFile)
	if _, err := os.Stat(genesisPath); err == nil {
		return bookkeeping.Genesis{}, fmt.Errorf(errorDataDirInitialized, dir, config.GenesisJSONFile)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return bookkeeping.Genesis{}, err
	}

	g := bookkeeping.Genesis{
		ChainName:   opts.chainName,
		Timestamp:   opts.now.Unix(),
		Deployments: opts.deploys,
	}
	seeds := make(map[basics.Name]crypto.Seed, len(opts.accounts))
	for _, name := range opts.accounts {
		seed, err := opts.seedSource()
		if err != nil {
			return bookkeeping.Genesis{}, err
		}
		seeds[name] = seed
		g.Accounts = append(g.Accounts, bookkeeping.GenesisAccount{
			Name:      name,
			PublicKey: crypto.GenerateSignatureSecrets(seed).PublicKey,
			RAMQuota:  opts.ramQuota,
		})
	}
	if err := g.Validate(); err != nil {
		return bookkeeping.Genesis{}, err
	}

	if err := opts.cfg.SaveToDisk(dir); err != nil {
		return bookkeeping.Genesis{}, fmt.Errorf(errorWritingFile, config.ConfigFilename, err)
	}
	if err := saveKeys(dir, seeds); err != nil {
		return bookkeeping.Genesis{}, fmt.Errorf(errorWritingFile, KeysFilename, err)
	}
	if err := g.SaveToFile(genesisPath); err != nil {
		return bookkeeping.Genesis{}, fmt.Errorf(errorWritingFile, config.GenesisJSONFile, err)
	}
	return g, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a data directory with a fresh genesis and keys",
	Long:  "Create a data directory with a fresh genesis. Every account gets a new key, saved to keys.json next to the genesis.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := ensureDataDir()

		opts := initOptions{
			chainName:  initChainName,
			cfg:        config.GetDefaultLocal(),
			ramQuota:   initRAMQuota,
			now:        time.Now(),
			seedSource: func() (crypto.Seed, error) { return crypto.RandomSeed(nil) },
		}
		opts.cfg.StorageEngine = initEngine
		opts.cfg.APIToken = initAPIToken
		if initListenAddr != "" {
			opts.cfg.EndpointAddress = initListenAddr
		}
		if err := opts.cfg.Validate(); err != nil {
			reportErrorln(err)
		}
		for _, a := range initAccounts {
			name, err := basics.NameFromString(a)
			if err != nil {
				reportErrorf(errorParseName, a, err)
			}
			opts.accounts = append(opts.accounts, name)
		}
		for _, d := range initDeploys {
			dep, err := parseDeploy(d)
			if err != nil {
				reportErrorln(err)
			}
			opts.deploys = append(opts.deploys, dep)
		}

		g, err := initDataDir(dir, opts)
		if err != nil {
			reportErrorln(err)
		}
		accounts := append([]bookkeeping.GenesisAccount(nil), g.Accounts...)
		sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name.String() < accounts[j].Name.String() })
		for _, acct := range accounts {
			reportInfof(infoCreatedAccount, acct.Name, acct.PublicKey)
		}
		for _, dep := range g.Deployments {
			reportInfof(infoDeployed, dep.Code, dep.Account)
		}
		reportInfof(infoInitialized, g.ChainName, g.ID(), dir)
	},
}
