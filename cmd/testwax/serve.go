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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/daemon/waxd"
	"github.com/algorand/testwax/data/bookkeeping"
)

var serveListen string

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Override the EndpointAddress of config.json")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run waxd on the data directory until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := ensureDataDir()
		absDir, err := filepath.Abs(dir)
		if err != nil {
			reportErrorf(errorDirectoryNotExist, dir)
		}
		if _, err := os.Stat(absDir); err != nil {
			reportErrorf(errorDirectoryNotExist, absDir)
		}

		cfg, err := config.LoadConfigFromDisk(absDir)
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		if serveListen != "" {
			cfg.EndpointAddress = serveListen
		}
		genesis, err := bookkeeping.LoadGenesisFromFile(filepath.Join(absDir, config.GenesisJSONFile))
		if err != nil {
			reportErrorf(errorReadingGenesis, err)
		}

		s := waxd.Server{RootPath: absDir, Genesis: genesis}
		if err := s.Initialize(cfg); err != nil {
			reportErrorf(errorOpeningNode, err)
		}
		reportInfof(infoServing, genesis.ChainName, cfg.EndpointAddress)
		if err := s.Start(); err != nil {
			reportErrorf(errorRequestFail, err)
		}
	},
}
