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
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/data/bookkeeping"
)

func init() {
	accountCmd.AddCommand(listCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect the accounts of a data directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		//Fall back
		cmd.HelpFunc()(cmd, args)
	},
}

// accountLines describes each genesis account: key, quota override, whether
// keys.json can sign for it, and the contract deployed on it.
func accountLines(g bookkeeping.Genesis, keys keyring) []string {
	deployed := make(map[string]string, len(g.Deployments))
	for _, dep := range g.Deployments {
		deployed[dep.Account.String()] = dep.Code
	}
	accounts := append([]bookkeeping.GenesisAccount(nil), g.Accounts...)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name.String() < accounts[j].Name.String() })

	lines := make([]string, 0, len(accounts))
	for _, acct := range accounts {
		line := fmt.Sprintf("%-12s %s", acct.Name, acct.PublicKey)
		if acct.RAMQuota != 0 {
			line += fmt.Sprintf(" ram=%d", acct.RAMQuota)
		}
		if _, ok := keys[acct.Name]; ok {
			line += " [signer]"
		}
		if code, ok := deployed[acct.Name.String()]; ok {
			line += " [" + code + "]"
		}
		lines = append(lines, line)
	}
	return lines
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the genesis accounts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := ensureDataDir()
		g, err := bookkeeping.LoadGenesisFromFile(filepath.Join(dir, config.GenesisJSONFile))
		if err != nil {
			reportErrorf(errorReadingGenesis, err)
		}
		keys, err := loadKeys(dir)
		if err != nil {
			reportWarnf(errorReadingKey, err)
		}
		for _, line := range accountLines(g, keys) {
			fmt.Println(line)
		}
	},
}
