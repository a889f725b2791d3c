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
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/protocol"
)

func compactJSON(js []byte) []byte {
	var buf bytes.Buffer
	if json.Compact(&buf, js) != nil {
		return js
	}
	return buf.Bytes()
}

func parseNameArgs(args []string) []basics.Name {
	names := make([]basics.Name, len(args))
	for i, a := range args {
		name, err := basics.NameFromString(a)
		if err != nil {
			reportErrorf(errorParseName, a, err)
		}
		names[i] = name
	}
	return names
}

var tableCmd = &cobra.Command{
	Use:   "table <contract> <scope> <table>",
	Short: "Print the rows of a contract table",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		names := parseNameArgs(args)
		client := ensureClient()
		defer client.Close()

		resp, err := client.Table(names[0], names[1], names[2])
		if err != nil {
			client.Close()
			reportErrorf(errorRequestFail, err)
		}
		os.Stdout.Write(protocol.EncodeJSON(resp))
		fmt.Println()
	},
}

var ramCmd = &cobra.Command{
	Use:   "ram <account>",
	Short: "Print the RAM billed to an account and its quota",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		names := parseNameArgs(args)
		client := ensureClient()
		defer client.Close()

		resp, err := client.RAM(names[0])
		if err != nil {
			client.Close()
			reportErrorf(errorRequestFail, err)
		}
		fmt.Printf("%s: %d / %d bytes\n", resp.Account, resp.Usage, resp.Quota)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the chain status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureClient()
		defer client.Close()

		status, err := client.Status()
		if err != nil {
			client.Close()
			reportErrorf(errorRequestFail, err)
		}
		fmt.Printf("Chain: %s\nChain ID: %s\nStorage: %s (in-memory %v)\n", status.ChainName, status.ChainID, status.StorageEngine, status.InMemory)
		for _, dep := range status.Deployments {
			fmt.Printf("Contract: %s on %s\n", dep.Code, dep.Account)
		}
		fmt.Printf("Transactions applied: %d, rejected: %d\n", status.TransactionsApplied, status.TransactionsRejected)
	},
}
