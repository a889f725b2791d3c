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
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/node"
	"github.com/algorand/testwax/protocol"
)

var (
	pushPermissions []string
	pushLifetime    time.Duration
	pushKeysDir     string
	pushJSON        bool
)

func init() {
	pushCmd.Flags().StringArrayVarP(&pushPermissions, "permission", "p", nil, "Authorization as actor[@permission]; repeat for several")
	pushCmd.Flags().DurationVar(&pushLifetime, "lifetime", time.Minute, "How long the transaction stays valid")
	pushCmd.Flags().StringVar(&pushKeysDir, "keys", "", "Directory holding keys.json (defaults to the data directory)")
	pushCmd.Flags().BoolVar(&pushJSON, "json", false, "Print the receipt as JSON")
}

// contractOn returns the contract deployed on account according to status.
func contractOn(status node.StatusReport, account basics.Name) (contract.Contract, error) {
	for _, dep := range status.Deployments {
		if dep.Account != account {
			continue
		}
		c, ok := contract.Lookup(dep.Code)
		if !ok {
			return nil, fmt.Errorf(errorUnknownContractCode, dep.Code, contract.Codes())
		}
		return c, nil
	}
	return nil, fmt.Errorf(errorNoContract, account)
}

// buildTransaction packs argsJSON for account::action and signs a
// transaction carrying it with the key of every authorizing actor.
func buildTransaction(status node.StatusReport, keys keyring, account, action basics.Name, argsJSON string, perms []string, now time.Time, lifetime time.Duration) (transactions.SignedTxn, error) {
	if len(perms) == 0 {
		return transactions.SignedTxn{}, errors.New(errorNoAuthorization)
	}
	c, err := contractOn(status, account)
	if err != nil {
		return transactions.SignedTxn{}, err
	}
	data, err := c.PackJSON(action, []byte(argsJSON))
	if err != nil {
		return transactions.SignedTxn{}, fmt.Errorf(errorPackingArgs, action, err)
	}

	act := transactions.Action{Account: account, Name: action, Data: data}
	for _, p := range perms {
		pl, err := basics.ParsePermissionLevel(p)
		if err != nil {
			return transactions.SignedTxn{}, fmt.Errorf(errorParsePermission, p, err)
		}
		act.Authorization = append(act.Authorization, pl)
	}

	stxn := transactions.SignedTxn{Txn: transactions.MakeTransaction(status.ChainID, now, lifetime, act)}
	signed := make(map[basics.Name]bool)
	for _, pl := range act.Authorization {
		if signed[pl.Actor] {
			continue
		}
		sk, ok := keys[pl.Actor]
		if !ok {
			return transactions.SignedTxn{}, fmt.Errorf(errorNoKey, pl.Actor, KeysFilename)
		}
		stxn.AddSignature(sk)
		signed[pl.Actor] = true
	}
	return stxn, nil
}

// rejectionReason is the ledger's reason for err, as reported locally or by waxd.
func rejectionReason(err error) string {
	var rerr *remoteError
	if errors.As(err, &rerr) && rerr.resp.Reason != "" {
		return rerr.resp.Reason
	}
	return ledgercore.Reason(err)
}

// describeTraces renders each executed action with its arguments decoded
// by the receiving contract when it is known.
func describeTraces(status node.StatusReport, receipt ledger.Receipt) []string {
	lines := make([]string, 0, len(receipt.Traces))
	for _, tr := range receipt.Traces {
		args := fmt.Sprintf("%d bytes", len(tr.Action.Data))
		if c, err := contractOn(status, tr.Action.Account); err == nil {
			if js, err := c.UnpackJSON(tr.Action.Name, tr.Action.Data); err == nil {
				args = string(compactJSON(js))
			}
		}
		note := ""
		if tr.NoCode {
			note = " (no contract)"
		}
		lines = append(lines, fmt.Sprintf("%*s#%d %s %s cpu=%d%s", 2*tr.Depth, "", tr.Index, tr.Action, args, tr.ComputeUsed, note))
	}
	return lines
}

var pushCmd = &cobra.Command{
	Use:   "push <contract> <action> <json-args>",
	Short: "Sign and push an action",
	Long: `Sign and push an action to the contract deployed on <contract>. Arguments are a JSON array in declaration order, for example
  testwax push testwax update '["alice","hello",false]' -p alice`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		account, err := basics.NameFromString(args[0])
		if err != nil {
			reportErrorf(errorParseName, args[0], err)
		}
		action, err := basics.NameFromString(args[1])
		if err != nil {
			reportErrorf(errorParseName, args[1], err)
		}

		keysDir := pushKeysDir
		if keysDir == "" {
			keysDir = ensureDataDir()
		}
		keys, err := loadKeys(keysDir)
		if err != nil {
			reportErrorf(errorReadingKey, err)
		}

		client := ensureClient()
		defer client.Close()
		status, err := client.Status()
		if err != nil {
			reportErrorf(errorRequestFail, err)
		}
		stxn, err := buildTransaction(status, keys, account, action, args[2], pushPermissions, time.Now(), pushLifetime)
		if err != nil {
			reportErrorln(err)
		}

		receipt, err := client.Send(context.Background(), stxn)
		if err != nil {
			client.Close()
			reportErrorf(errorTransactionRejected, rejectionReason(err), err)
		}
		if pushJSON {
			os.Stdout.Write(protocol.EncodeJSON(receipt))
			fmt.Println()
			return
		}
		reportInfof(infoTransactionApplied, receipt.Txid, len(receipt.Traces), receipt.ComputeUsed, receipt.RowsWritten)
		for _, line := range describeTraces(status, receipt) {
			fmt.Println(line)
		}
		for _, d := range receipt.RAMDeltas {
			fmt.Printf("ram %s %+d\n", d.Account, d.Delta)
		}
	},
}
