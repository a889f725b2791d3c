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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/logging"

	// contracts the host can deploy
	_ "github.com/algorand/testwax/contracts/testwax"
)

var log = logging.Base()

var dataDir string

var versionCheck bool

// endpoint and apiToken select a running waxd instead of the data directory.
var (
	endpoint string
	apiToken string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Flags().BoolVarP(&versionCheck, "version", "v", false, "Display current build version and exit")

	// init.go
	rootCmd.AddCommand(initCmd)

	// account.go
	rootCmd.AddCommand(accountCmd)

	// push.go
	rootCmd.AddCommand(pushCmd)

	// query.go
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(ramCmd)
	rootCmd.AddCommand(statusCmd)

	// serve.go
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringVarP(&dataDir, "datadir", "d", "", "Data directory for the chain")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Talk to the waxd at this address instead of opening the data directory")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API token for --endpoint")
}

var rootCmd = &cobra.Command{
	Use:   "testwax",
	Short: "CLI for a single-host testwax chain",
	Long:  `testwax creates a data directory holding a chain, pushes signed actions to the contracts deployed on it, queries their tables, and serves the chain over REST.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if versionCheck {
			fmt.Println(config.FormatVersionAndLicense())
			return
		}
		//If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logging.Warn)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "The current version of testwax",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.FormatVersionAndLicense())
	},
}

func resolveDataDir() string {
	// If not specified on cmdline with '-d', look for default in environment.
	dir := dataDir
	if dir == "" {
		dir = os.Getenv("TESTWAX_DATA")
	}
	return dir
}

func ensureDataDir() string {
	dir := resolveDataDir()
	if dir == "" {
		reportErrorln(errorNoDataDirectory)
	}
	return dir
}

var (
	infoColor = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

var stdout io.Writer = os.Stdout

func reportInfof(format string, args ...interface{}) {
	infoColor.Fprintf(stdout, format+"\n", args...)
}

func reportWarnf(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func reportErrorln(args ...interface{}) {
	errColor.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func reportErrorf(format string, args ...interface{}) {
	errColor.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
