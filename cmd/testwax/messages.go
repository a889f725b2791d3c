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

const (
	// General
	errorNoDataDirectory     = "Data directory not specified.  Please use -d or set $TESTWAX_DATA in your environment. Exiting."
	errorDirectoryNotExist   = "Specified directory '%s' does not exist."
	errorReadingGenesis      = "Cannot read genesis: %s"
	errorOpeningNode         = "Cannot open the node: %s"
	errorRequestFail         = "Error processing command: %s"
	errorParseName           = "Failed to parse name %q: %s"
	errorParsePermission     = "Failed to parse permission level %q: %s"
	errorDataDirInitialized  = "Data directory %s already holds a %s; refusing to overwrite it"
	errorWritingFile         = "Cannot write %s: %s"
	errorUnknownContractCode = "Unknown contract code %q; registered codes: %s"

	// Init
	infoInitialized    = "Initialized chain '%s' (%s) in %s"
	infoCreatedAccount = "Created account %s with key %s"
	infoDeployed       = "Deployed %s on %s"

	// Keys
	errorNoKey      = "No key for %s in %s"
	errorReadingKey = "Cannot read keys: %s"

	// Push
	errorNoContract          = "Account %s has no contract deployed"
	errorPackingArgs         = "Cannot pack arguments of %s: %s"
	errorNoAuthorization     = "At least one -p actor[@permission] is required"
	errorTransactionRejected = "Transaction rejected (%s): %s"
	infoTransactionApplied   = "Transaction %s applied: %d actions, %d compute units, %d rows written"

	// Serve
	infoServing = "Serving %s on %s"
)
