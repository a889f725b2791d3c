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

package metrics

// MetricName describes the name and description of a single metric
type MetricName struct {
	Name        string
	Description string
}

var (
	// LedgerTransactionsTotal Total number of transactions written to the ledger
	LedgerTransactionsTotal = MetricName{Name: "testwax_ledger_transactions_total", Description: "Total number of transactions written to the ledger"}
	// LedgerTransactionsRejected Total number of transactions rejected, by reason
	LedgerTransactionsRejected = MetricName{Name: "testwax_ledger_transactions_rejected_total", Description: "Total number of transactions rejected, by reason"}
	// LedgerActionsExecuted Total number of actions executed in committed transactions, inline actions included
	LedgerActionsExecuted = MetricName{Name: "testwax_ledger_actions_executed_total", Description: "Total number of actions executed in committed transactions"}
	// LedgerComputeUnits Total compute units used by committed transactions
	LedgerComputeUnits = MetricName{Name: "testwax_ledger_compute_units_total", Description: "Total compute units used by committed transactions"}
	// LedgerRowsWritten Total number of rows inserted, updated or removed
	LedgerRowsWritten = MetricName{Name: "testwax_ledger_rows_written_total", Description: "Total number of rows inserted, updated or removed"}
	// LedgerRAMBytes RAM billed to accounts, summed
	LedgerRAMBytes = MetricName{Name: "testwax_ledger_ram_bytes", Description: "Storage bytes currently billed to accounts"}

	// RESTRequestsTotal Number of REST API requests, by route and status
	RESTRequestsTotal = MetricName{Name: "testwax_rest_requests_total", Description: "Number of REST API requests served"}
)
