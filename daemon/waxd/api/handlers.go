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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/node"
	"github.com/algorand/testwax/protocol"
	"github.com/algorand/testwax/serr"
)

const (
	errFailedToDecodeTransaction = "failed to decode the transaction"
	errFailedToParseName         = "failed to parse the name"
	errFailedRetrievingStatus    = "failed retrieving node status"
	errFailedLookingUpLedger     = "failed to retrieve information from the ledger"
	errRESTPayloadZeroLength     = "payload was of zero length"
	errServiceShuttingDown       = "operation aborted as server is shutting down"
)

// maxTransactionBytes bounds the request body of POST /v1/transactions.
const maxTransactionBytes = 1 << 20

// ContentTypeMsgpack selects msgpack decoding of a posted transaction.
const ContentTypeMsgpack = "application/msgpack"

// NodeInterface is the subset of the node the handlers need.
type NodeInterface interface {
	Apply(ctx context.Context, stxn transactions.SignedTxn) (ledger.Receipt, error)
	Rows(code, scope, table basics.Name) ([]interface{}, error)
	RAMUsage(account basics.Name) (usage uint64, quota uint64, err error)
	Status() (node.StatusReport, error)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Message string            `codec:"message"`
	Reason  string            `codec:"reason"`
	Data    map[string]string `codec:"data"`
}

// TableResponse is the body of GET /v1/tables/:code/:scope/:table.
type TableResponse struct {
	Rows []interface{} `codec:"rows"`
}

// RAMResponse is the body of GET /v1/accounts/:name/ram.
type RAMResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Account basics.Name `codec:"account"`
	Usage   uint64      `codec:"usage"`
	Quota   uint64      `codec:"quota"`
}

// Handlers implements the REST routes.
type Handlers struct {
	Node     NodeInterface
	Log      logging.Logger
	Shutdown <-chan struct{}
}

func writeJSON(ctx echo.Context, code int, obj interface{}) error {
	return ctx.Blob(code, echo.MIMEApplicationJSON, protocol.EncodeJSON(obj))
}

// returnError logs an internal message while returning the encoded response.
func returnError(ctx echo.Context, code int, internal error, external string, log logging.Logger) error {
	log.Info(internal)
	return writeJSON(ctx, code, ErrorResponse{Message: external})
}

func badRequest(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusBadRequest, internal, external, log)
}

func notFound(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusNotFound, internal, external, log)
}

func internalError(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusInternalServerError, internal, external, log)
}

func serviceUnavailable(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusServiceUnavailable, internal, external, log)
}

// statusForReason maps a rejection reason to the HTTP status returned for it.
func statusForReason(reason string) int {
	switch reason {
	case "duplicate":
		return http.StatusConflict
	case "authorization":
		return http.StatusUnauthorized
	case "malformed", "expired":
		return http.StatusBadRequest
	case "interrupted":
		return http.StatusServiceUnavailable
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// rejected reports a transaction the ledger refused, with the location
// attributes the executor attached to the error.
func rejected(ctx echo.Context, err error) error {
	reason := ledgercore.Reason(err)
	resp := ErrorResponse{Message: err.Error(), Reason: reason}
	for _, key := range []string{"txid", "index", "action", "depth"} {
		if v, ok := serr.Attr(err, key); ok {
			if resp.Data == nil {
				resp.Data = make(map[string]string)
			}
			resp.Data[key] = fmt.Sprint(v)
		}
	}
	return writeJSON(ctx, statusForReason(reason), resp)
}

func (h *Handlers) shuttingDown() bool {
	select {
	case <-h.Shutdown:
		return true
	default:
		return false
	}
}

// HealthCheck is the handler for GET /health
func (h *Handlers) HealthCheck(ctx echo.Context) error {
	return ctx.NoContent(http.StatusOK)
}

// Versions is the handler for GET /versions
func (h *Handlers) Versions(ctx echo.Context) error {
	return writeJSON(ctx, http.StatusOK, config.GetCurrentVersion())
}

// Status is the handler for GET /v1/status
func (h *Handlers) Status(ctx echo.Context) error {
	status, err := h.Node.Status()
	if errors.Is(err, ledgercore.ErrLedgerClosed) {
		return serviceUnavailable(ctx, err, errServiceShuttingDown, h.Log)
	}
	if err != nil {
		return internalError(ctx, err, errFailedRetrievingStatus, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, status)
}

// SendTransaction is the handler for POST /v1/transactions. The body is a
// SignedTxn, msgpack encoded when the content type says so and JSON
// otherwise. On success the receipt is returned.
func (h *Handlers) SendTransaction(ctx echo.Context) error {
	if h.shuttingDown() {
		return serviceUnavailable(ctx, errors.New(errServiceShuttingDown), errServiceShuttingDown, h.Log)
	}

	req := ctx.Request()
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Response(), req.Body, maxTransactionBytes))
	if err != nil {
		return badRequest(ctx, err, errFailedToDecodeTransaction, h.Log)
	}
	if len(body) == 0 {
		return badRequest(ctx, errors.New(errRESTPayloadZeroLength), errRESTPayloadZeroLength, h.Log)
	}

	var stxn transactions.SignedTxn
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), ContentTypeMsgpack) {
		err = protocol.Decode(body, &stxn)
	} else {
		err = protocol.DecodeJSON(body, &stxn)
	}
	if err != nil {
		return badRequest(ctx, err, fmt.Sprintf("%s: %v", errFailedToDecodeTransaction, err), h.Log)
	}

	receipt, err := h.Node.Apply(req.Context(), stxn)
	if err != nil {
		return rejected(ctx, err)
	}
	return writeJSON(ctx, http.StatusOK, receipt)
}

func parseNames(ctx echo.Context, params ...string) ([]basics.Name, error) {
	names := make([]basics.Name, len(params))
	for i, p := range params {
		name, err := basics.NameFromString(ctx.Param(p))
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", p, ctx.Param(p), err)
		}
		names[i] = name
	}
	return names, nil
}

// GetTableRows is the handler for GET /v1/tables/:code/:scope/:table
func (h *Handlers) GetTableRows(ctx echo.Context) error {
	names, err := parseNames(ctx, "code", "scope", "table")
	if err != nil {
		return badRequest(ctx, err, fmt.Sprintf("%s: %v", errFailedToParseName, err), h.Log)
	}
	rows, err := h.Node.Rows(names[0], names[1], names[2])
	if errors.Is(err, node.ErrNoContract) {
		return notFound(ctx, err, err.Error(), h.Log)
	}
	if errors.Is(err, ledgercore.ErrLedgerClosed) {
		return serviceUnavailable(ctx, err, errServiceShuttingDown, h.Log)
	}
	if err != nil {
		return internalError(ctx, err, errFailedLookingUpLedger, h.Log)
	}
	if rows == nil {
		rows = []interface{}{}
	}
	return writeJSON(ctx, http.StatusOK, TableResponse{Rows: rows})
}

// GetAccountRAM is the handler for GET /v1/accounts/:name/ram
func (h *Handlers) GetAccountRAM(ctx echo.Context) error {
	names, err := parseNames(ctx, "name")
	if err != nil {
		return badRequest(ctx, err, fmt.Sprintf("%s: %v", errFailedToParseName, err), h.Log)
	}
	usage, quota, err := h.Node.RAMUsage(names[0])
	var unknown *ledgercore.UnknownAccountError
	if errors.As(err, &unknown) {
		return notFound(ctx, err, err.Error(), h.Log)
	}
	if errors.Is(err, ledgercore.ErrLedgerClosed) {
		return serviceUnavailable(ctx, err, errServiceShuttingDown, h.Log)
	}
	if err != nil {
		return internalError(ctx, err, errFailedLookingUpLedger, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, RAMResponse{Account: names[0], Usage: usage, Quota: quota})
}
