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

// Package api is the waxd REST API.
//
//	GET  /health                          liveness, no token needed
//	GET  /versions                        build version, no token needed
//	GET  /metrics                         prometheus metrics, when enabled
//	GET  /v1/status                       chain and node status
//	POST /v1/transactions                 apply a signed transaction
//	GET  /v1/tables/:code/:scope/:table   rows of a contract table
//	GET  /v1/accounts/:name/ram           RAM usage and quota of an account
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/algorand/testwax/daemon/waxd/api/middlewares"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/util/metrics"
)

const (
	apiV1Tag      = "/v1"
	healthPath    = "/health"
	versionsPath  = "/versions"
	metricsPath   = "/metrics"
	maxBodyLength = "1M"
)

// NewRouter builds and returns a new router with our REST handlers registered.
// An empty apiToken disables authentication.
func NewRouter(logger logging.Logger, node NodeInterface, shutdown <-chan struct{}, apiToken string, enableMetrics bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middlewares.MakeLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowHeaders: []string{middlewares.TokenHeader, echo.HeaderContentType},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}),
		middleware.BodyLimit(maxBodyLength),
	)
	if apiToken != "" {
		e.Use(middlewares.MakeAuth(middlewares.TokenHeader, []string{apiToken}, healthPath, versionsPath))
	}

	h := &Handlers{Node: node, Log: logger, Shutdown: shutdown}

	e.GET(healthPath, h.HealthCheck)
	e.GET(versionsPath, h.Versions)
	if enableMetrics {
		e.GET(metricsPath, echo.WrapHandler(metrics.DefaultRegistry().Handler()))
	}

	v1 := e.Group(apiV1Tag)
	v1.GET("/status", h.Status)
	v1.POST("/transactions", h.SendTransaction)
	v1.GET("/tables/:code/:scope/:table", h.GetTableRows)
	v1.GET("/accounts/:name/ram", h.GetAccountRAM)

	return e
}
