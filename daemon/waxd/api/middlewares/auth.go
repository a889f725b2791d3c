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

package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenHeader is the http header carrying the API token
const TokenHeader = "X-Wax-API-Token"

// InvalidTokenMessage is the message set when an invalid / missing token is found.
const InvalidTokenMessage = "Invalid API Token"

// MakeAuth constructs the auth middleware function. Requests for one of the
// public paths and OPTIONS requests never need a token; everything else
// must carry one of apiTokens in the header or as a bearer token.
func MakeAuth(header string, apiTokens []string, publicPaths ...string) echo.MiddlewareFunc {
	tokens := make([][]byte, len(apiTokens))
	for i, token := range apiTokens {
		tokens[i] = []byte(token)
	}
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			if req.Method == http.MethodOptions || public[ctx.Path()] {
				return next(ctx)
			}

			providedToken := []byte(req.Header.Get(header))
			if len(providedToken) == 0 {
				// Accept tokens provided in a bearer token format.
				authentication := strings.SplitN(req.Header.Get("Authorization"), " ", 2)
				if len(authentication) == 2 && strings.EqualFold("Bearer", authentication[0]) {
					providedToken = []byte(authentication[1])
				}
			}

			// Check the token in constant time
			for _, token := range tokens {
				if subtle.ConstantTimeCompare(providedToken, token) == 1 {
					return next(ctx)
				}
			}
			return echo.NewHTTPError(http.StatusUnauthorized, InvalidTokenMessage)
		}
	}
}
