/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package kyc

import (
	"net/http"

	"github.com/rentroll/kyc/internal/system/middleware"
)

// Initialize registers the verification routes for kycService on mux.
func Initialize(mux *http.ServeMux, kycService KYCServiceInterface) {
	registerRoutes(mux, newKYCHandler(kycService))
}

// registerRoutes registers the routes for verification operations.
func registerRoutes(mux *http.ServeMux, kh *kycHandler) {
	getOpts := middleware.CORSOptions{
		AllowedMethods:   "GET",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	postOpts := middleware.CORSOptions{
		AllowedMethods:   "POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
		opts    middleware.CORSOptions
	}{
		{http.MethodGet, "/kyc/initiate", kh.HandleInitiateRequest, getOpts},
		{http.MethodPost, "/kyc/callback", kh.HandleCallbackRequest, postOpts},
		{http.MethodPost, "/kyc/decode", kh.HandleDecodeRequest, postOpts},
		{http.MethodPost, "/kyc/cross-verify", kh.HandleCrossVerifyRequest, postOpts},
		{http.MethodGet, "/kyc/verifications/{tenantId}", kh.HandleVerificationGetRequest, getOpts},
	}
	for _, rt := range routes {
		mux.HandleFunc(middleware.WithCORS(rt.method+" "+rt.path, rt.handler, rt.opts))
		mux.HandleFunc("OPTIONS "+rt.path, middleware.Preflight(rt.opts))
		mux.HandleFunc(middleware.WithCORS(rt.path, kh.HandleMethodNotAllowed(rt.method+", OPTIONS"), rt.opts))
	}
}
