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

package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rentroll/kyc/internal/digilocker/document"
	"github.com/rentroll/kyc/internal/digilocker/oauth"
	"github.com/rentroll/kyc/internal/kyc"
	"github.com/rentroll/kyc/internal/kyc/store"
	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/database/model"
	"github.com/rentroll/kyc/internal/system/database/provider"
	"github.com/rentroll/kyc/internal/system/healthcheck"
	httpservice "github.com/rentroll/kyc/internal/system/http"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/tenant"
)

const schemaTimeout = 30 * time.Second

// registerServices wires the verification services and registers them with the provided HTTP
// multiplexer.
func registerServices(mux *http.ServeMux, cfg *config.Config) error {
	logger := log.GetLogger()

	dbProvider := provider.GetDBProvider()
	if cfg.Database.KYC.Type == model.DBTypeSQLite {
		if err := ensureDatabaseDir(cfg.Database.KYC.Path); err != nil {
			return err
		}
		dbClient, err := dbProvider.GetDBClient(provider.DataSourceKYC)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := store.EnsureSchema(ctx, dbClient); err != nil {
			return err
		}
	}

	oauthCfg := oauth.NewConfig(cfg.DigiLocker)
	if err := oauthCfg.Validate(); err != nil {
		// Callbacks report the missing fields in their envelope.
		logger.Warn("DigiLocker configuration is incomplete", log.Error(err))
	}

	var sealer *oauth.FlowSealer
	if cfg.KYC.FlowTokenKey != "" {
		var err error
		if sealer, err = oauth.NewFlowSealer(cfg.KYC.FlowTokenKey); err != nil {
			return err
		}
	} else {
		logger.Info("No flow token key configured, flow tokens are disabled")
	}

	httpClient := httpservice.NewHTTPClientWithTimeout(oauthCfg.RequestTimeout)
	oauthService := oauth.NewDigiLockerOAuthService(oauthCfg, httpClient)
	documents := document.NewDocumentClient(oauthCfg.ProviderBaseURL(), oauthCfg.RequestTimeout, httpClient)
	verificationStore := store.NewVerificationStore(dbProvider)

	kycService := kyc.NewKYCService(
		oauthService,
		documents,
		nil,
		tenant.NewTenantStore(dbProvider),
		verificationStore,
		sealer,
		kyc.NewOptions(cfg.KYC),
	)
	kyc.Initialize(mux, kycService)

	healthService := healthcheck.NewHealthCheckService(
		healthcheck.CheckerFunc{ServiceName: "KYCDatabase", Fn: verificationStore.Ping},
		healthcheck.CheckerFunc{ServiceName: "DigiLockerConfig", Fn: func(context.Context) error {
			return oauthCfg.Validate()
		}},
	)
	healthcheck.RegisterRoutes(mux, healthcheck.NewHealthCheckHandler(healthService))

	return nil
}

// ensureDatabaseDir creates the directory of a sqlite database file relative to the server home.
func ensureDatabaseDir(dbPath string) error {
	return os.MkdirAll(filepath.Dir(config.GetKYCRuntime().ResolvePath(dbPath)), 0o750)
}
