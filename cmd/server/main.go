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

// Package main is the entry point for starting the tenant verification server.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/rentroll/kyc/internal/system/cert"
	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/middleware"
)

// certExpiryWarning is how close to expiry the server certificate is reported at startup.
const certExpiryWarning = 30 * 24 * time.Hour

func main() {
	logger := log.GetLogger()

	serverHome := getServerHome(logger)

	cfg := initServerConfigurations(logger, serverHome)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	mux := initMultiplexer(logger, cfg)
	if mux == nil {
		logger.Fatal("Failed to initialize multiplexer")
	}

	if cfg.Server.HTTPOnly {
		logger.Info("TLS is not enabled, starting server without TLS")
		startHTTPServer(logger, cfg, mux)
	} else {
		startTLSServer(logger, cfg, mux, serverHome)
	}
}

// getServerHome retrieves and return the server home directory.
func getServerHome(logger *log.Logger) string {
	projectHome := ""
	projectHomeFlag := flag.String("serverHome", "", "Path to the verification server home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		logger.Info("Using serverHome from command line argument", log.String("serverHome", *projectHomeFlag))
		projectHome = *projectHomeFlag
	} else {
		// If no command line argument is provided, use the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		projectHome = dir
	}

	return projectHome
}

// initServerConfigurations loads deployment.yaml, applies .env and environment overrides and
// initializes the runtime configuration.
func initServerConfigurations(logger *log.Logger, serverHome string) *config.Config {
	configFilePath := path.Join(serverHome, "repository/conf/deployment.yaml")
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	if err := config.LoadEnvFile(path.Join(serverHome, ".env")); err != nil {
		logger.Fatal("Failed to load env file", log.Error(err))
	}
	config.ApplyEnvOverrides(cfg)

	if err := config.InitializeKYCRuntime(serverHome, cfg); err != nil {
		logger.Fatal("Failed to initialize server runtime", log.Error(err))
	}

	return cfg
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer(logger *log.Logger, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	if err := registerServices(mux, cfg); err != nil {
		logger.Fatal("Failed to register the services", log.Error(err))
	}
	return mux
}

// startTLSServer starts the HTTPS server with TLS configuration.
func startTLSServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux, serverHome string) {
	server, serverAddr := createHTTPServer(logger, cfg, mux)

	sysCertSvc := cert.NewSystemCertificateService()
	tlsConfig, err := sysCertSvc.GetTLSConfig(cfg, serverHome)
	if err != nil {
		logger.Fatal("Failed to load TLS configuration", log.Error(err))
	}
	if notAfter, err := sysCertSvc.GetCertificateExpiry(cfg, serverHome); err == nil &&
		time.Until(notAfter) < certExpiryWarning {
		logger.Warn("Server certificate expires soon", log.String("notAfter", notAfter.Format(time.RFC3339)))
	}

	ln, err := tls.Listen("tcp", serverAddr, tlsConfig)
	if err != nil {
		logger.Fatal("Failed to start TLS listener", log.Error(err))
	}

	logger.Info("Tenant verification server started (HTTPS)...", log.String("address", serverAddr))

	if err := server.Serve(ln); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

// startHTTPServer starts the HTTP server without TLS.
func startHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) {
	server, serverAddr := createHTTPServer(logger, cfg, mux)

	logger.Info("Tenant verification server started (HTTP)...", log.String("address", serverAddr))

	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Failed to serve HTTP requests", log.Error(err))
	}
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) (*http.Server, string) {
	wrappedMux := middleware.WithRequestID(log.AccessLogHandler(logger, mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	// The callback waits on up to three sequential provider calls, so the write timeout leaves
	// room beyond the provider request timeout.
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           wrappedMux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return server, serverAddr
}
