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

// Package cert loads the server's TLS material.
package cert

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rentroll/kyc/internal/system/config"
)

// SystemCertificateServiceInterface defines the interface for system certificate operations.
type SystemCertificateServiceInterface interface {
	GetTLSConfig(cfg *config.Config, serverHome string) (*tls.Config, error)
	GetCertificateExpiry(cfg *config.Config, serverHome string) (time.Time, error)
}

// SystemCertificateService implements the SystemCertificateServiceInterface for managing system certificates.
type SystemCertificateService struct{}

// NewSystemCertificateService creates a new instance of SystemCertificateService.
func NewSystemCertificateService() SystemCertificateServiceInterface {
	return &SystemCertificateService{}
}

// GetTLSConfig loads the TLS configuration from the certificate and key files. Relative paths
// are resolved against the server home.
func (c *SystemCertificateService) GetTLSConfig(cfg *config.Config, serverHome string) (*tls.Config, error) {
	certFilePath := resolvePath(serverHome, cfg.Security.CertFile)
	keyFilePath := resolvePath(serverHome, cfg.Security.KeyFile)

	if _, err := os.Stat(certFilePath); os.IsNotExist(err) {
		return nil, errors.New("certificate file not found at " + certFilePath)
	}
	if _, err := os.Stat(keyFilePath); os.IsNotExist(err) {
		return nil, errors.New("key file not found at " + keyFilePath)
	}

	cert, err := tls.LoadX509KeyPair(certFilePath, keyFilePath)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// GetCertificateExpiry returns the expiry time of the server certificate.
func (c *SystemCertificateService) GetCertificateExpiry(cfg *config.Config, serverHome string) (time.Time, error) {
	tlsConfig, err := c.GetTLSConfig(cfg, serverHome)
	if err != nil {
		return time.Time{}, err
	}
	if len(tlsConfig.Certificates) == 0 || len(tlsConfig.Certificates[0].Certificate) == 0 {
		return time.Time{}, errors.New("no certificate found in TLS config")
	}

	parsedCert, err := x509.ParseCertificate(tlsConfig.Certificates[0].Certificate[0])
	if err != nil {
		return time.Time{}, err
	}
	return parsedCert.NotAfter, nil
}

func resolvePath(home, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}
