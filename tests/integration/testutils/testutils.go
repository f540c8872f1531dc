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

// Package testutils prepares and runs the verification server for integration tests.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/rentroll/kyc/internal/kyc/store"
	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/database/client"
	"github.com/rentroll/kyc/internal/system/database/model"
)

const (
	ProjectRoot      = "../.."
	ServerHome       = "../../target/out/.test"
	ServerBinary     = "kyc-server"
	ServerPort       = 8095
	DatabaseFilePath = "repository/database/kyc.db"
	DeploymentYaml   = "repository/conf/deployment.yaml"
	MockCertFile     = "mock-digilocker.pem"

	// Environment variables handed to the integration test run.
	EnvServerURL     = "KYC_TEST_SERVER_URL"
	EnvDigiLockerURL = "KYC_TEST_DIGILOCKER_URL"
)

// Tenant is a tenant row seeded before the server starts.
type Tenant struct {
	ID        string
	Name      string
	Phone     string
	FirstName string
	LastName  string
}

var (
	queryInsertTenant = model.DBQuery{
		ID:    "ITQ-KYC-00",
		Query: "INSERT INTO TENANT (TENANT_ID, NAME, PHONE) VALUES ($1, $2, $3)",
	}
	queryInsertTenantProfile = model.DBQuery{
		ID: "ITQ-KYC-01",
		Query: "INSERT INTO TENANT_PROFILE (TENANT_ID, FIRST_NAME, LAST_NAME, PHONE_NUMBER) " +
			"VALUES ($1, $2, $3, $4)",
	}
)

// PrepareServerHome recreates the server home and writes cfg as its deployment.yaml.
func PrepareServerHome(serverHome string, cfg *config.Config) error {
	if err := os.RemoveAll(serverHome); err != nil {
		return err
	}
	for _, dir := range []string{filepath.Dir(DeploymentYaml), filepath.Dir(DatabaseFilePath)} {
		if err := os.MkdirAll(filepath.Join(serverHome, dir), os.ModePerm); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal deployment.yaml: %w", err)
	}
	return os.WriteFile(filepath.Join(serverHome, DeploymentYaml), data, 0o600)
}

// SeedTenants creates the schema in the server database and inserts tenants.
func SeedTenants(serverHome string, tenants []Tenant) error {
	db, err := sql.Open(model.DBTypeSQLite, filepath.Join(serverHome, DatabaseFilePath))
	if err != nil {
		return err
	}
	dbClient := client.NewDBClient(model.NewDB(db), model.DBTypeSQLite)
	defer func() {
		_ = dbClient.Close()
	}()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx, dbClient); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	for _, t := range tenants {
		if _, err := dbClient.Execute(ctx, queryInsertTenant, t.ID, t.Name, t.Phone); err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", t.ID, err)
		}
		if t.FirstName == "" && t.LastName == "" {
			continue
		}
		if _, err := dbClient.Execute(ctx, queryInsertTenantProfile, t.ID, t.FirstName, t.LastName,
			t.Phone); err != nil {
			return fmt.Errorf("failed to seed tenant profile %s: %w", t.ID, err)
		}
	}
	return nil
}
