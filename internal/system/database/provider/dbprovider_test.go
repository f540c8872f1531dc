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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentroll/kyc/internal/system/config"
)

func TestGetDBConfigPostgres(t *testing.T) {
	cfg, err := getDBConfig("/opt/kyc", config.DataSource{
		Type:     "postgres",
		Hostname: "db.internal",
		Port:     5432,
		Name:     "kyc",
		Username: "kyc",
		Password: "pw",
	})

	assert.NoError(t, err)
	assert.Equal(t, "postgres", cfg.driverName)
	assert.Equal(t, "host=db.internal port=5432 user=kyc password=pw dbname=kyc sslmode=require", cfg.dsn)
}

func TestGetDBConfigSQLite(t *testing.T) {
	cfg, err := getDBConfig("/opt/kyc", config.DataSource{
		Type:    "sqlite",
		Path:    "repository/database/kyc.db",
		Options: "_pragma=foreign_keys(1)",
	})

	assert.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.driverName)
	assert.Equal(t, "/opt/kyc/repository/database/kyc.db?_pragma=foreign_keys(1)", cfg.dsn)

	cfg, err = getDBConfig("/opt/kyc", config.DataSource{Type: "sqlite", Path: "/var/lib/kyc.db"})
	assert.NoError(t, err)
	assert.Equal(t, "/var/lib/kyc.db", cfg.dsn)
}

func TestGetDBConfigUnsupported(t *testing.T) {
	_, err := getDBConfig("", config.DataSource{Type: "mysql"})
	assert.EqualError(t, err, `unsupported database type: "mysql"`)
}

func TestGetDBClientUnknownName(t *testing.T) {
	p := &DBProvider{}
	_, err := p.GetDBClient("identity")
	assert.EqualError(t, err, "unsupported database name: identity")
}

func TestGetDBClientSQLiteInMemory(t *testing.T) {
	config.ResetKYCRuntime()
	defer config.ResetKYCRuntime()
	_ = config.InitializeKYCRuntime(t.TempDir(), &config.Config{
		Database: config.DatabaseConfig{KYC: config.DataSource{Type: "sqlite", Path: "kyc.db"}},
	})

	p := &DBProvider{}
	c1, err := p.GetDBClient(DataSourceKYC)
	assert.NoError(t, err)
	c2, err := p.GetDBClient(DataSourceKYC)
	assert.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.NoError(t, p.close())
}
