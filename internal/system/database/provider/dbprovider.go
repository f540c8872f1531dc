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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path"
	"sync"
	"syscall"

	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/database/client"
	"github.com/rentroll/kyc/internal/system/database/model"
	"github.com/rentroll/kyc/internal/system/log"
)

// DataSourceKYC is the name of the verification data source.
const DataSourceKYC = "kyc"

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(dbName string) (client.DBClientInterface, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	kycClient client.DBClientInterface
	kycMutex  sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		instance = &DBProvider{}
		instance.closeOnInterrupt()
	})
	return instance
}

// GetDBClient returns a database client based on the provided database name.
// Not required to close the returned client manually since it manages its own connection pool.
func (d *DBProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	switch dbName {
	case DataSourceKYC:
		runtime := config.GetKYCRuntime()
		return d.getOrInitClient(runtime.ServerHome, runtime.Config.Database.KYC)
	default:
		return nil, fmt.Errorf("unsupported database name: %s", dbName)
	}
}

// getOrInitClient gets or initializes the DB client with locking.
func (d *DBProvider) getOrInitClient(home string, dataSource config.DataSource) (client.DBClientInterface, error) {
	d.kycMutex.RLock()
	if d.kycClient != nil {
		c := d.kycClient
		d.kycMutex.RUnlock()
		return c, nil
	}
	d.kycMutex.RUnlock()

	d.kycMutex.Lock()
	defer d.kycMutex.Unlock()

	if d.kycClient != nil {
		return d.kycClient, nil
	}

	dbConfig, err := getDBConfig(home, dataSource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dataSource.Name, err)
	}
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)", dataSource.Name, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dataSource.Name, err)
	}

	d.kycClient = client.NewDBClient(model.NewDB(db), dbConfig.driverName)
	return d.kycClient, nil
}

// getDBConfig returns the database configuration based on the provided data source.
func getDBConfig(home string, dataSource config.DataSource) (dbConfig, error) {
	var cfg dbConfig

	switch dataSource.Type {
	case model.DBTypePostgres:
		sslMode := dataSource.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		cfg.driverName = model.DBTypePostgres
		cfg.dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, sslMode)
	case model.DBTypeSQLite:
		cfg.driverName = model.DBTypeSQLite
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbPath := dataSource.Path
		if !path.IsAbs(dbPath) {
			dbPath = path.Join(home, dbPath)
		}
		cfg.dsn = dbPath + options
	default:
		return cfg, fmt.Errorf("unsupported database type: %q", dataSource.Type)
	}

	return cfg, nil
}

// closeOnInterrupt sets up signal handling for graceful shutdown
func (d *DBProvider) closeOnInterrupt() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger := log.GetLogger()
		if err := d.close(); err != nil {
			logger.Error("Error closing database connections", log.Error(err))
		} else {
			logger.Debug("Database connections closed successfully")
		}
	}()
}

// close closes the database connections
func (d *DBProvider) close() error {
	d.kycMutex.Lock()
	defer d.kycMutex.Unlock()
	if d.kycClient != nil {
		if err := d.kycClient.Close(); err != nil {
			return fmt.Errorf("failed to close %s client: %w", DataSourceKYC, err)
		}
		d.kycClient = nil
	}
	return nil
}
