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

// Package tenant provides read access to the tenant records a verification is checked against.
package tenant

import (
	"context"
	"fmt"

	"github.com/rentroll/kyc/internal/system/database/provider"
	"github.com/rentroll/kyc/internal/system/log"
)

const storeLoggerComponentName = "TenantStore"

// TenantStoreInterface defines the tenant lookups used by the verification flow.
type TenantStoreInterface interface {
	GetTenant(ctx context.Context, tenantID string) (*Tenant, error)
	GetProfile(ctx context.Context, tenantID string) (*Profile, error)
}

// tenantStore is the default implementation of TenantStoreInterface.
type tenantStore struct {
	dbProvider provider.DBProviderInterface
}

// NewTenantStore creates a new instance of tenantStore.
func NewTenantStore(dbProvider provider.DBProviderInterface) TenantStoreInterface {
	if dbProvider == nil {
		dbProvider = provider.GetDBProvider()
	}
	return &tenantStore{
		dbProvider: dbProvider,
	}
}

// GetTenant retrieves the tenant with the given id.
func (s *tenantStore) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceKYC)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(ctx, QueryGetTenant, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrTenantNotFound
	}
	if len(results) > 1 {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName)).
			Error("Unexpected number of results", log.String(log.LoggerKeyTenantID, tenantID),
				log.Int("count", len(results)))
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	row := results[0]
	return &Tenant{
		ID:    columnString(row, "tenant_id"),
		Name:  columnString(row, "name"),
		Phone: columnString(row, "phone"),
	}, nil
}

// GetProfile retrieves the pre-filled profile of the tenant. A tenant without a profile
// yields nil and no error.
func (s *tenantStore) GetProfile(ctx context.Context, tenantID string) (*Profile, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceKYC)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(ctx, QueryGetTenantProfile, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	row := results[0]
	return &Profile{
		TenantID:    columnString(row, "tenant_id"),
		FirstName:   columnString(row, "first_name"),
		LastName:    columnString(row, "last_name"),
		PhoneNumber: columnString(row, "phone_number"),
	}, nil
}

// columnString reads a nullable text column that drivers may return as string or bytes.
func columnString(row map[string]interface{}, column string) string {
	switch v := row[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
