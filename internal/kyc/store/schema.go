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

package store

import (
	"context"
	"fmt"

	"github.com/rentroll/kyc/internal/system/database/client"
	dbmodel "github.com/rentroll/kyc/internal/system/database/model"
)

// Schema statements. Tenant tables are owned by the tenant management service and are
// created here only when missing.
var schemaQueries = []dbmodel.DBQuery{
	{
		ID: "KYQ-KYC_DDL-00",
		Query: `CREATE TABLE IF NOT EXISTS TENANT (TENANT_ID VARCHAR(36) PRIMARY KEY, ` +
			`NAME VARCHAR(255) NOT NULL, PHONE VARCHAR(32))`,
	},
	{
		ID: "KYQ-KYC_DDL-01",
		Query: `CREATE TABLE IF NOT EXISTS TENANT_PROFILE (TENANT_ID VARCHAR(36) PRIMARY KEY, ` +
			`FIRST_NAME VARCHAR(255), LAST_NAME VARCHAR(255), PHONE_NUMBER VARCHAR(32))`,
	},
	{
		ID: "KYQ-KYC_DDL-02",
		PostgresQuery: `CREATE TABLE IF NOT EXISTS TENANT_VERIFICATION (VERIFICATION_ID VARCHAR(36) NOT NULL, ` +
			`TENANT_ID VARCHAR(36) PRIMARY KEY, VERIFIED BOOLEAN NOT NULL, VERIFIED_BY VARCHAR(64), ` +
			`VERIFIED_AT TIMESTAMPTZ NOT NULL, NAME VARCHAR(255), DOB VARCHAR(16), GENDER VARCHAR(8), ` +
			`ADDRESS TEXT, DIGILOCKER_ID VARCHAR(64), DIGILOCKER_TXN_ID VARCHAR(128), VALIDATION JSONB, ` +
			`WARNINGS JSONB)`,
		SQLiteQuery: `CREATE TABLE IF NOT EXISTS TENANT_VERIFICATION (VERIFICATION_ID TEXT NOT NULL, ` +
			`TENANT_ID TEXT PRIMARY KEY, VERIFIED INTEGER NOT NULL, VERIFIED_BY TEXT, ` +
			`VERIFIED_AT TIMESTAMP NOT NULL, NAME TEXT, DOB TEXT, GENDER TEXT, ADDRESS TEXT, ` +
			`DIGILOCKER_ID TEXT, DIGILOCKER_TXN_ID TEXT, VALIDATION TEXT, WARNINGS TEXT)`,
	},
	{
		ID: "KYQ-KYC_DDL-03",
		PostgresQuery: `CREATE TABLE IF NOT EXISTS TENANT_AADHAAR (TENANT_ID VARCHAR(36) PRIMARY KEY, ` +
			`AADHAAR_NUMBER VARCHAR(16), NAME VARCHAR(255), DOB VARCHAR(16), GENDER VARCHAR(8), ADDRESS TEXT, ` +
			`PINCODE VARCHAR(8), DOCUMENT_URI TEXT, SOURCE VARCHAR(16), VERIFIED BOOLEAN NOT NULL, ` +
			`XML_SIZE INTEGER, XML_CONTENT TEXT)`,
		SQLiteQuery: `CREATE TABLE IF NOT EXISTS TENANT_AADHAAR (TENANT_ID TEXT PRIMARY KEY, ` +
			`AADHAAR_NUMBER TEXT, NAME TEXT, DOB TEXT, GENDER TEXT, ADDRESS TEXT, PINCODE TEXT, ` +
			`DOCUMENT_URI TEXT, SOURCE TEXT, VERIFIED INTEGER NOT NULL, XML_SIZE INTEGER, XML_CONTENT TEXT)`,
	},
}

// EnsureSchema creates the verification tables when they do not exist.
func EnsureSchema(ctx context.Context, dbClient client.DBClientInterface) error {
	for _, q := range schemaQueries {
		if _, err := dbClient.Execute(ctx, q); err != nil {
			return fmt.Errorf("failed to apply %s: %w", q.GetID(), err)
		}
	}
	return nil
}
