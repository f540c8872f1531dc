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

package model

const (
	// DBTypePostgres is the database type identifier for PostgreSQL.
	DBTypePostgres = "postgres"
	// DBTypeSQLite is the database type identifier for SQLite.
	DBTypeSQLite = "sqlite"
)

// DBQuery represents a database query with an identifier and optional per-engine variants.
type DBQuery struct {
	// ID is the unique identifier of the query, used for logging.
	ID string
	// Query is the default SQL statement.
	Query string
	// PostgresQuery overrides Query when running against PostgreSQL.
	PostgresQuery string
	// SQLiteQuery overrides Query when running against SQLite.
	SQLiteQuery string
}

// GetID returns the identifier of the query.
func (d DBQuery) GetID() string {
	return d.ID
}

// GetQuery returns the SQL statement for the given database type.
func (d DBQuery) GetQuery(dbType string) string {
	switch dbType {
	case DBTypePostgres:
		if d.PostgresQuery != "" {
			return d.PostgresQuery
		}
	case DBTypeSQLite:
		if d.SQLiteQuery != "" {
			return d.SQLiteQuery
		}
	}
	return d.Query
}
