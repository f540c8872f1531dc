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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBQueryGetQuery(t *testing.T) {
	q := DBQuery{ID: "Q-1", Query: "DEFAULT", PostgresQuery: "PG", SQLiteQuery: "LITE"}

	assert.Equal(t, "Q-1", q.GetID())
	assert.Equal(t, "PG", q.GetQuery(DBTypePostgres))
	assert.Equal(t, "LITE", q.GetQuery(DBTypeSQLite))
	assert.Equal(t, "DEFAULT", q.GetQuery("mock"))
	assert.Equal(t, "DEFAULT", DBQuery{Query: "DEFAULT"}.GetQuery(DBTypePostgres))
}
