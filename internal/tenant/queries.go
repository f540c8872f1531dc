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

package tenant

import (
	dbmodel "github.com/rentroll/kyc/internal/system/database/model"
)

var (
	// QueryGetTenant is the query to get a tenant by id.
	QueryGetTenant = dbmodel.DBQuery{
		ID:    "TNQ-TENANT_MGT-00",
		Query: `SELECT TENANT_ID, NAME, PHONE FROM TENANT WHERE TENANT_ID = $1`,
	}

	// QueryGetTenantProfile is the query to get the pre-filled profile of a tenant.
	QueryGetTenantProfile = dbmodel.DBQuery{
		ID:    "TNQ-TENANT_MGT-01",
		Query: `SELECT TENANT_ID, FIRST_NAME, LAST_NAME, PHONE_NUMBER FROM TENANT_PROFILE WHERE TENANT_ID = $1`,
	}
)
