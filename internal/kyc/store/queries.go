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
	dbmodel "github.com/rentroll/kyc/internal/system/database/model"
)

var (
	// QueryUpsertVerification is the query to create or overwrite the verification of a tenant.
	QueryUpsertVerification = dbmodel.DBQuery{
		ID: "KYQ-KYC_MGT-00",
		Query: `INSERT INTO TENANT_VERIFICATION (VERIFICATION_ID, TENANT_ID, VERIFIED, VERIFIED_BY, ` +
			`VERIFIED_AT, NAME, DOB, GENDER, ADDRESS, DIGILOCKER_ID, DIGILOCKER_TXN_ID, VALIDATION, WARNINGS) ` +
			`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ` +
			`ON CONFLICT (TENANT_ID) DO UPDATE SET VERIFIED = excluded.VERIFIED, ` +
			`VERIFIED_BY = excluded.VERIFIED_BY, VERIFIED_AT = excluded.VERIFIED_AT, NAME = excluded.NAME, ` +
			`DOB = excluded.DOB, GENDER = excluded.GENDER, ADDRESS = excluded.ADDRESS, ` +
			`DIGILOCKER_ID = excluded.DIGILOCKER_ID, DIGILOCKER_TXN_ID = excluded.DIGILOCKER_TXN_ID, ` +
			`VALIDATION = excluded.VALIDATION, WARNINGS = excluded.WARNINGS`,
	}

	// QueryUpsertAadhaar is the query to create or overwrite the Aadhaar document of a tenant.
	QueryUpsertAadhaar = dbmodel.DBQuery{
		ID: "KYQ-KYC_MGT-01",
		Query: `INSERT INTO TENANT_AADHAAR (TENANT_ID, AADHAAR_NUMBER, NAME, DOB, GENDER, ADDRESS, PINCODE, ` +
			`DOCUMENT_URI, SOURCE, VERIFIED, XML_SIZE, XML_CONTENT) ` +
			`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) ` +
			`ON CONFLICT (TENANT_ID) DO UPDATE SET AADHAAR_NUMBER = excluded.AADHAAR_NUMBER, ` +
			`NAME = excluded.NAME, DOB = excluded.DOB, GENDER = excluded.GENDER, ADDRESS = excluded.ADDRESS, ` +
			`PINCODE = excluded.PINCODE, DOCUMENT_URI = excluded.DOCUMENT_URI, SOURCE = excluded.SOURCE, ` +
			`VERIFIED = excluded.VERIFIED, XML_SIZE = excluded.XML_SIZE, XML_CONTENT = excluded.XML_CONTENT`,
	}

	// QueryGetVerification is the query to get the verification of a tenant.
	QueryGetVerification = dbmodel.DBQuery{
		ID: "KYQ-KYC_MGT-02",
		Query: `SELECT VERIFICATION_ID, TENANT_ID, VERIFIED, VERIFIED_BY, VERIFIED_AT, NAME, DOB, GENDER, ` +
			`ADDRESS, DIGILOCKER_ID, DIGILOCKER_TXN_ID, VALIDATION, WARNINGS ` +
			`FROM TENANT_VERIFICATION WHERE TENANT_ID = $1`,
	}

	// QueryGetAadhaar is the query to get the Aadhaar document of a tenant.
	QueryGetAadhaar = dbmodel.DBQuery{
		ID: "KYQ-KYC_MGT-03",
		Query: `SELECT AADHAAR_NUMBER, NAME, DOB, GENDER, ADDRESS, PINCODE, DOCUMENT_URI, SOURCE, VERIFIED, ` +
			`XML_SIZE, XML_CONTENT FROM TENANT_AADHAAR WHERE TENANT_ID = $1`,
	}

	// QueryCheckVerificationTable checks that the verification table is reachable.
	QueryCheckVerificationTable = dbmodel.DBQuery{
		ID:    "KYQ-KYC_MGT-04",
		Query: `SELECT 1 AS REACHABLE FROM TENANT_VERIFICATION LIMIT 1`,
	}
)
