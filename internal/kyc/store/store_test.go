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
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rentroll/kyc/internal/kyc/model"
	"github.com/rentroll/kyc/internal/system/database/client"
	dbmodel "github.com/rentroll/kyc/internal/system/database/model"
	"github.com/rentroll/kyc/internal/system/database/provider"
	"github.com/rentroll/kyc/tests/mocks/database/providermock"
)

var testVerifiedAt = time.Date(2025, 10, 9, 8, 30, 0, 0, time.UTC)

func testRecord() *model.VerificationRecord {
	return &model.VerificationRecord{
		TenantID:        "t-1",
		Verified:        true,
		VerifiedBy:      "digilocker",
		VerifiedAt:      testVerifiedAt,
		Name:            "Rahul Kumar",
		DOB:             "01-01-1995",
		Gender:          "M",
		Address:         "12, MG Road, Pune, 411001",
		DigilockerID:    "dl-123",
		DigilockerTxnID: "txn-9",
		Validation: &model.TenantValidation{
			ExpectedName: "Rahul Kumar",
			VerifiedName: "Rahul Kumar",
			NameSource:   model.NameSourceTenant,
			NameScore:    1,
			NameMatched:  true,
		},
	}
}

type VerificationStoreTestSuite struct {
	suite.Suite
	mockDB *sql.DB
	mock   sqlmock.Sqlmock
	store  *verificationStore
}

func TestVerificationStoreTestSuite(t *testing.T) {
	suite.Run(t, new(VerificationStoreTestSuite))
}

func (suite *VerificationStoreTestSuite) SetupTest() {
	var err error
	suite.mockDB, suite.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	suite.Require().NoError(err)

	dbProvider := providermock.NewDBProviderInterfaceMock(suite.T())
	dbProvider.On("GetDBClient", provider.DataSourceKYC).
		Return(client.NewDBClient(dbmodel.NewDB(suite.mockDB), dbmodel.DBTypePostgres), nil).Maybe()
	suite.store = NewVerificationStore(dbProvider).(*verificationStore)
	suite.store.newID = func() string { return "ver-1" }
}

func (suite *VerificationStoreTestSuite) TearDownTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
	_ = suite.mockDB.Close()
}

func (suite *VerificationStoreTestSuite) TestSaveVerificationWithoutAadhaar() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(QueryUpsertVerification.Query).
		WithArgs("ver-1", "t-1", true, "digilocker", testVerifiedAt, "Rahul Kumar", "01-01-1995", "M",
			"12, MG Road, Pune, 411001", "dl-123", "txn-9", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	suite.NoError(suite.store.SaveVerification(context.Background(), testRecord()))
}

func (suite *VerificationStoreTestSuite) TestSaveVerificationWithAadhaar() {
	record := testRecord()
	record.VerificationID = "ver-existing"
	record.Warnings = []string{"document list failed"}
	record.Aadhaar = &model.AadhaarDocument{
		AadhaarNumber: "xxxxxxxx8347",
		Name:          "Rahul Kumar",
		Source:        "xml",
		Verified:      true,
		XMLSize:       120,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(QueryUpsertVerification.Query).
		WithArgs("ver-existing", "t-1", true, "digilocker", testVerifiedAt, "Rahul Kumar", "01-01-1995", "M",
			"12, MG Road, Pune, 411001", "dl-123", "txn-9", sqlmock.AnyArg(), `["document list failed"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(QueryUpsertAadhaar.Query).
		WithArgs("t-1", "xxxxxxxx8347", "Rahul Kumar", "", "", "", "", "", "xml", true, 120, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	suite.NoError(suite.store.SaveVerification(context.Background(), record))
}

func (suite *VerificationStoreTestSuite) TestSaveVerificationRollsBackOnError() {
	record := testRecord()
	record.Aadhaar = &model.AadhaarDocument{Source: "secure_qr"}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(QueryUpsertVerification.Query).WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(QueryUpsertAadhaar.Query).WillReturnError(errors.New("disk full"))
	suite.mock.ExpectRollback()

	err := suite.store.SaveVerification(context.Background(), record)
	suite.ErrorContains(err, "failed to write aadhaar document")
	suite.ErrorContains(err, "disk full")
}

func (suite *VerificationStoreTestSuite) TestSaveVerificationRequiresTenant() {
	suite.Error(suite.store.SaveVerification(context.Background(), &model.VerificationRecord{}))
	suite.Error(suite.store.SaveVerification(context.Background(), nil))
}

func (suite *VerificationStoreTestSuite) TestGetVerification() {
	suite.mock.ExpectQuery(QueryGetVerification.Query).WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"VERIFICATION_ID", "TENANT_ID", "VERIFIED", "VERIFIED_BY",
			"VERIFIED_AT", "NAME", "DOB", "GENDER", "ADDRESS", "DIGILOCKER_ID", "DIGILOCKER_TXN_ID",
			"VALIDATION", "WARNINGS"}).
			AddRow("ver-1", "t-1", true, "digilocker", testVerifiedAt, "Rahul Kumar", "01-01-1995", "M",
				"Pune", nil, "txn-9", []byte(`{"nameMatched":true,"nameScore":0.9}`), nil))
	suite.mock.ExpectQuery(QueryGetAadhaar.Query).WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"AADHAAR_NUMBER", "NAME", "DOB", "GENDER", "ADDRESS",
			"PINCODE", "DOCUMENT_URI", "SOURCE", "VERIFIED", "XML_SIZE", "XML_CONTENT"}).
			AddRow("8347", "Rahul Kumar", nil, nil, nil, nil, nil, "secure_qr", int64(1), int64(0), nil))

	got, err := suite.store.GetVerification(context.Background(), "t-1")
	suite.Require().NoError(err)
	suite.Equal("ver-1", got.VerificationID)
	suite.True(got.Verified)
	suite.Equal(testVerifiedAt, got.VerifiedAt)
	suite.Require().NotNil(got.Validation)
	suite.True(got.Validation.NameMatched)
	suite.InDelta(0.9, got.Validation.NameScore, 1e-9)
	suite.Require().NotNil(got.Aadhaar)
	suite.Equal("8347", got.Aadhaar.AadhaarNumber)
	suite.True(got.Aadhaar.Verified)
}

func (suite *VerificationStoreTestSuite) TestGetVerificationNotFound() {
	suite.mock.ExpectQuery(QueryGetVerification.Query).WithArgs("t-9").
		WillReturnRows(sqlmock.NewRows([]string{"VERIFICATION_ID"}))

	_, err := suite.store.GetVerification(context.Background(), "t-9")
	suite.ErrorIs(err, ErrVerificationNotFound)
}

func (suite *VerificationStoreTestSuite) TestPing() {
	suite.mock.ExpectQuery(QueryCheckVerificationTable.Query).
		WillReturnRows(sqlmock.NewRows([]string{"REACHABLE"}))
	suite.NoError(suite.store.Ping(context.Background()))

	suite.mock.ExpectQuery(QueryCheckVerificationTable.Query).WillReturnError(errors.New("no table"))
	suite.ErrorContains(suite.store.Ping(context.Background()), "no table")
}

// newSQLiteStore opens a file-backed SQLite database with the schema applied.
func newSQLiteStore(t *testing.T) (VerificationStoreInterface, client.DBClientInterface) {
	t.Helper()
	db, err := sql.Open(dbmodel.DBTypeSQLite, filepath.Join(t.TempDir(), "kyc.db"))
	require.NoError(t, err)
	dbClient := client.NewDBClient(dbmodel.NewDB(db), dbmodel.DBTypeSQLite)
	t.Cleanup(func() { _ = dbClient.Close() })
	require.NoError(t, EnsureSchema(context.Background(), dbClient))
	require.NoError(t, EnsureSchema(context.Background(), dbClient))

	dbProvider := providermock.NewDBProviderInterfaceMock(t)
	dbProvider.On("GetDBClient", provider.DataSourceKYC).Return(dbClient, nil)
	return NewVerificationStore(dbProvider), dbClient
}

func TestSaveVerificationOverwritesPerTenant(t *testing.T) {
	store, dbClient := newSQLiteStore(t)
	ctx := context.Background()

	first := testRecord()
	first.Aadhaar = &model.AadhaarDocument{AadhaarNumber: "8347", Source: "secure_qr", Verified: true}
	require.NoError(t, store.SaveVerification(ctx, first))

	second := testRecord()
	second.Name = "Rahul K"
	second.VerifiedAt = testVerifiedAt.Add(time.Hour)
	require.NoError(t, store.SaveVerification(ctx, second))

	rows, err := dbClient.Query(ctx, dbmodel.DBQuery{
		ID:    "TST-00001",
		Query: `SELECT COUNT(*) AS TOTAL FROM TENANT_VERIFICATION WHERE TENANT_ID = $1`,
	}, "t-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0]["total"])

	got, err := store.GetVerification(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Rahul K", got.Name)
	assert.True(t, got.VerifiedAt.Equal(testVerifiedAt.Add(time.Hour)))
	assert.True(t, got.Verified)
	require.NotNil(t, got.Aadhaar)
	assert.Equal(t, "8347", got.Aadhaar.AadhaarNumber)

	firstID, err := dbClient.Query(ctx, dbmodel.DBQuery{
		ID:    "TST-00002",
		Query: `SELECT VERIFICATION_ID FROM TENANT_VERIFICATION WHERE TENANT_ID = $1`,
	}, "t-1")
	require.NoError(t, err)
	assert.Equal(t, got.VerificationID, firstID[0]["verification_id"])
}
