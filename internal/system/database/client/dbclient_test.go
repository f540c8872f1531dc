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

package client

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/rentroll/kyc/internal/system/database/model"
)

type DBClientTestSuite struct {
	suite.Suite
	mockDB   *sql.DB
	mock     sqlmock.Sqlmock
	dbClient DBClientInterface
}

func TestDBClientSuite(t *testing.T) {
	suite.Run(t, new(DBClientTestSuite))
}

func (suite *DBClientTestSuite) SetupTest() {
	var err error
	suite.mockDB, suite.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}

	suite.dbClient = NewDBClient(model.NewDB(suite.mockDB), model.DBTypeSQLite)
}

func (suite *DBClientTestSuite) TearDownTest() {
	if err := suite.mock.ExpectationsWereMet(); err != nil {
		suite.T().Fatalf("There were unfulfilled expectations: %v", err)
	}
}

func (suite *DBClientTestSuite) TestQuerySuccess() {
	testQuery := model.DBQuery{
		ID:    "TST-00001",
		Query: "SELECT TENANT_ID, NAME FROM TENANT WHERE TENANT_ID = $1",
	}

	rows := sqlmock.NewRows([]string{"TENANT_ID", "NAME"}).
		AddRow("t-1", "Asha Rao").
		AddRow("t-2", "Rahul Kumar")
	suite.mock.ExpectQuery(testQuery.Query).WithArgs("t-1").WillReturnRows(rows)

	results, err := suite.dbClient.Query(context.Background(), testQuery, "t-1")

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), results, 2)
	assert.Equal(suite.T(), "t-1", results[0]["tenant_id"])
	assert.Equal(suite.T(), "Asha Rao", results[0]["name"])
	assert.Equal(suite.T(), "Rahul Kumar", results[1]["name"])
}

func (suite *DBClientTestSuite) TestQueryUsesEngineVariant() {
	testQuery := model.DBQuery{
		ID:          "TST-00002",
		Query:       "SELECT NOW()",
		SQLiteQuery: "SELECT CURRENT_TIMESTAMP",
	}
	suite.mock.ExpectQuery("SELECT CURRENT_TIMESTAMP").
		WillReturnRows(sqlmock.NewRows([]string{"ts"}).AddRow("2025-01-01"))

	results, err := suite.dbClient.Query(context.Background(), testQuery)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), results, 1)
}

func (suite *DBClientTestSuite) TestQueryDatabaseError() {
	testQuery := model.DBQuery{ID: "TST-00003", Query: "SELECT X FROM MISSING"}
	expectedErr := errors.New("table not found")
	suite.mock.ExpectQuery(testQuery.Query).WillReturnError(expectedErr)

	results, err := suite.dbClient.Query(context.Background(), testQuery)

	assert.Equal(suite.T(), expectedErr, err)
	assert.Nil(suite.T(), results)
}

func (suite *DBClientTestSuite) TestExecuteSuccess() {
	testQuery := model.DBQuery{ID: "TST-00004", Query: "UPDATE TENANT SET NAME = $1 WHERE TENANT_ID = $2"}
	suite.mock.ExpectExec(testQuery.Query).
		WithArgs("Asha", "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rowsAffected, err := suite.dbClient.Execute(context.Background(), testQuery, "Asha", "t-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), rowsAffected)
}

func (suite *DBClientTestSuite) TestExecuteError() {
	testQuery := model.DBQuery{ID: "TST-00005", Query: "DELETE FROM TENANT"}
	suite.mock.ExpectExec(testQuery.Query).WillReturnError(errors.New("locked"))

	_, err := suite.dbClient.Execute(context.Background(), testQuery)
	assert.EqualError(suite.T(), err, "locked")
}

func (suite *DBClientTestSuite) TestBeginTxCommit() {
	testQuery := model.DBQuery{ID: "TST-00006", Query: "INSERT INTO T (A) VALUES ($1)"}
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(testQuery.Query).WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	suite.mock.ExpectCommit()

	tx, err := suite.dbClient.BeginTx(context.Background())
	assert.NoError(suite.T(), err)
	_, err = tx.Exec(context.Background(), testQuery, "a")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), tx.Commit())
}

func (suite *DBClientTestSuite) TestClose() {
	suite.mock.ExpectClose()
	assert.NoError(suite.T(), suite.dbClient.Close())
}
