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

// Package store persists verification records with one row per tenant.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rentroll/kyc/internal/kyc/model"
	"github.com/rentroll/kyc/internal/system/database/provider"
	"github.com/rentroll/kyc/internal/system/log"
)

const storeLoggerComponentName = "VerificationStore"

// ErrVerificationNotFound is returned when a tenant has no stored verification.
var ErrVerificationNotFound = errors.New("verification not found")

// VerificationStoreInterface defines the persistence operations for verification records.
type VerificationStoreInterface interface {
	SaveVerification(ctx context.Context, record *model.VerificationRecord) error
	GetVerification(ctx context.Context, tenantID string) (*model.VerificationRecord, error)
	Ping(ctx context.Context) error
}

// verificationStore is the default implementation of VerificationStoreInterface.
type verificationStore struct {
	dbProvider provider.DBProviderInterface
	newID      func() string
}

// NewVerificationStore creates a new instance of verificationStore.
func NewVerificationStore(dbProvider provider.DBProviderInterface) VerificationStoreInterface {
	if dbProvider == nil {
		dbProvider = provider.GetDBProvider()
	}
	return &verificationStore{
		dbProvider: dbProvider,
		newID:      uuid.NewString,
	}
}

// SaveVerification writes the record, overwriting any earlier verification of the same tenant.
// The Aadhaar document row is only written when the record carries one, so an earlier
// document survives a later verification without one.
func (s *verificationStore) SaveVerification(ctx context.Context, record *model.VerificationRecord) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName))

	if record == nil || record.TenantID == "" {
		return errors.New("verification record requires a tenant id")
	}
	validation, err := marshalNullable(record.Validation)
	if err != nil {
		return fmt.Errorf("failed to marshal validation: %w", err)
	}
	warnings, err := marshalNullable(record.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceKYC)
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}
	tx, err := dbClient.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	verificationID := record.VerificationID
	if verificationID == "" {
		verificationID = s.newID()
	}
	_, err = tx.Exec(ctx, QueryUpsertVerification, verificationID, record.TenantID, record.Verified,
		record.VerifiedBy, record.VerifiedAt.UTC(), record.Name, record.DOB, record.Gender, record.Address,
		record.DigilockerID, record.DigilockerTxnID, validation, warnings)
	if err != nil {
		return rollback(tx, logger, fmt.Errorf("failed to write verification: %w", err))
	}

	if a := record.Aadhaar; a != nil {
		_, err = tx.Exec(ctx, QueryUpsertAadhaar, record.TenantID, a.AadhaarNumber, a.Name, a.DOB, a.Gender,
			a.Address, a.Pincode, a.DocumentURI, a.Source, a.Verified, a.XMLSize, a.XMLContentBase64)
		if err != nil {
			return rollback(tx, logger, fmt.Errorf("failed to write aadhaar document: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Debug("Verification saved", log.String(log.LoggerKeyTenantID, record.TenantID),
		log.Bool("withAadhaar", record.Aadhaar != nil))
	return nil
}

// GetVerification retrieves the stored verification of the tenant with its Aadhaar document.
func (s *verificationStore) GetVerification(ctx context.Context, tenantID string) (
	*model.VerificationRecord, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceKYC)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(ctx, QueryGetVerification, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrVerificationNotFound
	}
	record, err := buildVerificationFromResultRow(results[0])
	if err != nil {
		return nil, err
	}

	aadhaarRows, err := dbClient.Query(ctx, QueryGetAadhaar, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(aadhaarRows) > 0 {
		record.Aadhaar = buildAadhaarFromResultRow(aadhaarRows[0])
	}
	return record, nil
}

// Ping checks that the verification table is reachable.
func (s *verificationStore) Ping(ctx context.Context) error {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceKYC)
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}
	if _, err := dbClient.Query(ctx, QueryCheckVerificationTable); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

type rollbacker interface {
	Rollback() error
}

func rollback(tx rollbacker, logger *log.Logger, cause error) error {
	if err := tx.Rollback(); err != nil {
		logger.Error("Failed to rollback transaction", log.Error(err))
		return errors.Join(cause, fmt.Errorf("failed to rollback transaction: %w", err))
	}
	return cause
}

func marshalNullable(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *model.TenantValidation:
		if t == nil {
			return nil, nil
		}
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func buildVerificationFromResultRow(row map[string]interface{}) (*model.VerificationRecord, error) {
	verifiedAt, err := columnTime(row, "verified_at")
	if err != nil {
		return nil, err
	}
	record := &model.VerificationRecord{
		VerificationID:  columnString(row, "verification_id"),
		TenantID:        columnString(row, "tenant_id"),
		Verified:        columnBool(row, "verified"),
		VerifiedBy:      columnString(row, "verified_by"),
		VerifiedAt:      verifiedAt,
		Name:            columnString(row, "name"),
		DOB:             columnString(row, "dob"),
		Gender:          columnString(row, "gender"),
		Address:         columnString(row, "address"),
		DigilockerID:    columnString(row, "digilocker_id"),
		DigilockerTxnID: columnString(row, "digilocker_txn_id"),
	}
	if raw := columnString(row, "validation"); raw != "" {
		record.Validation = &model.TenantValidation{}
		if err := json.Unmarshal([]byte(raw), record.Validation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation: %w", err)
		}
	}
	if raw := columnString(row, "warnings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &record.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return record, nil
}

func buildAadhaarFromResultRow(row map[string]interface{}) *model.AadhaarDocument {
	return &model.AadhaarDocument{
		AadhaarNumber:    columnString(row, "aadhaar_number"),
		Name:             columnString(row, "name"),
		DOB:              columnString(row, "dob"),
		Gender:           columnString(row, "gender"),
		Address:          columnString(row, "address"),
		Pincode:          columnString(row, "pincode"),
		DocumentURI:      columnString(row, "document_uri"),
		Source:           columnString(row, "source"),
		Verified:         columnBool(row, "verified"),
		XMLSize:          int(columnInt64(row, "xml_size")),
		XMLContentBase64: columnString(row, "xml_content"),
	}
}

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

// columnBool reads a boolean column stored natively or as an integer.
func columnBool(row map[string]interface{}, column string) bool {
	switch v := row[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(v))
		return b
	default:
		return false
	}
}

func columnInt64(row map[string]interface{}, column string) int64 {
	switch v := row[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func columnTime(row map[string]interface{}, column string) (time.Time, error) {
	switch v := row[column].(type) {
	case time.Time:
		return v.UTC(), nil
	case nil:
		return time.Time{}, nil
	case string, []byte:
		s := columnString(row, column)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05.999999999"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable %s value %q", column, s)
	default:
		return time.Time{}, fmt.Errorf("unexpected %s type %T", column, v)
	}
}
