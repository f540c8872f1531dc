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

package kyc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rentroll/kyc/internal/digilocker/oauth"
	"github.com/rentroll/kyc/internal/system/error/serviceerror"
	"github.com/rentroll/kyc/internal/tenant"
)

// Client errors for verification operations.
var (
	// ErrorInvalidRequestFormat is the error returned when the request body cannot be parsed.
	ErrorInvalidRequestFormat = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1001",
		Error:            "Invalid request format",
		ErrorDescription: "The request body is malformed or contains invalid data",
	}
	// ErrorMissingTenantID is the error returned when the tenant id is missing.
	ErrorMissingTenantID = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1002",
		Error:            "Invalid request",
		ErrorDescription: "tenantId is required",
	}
	// ErrorMissingCode is the error returned when the authorization code is missing.
	ErrorMissingCode = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1003",
		Error:            "Invalid request",
		ErrorDescription: "code is required",
	}
	// ErrorMissingState is the error returned when the state parameter is missing.
	ErrorMissingState = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1004",
		Error:            "Invalid request",
		ErrorDescription: "state is required",
	}
	// ErrorInvalidState is the error returned when the callback state is rejected.
	ErrorInvalidState = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1005",
		Error:            "Invalid state",
		ErrorDescription: "The authorization state is invalid or expired, restart the verification",
	}
	// ErrorNameMismatch is the error returned when the verified name does not match the tenant.
	ErrorNameMismatch = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1006",
		Error:            "Name mismatch",
		ErrorDescription: "The verified name does not match the tenant",
	}
	// ErrorPhoneMismatch is the error returned when the verified phone does not match the tenant.
	ErrorPhoneMismatch = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1007",
		Error:            "Phone mismatch",
		ErrorDescription: "The verified phone number does not match the tenant",
	}
	// ErrorTenantNotFound is the error returned when the tenant does not exist.
	ErrorTenantNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1008",
		Error:            "Tenant not found",
		ErrorDescription: "The tenant with the specified id does not exist",
	}
	// ErrorMethodNotAllowed is the error returned for unsupported HTTP methods.
	ErrorMethodNotAllowed = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1009",
		Error:            "Method not allowed",
		ErrorDescription: "The HTTP method is not supported for this resource",
	}
	// ErrorInvalidFlowToken is the error returned when a flow token cannot be opened.
	ErrorInvalidFlowToken = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1010",
		Error:            "Invalid flow token",
		ErrorDescription: "The flow token is invalid, restart the verification",
	}
	// ErrorMissingPayload is the error returned when a decode request carries no payload.
	ErrorMissingPayload = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1011",
		Error:            "Invalid request",
		ErrorDescription: "payload is required",
	}
	// ErrorVerificationNotFound is the error returned when a tenant has no stored verification.
	ErrorVerificationNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "KYC-1012",
		Error:            "Verification not found",
		ErrorDescription: "The tenant has no stored verification",
	}
)

// Server errors for verification operations.
var (
	// ErrorConfigIncomplete is the error returned when the provider registration is incomplete.
	ErrorConfigIncomplete = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5001",
		Error:            "Configuration incomplete",
		ErrorDescription: "The identity provider client registration is incomplete",
	}
	// ErrorTokenExchange is the error returned when the authorization code exchange fails.
	ErrorTokenExchange = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5002",
		Error:            "Token exchange failed",
		ErrorDescription: "The identity provider rejected the authorization code",
	}
	// ErrorProviderTimeout is the error returned when the provider does not answer in time.
	ErrorProviderTimeout = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5003",
		Error:            "Provider timeout",
		ErrorDescription: "The identity provider did not respond in time, retry the verification",
	}
	// ErrorProfileFetch is the error returned when no profile endpoint answers.
	ErrorProfileFetch = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5004",
		Error:            "Profile fetch failed",
		ErrorDescription: "The account profile could not be retrieved from the identity provider",
	}
	// ErrorStorageWrite is the error returned when the verification cannot be stored.
	ErrorStorageWrite = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5005",
		Error:            "Storage write failed",
		ErrorDescription: "The verification record could not be stored",
	}
	// ErrorSimulatedFailure is the error returned for an injected failure.
	ErrorSimulatedFailure = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5006",
		Error:            "Simulated failure",
		ErrorDescription: "A failure was injected for this stage",
	}
	// ErrorInternalServerError is the error returned when an unexpected error occurs.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "KYC-5007",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while processing the request",
	}
)

// InputError is a missing or malformed callback input.
type InputError struct {
	ServiceError serviceerror.ServiceError
	Err          error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.ServiceError.ErrorDescription + ": " + e.Err.Error()
	}
	return e.ServiceError.ErrorDescription
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// DocumentError is a document retrieval or decode failure. It is reported as a warning and
// never fails a verification.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s failed: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NameMismatchError is returned when the verified name does not belong to the tenant.
type NameMismatchError struct {
	Expected string
	Actual   string
	Source   string
	Score    float64
}

func (e *NameMismatchError) Error() string {
	if e.Expected == "" || e.Actual == "" {
		return "name could not be compared: tenant or verified name is empty"
	}
	return fmt.Sprintf("verified name %q does not match %s name %q (score %.2f)",
		e.Actual, e.Source, e.Expected, e.Score)
}

// PhoneMismatchError is returned when the verified phone number does not belong to the tenant.
// Both numbers are kept masked.
type PhoneMismatchError struct {
	Expected string
	Actual   string
}

func (e *PhoneMismatchError) Error() string {
	return fmt.Sprintf("verified phone %s does not match tenant phone %s", e.Actual, e.Expected)
}

// StorageWriteError is returned when the verification record cannot be stored.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to store verification: %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// InjectedFailureError is raised when a failure is simulated for a stage.
type InjectedFailureError struct {
	Stage Stage
}

func (e *InjectedFailureError) Error() string {
	return fmt.Sprintf("simulated %s failure", e.Stage)
}

// FlowError is a failure of the verification flow at a given stage and state.
type FlowError struct {
	Stage Stage
	State State
	Err   error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s stage failed in state %s: %v", e.Stage, e.State, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// stageFor returns the stage a failure belongs to.
func stageFor(err error) Stage {
	var (
		flowErr    *FlowError
		injected   *InjectedFailureError
		profileErr *oauth.ProfileFetchError
		nameErr    *NameMismatchError
		phoneErr   *PhoneMismatchError
		storageErr *StorageWriteError
	)
	switch {
	case errors.As(err, &flowErr):
		return flowErr.Stage
	case errors.As(err, &injected):
		return injected.Stage
	case errors.As(err, &profileErr):
		return StageProfile
	case errors.As(err, &nameErr), errors.As(err, &phoneErr), errors.As(err, &storageErr),
		errors.Is(err, tenant.ErrTenantNotFound):
		return StageWrite
	default:
		return StageToken
	}
}

// describe maps a failure to its service error, HTTP status and whether retrying may help.
func describe(err error) (svcErr serviceerror.ServiceError, status int, retryable bool) {
	var (
		inputErr   *InputError
		configErr  *oauth.ConfigError
		stateErr   *oauth.StateError
		timeoutErr *oauth.TimeoutError
		tokenErr   *oauth.TokenExchangeError
		profileErr *oauth.ProfileFetchError
		nameErr    *NameMismatchError
		phoneErr   *PhoneMismatchError
		storageErr *StorageWriteError
		injected   *InjectedFailureError
	)
	switch {
	case errors.As(err, &inputErr):
		return inputErr.ServiceError, http.StatusBadRequest, false
	case errors.Is(err, oauth.ErrEmptyAuthorizationCode):
		return ErrorMissingCode, http.StatusBadRequest, false
	case errors.Is(err, oauth.ErrFlowTokenInvalid):
		return ErrorInvalidFlowToken, http.StatusBadRequest, false
	case errors.As(err, &stateErr):
		return ErrorInvalidState, http.StatusBadRequest, false
	case errors.Is(err, tenant.ErrTenantNotFound):
		return ErrorTenantNotFound, http.StatusBadRequest, false
	case errors.As(err, &injected):
		return ErrorSimulatedFailure, http.StatusInternalServerError, false
	case errors.As(err, &configErr):
		return ErrorConfigIncomplete, http.StatusInternalServerError, false
	case errors.As(err, &timeoutErr):
		return ErrorProviderTimeout, http.StatusInternalServerError, true
	case errors.As(err, &tokenErr):
		return ErrorTokenExchange, http.StatusInternalServerError, false
	case errors.As(err, &profileErr):
		return ErrorProfileFetch, http.StatusInternalServerError, false
	case errors.As(err, &nameErr):
		return ErrorNameMismatch, http.StatusInternalServerError, false
	case errors.As(err, &phoneErr):
		return ErrorPhoneMismatch, http.StatusInternalServerError, false
	case errors.As(err, &storageErr):
		return ErrorStorageWrite, http.StatusInternalServerError, false
	default:
		return ErrorInternalServerError, http.StatusInternalServerError, false
	}
}
