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
	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/kyc/model"
	"github.com/rentroll/kyc/internal/verification/crossverify"
)

// Stage tags where in the flow a result was produced, so a caller knows where to resume.
type Stage string

const (
	// StageToken covers callback validation and the code exchange.
	StageToken Stage = "token"
	// StageProfile covers the profile fetch.
	StageProfile Stage = "profile"
	// StageWrite covers tenant validation and persistence.
	StageWrite Stage = "write"
)

// State is a step of the verification flow.
type State string

// Flow states in the order they are reached.
const (
	StateInitiated              State = "INITIATED"
	StateStateValidated         State = "STATE_VALIDATED"
	StateCodeExchanged          State = "CODE_EXCHANGED"
	StateProfileFetched         State = "PROFILE_FETCHED"
	StateDocumentsFetched       State = "DOCUMENTS_FETCHED"
	StateValidatedAgainstTenant State = "VALIDATED_AGAINST_TENANT"
	StatePersisted              State = "PERSISTED"
)

// Scopes that grant access to issued documents.
const (
	ScopeIssuedDocuments = "issued_documents"
	ScopeIssuedAadhaar   = "issued:aadhaar"
)

// InitiateResponse starts a verification.
type InitiateResponse struct {
	State            string `json:"state"`
	AuthorizationURL string `json:"authorizationUrl"`
	CodeVerifier     string `json:"codeVerifier"`
	StateCreatedAt   int64  `json:"stateCreatedAt"`
	FlowToken        string `json:"flowToken,omitempty"`
}

// CallbackRequest completes a verification. The expected state, its creation time and the
// code verifier come either from the caller or from a flow token issued at initiation.
type CallbackRequest struct {
	TenantID        string `json:"tenantId"`
	Code            string `json:"code"`
	State           string `json:"state"`
	ExpectedState   string `json:"expectedState"`
	StateCreatedAt  string `json:"stateCreatedAt"`
	CodeVerifier    string `json:"codeVerifier"`
	FlowToken       string `json:"flowToken,omitempty"`
	SimulateFailure string `json:"simulateFailure,omitempty"`
}

// Result is the envelope returned for every callback.
type Result struct {
	HTTPStatus int                       `json:"httpStatus"`
	Success    bool                      `json:"success"`
	Stage      Stage                     `json:"stage"`
	State      State                     `json:"state"`
	Code       string                    `json:"code,omitempty"`
	Message    string                    `json:"message"`
	Retryable  bool                      `json:"retryable,omitempty"`
	Missing    []string                  `json:"missingFields,omitempty"`
	Data       *model.VerificationRecord `json:"data,omitempty"`
	Warnings   []string                  `json:"warnings,omitempty"`
}

// DecodeRequest asks for a QR or XML payload to be decoded.
type DecodeRequest struct {
	Payload string `json:"payload"`
}

// CrossVerifyRequest compares a decoded identity with OCR and typed data.
type CrossVerifyRequest struct {
	QR    *aadhaar.DecodedIdentity `json:"qr"`
	OCR   crossverify.OCRData      `json:"ocr"`
	Typed crossverify.TypedData    `json:"typed"`
}
