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

// InitiateResponse is the response of GET /kyc/initiate.
type InitiateResponse struct {
	State            string `json:"state"`
	AuthorizationURL string `json:"authorizationUrl"`
	CodeVerifier     string `json:"codeVerifier"`
	StateCreatedAt   int64  `json:"stateCreatedAt"`
	FlowToken        string `json:"flowToken"`
}

// CallbackRequest is the body of POST /kyc/callback.
type CallbackRequest struct {
	TenantID        string `json:"tenantId"`
	Code            string `json:"code"`
	State           string `json:"state"`
	ExpectedState   string `json:"expectedState,omitempty"`
	StateCreatedAt  string `json:"stateCreatedAt,omitempty"`
	CodeVerifier    string `json:"codeVerifier,omitempty"`
	FlowToken       string `json:"flowToken,omitempty"`
	SimulateFailure string `json:"simulateFailure,omitempty"`
}

// AadhaarDocument is the stored Aadhaar sub-document.
type AadhaarDocument struct {
	AadhaarNumber    string `json:"aadhaarNumber"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	Pincode          string `json:"pincode"`
	DocumentURI      string `json:"documentUri"`
	Verified         bool   `json:"verified"`
	XMLSize          int    `json:"xmlSize"`
	XMLContentBase64 string `json:"xmlContentBase64"`
}

// TenantValidation is the tenant match outcome.
type TenantValidation struct {
	ExpectedName string `json:"expectedName"`
	NameSource   string `json:"nameSource"`
	NameMatched  bool   `json:"nameMatched"`
	PhoneChecked bool   `json:"phoneChecked"`
	PhoneMatched bool   `json:"phoneMatched"`
}

// VerificationRecord is the persisted verification.
type VerificationRecord struct {
	TenantID        string            `json:"tenantId"`
	VerificationID  string            `json:"verificationId"`
	Verified        bool              `json:"verified"`
	VerifiedBy      string            `json:"verifiedBy"`
	Name            string            `json:"name"`
	DOB             string            `json:"dob"`
	Address         string            `json:"address"`
	DigilockerID    string            `json:"digilockerId"`
	DigilockerTxnID string            `json:"digilockerTxnId"`
	Aadhaar         *AadhaarDocument  `json:"aadhaar"`
	Validation      *TenantValidation `json:"validation"`
}

// Result is the callback envelope.
type Result struct {
	HTTPStatus int                 `json:"httpStatus"`
	Success    bool                `json:"success"`
	Stage      string              `json:"stage"`
	State      string              `json:"state"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Retryable  bool                `json:"retryable"`
	Data       *VerificationRecord `json:"data"`
	Warnings   []string            `json:"warnings"`
}
