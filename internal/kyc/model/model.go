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

// Package model defines the verification records produced by the KYC flow.
package model

import "time"

// VerificationRecord is the persisted outcome of a successful verification for a tenant.
type VerificationRecord struct {
	TenantID        string            `json:"tenantId"`
	VerificationID  string            `json:"verificationId,omitempty"`
	Verified        bool              `json:"verified"`
	VerifiedBy      string            `json:"verifiedBy"`
	VerifiedAt      time.Time         `json:"verifiedAt"`
	Name            string            `json:"name"`
	DOB             string            `json:"dob,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	Address         string            `json:"address,omitempty"`
	DigilockerID    string            `json:"digilockerId,omitempty"`
	DigilockerTxnID string            `json:"digilockerTxnId,omitempty"`
	Aadhaar         *AadhaarDocument  `json:"aadhaar,omitempty"`
	Validation      *TenantValidation `json:"validation,omitempty"`
	Warnings        []string          `json:"warnings,omitempty"`
}

// AadhaarDocument is the parsed Aadhaar document attached to a verification.
type AadhaarDocument struct {
	AadhaarNumber    string `json:"aadhaarNumber,omitempty"`
	Name             string `json:"name,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Address          string `json:"address,omitempty"`
	Pincode          string `json:"pincode,omitempty"`
	DocumentURI      string `json:"documentUri,omitempty"`
	Source           string `json:"source"`
	Verified         bool   `json:"verified"`
	XMLSize          int    `json:"xmlSize,omitempty"`
	XMLContentBase64 string `json:"xmlContentBase64,omitempty"`
}

// Name sources used in TenantValidation.
const (
	NameSourceProfile = "profile"
	NameSourceTenant  = "tenant"
)

// TenantValidation records how the verified identity was matched to the tenant.
type TenantValidation struct {
	ExpectedName string  `json:"expectedName"`
	VerifiedName string  `json:"verifiedName"`
	NameSource   string  `json:"nameSource"`
	NameScore    float64 `json:"nameScore"`
	NameMatched  bool    `json:"nameMatched"`
	PhoneChecked bool    `json:"phoneChecked"`
	PhoneMatched bool    `json:"phoneMatched"`
}
