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

package crossverify

// CheckState is the outcome of a single comparison.
type CheckState string

const (
	// CheckMatch means both sources agree.
	CheckMatch CheckState = "match"
	// CheckMismatch means the sources disagree.
	CheckMismatch CheckState = "mismatch"
	// CheckPending means the comparison needs an external decision.
	CheckPending CheckState = "pending"
	// CheckSkipped means one side of the comparison was not supplied.
	CheckSkipped CheckState = "skipped"
)

// OverallStatus is the combined verdict.
type OverallStatus string

const (
	// StatusVerified is returned when every decided check matched.
	StatusVerified OverallStatus = "verified"
	// StatusFlagged is returned when a name check mismatched.
	StatusFlagged OverallStatus = "flagged"
	// StatusRejected is returned when the Aadhaar number mismatched.
	StatusRejected OverallStatus = "rejected"
	// StatusPending is returned when nothing could be decided.
	StatusPending OverallStatus = "pending"
)

// Check names used in warnings.
const (
	CheckQRVsTypedName    = "qrVsTypedName"
	CheckQRVsOCRName      = "qrVsOcrName"
	CheckQRVsOCRAadhaarNo = "qrVsOcrAadhaarNo"
	CheckQRVsSelfie       = "qrVsSelfie"
)

// OCRData is the text read from a photographed card.
type OCRData struct {
	Name          string `json:"name,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
	// Confidence is the OCR engine's confidence in percent. Nil when not reported.
	Confidence *float64 `json:"confidence,omitempty"`
}

// TypedData is what the tenant entered by hand.
type TypedData struct {
	Name   string `json:"name,omitempty"`
	Selfie string `json:"selfie,omitempty"`
}

// Checks holds the per-comparison outcomes.
type Checks struct {
	QRVsTypedName    CheckState `json:"qrVsTypedName"`
	QRVsOCRName      CheckState `json:"qrVsOcrName"`
	QRVsOCRAadhaarNo CheckState `json:"qrVsOcrAadhaarNo"`
	QRVsSelfie       CheckState `json:"qrVsSelfie"`
}

// Warning is a recoverable issue that did not change a check's outcome.
type Warning struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// Result is the outcome of CrossVerify.
type Result struct {
	Checks         Checks        `json:"checks"`
	OverallStatus  OverallStatus `json:"overallStatus"`
	Flags          []string      `json:"flags"`
	Warnings       []Warning     `json:"warnings,omitempty"`
	TypedNameScore float64       `json:"typedNameScore,omitempty"`
	OCRNameScore   float64       `json:"ocrNameScore,omitempty"`
}
