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

// Package crossverify compares an identity decoded from an Aadhaar QR code with OCR output and
// user-entered data, and derives a verdict.
package crossverify

import (
	"fmt"
	"strings"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/verification/fuzzy"
)

const (
	// LowOCRConfidence is the OCR confidence below which an OCR name mismatch is not enforced.
	LowOCRConfidence = 70.0
	// NameMismatchThreshold separates a likely misspelling from a different person.
	NameMismatchThreshold = 0.5

	suffixLength = 4
)

// Flag texts.
const (
	FlagTypedNameMisspelt = "Name on Aadhaar differs slightly from the entered name; check spelling or confirm the correct card"
	FlagTypedNameDiffers  = "Name on Aadhaar does not match the entered name; the card may belong to a different person"
	FlagOCRNameMisread    = "Name on Aadhaar differs slightly from the name read from the card image"
	FlagOCRNameDiffers    = "Name on Aadhaar does not match the name read from the card image"
	FlagAadhaarMismatch   = "Aadhaar number on the QR code does not match the number on the card"
)

// CrossVerify compares qr against ocr and typed. Any Aadhaar number mismatch rejects the
// result; any other mismatch flags it; it is verified when every decided check matched.
func CrossVerify(qr *aadhaar.DecodedIdentity, ocr OCRData, typed TypedData) *Result {
	if qr == nil {
		qr = &aadhaar.DecodedIdentity{}
	}
	r := &Result{Flags: []string{}}

	r.Checks.QRVsTypedName, r.TypedNameScore = compareTypedName(r, qr.Name, typed.Name)
	r.Checks.QRVsOCRName, r.OCRNameScore = compareOCRName(r, qr.Name, ocr)
	r.Checks.QRVsOCRAadhaarNo = compareAadhaarNumbers(r, qr, ocr.AadhaarNumber)
	r.Checks.QRVsSelfie = CheckSkipped
	if strings.TrimSpace(typed.Selfie) != "" {
		r.Checks.QRVsSelfie = CheckPending
	}

	r.OverallStatus = overall(r.Checks)
	return r
}

func compareTypedName(r *Result, qrName, typedName string) (CheckState, float64) {
	if strings.TrimSpace(qrName) == "" || strings.TrimSpace(typedName) == "" {
		return CheckSkipped, 0
	}
	score := fuzzy.Similarity(qrName, typedName)
	switch {
	case score >= fuzzy.MatchThreshold:
		return CheckMatch, score
	case score >= NameMismatchThreshold:
		r.Flags = append(r.Flags, FlagTypedNameMisspelt)
	default:
		r.Flags = append(r.Flags, FlagTypedNameDiffers)
	}
	return CheckMismatch, score
}

func compareOCRName(r *Result, qrName string, ocr OCRData) (CheckState, float64) {
	if strings.TrimSpace(qrName) == "" || strings.TrimSpace(ocr.Name) == "" {
		return CheckSkipped, 0
	}
	score := fuzzy.Similarity(qrName, ocr.Name)
	if score >= fuzzy.MatchThreshold {
		return CheckMatch, score
	}
	if ocr.Confidence != nil && *ocr.Confidence < LowOCRConfidence {
		r.Warnings = append(r.Warnings, Warning{
			Check: CheckQRVsOCRName,
			Message: fmt.Sprintf("OCR confidence is low (%.0f%%); name difference was not enforced",
				*ocr.Confidence),
		})
		return CheckMatch, score
	}
	if score >= NameMismatchThreshold {
		r.Flags = append(r.Flags, FlagOCRNameMisread)
	} else {
		r.Flags = append(r.Flags, FlagOCRNameDiffers)
	}
	return CheckMismatch, score
}

// compareAadhaarNumbers compares the last four characters when either side is a suffix or
// masked, and the full normalized numbers otherwise.
func compareAadhaarNumbers(r *Result, qr *aadhaar.DecodedIdentity, ocrNumber string) CheckState {
	q := fuzzy.NormalizeAadhaarNumber(qr.AadhaarNumber)
	o := fuzzy.NormalizeAadhaarNumber(ocrNumber)
	if q == "" || o == "" {
		return CheckSkipped
	}

	same := q == o
	if qr.IsSuffixOnly() || len(o) == suffixLength || isMasked(q) || isMasked(o) {
		same = len(q) >= suffixLength && len(o) >= suffixLength &&
			q[len(q)-suffixLength:] == o[len(o)-suffixLength:]
	}
	if same {
		return CheckMatch
	}
	r.Flags = append(r.Flags, FlagAadhaarMismatch)
	return CheckMismatch
}

func isMasked(s string) bool {
	return strings.ContainsAny(s, "xX*")
}

// overall ignores pending and skipped checks; a selfie awaiting face matching does not hold
// back a verdict reached on the other checks.
func overall(c Checks) OverallStatus {
	if c.QRVsOCRAadhaarNo == CheckMismatch {
		return StatusRejected
	}
	decided := 0
	for _, s := range []CheckState{c.QRVsTypedName, c.QRVsOCRName, c.QRVsOCRAadhaarNo, c.QRVsSelfie} {
		switch s {
		case CheckMismatch:
			return StatusFlagged
		case CheckMatch:
			decided++
		}
	}
	if decided > 0 {
		return StatusVerified
	}
	return StatusPending
}
