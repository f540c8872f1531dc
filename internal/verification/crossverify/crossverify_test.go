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

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rentroll/kyc/internal/aadhaar"
)

type CrossVerifyTestSuite struct {
	suite.Suite
	qr *aadhaar.DecodedIdentity
}

func TestCrossVerifyTestSuite(t *testing.T) {
	suite.Run(t, new(CrossVerifyTestSuite))
}

func (suite *CrossVerifyTestSuite) SetupTest() {
	suite.qr = &aadhaar.DecodedIdentity{Name: "RAHUL KUMAR", AadhaarNumber: "8347"}
}

func confidence(v float64) *float64 {
	return &v
}

func (suite *CrossVerifyTestSuite) TestAllChecksMatch() {
	result := CrossVerify(suite.qr,
		OCRData{Name: "Rahul Kumar", AadhaarNumber: "1234 5678 8347", Confidence: confidence(92)},
		TypedData{Name: "Kumar Rahul"})

	suite.Equal(CheckMatch, result.Checks.QRVsTypedName)
	suite.Equal(CheckMatch, result.Checks.QRVsOCRName)
	suite.Equal(CheckMatch, result.Checks.QRVsOCRAadhaarNo)
	suite.Equal(CheckSkipped, result.Checks.QRVsSelfie)
	suite.Equal(StatusVerified, result.OverallStatus)
	suite.Empty(result.Flags)
	suite.Equal(1.0, result.TypedNameScore)
}

func (suite *CrossVerifyTestSuite) TestAadhaarMismatchRejectsEvenWhenNamesMatch() {
	result := CrossVerify(suite.qr,
		OCRData{Name: "RAHUL KUMAR", AadhaarNumber: "1234 5678 9999"},
		TypedData{Name: "RAHUL KUMAR"})

	suite.Equal(CheckMatch, result.Checks.QRVsTypedName)
	suite.Equal(CheckMatch, result.Checks.QRVsOCRName)
	suite.Equal(CheckMismatch, result.Checks.QRVsOCRAadhaarNo)
	suite.Equal(StatusRejected, result.OverallStatus)
	suite.Equal([]string{FlagAadhaarMismatch}, result.Flags)
}

func (suite *CrossVerifyTestSuite) TestFullNumbersAreComparedInFull() {
	qr := &aadhaar.DecodedIdentity{Name: "Asha Rao", AadhaarNumber: "123412341234"}

	result := CrossVerify(qr, OCRData{AadhaarNumber: "1234-1234-1234"}, TypedData{})
	suite.Equal(CheckMatch, result.Checks.QRVsOCRAadhaarNo)

	result = CrossVerify(qr, OCRData{AadhaarNumber: "999912341234"}, TypedData{})
	suite.Equal(CheckMismatch, result.Checks.QRVsOCRAadhaarNo)
	suite.Equal(StatusRejected, result.OverallStatus)
}

func (suite *CrossVerifyTestSuite) TestMaskedNumbersCompareSuffix() {
	qr := &aadhaar.DecodedIdentity{Name: "Asha Rao", AadhaarNumber: "XXXXXXXX1234"}

	result := CrossVerify(qr, OCRData{AadhaarNumber: "5678 9012 1234"}, TypedData{})
	suite.Equal(CheckMatch, result.Checks.QRVsOCRAadhaarNo)
}

func (suite *CrossVerifyTestSuite) TestTypedNameThresholds() {
	result := CrossVerify(suite.qr, OCRData{}, TypedData{Name: "Rahul Sharma"})
	suite.Equal(CheckMismatch, result.Checks.QRVsTypedName)
	suite.Equal(StatusFlagged, result.OverallStatus)
	suite.Equal([]string{FlagTypedNameMisspelt}, result.Flags)

	result = CrossVerify(suite.qr, OCRData{}, TypedData{Name: "Suresh Singh"})
	suite.Equal(CheckMismatch, result.Checks.QRVsTypedName)
	suite.Equal([]string{FlagTypedNameDiffers}, result.Flags)
}

func (suite *CrossVerifyTestSuite) TestLowOCRConfidenceForcesMatch() {
	result := CrossVerify(suite.qr,
		OCRData{Name: "R4HU1 KVNAR", Confidence: confidence(45)},
		TypedData{Name: "Rahul Kumar"})

	suite.Equal(CheckMatch, result.Checks.QRVsOCRName)
	suite.Require().Len(result.Warnings, 1)
	suite.Equal(CheckQRVsOCRName, result.Warnings[0].Check)
	suite.Equal(StatusVerified, result.OverallStatus)
}

func (suite *CrossVerifyTestSuite) TestConfidentOCRMismatchFlags() {
	result := CrossVerify(suite.qr,
		OCRData{Name: "Suresh Singh", Confidence: confidence(95)},
		TypedData{})

	suite.Equal(CheckMismatch, result.Checks.QRVsOCRName)
	suite.Equal(StatusFlagged, result.OverallStatus)
	suite.Equal([]string{FlagOCRNameDiffers}, result.Flags)
	suite.Empty(result.Warnings)
}

func (suite *CrossVerifyTestSuite) TestSelfieIsPending() {
	result := CrossVerify(suite.qr, OCRData{}, TypedData{Selfie: "data:image/jpeg;base64,AAAA"})
	suite.Equal(CheckPending, result.Checks.QRVsSelfie)
	suite.Equal(StatusPending, result.OverallStatus)

	result = CrossVerify(suite.qr, OCRData{}, TypedData{Name: "Rahul Kumar", Selfie: "data:image/jpeg;base64,AAAA"})
	suite.Equal(StatusVerified, result.OverallStatus)
}

func (suite *CrossVerifyTestSuite) TestNothingToCompare() {
	result := CrossVerify(nil, OCRData{}, TypedData{})

	suite.Equal(CheckSkipped, result.Checks.QRVsTypedName)
	suite.Equal(CheckSkipped, result.Checks.QRVsOCRName)
	suite.Equal(CheckSkipped, result.Checks.QRVsOCRAadhaarNo)
	suite.Equal(StatusPending, result.OverallStatus)
	suite.NotNil(result.Flags)
}

func (suite *CrossVerifyTestSuite) TestSuffixWithSeparatorsComparesSuffix() {
	qr := &aadhaar.DecodedIdentity{Name: "Asha Rao", AadhaarNumber: "83 47"}

	result := CrossVerify(qr, OCRData{AadhaarNumber: "1234 5678 8347"}, TypedData{})
	suite.Equal(CheckMatch, result.Checks.QRVsOCRAadhaarNo)

	result = CrossVerify(qr, OCRData{AadhaarNumber: "1234 5678 9999"}, TypedData{})
	suite.Equal(StatusRejected, result.OverallStatus)
}

func (suite *CrossVerifyTestSuite) TestSkippedChecksDoNotHoldBackVerdict() {
	result := CrossVerify(suite.qr, OCRData{}, TypedData{Name: "Rahul Kumar"})

	suite.Equal(CheckMatch, result.Checks.QRVsTypedName)
	suite.Equal(CheckSkipped, result.Checks.QRVsOCRName)
	suite.Equal(CheckSkipped, result.Checks.QRVsOCRAadhaarNo)
	suite.Equal(CheckSkipped, result.Checks.QRVsSelfie)
	suite.Equal(StatusVerified, result.OverallStatus)
}
