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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/kyc/model"
	"github.com/rentroll/kyc/internal/system/error/serviceerror"
	"github.com/rentroll/kyc/internal/verification/crossverify"
)

// kycServiceMock is a testify mock of KYCServiceInterface.
type kycServiceMock struct {
	mock.Mock
}

func (m *kycServiceMock) Initiate() (*InitiateResponse, *Result) {
	args := m.Called()
	resp, _ := args.Get(0).(*InitiateResponse)
	res, _ := args.Get(1).(*Result)
	return resp, res
}

func (m *kycServiceMock) HandleCallback(ctx context.Context, req CallbackRequest) *Result {
	res, _ := m.Called(ctx, req).Get(0).(*Result)
	return res
}

func (m *kycServiceMock) Decode(ctx context.Context, payload string) (*aadhaar.DecodedIdentity,
	*serviceerror.ServiceError) {
	args := m.Called(ctx, payload)
	identity, _ := args.Get(0).(*aadhaar.DecodedIdentity)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return identity, svcErr
}

func (m *kycServiceMock) CrossVerify(req CrossVerifyRequest) *crossverify.Result {
	res, _ := m.Called(req).Get(0).(*crossverify.Result)
	return res
}

func (m *kycServiceMock) GetVerification(ctx context.Context, tenantID string) (*model.VerificationRecord,
	*serviceerror.ServiceError) {
	args := m.Called(ctx, tenantID)
	record, _ := args.Get(0).(*model.VerificationRecord)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return record, svcErr
}

type KYCHandlerTestSuite struct {
	suite.Suite
	service *kycServiceMock
	mux     *http.ServeMux
}

func TestKYCHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(KYCHandlerTestSuite))
}

func (suite *KYCHandlerTestSuite) SetupTest() {
	suite.service = &kycServiceMock{}
	suite.mux = http.NewServeMux()
	Initialize(suite.mux, suite.service)
}

func (suite *KYCHandlerTestSuite) TearDownTest() {
	suite.service.AssertExpectations(suite.T())
}

func (suite *KYCHandlerTestSuite) serve(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	suite.mux.ServeHTTP(rr, req)
	return rr
}

func (suite *KYCHandlerTestSuite) decodeResult(rr *httptest.ResponseRecorder) Result {
	var res Result
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func (suite *KYCHandlerTestSuite) TestInitiate() {
	suite.service.On("Initiate").Return(&InitiateResponse{State: "st", AuthorizationURL: "https://dl/authorize",
		CodeVerifier: "cv", StateCreatedAt: 1700000000000}, nil)

	rr := suite.serve(http.MethodGet, "/kyc/initiate", "")

	suite.Equal(http.StatusOK, rr.Code)
	var resp InitiateResponse
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	suite.Equal("st", resp.State)
	suite.Equal(int64(1700000000000), resp.StateCreatedAt)
	suite.Empty(resp.FlowToken)
}

func (suite *KYCHandlerTestSuite) TestInitiateFailure() {
	suite.service.On("Initiate").Return(nil, &Result{HTTPStatus: http.StatusInternalServerError,
		Stage: StageToken, State: StateInitiated, Code: ErrorConfigIncomplete.Code,
		Missing: []string{"client_id"}})

	rr := suite.serve(http.MethodGet, "/kyc/initiate", "")

	suite.Equal(http.StatusInternalServerError, rr.Code)
	res := suite.decodeResult(rr)
	suite.Equal(ErrorConfigIncomplete.Code, res.Code)
	suite.Equal([]string{"client_id"}, res.Missing)
}

func (suite *KYCHandlerTestSuite) TestCallback() {
	suite.service.On("HandleCallback", mock.Anything, CallbackRequest{
		TenantID: "t-1", Code: "c", State: "s", ExpectedState: "s", StateCreatedAt: "1700000000000",
		CodeVerifier: "cv", SimulateFailure: "profile",
	}).Return(&Result{HTTPStatus: http.StatusInternalServerError, Stage: StageProfile,
		State: StateCodeExchanged, Code: ErrorSimulatedFailure.Code, Message: "simulated"})

	rr := suite.serve(http.MethodPost, "/kyc/callback", `{"tenantId":"t-1","code":"c","state":"s",`+
		`"expectedState":"s","stateCreatedAt":"1700000000000","codeVerifier":"cv","simulateFailure":"profile"}`)

	suite.Equal(http.StatusInternalServerError, rr.Code)
	res := suite.decodeResult(rr)
	suite.False(res.Success)
	suite.Equal(StageProfile, res.Stage)
	suite.Equal(StateCodeExchanged, res.State)
	suite.Equal(http.StatusInternalServerError, res.HTTPStatus)
}

func (suite *KYCHandlerTestSuite) TestCallbackMalformedBody() {
	testCases := []struct {
		name string
		body string
	}{
		{"Empty", ""},
		{"NotJSON", "tenantId=t-1"},
		{"WrongType", `{"tenantId":1}`},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			rr := suite.serve(http.MethodPost, "/kyc/callback", tc.body)

			suite.Equal(http.StatusBadRequest, rr.Code)
			res := suite.decodeResult(rr)
			suite.Equal(ErrorInvalidRequestFormat.Code, res.Code)
			suite.Equal(StageToken, res.Stage)
			suite.Contains(res.Message, "Failed to parse request body")
		})
	}
}

func (suite *KYCHandlerTestSuite) TestMethodNotAllowed() {
	testCases := []struct {
		method    string
		path      string
		wantAllow string
	}{
		{http.MethodGet, "/kyc/callback", "POST, OPTIONS"},
		{http.MethodPut, "/kyc/callback", "POST, OPTIONS"},
		{http.MethodPost, "/kyc/initiate", "GET, OPTIONS"},
		{http.MethodDelete, "/kyc/verifications/t-1", "GET, OPTIONS"},
	}

	for _, tc := range testCases {
		suite.Run(tc.method+tc.path, func() {
			rr := suite.serve(tc.method, tc.path, "")

			suite.Equal(http.StatusMethodNotAllowed, rr.Code)
			suite.Equal(tc.wantAllow, rr.Header().Get("Allow"))
			res := suite.decodeResult(rr)
			suite.False(res.Success)
			suite.Equal(ErrorMethodNotAllowed.Code, res.Code)
			suite.Equal(http.StatusMethodNotAllowed, res.HTTPStatus)
		})
	}
}

func (suite *KYCHandlerTestSuite) TestPreflight() {
	rr := suite.serve(http.MethodOptions, "/kyc/callback", "")

	suite.Equal(http.StatusNoContent, rr.Code)
	suite.Empty(rr.Body.String())
}

func (suite *KYCHandlerTestSuite) TestDecode() {
	suite.service.On("Decode", mock.Anything, "<Certificate/>").Return(&aadhaar.DecodedIdentity{
		Success: true, Name: "Rahul Kumar", Source: aadhaar.SourceXML}, nil)

	rr := suite.serve(http.MethodPost, "/kyc/decode", `{"payload":"<Certificate/>"}`)

	suite.Equal(http.StatusOK, rr.Code)
	var identity aadhaar.DecodedIdentity
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &identity))
	suite.Equal("Rahul Kumar", identity.Name)
}

func (suite *KYCHandlerTestSuite) TestDecodeMissingPayload() {
	suite.service.On("Decode", mock.Anything, "").Return(nil, &ErrorMissingPayload)

	rr := suite.serve(http.MethodPost, "/kyc/decode", `{}`)

	suite.Equal(http.StatusBadRequest, rr.Code)
	suite.Equal(ErrorMissingPayload.Code, suite.decodeResult(rr).Code)
}

func (suite *KYCHandlerTestSuite) TestCrossVerify() {
	qr := &aadhaar.DecodedIdentity{Success: true, Name: "Rahul Kumar"}
	suite.service.On("CrossVerify", CrossVerifyRequest{QR: qr, Typed: crossverify.TypedData{Name: "Rahul Kumar"}}).
		Return(&crossverify.Result{OverallStatus: crossverify.StatusVerified, Flags: []string{}})

	rr := suite.serve(http.MethodPost, "/kyc/cross-verify",
		`{"qr":{"success":true,"name":"Rahul Kumar"},"typed":{"name":"Rahul Kumar"}}`)

	suite.Equal(http.StatusOK, rr.Code)
	var res crossverify.Result
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &res))
	suite.Equal(crossverify.StatusVerified, res.OverallStatus)
}

func (suite *KYCHandlerTestSuite) TestCrossVerifyRequiresQR() {
	rr := suite.serve(http.MethodPost, "/kyc/cross-verify", `{"typed":{"name":"Rahul Kumar"}}`)

	suite.Equal(http.StatusBadRequest, rr.Code)
	suite.Equal(ErrorInvalidRequestFormat.Code, suite.decodeResult(rr).Code)
}

func (suite *KYCHandlerTestSuite) TestGetVerification() {
	suite.service.On("GetVerification", mock.Anything, "t-1").Return(&model.VerificationRecord{
		TenantID: "t-1", Verified: true, Name: "Rahul Kumar"}, nil)
	suite.service.On("GetVerification", mock.Anything, "t-2").Return(nil, &ErrorVerificationNotFound)
	suite.service.On("GetVerification", mock.Anything, "t-3").Return(nil, &ErrorInternalServerError)

	rr := suite.serve(http.MethodGet, "/kyc/verifications/t-1", "")
	suite.Equal(http.StatusOK, rr.Code)
	var record model.VerificationRecord
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &record))
	suite.Equal("Rahul Kumar", record.Name)

	rr = suite.serve(http.MethodGet, "/kyc/verifications/t-2", "")
	suite.Equal(http.StatusNotFound, rr.Code)
	suite.Equal(ErrorVerificationNotFound.Code, suite.decodeResult(rr).Code)

	rr = suite.serve(http.MethodGet, "/kyc/verifications/t-3", "")
	suite.Equal(http.StatusInternalServerError, rr.Code)
}
