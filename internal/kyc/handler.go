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
	"net/http"

	"github.com/rentroll/kyc/internal/system/error/serviceerror"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/middleware"
	sysutils "github.com/rentroll/kyc/internal/system/utils"
)

const handlerLoggerComponentName = "KYCHandler"

// kycHandler is the handler for verification operations.
type kycHandler struct {
	kycService KYCServiceInterface
}

// newKYCHandler creates a new instance of kycHandler.
func newKYCHandler(kycService KYCServiceInterface) *kycHandler {
	return &kycHandler{
		kycService: kycService,
	}
}

// HandleInitiateRequest handles the start of a verification.
func (kh *kycHandler) HandleInitiateRequest(w http.ResponseWriter, r *http.Request) {
	resp, failure := kh.kycService.Initiate()
	if failure != nil {
		kh.writeResult(w, r, failure)
		return
	}
	sysutils.WriteJSON(w, http.StatusOK, resp)
}

// HandleCallbackRequest handles the authorization callback and runs the verification.
func (kh *kycHandler) HandleCallbackRequest(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := sysutils.DecodeJSONBody(r, &req); err != nil {
		kh.writeError(w, r, ErrorInvalidRequestFormat, http.StatusBadRequest,
			"Failed to parse request body: "+err.Error())
		return
	}
	kh.writeResult(w, r, kh.kycService.HandleCallback(r.Context(), req))
}

// HandleDecodeRequest handles decoding of a QR or XML payload.
func (kh *kycHandler) HandleDecodeRequest(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := sysutils.DecodeJSONBody(r, &req); err != nil {
		kh.writeError(w, r, ErrorInvalidRequestFormat, http.StatusBadRequest,
			"Failed to parse request body: "+err.Error())
		return
	}
	identity, svcErr := kh.kycService.Decode(r.Context(), req.Payload)
	if svcErr != nil {
		kh.writeServiceError(w, r, svcErr)
		return
	}
	sysutils.WriteJSON(w, http.StatusOK, identity)
}

// HandleCrossVerifyRequest handles comparison of a decoded identity with OCR and typed data.
func (kh *kycHandler) HandleCrossVerifyRequest(w http.ResponseWriter, r *http.Request) {
	var req CrossVerifyRequest
	if err := sysutils.DecodeJSONBody(r, &req); err != nil {
		kh.writeError(w, r, ErrorInvalidRequestFormat, http.StatusBadRequest,
			"Failed to parse request body: "+err.Error())
		return
	}
	if req.QR == nil {
		kh.writeError(w, r, ErrorInvalidRequestFormat, http.StatusBadRequest, "qr is required")
		return
	}
	sysutils.WriteJSON(w, http.StatusOK, kh.kycService.CrossVerify(req))
}

// HandleVerificationGetRequest handles retrieval of a tenant's stored verification.
func (kh *kycHandler) HandleVerificationGetRequest(w http.ResponseWriter, r *http.Request) {
	record, svcErr := kh.kycService.GetVerification(r.Context(), r.PathValue("tenantId"))
	if svcErr != nil {
		kh.writeServiceError(w, r, svcErr)
		return
	}
	sysutils.WriteJSON(w, http.StatusOK, record)
}

// HandleMethodNotAllowed answers unsupported methods with the error envelope.
func (kh *kycHandler) HandleMethodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		kh.writeError(w, r, ErrorMethodNotAllowed, http.StatusMethodNotAllowed,
			r.Method+" is not supported, use "+allowed)
	}
}

func (kh *kycHandler) writeServiceError(w http.ResponseWriter, r *http.Request, svcErr *serviceerror.ServiceError) {
	status := http.StatusBadRequest
	if svcErr.Type == serviceerror.ServerErrorType {
		status = http.StatusInternalServerError
	} else if svcErr.Code == ErrorVerificationNotFound.Code {
		status = http.StatusNotFound
	}
	kh.writeError(w, r, *svcErr, status, svcErr.ErrorDescription)
}

func (kh *kycHandler) writeError(w http.ResponseWriter, r *http.Request, svcErr serviceerror.ServiceError,
	status int, message string) {
	kh.writeResult(w, r, &Result{
		HTTPStatus: status,
		Success:    false,
		Stage:      StageToken,
		State:      StateInitiated,
		Code:       svcErr.Code,
		Message:    message,
	})
}

func (kh *kycHandler) writeResult(w http.ResponseWriter, r *http.Request, res *Result) {
	if !res.Success {
		logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
		logger.Debug("Request failed", log.String("path", r.URL.Path), log.String("code", res.Code),
			log.String(log.LoggerKeyStage, string(res.Stage)), log.Int("status", res.HTTPStatus),
			log.String(log.LoggerKeyRequestID, middleware.RequestIDFromContext(r.Context())))
	}
	sysutils.WriteJSON(w, res.HTTPStatus, res)
}
