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

package healthcheck

import (
	"net/http"

	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/utils"
)

// HealthCheckHandler defines the handler for managing health check API requests.
type HealthCheckHandler struct {
	service HealthCheckServiceInterface
}

// NewHealthCheckHandler creates a new instance of HealthCheckHandler.
func NewHealthCheckHandler(service HealthCheckServiceInterface) *HealthCheckHandler {
	return &HealthCheckHandler{service: service}
}

// HandleLivenessRequest handles the health check liveness request.
func (hch *HealthCheckHandler) HandleLivenessRequest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadinessRequest handles the health check readiness request.
func (hch *HealthCheckHandler) HandleReadinessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	serverStatus := hch.service.CheckReadiness(r.Context())
	status := http.StatusOK
	if serverStatus.Status != StatusUp {
		logger.Error("Readiness check failed", log.String("serverStatus", string(serverStatus.Status)))
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, status, serverStatus)
}

// RegisterRoutes registers the health check routes on mux.
func RegisterRoutes(mux *http.ServeMux, handler *HealthCheckHandler) {
	mux.HandleFunc("GET /health/liveness", handler.HandleLivenessRequest)
	mux.HandleFunc("GET /health/readiness", handler.HandleReadinessRequest)
}
