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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type HealthCheckTestSuite struct {
	suite.Suite
	mux *http.ServeMux
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) register(checkers ...Checker) {
	suite.mux = http.NewServeMux()
	RegisterRoutes(suite.mux, NewHealthCheckHandler(NewHealthCheckService(checkers...)))
}

func up(name string) Checker {
	return CheckerFunc{ServiceName: name, Fn: func(ctx context.Context) error { return nil }}
}

func down(name string) Checker {
	return CheckerFunc{ServiceName: name, Fn: func(ctx context.Context) error { return errors.New("unreachable") }}
}

func (suite *HealthCheckTestSuite) TestLiveness() {
	suite.register(down("VerificationDB"))

	rec := httptest.NewRecorder()
	suite.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HealthCheckTestSuite) TestReadiness() {
	testCases := []struct {
		name       string
		checkers   []Checker
		wantCode   int
		wantStatus Status
		wantDown   []string
	}{
		{
			name:       "AllUp",
			checkers:   []Checker{up("VerificationDB"), up("DigiLocker")},
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name:       "OneDown",
			checkers:   []Checker{up("VerificationDB"), down("DigiLocker")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDown,
			wantDown:   []string{"DigiLocker"},
		},
		{
			name:       "NoCheckers",
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.register(tc.checkers...)

			rec := httptest.NewRecorder()
			suite.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
			suite.Equal(tc.wantCode, rec.Code)

			var got ServerStatus
			suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
			suite.Equal(tc.wantStatus, got.Status)
			suite.Len(got.ServiceStatus, len(tc.checkers))

			var gotDown []string
			for _, s := range got.ServiceStatus {
				if s.Status == StatusDown {
					gotDown = append(gotDown, s.ServiceName)
				}
			}
			suite.Equal(tc.wantDown, gotDown)
		})
	}
}
