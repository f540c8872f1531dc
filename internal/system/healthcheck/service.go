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

// Package healthcheck reports server liveness and the readiness of its dependencies.
package healthcheck

import (
	"context"
	"time"

	"github.com/rentroll/kyc/internal/system/log"
)

const readinessTimeout = 5 * time.Second

// Checker reports the health of one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	ServiceName string
	Fn          func(ctx context.Context) error
}

// Name returns the dependency name.
func (c CheckerFunc) Name() string {
	return c.ServiceName
}

// Check runs the dependency check.
func (c CheckerFunc) Check(ctx context.Context) error {
	return c.Fn(ctx)
}

// HealthCheckServiceInterface defines the interface for the health check service.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) ServerStatus
}

// healthCheckService is the default implementation of HealthCheckServiceInterface.
type healthCheckService struct {
	checkers []Checker
}

// NewHealthCheckService creates a health check service over the given dependency checkers.
func NewHealthCheckService(checkers ...Checker) HealthCheckServiceInterface {
	return &healthCheckService{checkers: checkers}
}

// CheckReadiness checks every dependency. The server is down when any dependency is down.
func (hcs *healthCheckService) CheckReadiness(ctx context.Context) ServerStatus {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	server := ServerStatus{Status: StatusUp, ServiceStatus: make([]ServiceStatus, 0, len(hcs.checkers))}
	for _, c := range hcs.checkers {
		status := StatusUp
		if err := c.Check(ctx); err != nil {
			logger.Error("Dependency check failed", log.String("service", c.Name()), log.Error(err))
			status = StatusDown
			server.Status = StatusDown
		}
		server.ServiceStatus = append(server.ServiceStatus, ServiceStatus{ServiceName: c.Name(), Status: status})
	}
	return server
}
