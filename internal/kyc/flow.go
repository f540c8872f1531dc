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
	"fmt"
	"slices"

	"github.com/rentroll/kyc/internal/system/log"
)

// transitions lists the states reachable from each state. Documents are optional, so a
// fetched profile may go straight to tenant validation.
var transitions = map[State][]State{
	StateInitiated:              {StateStateValidated},
	StateStateValidated:         {StateCodeExchanged},
	StateCodeExchanged:          {StateProfileFetched},
	StateProfileFetched:         {StateDocumentsFetched, StateValidatedAgainstTenant},
	StateDocumentsFetched:       {StateValidatedAgainstTenant},
	StateValidatedAgainstTenant: {StatePersisted},
}

// flow tracks one verification attempt through its states.
type flow struct {
	tenantID string
	state    State
	warnings []string
	logger   *log.Logger
}

func newFlow(tenantID string, logger *log.Logger) *flow {
	return &flow{
		tenantID: tenantID,
		state:    StateInitiated,
		logger:   logger.With(log.String(log.LoggerKeyTenantID, tenantID)),
	}
}

// advance moves the flow to the next state.
func (f *flow) advance(to State) error {
	if !slices.Contains(transitions[f.state], to) {
		return fmt.Errorf("invalid flow transition %s -> %s", f.state, to)
	}
	if f.logger.IsDebugEnabled() {
		f.logger.Debug("Verification flow transition", log.String("from", string(f.state)),
			log.String("to", string(to)))
	}
	f.state = to
	return nil
}

// fail tags err with the stage and the state the flow failed in.
func (f *flow) fail(stage Stage, err error) error {
	f.logger.Error("Verification flow failed", log.String(log.LoggerKeyStage, string(stage)),
		log.String("state", string(f.state)), log.Error(err))
	return &FlowError{Stage: stage, State: f.state, Err: err}
}

// warn records a recoverable issue on the result.
func (f *flow) warn(err error) {
	f.logger.Warn("Verification flow warning", log.String("state", string(f.state)), log.Error(err))
	f.warnings = append(f.warnings, err.Error())
}
