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

package oauth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyAuthorizationCode is returned when the callback carries no code.
	ErrEmptyAuthorizationCode = errors.New("authorization code is empty")
	// ErrEmptyAccessToken is returned when a profile is requested without an access token.
	ErrEmptyAccessToken = errors.New("access token is empty")
)

// ConfigError lists the client registration fields that are missing, placeholders or invalid.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "digilocker configuration is incomplete; missing or invalid: " + strings.Join(e.Fields, ", ")
}

// StateError is returned when the callback state is missing, mismatched or expired.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "invalid authorization state: " + e.Reason
}

// TimeoutError is returned when a provider call exceeds the request timeout.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// TokenExchangeError is returned when the token endpoint rejects the code or answers without an
// access token. Status is zero when no HTTP response was received.
type TokenExchangeError struct {
	Status int
	Body   string
	Err    error
}

func (e *TokenExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// ProfileFetchError is returned when every profile endpoint failed. Err is the last failure.
type ProfileFetchError struct {
	Attempts int
	Err      error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("profile fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ProfileFetchError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a non-2xx answer from a provider endpoint.
type HTTPStatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.Status, e.Body)
}
