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
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// stateLength is the number of random bytes in a state value.
const stateLength = 32

// maxClockSkew is how far in the future a state timestamp may be.
const maxClockSkew = time.Minute

// Callback rejection reasons.
const (
	ReasonMissingState     = "state is missing"
	ReasonStateMismatch    = "state does not match the issued state"
	ReasonInvalidTimestamp = "state timestamp is not numeric"
	ReasonExpired          = "state has expired"
	ReasonFutureTimestamp  = "state timestamp is in the future"
)

// NewPKCEChallenge creates a 43 character verifier and its S256 challenge.
func NewPKCEChallenge() PKCEChallenge {
	verifier := oauth2.GenerateVerifier()
	return PKCEChallenge{
		CodeVerifier:  verifier,
		CodeChallenge: oauth2.S256ChallengeFromVerifier(verifier),
	}
}

// GenerateState creates a random URL-safe state value.
func GenerateState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateCallback checks a returned state against the issued one. createdAt is the issue time
// in epoch milliseconds. A state is accepted while its age is at most ttl.
func ValidateCallback(state, expected, createdAt string, now time.Time, ttl time.Duration) CallbackValidation {
	if strings.TrimSpace(state) == "" || strings.TrimSpace(expected) == "" {
		return CallbackValidation{Reason: ReasonMissingState}
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		return CallbackValidation{Reason: ReasonStateMismatch}
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(createdAt), 10, 64)
	if err != nil {
		return CallbackValidation{Reason: ReasonInvalidTimestamp}
	}
	age := now.Sub(time.UnixMilli(ms))
	switch {
	case age > ttl:
		return CallbackValidation{Reason: ReasonExpired}
	case age < -maxClockSkew:
		return CallbackValidation{Reason: ReasonFutureTimestamp}
	}
	return CallbackValidation{OK: true}
}
