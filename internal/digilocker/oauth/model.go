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
	"net/url"
	"strings"
	"time"

	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/constants"
)

// DefaultTestRedirectURI is used for synthetic redirects when no redirect URI is configured.
const DefaultTestRedirectURI = "https://localhost/kyc/callback"

// Config is the DigiLocker client registration. It is immutable once a service is created.
type Config struct {
	ClientID              string
	ClientSecret          string
	RedirectURI           string
	AuthorizationEndpoint string
	TokenEndpoint         string
	ProfileEndpoint       string
	BaseURL               string
	Scopes                []string
	RequestTimeout        time.Duration
	StateTTL              time.Duration
	TestMode              bool
}

// NewConfig builds a Config from the server configuration, applying defaults.
func NewConfig(dl config.DigiLockerConfig) Config {
	cfg := Config{
		ClientID:              strings.TrimSpace(dl.ClientID),
		ClientSecret:          strings.TrimSpace(dl.ClientSecret),
		RedirectURI:           strings.TrimSpace(dl.RedirectURI),
		AuthorizationEndpoint: strings.TrimSpace(dl.AuthorizationEndpoint),
		TokenEndpoint:         strings.TrimSpace(dl.TokenEndpoint),
		ProfileEndpoint:       strings.TrimSpace(dl.ProfileEndpoint),
		BaseURL:               strings.TrimRight(strings.TrimSpace(dl.BaseURL), "/"),
		Scopes:                append([]string(nil), dl.Scopes...),
		RequestTimeout:        time.Duration(dl.RequestTimeout) * time.Second,
		StateTTL:              time.Duration(dl.StateTTL) * time.Second,
		TestMode:              dl.TestMode,
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeoutSeconds * time.Second
	}
	if c.StateTTL <= 0 {
		c.StateTTL = constants.DefaultStateTTLSeconds * time.Second
	}
	return c
}

// HasScope reports whether any configured scope equals one of names.
func (c Config) HasScope(names ...string) bool {
	for _, s := range c.Scopes {
		for _, n := range names {
			if s == n {
				return true
			}
		}
	}
	return false
}

// ProviderBaseURL returns the configured base URL, or the origin of the token endpoint when
// none is set.
func (c Config) ProviderBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if u, err := url.Parse(c.TokenEndpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return ""
}

// PKCEChallenge is a code verifier and its S256 challenge.
type PKCEChallenge struct {
	CodeVerifier  string `json:"codeVerifier"`
	CodeChallenge string `json:"codeChallenge"`
}

// AuthState is the state parameter of one authorization attempt and when it was issued.
type AuthState struct {
	State     string `json:"state"`
	CreatedAt int64  `json:"stateCreatedAt"`
}

// AuthorizationRequest is returned when an authorization attempt starts. The caller keeps
// State, CodeVerifier and StateCreatedAt until the callback arrives.
type AuthorizationRequest struct {
	State            string `json:"state"`
	AuthorizationURL string `json:"authorizationUrl"`
	CodeVerifier     string `json:"codeVerifier"`
	StateCreatedAt   int64  `json:"stateCreatedAt"`
}

// CallbackValidation is the outcome of ValidateCallback.
type CallbackValidation struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Err returns a *StateError for a rejected callback and nil otherwise.
func (v CallbackValidation) Err() error {
	if v.OK {
		return nil
	}
	return &StateError{Reason: v.Reason}
}

// TokenPayload is the token endpoint response.
type TokenPayload struct {
	AccessToken   string                 `json:"access_token"`
	TokenType     string                 `json:"token_type,omitempty"`
	ExpiresIn     int64                  `json:"expires_in,omitempty"`
	Scope         string                 `json:"scope,omitempty"`
	TransactionID string                 `json:"transaction_id,omitempty"`
	IDToken       string                 `json:"id_token,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

// Profile is the account holder's profile as returned by the provider.
type Profile struct {
	DigiLockerID string                 `mapstructure:"digilockerid" json:"digilockerId,omitempty"`
	Name         string                 `mapstructure:"name" json:"name,omitempty"`
	DOB          string                 `mapstructure:"dob" json:"dob,omitempty"`
	Gender       string                 `mapstructure:"gender" json:"gender,omitempty"`
	Mobile       string                 `mapstructure:"mobile" json:"mobile,omitempty"`
	Email        string                 `mapstructure:"email" json:"email,omitempty"`
	EAadhaar     string                 `mapstructure:"eaadhaar" json:"eaadhaar,omitempty"`
	ReferenceKey string                 `mapstructure:"reference_key" json:"referenceKey,omitempty"`
	Endpoint     string                 `mapstructure:"-" json:"endpoint,omitempty"`
	Raw          map[string]interface{} `mapstructure:"-" json:"raw,omitempty"`
}

// HasAadhaar reports whether the provider says an eAadhaar is linked to the account.
func (p *Profile) HasAadhaar() bool {
	return strings.EqualFold(p.EAadhaar, "Y")
}
