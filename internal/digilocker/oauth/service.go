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

// Package oauth drives the DigiLocker OAuth 2.0 authorization code flow with PKCE: building the
// authorization request, validating the returned state, exchanging the code and fetching the
// account holder's profile.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"

	sysconst "github.com/rentroll/kyc/internal/system/constants"
	httpservice "github.com/rentroll/kyc/internal/system/http"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/utils"
)

const loggerComponentName = "DigiLockerOAuthService"

// TestAuthorizationCode is the code placed in synthetic redirects when test mode is enabled.
const TestAuthorizationCode = "test-code"

const maxProfileBytes = 1 << 20

// profileFallbackPaths are tried at the provider base URL after the configured profile endpoint.
var profileFallbackPaths = []string{
	"/public/oauth2/1/user",
	"/public/oauth2/2/user",
	"/public/oauth2/3/user",
	"/oauth2/1/user",
}

// tokenExtraKeys are the non-standard token response fields kept in TokenPayload.Extra.
var tokenExtraKeys = []string{
	"digilockerid", "name", "dob", "gender", "eaadhaar", "reference_key", "consent_valid_till",
}

// DigiLockerOAuthServiceInterface defines the operations of the authorization flow.
type DigiLockerOAuthServiceInterface interface {
	Config() Config
	BeginAuthorization() (*AuthorizationRequest, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenPayload, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// digiLockerOAuthService is the default implementation of DigiLockerOAuthServiceInterface.
type digiLockerOAuthService struct {
	cfg        Config
	httpClient httpservice.HTTPClientInterface
	now        func() time.Time
}

// NewDigiLockerOAuthService creates the authorization flow service for cfg.
func NewDigiLockerOAuthService(cfg Config, httpClient httpservice.HTTPClientInterface) DigiLockerOAuthServiceInterface {
	if httpClient == nil {
		httpClient = httpservice.GetHTTPClient()
	}
	return &digiLockerOAuthService{
		cfg:        cfg.withDefaults(),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Config returns the client registration the service was created with.
func (s *digiLockerOAuthService) Config() Config {
	return s.cfg
}

func (s *digiLockerOAuthService) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  s.cfg.RedirectURI,
		Scopes:       s.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.cfg.AuthorizationEndpoint,
			TokenURL:  s.cfg.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// BeginAuthorization creates a fresh state and PKCE pair and the authorization URL carrying
// them. In test mode it returns a synthetic redirect back to the callback instead.
func (s *digiLockerOAuthService) BeginAuthorization() (*AuthorizationRequest, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	state, err := GenerateState()
	if err != nil {
		logger.Error("Failed to generate authorization state", log.Error(err))
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	pkce := NewPKCEChallenge()
	req := &AuthorizationRequest{
		State:          state,
		CodeVerifier:   pkce.CodeVerifier,
		StateCreatedAt: s.now().UnixMilli(),
	}

	if s.cfg.TestMode {
		redirect := utils.FirstNonEmpty(s.cfg.RedirectURI, DefaultTestRedirectURI)
		req.AuthorizationURL, err = utils.GetURIWithQueryParams(redirect, map[string]string{
			"code":  TestAuthorizationCode,
			"state": state,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build test redirect: %w", err)
		}
		logger.Warn("DigiLocker test mode is enabled, returning a synthetic redirect")
		return req, nil
	}

	if err := s.cfg.require(FieldClientID, FieldRedirectURI, FieldAuthorizationEndpoint); err != nil {
		logger.Error("DigiLocker client registration is incomplete", log.Error(err))
		return nil, err
	}
	req.AuthorizationURL = s.oauth2Config().AuthCodeURL(state, oauth2.S256ChallengeOption(pkce.CodeVerifier))

	logger.Debug("Authorization request created", log.String("state", log.MaskString(state)))
	return req, nil
}

// ExchangeCode redeems an authorization code at the token endpoint. The code verifier is sent
// when present.
func (s *digiLockerOAuthService) ExchangeCode(ctx context.Context, code, codeVerifier string) (
	*TokenPayload, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyAuthorizationCode
	}
	if err := s.cfg.require(FieldClientID, FieldClientSecret, FieldRedirectURI, FieldTokenEndpoint); err != nil {
		logger.Error("DigiLocker client registration is incomplete", log.Error(err))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpservice.AsStandardClient(s.httpClient))

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	start := s.now()
	tok, err := s.oauth2Config().Exchange(ctx, strings.TrimSpace(code), opts...)
	if err != nil {
		exErr := s.exchangeError(ctx, err)
		logger.Error("Token exchange failed", log.Error(exErr),
			log.Duration("elapsed", s.now().Sub(start)))
		return nil, exErr
	}

	payload := newTokenPayload(tok)
	if payload.AccessToken == "" {
		return nil, &TokenExchangeError{Status: http.StatusOK, Body: "response did not include an access_token"}
	}
	logger.Debug("Authorization code exchanged", log.String("tokenType", payload.TokenType),
		log.Int64("expiresIn", payload.ExpiresIn))
	return payload, nil
}

func (s *digiLockerOAuthService) exchangeError(ctx context.Context, err error) error {
	if httpservice.IsTimeout(ctx, err) {
		return &TimeoutError{Operation: "token exchange", Timeout: s.cfg.RequestTimeout, Err: err}
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &TokenExchangeError{
			Status: status,
			Body:   utils.Truncate(string(re.Body), sysconst.MaxErrorBodyBytes),
			Err:    err,
		}
	}
	return &TokenExchangeError{Err: err}
}

func newTokenPayload(tok *oauth2.Token) *TokenPayload {
	p := &TokenPayload{
		AccessToken:   tok.AccessToken,
		TokenType:     tok.TokenType,
		ExpiresIn:     tok.ExpiresIn,
		Scope:         extraString(tok, "scope"),
		TransactionID: extraString(tok, "transaction_id"),
		IDToken:       extraString(tok, "id_token"),
	}
	if p.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		p.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	for _, key := range tokenExtraKeys {
		v := tok.Extra(key)
		if v == nil || v == "" {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]interface{}{}
		}
		p.Extra[key] = v
	}
	return p
}

func extraString(tok *oauth2.Token, key string) string {
	if v, ok := tok.Extra(key).(string); ok {
		return v
	}
	return ""
}

// FetchProfile reads the account holder's profile, trying the configured endpoint and then the
// known fallback paths in order. The first 2xx JSON answer wins.
func (s *digiLockerOAuthService) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrEmptyAccessToken
	}
	endpoints := s.profileEndpoints()
	if len(endpoints) == 0 {
		return nil, &ConfigError{Fields: []string{FieldProfileEndpoint, FieldBaseURL}}
	}

	var lastErr error
	attempts := 0
	for _, endpoint := range endpoints {
		attempts++
		profile, err := s.fetchProfileFrom(ctx, endpoint, accessToken)
		if err == nil {
			profile.Endpoint = endpoint
			logger.Debug("Profile fetched", log.String("endpoint", endpoint), log.Int("attempt", attempts))
			return profile, nil
		}
		logger.Debug("Profile endpoint failed", log.String("endpoint", endpoint), log.Error(err))
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	logger.Error("All profile endpoints failed", log.Int("attempts", attempts), log.Error(lastErr))
	return nil, &ProfileFetchError{Attempts: attempts, Err: lastErr}
}

// profileEndpoints lists the configured endpoint followed by the fallback paths, deduplicated.
func (s *digiLockerOAuthService) profileEndpoints() []string {
	base := s.cfg.ProviderBaseURL()

	var endpoints []string
	seen := map[string]bool{}
	add := func(e string) {
		if e != "" && !seen[e] {
			seen[e] = true
			endpoints = append(endpoints, e)
		}
	}
	add(s.cfg.ProfileEndpoint)
	if base != "" {
		for _, p := range profileFallbackPaths {
			add(utils.JoinURL(base, p))
		}
	}
	return endpoints
}

func (s *digiLockerOAuthService) fetchProfileFrom(ctx context.Context, endpoint, accessToken string) (
	*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set(sysconst.AuthorizationHeaderName, sysconst.TokenTypeBearer+" "+accessToken)
	req.Header.Set(sysconst.AcceptHeaderName, sysconst.ContentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if httpservice.IsTimeout(ctx, err) {
			return nil, &TimeoutError{Operation: "profile fetch", Timeout: s.cfg.RequestTimeout, Err: err}
		}
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, sysconst.MaxErrorBodyBytes))
		return nil, &HTTPStatusError{URL: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("profile response from %s is not a JSON object: %w", endpoint, err)
	}
	return decodeProfile(raw)
}

// decodeProfile maps a profile response onto Profile. Some API versions nest the profile
// under "user" or "data".
func decodeProfile(raw map[string]interface{}) (*Profile, error) {
	source := raw
	for _, key := range []string{"user", "data"} {
		if nested, ok := raw[key].(map[string]interface{}); ok {
			source = nested
			break
		}
	}

	var p Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(source); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if p.Name == "" {
		if v, ok := source["full_name"].(string); ok {
			p.Name = v
		}
	}
	p.Raw = raw
	return &p, nil
}
