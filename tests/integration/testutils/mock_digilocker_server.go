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

package testutils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	authorizePath  = "/public/oauth2/1/authorize"
	tokenPath      = "/public/oauth2/1/token"
	userPath       = "/public/oauth2/1/user"
	issuedPath     = "/public/oauth2/3/files/issued"
	filePathPrefix = "/public/oauth2/1/file/"

	aadhaarDocumentURI = "in.gov.uidai-ADHAR-int"
)

// DigiLockerUser is the account the mock provider authorizes.
type DigiLockerUser struct {
	DigiLockerID string `json:"digilockerid"`
	Name         string `json:"name"`
	DOB          string `json:"dob"`
	Gender       string `json:"gender"`
	Mobile       string `json:"mobile"`
	EAadhaar     string `json:"eaadhaar"`
	// AadhaarXML is served as the issued Aadhaar document when set.
	AadhaarXML string `json:"-"`
}

type authCodeData struct {
	challenge   string
	redirectURI string
	scope       string
	expiresAt   time.Time
}

// MockDigiLockerServer is a TLS mock of the DigiLocker authorization and document APIs.
type MockDigiLockerServer struct {
	server       *httptest.Server
	mutex        sync.Mutex
	clientID     string
	clientSecret string
	user         DigiLockerUser
	authCodes    map[string]*authCodeData
	accessTokens map[string]string
}

// NewMockDigiLockerServer creates a mock provider that authorizes user for the given client.
func NewMockDigiLockerServer(clientID, clientSecret string, user DigiLockerUser) *MockDigiLockerServer {
	return &MockDigiLockerServer{
		clientID:     clientID,
		clientSecret: clientSecret,
		user:         user,
		authCodes:    make(map[string]*authCodeData),
		accessTokens: make(map[string]string),
	}
}

// Start starts the mock provider on a random local port.
func (m *MockDigiLockerServer) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+authorizePath, m.handleAuthorize)
	mux.HandleFunc("POST "+tokenPath, m.handleToken)
	mux.HandleFunc("GET "+userPath, m.withAccessToken(m.handleUser))
	mux.HandleFunc("GET "+issuedPath, m.withAccessToken(m.handleIssued))
	mux.HandleFunc("GET "+filePathPrefix+"{uri}", m.withAccessToken(m.handleFile))

	m.server = httptest.NewTLSServer(mux)
}

// Stop stops the mock provider.
func (m *MockDigiLockerServer) Stop() {
	if m.server != nil {
		m.server.Close()
	}
}

// GetURL returns the base URL.
func (m *MockDigiLockerServer) GetURL() string {
	return m.server.URL
}

// WriteCertificate writes the server certificate as PEM so that other processes can trust it.
func (m *MockDigiLockerServer) WriteCertificate(path string) error {
	block := &pem.Block{Type: "CERTIFICATE", Bytes: m.server.Certificate().Raw}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}

func (m *MockDigiLockerServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("client_id") != m.clientID {
		http.Error(w, "Invalid client_id", http.StatusBadRequest)
		return
	}
	if query.Get("response_type") != "code" {
		http.Error(w, "Unsupported response_type", http.StatusBadRequest)
		return
	}
	if query.Get("code_challenge_method") != "S256" || query.Get("code_challenge") == "" {
		http.Error(w, "PKCE is required", http.StatusBadRequest)
		return
	}
	redirectURI, err := url.Parse(query.Get("redirect_uri"))
	if err != nil || redirectURI.Scheme == "" {
		http.Error(w, "Invalid redirect_uri", http.StatusBadRequest)
		return
	}

	code := randomString()
	m.mutex.Lock()
	m.authCodes[code] = &authCodeData{
		challenge:   query.Get("code_challenge"),
		redirectURI: redirectURI.String(),
		scope:       query.Get("scope"),
		expiresAt:   time.Now().Add(5 * time.Minute),
	}
	m.mutex.Unlock()

	params := redirectURI.Query()
	params.Set("code", code)
	params.Set("state", query.Get("state"))
	redirectURI.RawQuery = params.Encode()
	http.Redirect(w, r, redirectURI.String(), http.StatusFound)
}

func (m *MockDigiLockerServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, "invalid_request", "Malformed form body")
		return
	}
	form := r.PostForm
	if form.Get("client_id") != m.clientID || form.Get("client_secret") != m.clientSecret {
		writeOAuthError(w, "invalid_client", "Client authentication failed")
		return
	}
	if form.Get("grant_type") != "authorization_code" {
		writeOAuthError(w, "unsupported_grant_type", "Only authorization_code is supported")
		return
	}

	m.mutex.Lock()
	data, ok := m.authCodes[form.Get("code")]
	delete(m.authCodes, form.Get("code"))
	m.mutex.Unlock()

	switch {
	case !ok || time.Now().After(data.expiresAt):
		writeOAuthError(w, "invalid_grant", "Authorization code is invalid or expired")
		return
	case form.Get("redirect_uri") != data.redirectURI:
		writeOAuthError(w, "invalid_grant", "redirect_uri does not match")
		return
	case oauth2.S256ChallengeFromVerifier(form.Get("code_verifier")) != data.challenge:
		writeOAuthError(w, "invalid_grant", "PKCE verification failed")
		return
	}

	accessToken := randomString()
	m.mutex.Lock()
	m.accessTokens[accessToken] = data.scope
	m.mutex.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":   accessToken,
		"token_type":     "Bearer",
		"expires_in":     3600,
		"scope":          data.scope,
		"transaction_id": "txn-" + accessToken[:8],
	})
}

func (m *MockDigiLockerServer) withAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		m.mutex.Lock()
		_, ok := m.accessTokens[trimBearer(token)]
		m.mutex.Unlock()
		if !ok {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (m *MockDigiLockerServer) handleUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.user)
}

func (m *MockDigiLockerServer) handleIssued(w http.ResponseWriter, r *http.Request) {
	items := []map[string]string{{"uri": "in.gov.cbse-SSCER-int", "name": "Class X Marksheet"}}
	if m.user.AadhaarXML != "" {
		items = append(items, map[string]string{"uri": aadhaarDocumentURI, "name": "Aadhaar Card",
			"doctype": "ADHAR", "issuer": "UIDAI"})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (m *MockDigiLockerServer) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("uri") != aadhaarDocumentURI || m.user.AadhaarXML == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(m.user.AadhaarXML))
}

func writeOAuthError(w http.ResponseWriter, code, description string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": code, "error_description": description})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("Mock DigiLocker write error: %v\n", err)
	}
}

func trimBearer(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func randomString() string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
