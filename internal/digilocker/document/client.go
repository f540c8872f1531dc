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

// Package document retrieves issued documents from DigiLocker on behalf of an authorized
// account holder.
package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rentroll/kyc/internal/digilocker/oauth"
	sysconst "github.com/rentroll/kyc/internal/system/constants"
	httpservice "github.com/rentroll/kyc/internal/system/http"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/utils"
)

const loggerComponentName = "DigiLockerDocumentClient"

// Provider API paths.
const (
	IssuedDocumentsV3Path = "/public/oauth2/3/files/issued"
	IssuedDocumentsV1Path = "/public/oauth2/1/files/issued"
	FilePath              = "/public/oauth2/1/file/"
	EAadhaarPath          = "/public/oauth2/3/xml/eaadhaar"
)

const maxDocumentBytes = 10 << 20

// DocumentClientInterface defines the document operations of the provider API.
type DocumentClientInterface interface {
	ListIssuedDocuments(ctx context.Context, accessToken string) ([]IssuedDocumentRef, error)
	FetchDocument(ctx context.Context, accessToken, uri string) (*Document, error)
	FetchAadhaarXML(ctx context.Context, accessToken string) (*Document, error)
}

// documentClient is the default implementation of DocumentClientInterface.
type documentClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient httpservice.HTTPClientInterface
}

// NewDocumentClient creates a client for the provider at baseURL. Every request is bounded
// by timeout.
func NewDocumentClient(baseURL string, timeout time.Duration,
	httpClient httpservice.HTTPClientInterface) DocumentClientInterface {
	if httpClient == nil {
		httpClient = httpservice.GetHTTPClient()
	}
	if timeout <= 0 {
		timeout = sysconst.DefaultRequestTimeoutSeconds * time.Second
	}
	return &documentClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// ListIssuedDocuments lists the account holder's issued documents, trying API v3 and then v1.
func (c *documentClient) ListIssuedDocuments(ctx context.Context, accessToken string) (
	[]IssuedDocumentRef, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if strings.TrimSpace(accessToken) == "" {
		return nil, oauth.ErrEmptyAccessToken
	}

	var lastErr error
	attempts := 0
	for _, path := range []string{IssuedDocumentsV3Path, IssuedDocumentsV1Path} {
		attempts++
		endpoint := utils.JoinURL(c.baseURL, path)
		body, _, err := c.get(ctx, endpoint, accessToken, sysconst.ContentTypeJSON)
		if err == nil {
			var docs []IssuedDocumentRef
			if docs, err = parseDocumentList(body); err == nil {
				logger.Debug("Issued documents listed", log.String("endpoint", endpoint),
					log.Int("count", len(docs)))
				return docs, nil
			}
		}
		logger.Debug("Issued documents endpoint failed", log.String("endpoint", endpoint), log.Error(err))
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &DocumentListError{Attempts: attempts, Err: lastErr}
}

// parseDocumentList accepts {"items": [...]} or a bare array.
func parseDocumentList(body []byte) ([]IssuedDocumentRef, error) {
	trimmed := bytes.TrimSpace(body)
	var docs []IssuedDocumentRef
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse issued documents: %w", err)
		}
		return docs, nil
	}
	var wrapped struct {
		Items []IssuedDocumentRef `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse issued documents: %w", err)
	}
	if wrapped.Items == nil {
		return []IssuedDocumentRef{}, nil
	}
	return wrapped.Items, nil
}

// FetchDocument downloads the document identified by uri.
func (c *documentClient) FetchDocument(ctx context.Context, accessToken, uri string) (*Document, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrNoDocumentURI
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, oauth.ErrEmptyAccessToken
	}
	endpoint := utils.JoinURL(c.baseURL, FilePath) + encodeURIComponent(uri)
	body, contentType, err := c.get(ctx, endpoint, accessToken, "*/*")
	if err != nil {
		return nil, err
	}
	return newDocument(body, contentType), nil
}

// FetchAadhaarXML downloads the eAadhaar XML linked to the account, for accounts whose
// Aadhaar is not in the issued documents list.
func (c *documentClient) FetchAadhaarXML(ctx context.Context, accessToken string) (*Document, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, oauth.ErrEmptyAccessToken
	}
	body, contentType, err := c.get(ctx, utils.JoinURL(c.baseURL, EAadhaarPath), accessToken,
		sysconst.ContentTypeXML)
	if err != nil {
		return nil, err
	}
	return newDocument(body, contentType), nil
}

func (c *documentClient) get(ctx context.Context, endpoint, accessToken, accept string) (
	[]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create document request: %w", err)
	}
	req.Header.Set(sysconst.AuthorizationHeaderName, sysconst.TokenTypeBearer+" "+accessToken)
	req.Header.Set(sysconst.AcceptHeaderName, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if httpservice.IsTimeout(ctx, err) {
			return nil, "", &oauth.TimeoutError{Operation: "document request", Timeout: c.timeout, Err: err}
		}
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, sysconst.MaxErrorBodyBytes))
		return nil, "", &DocumentFetchError{URL: endpoint, Status: resp.StatusCode, Body: string(body)}
	}
	body, err := httpservice.ReadLimited(resp.Body, maxDocumentBytes)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document body: %w", err)
	}
	return body, resp.Header.Get(sysconst.ContentTypeHeaderName), nil
}

// newDocument interprets body by its content type, sniffing the type when the header is absent.
func newDocument(body []byte, contentType string) *Document {
	if strings.TrimSpace(contentType) == "" {
		contentType = mimetype.Detect(body).String()
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}

	doc := &Document{ContentType: contentType, Size: len(body)}
	switch {
	case strings.Contains(mediaType, "xml"):
		doc.Type = KindXML
		doc.Text = string(body)
		return doc
	case strings.Contains(mediaType, "json"):
		var v interface{}
		if err := json.Unmarshal(body, &v); err == nil {
			doc.Type = KindJSON
			doc.JSON = v
			return doc
		}
	}
	doc.Type = KindBinary
	doc.Base64 = base64.StdEncoding.EncodeToString(body)
	return doc
}

// FindAadhaarDocument returns the first document whose URI, type or name mentions UIDAI or
// Aadhaar, or nil.
func FindAadhaarDocument(docs []IssuedDocumentRef) *IssuedDocumentRef {
	for i := range docs {
		d := &docs[i]
		if utils.ContainsAnyFold(d.URI, "uidai", "aadhaar") ||
			utils.ContainsAnyFold(d.DocType, "uidai", "aadhaar") ||
			utils.ContainsAnyFold(d.Name, "uidai", "aadhaar") {
			return d
		}
	}
	return nil
}

// encodeURIComponent percent-encodes every byte outside the unreserved set.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
