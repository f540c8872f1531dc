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

package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// HTTPClientTestSuite defines the test suite for HTTP client service.
type HTTPClientTestSuite struct {
	suite.Suite
}

// TestHTTPClientSuite runs the HTTP client test suite.
func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientTestSuite))
}

func (suite *HTTPClientTestSuite) TestNewHTTPClient() {
	client := NewHTTPClient()
	assert.NotNil(suite.T(), client)
	assert.Implements(suite.T(), (*HTTPClientInterface)(nil), client)

	httpClient := client.(*HTTPClient)
	assert.Equal(suite.T(), 30*time.Second, httpClient.client.Timeout)
}

func (suite *HTTPClientTestSuite) TestNewHTTPClientWithTimeout() {
	timeout := 5 * time.Second
	client := NewHTTPClientWithTimeout(timeout)

	httpClient := client.(*HTTPClient)
	assert.Equal(suite.T(), timeout, httpClient.client.Timeout)
}

func (suite *HTTPClientTestSuite) TestNewHTTPClientWithConfig() {
	custom := &http.Client{Timeout: 7 * time.Second}
	client := NewHTTPClientWithConfig(custom)

	assert.Same(suite.T(), custom, AsStandardClient(client))
}

func (suite *HTTPClientTestSuite) TestGetHTTPClientSingleton() {
	assert.Same(suite.T(), GetHTTPClient(), GetHTTPClient())
}

func (suite *HTTPClientTestSuite) TestDoAndGet() {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.Method + " response"))
	}))
	defer testServer.Close()

	client := NewHTTPClient()

	req, err := http.NewRequest(http.MethodPost, testServer.URL, strings.NewReader("x"))
	assert.NoError(suite.T(), err)
	resp, err := client.Do(req)
	assert.NoError(suite.T(), err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), "POST response", string(body))

	resp, err = client.Get(testServer.URL)
	assert.NoError(suite.T(), err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), "GET response", string(body))
}

type stubClient struct {
	calls int
}

func (s *stubClient) Do(req *http.Request) (*http.Response, error) {
	s.calls++
	return &http.Response{
		StatusCode: http.StatusTeapot,
		Body:       io.NopCloser(strings.NewReader("stub")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (s *stubClient) Get(url string) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	return s.Do(req)
}

func (suite *HTTPClientTestSuite) TestAsStandardClientRoutesThroughInterface() {
	stub := &stubClient{}
	std := AsStandardClient(stub)

	resp, err := std.Get("https://provider.example/anything")
	assert.NoError(suite.T(), err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(suite.T(), http.StatusTeapot, resp.StatusCode)
	assert.Equal(suite.T(), 1, stub.calls)
}
