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

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rentroll/kyc/internal/system/constants"
	"github.com/rentroll/kyc/internal/system/log"
)

// maxRequestBodyBytes bounds JSON request bodies accepted by handlers.
const maxRequestBodyBytes = 1 << 20

// WriteJSON writes the given payload as a JSON response with the status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Error("Failed to write JSON response", log.Error(err))
	}
}

// WriteJSONError writes a JSON error response with the given details.
func WriteJSONError(w http.ResponseWriter, code, desc string, statusCode int, respHeaders []map[string]string) {
	logger := log.GetLogger()
	logger.Error("Error in HTTP response", log.String("error", code), log.String("description", desc))

	for _, header := range respHeaders {
		for key, value := range header {
			w.Header().Set(key, value)
		}
	}

	WriteJSON(w, statusCode, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}

// DecodeJSONBody decodes a bounded JSON request body into the given target.
func DecodeJSONBody(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// ParseURL parses the given URL string and returns a URL object.
func ParseURL(urlStr string) (*url.URL, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	return parsedURL, nil
}

// JoinURL appends a path to a base URL without doubling slashes.
func JoinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// GetURIWithQueryParams appends the given query parameters to the URI.
func GetURIWithQueryParams(uri string, queryParams map[string]string) (string, error) {
	parsedURL, err := ParseURL(uri)
	if err != nil {
		return "", err
	}

	query := parsedURL.Query()
	for key, value := range queryParams {
		query.Set(key, value)
	}
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String(), nil
}
