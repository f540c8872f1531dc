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
)

// Configuration field names reported in ConfigError.
const (
	FieldClientID              = "client_id"
	FieldClientSecret          = "client_secret"
	FieldRedirectURI           = "redirect_uri"
	FieldAuthorizationEndpoint = "authorization_endpoint"
	FieldTokenEndpoint         = "token_endpoint"
	FieldProfileEndpoint       = "profile_endpoint"
	FieldBaseURL               = "base_url"
)

var placeholderMarkers = []string{"your_", "your-", "placeholder", "changeme", "change_me", "<", "xxx", "todo"}

var urlFields = map[string]bool{
	FieldRedirectURI:           true,
	FieldAuthorizationEndpoint: true,
	FieldTokenEndpoint:         true,
	FieldProfileEndpoint:       true,
	FieldBaseURL:               true,
}

// Validate checks every field needed for a complete authorization flow. Optional endpoints
// are checked only when set.
func (c Config) Validate() error {
	if err := c.require(FieldClientID, FieldClientSecret, FieldRedirectURI, FieldAuthorizationEndpoint,
		FieldTokenEndpoint); err != nil {
		return err
	}
	var optional []string
	if c.ProfileEndpoint != "" {
		optional = append(optional, FieldProfileEndpoint)
	}
	if c.BaseURL != "" {
		optional = append(optional, FieldBaseURL)
	}
	return c.require(optional...)
}

// require returns a *ConfigError naming every listed field that is empty, a placeholder or,
// for URLs, not an absolute https URL.
func (c Config) require(names ...string) error {
	var bad []string
	for _, name := range names {
		if !c.valid(name) {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return &ConfigError{Fields: bad}
	}
	return nil
}

func (c Config) valid(name string) bool {
	v := c.value(name)
	if strings.TrimSpace(v) == "" || isPlaceholder(v) {
		return false
	}
	if !urlFields[name] {
		return true
	}
	u, err := url.Parse(v)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

func (c Config) value(name string) string {
	switch name {
	case FieldClientID:
		return c.ClientID
	case FieldClientSecret:
		return c.ClientSecret
	case FieldRedirectURI:
		return c.RedirectURI
	case FieldAuthorizationEndpoint:
		return c.AuthorizationEndpoint
	case FieldTokenEndpoint:
		return c.TokenEndpoint
	case FieldProfileEndpoint:
		return c.ProfileEndpoint
	case FieldBaseURL:
		return c.BaseURL
	}
	return ""
}

func isPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	for _, m := range placeholderMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
