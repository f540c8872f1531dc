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

package tenant

import (
	"errors"
	"strings"
)

// ErrTenantNotFound is returned when no tenant exists for the given id.
var ErrTenantNotFound = errors.New("tenant not found")

// Tenant is the stored tenant record the verification is checked against.
type Tenant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Profile is the pre-filled profile a tenant submitted before verification.
type Profile struct {
	TenantID    string `json:"tenantId"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// FullName joins the non-empty name parts of the profile.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(strings.Fields(p.FirstName+" "+p.LastName), " "))
}
