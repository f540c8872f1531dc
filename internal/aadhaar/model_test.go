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

package aadhaar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinAddress(t *testing.T) {
	components := map[string]string{
		AddressPincode: "411001",
		AddressHouse:   "12",
		AddressVTC:     "Pune",
		AddressStreet:  "",
	}
	assert.Equal(t, "12, Pune, 411001", JoinAddress(components))
	assert.Equal(t, "", JoinAddress(nil))
}

func TestIsSuffixOnly(t *testing.T) {
	assert.True(t, (&DecodedIdentity{AadhaarNumber: "8347"}).IsSuffixOnly())
	assert.False(t, (&DecodedIdentity{AadhaarNumber: "XXXXXXXX1234"}).IsSuffixOnly())
	assert.True(t, (&DecodedIdentity{AadhaarNumber: " 83-47 "}).IsSuffixOnly())
	assert.False(t, (&DecodedIdentity{}).IsSuffixOnly())
}
