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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold("in.gov.uidai-ADHAR-123", "uidai", "aadhaar"))
	assert.True(t, ContainsAnyFold("Aadhaar Card", "uidai", "aadhaar"))
	assert.False(t, ContainsAnyFold("PAN Card", "uidai", "aadhaar"))
	assert.False(t, ContainsAnyFold("anything", ""))
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, IsAllDigits("0123456789"))
	assert.False(t, IsAllDigits(""))
	assert.False(t, IsAllDigits("12a4"))
	assert.False(t, IsAllDigits("12 34"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "919876543210", DigitsOnly("+91 98765-43210"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "", Truncate("ab", -1))
	assert.Equal(t, "नम", Truncate("नमस्ते", 2))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
