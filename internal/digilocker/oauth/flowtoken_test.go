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
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFlowKey = base64.StdEncoding.EncodeToString([]byte("0123456789ABCDEF0123456789ABCDEF"))

func TestFlowSealerRoundTrip(t *testing.T) {
	sealer, err := NewFlowSealer(testFlowKey)
	require.NoError(t, err)

	in := FlowState{State: "state-1", Verifier: "verifier-1", CreatedAt: 1_760_000_000_000}
	token, err := sealer.Seal(in)
	require.NoError(t, err)
	assert.NotContains(t, token, "verifier-1")

	out, err := sealer.Open(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	again, err := sealer.Seal(in)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestFlowSealerRejectsTampering(t *testing.T) {
	sealer, err := NewFlowSealer(testFlowKey)
	require.NoError(t, err)
	token, err := sealer.Seal(FlowState{State: "s", Verifier: "v", CreatedAt: 1})
	require.NoError(t, err)

	mid := len(token) / 2
	flipped := byte('A')
	if token[mid] == 'A' {
		flipped = 'B'
	}
	tampered := token[:mid] + string(flipped) + token[mid+1:]
	for _, bad := range []string{"", "not base64!", "AAAA", tampered,
		strings.Repeat("A", maxFlowTokenLen+1)} {
		_, err := sealer.Open(bad)
		assert.ErrorIs(t, err, ErrFlowTokenInvalid)
	}

	other, err := NewFlowSealer("ZYXWVUTSRQPONMLKJIHGFEDCBA987654")
	require.NoError(t, err)
	_, err = other.Open(token)
	assert.ErrorIs(t, err, ErrFlowTokenInvalid)
}

func TestNewFlowSealerKeyFormats(t *testing.T) {
	_, err := NewFlowSealer("0123456789ABCDEF0123456789ABCDEF")
	assert.NoError(t, err)

	_, err = NewFlowSealer("too-short")
	assert.ErrorIs(t, err, ErrFlowTokenKey)
}
