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
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
	require.NoError(t, err)
	return token
}

func TestIDTokenClaims(t *testing.T) {
	token := signedIDToken(t, jwt.MapClaims{"sub": "dl-1", "name": "Asha Rao"})

	claims, err := IDTokenClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "dl-1", claims["sub"])
	assert.Equal(t, "Asha Rao", claims["name"])

	_, err = IDTokenClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestEnrichProfileFillsOnlyGaps(t *testing.T) {
	profile := &Profile{Name: "Asha Rao"}
	token := &TokenPayload{
		Extra: map[string]interface{}{"name": "Ignored Name", "gender": "F", "digilockerid": "dl-1"},
		IDToken: signedIDToken(t, jwt.MapClaims{
			"birthdate": "1990-01-01", "email": "asha@example.org", "phone_number": 9876543210,
		}),
	}

	EnrichProfile(profile, token)

	assert.Equal(t, "Asha Rao", profile.Name)
	assert.Equal(t, "F", profile.Gender)
	assert.Equal(t, "dl-1", profile.DigiLockerID)
	assert.Equal(t, "1990-01-01", profile.DOB)
	assert.Equal(t, "asha@example.org", profile.Email)
	assert.Equal(t, "9876543210", profile.Mobile)
}

func TestEnrichProfileIgnoresBadIDToken(t *testing.T) {
	profile := &Profile{}
	EnrichProfile(profile, &TokenPayload{IDToken: "garbage"})
	assert.Empty(t, profile.Name)

	EnrichProfile(nil, &TokenPayload{})
	EnrichProfile(profile, nil)
}
