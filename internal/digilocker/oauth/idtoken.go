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
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/rentroll/kyc/internal/system/utils"
)

// claimIdentity is the subset of identity claims used to fill gaps in a profile.
type claimIdentity struct {
	Name      string `mapstructure:"name"`
	GivenName string `mapstructure:"given_name"`
	Birthdate string `mapstructure:"birthdate"`
	DOB       string `mapstructure:"dob"`
	Gender    string `mapstructure:"gender"`
	Email     string `mapstructure:"email"`
	Mobile    string `mapstructure:"phone_number"`
}

// IDTokenClaims returns the claims of an id_token without verifying its signature. The claims
// only fill gaps in a profile and are never used for a trust decision.
func IDTokenClaims(token string) (jwt.MapClaims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected id_token claims type %T", parsed.Claims)
	}
	return claims, nil
}

// EnrichProfile fills empty profile fields from identity attributes the token endpoint
// returned, either as extra response fields or inside the id_token.
func EnrichProfile(p *Profile, token *TokenPayload) {
	if p == nil || token == nil {
		return
	}
	if len(token.Extra) > 0 {
		mergeClaims(p, token.Extra)
	}
	if token.IDToken == "" {
		return
	}
	claims, err := IDTokenClaims(token.IDToken)
	if err != nil {
		return
	}
	mergeClaims(p, claims)
}

func mergeClaims(p *Profile, claims map[string]interface{}) {
	var c claimIdentity
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil || decoder.Decode(claims) != nil {
		return
	}
	p.Name = utils.FirstNonEmpty(p.Name, c.Name, c.GivenName)
	p.DOB = utils.FirstNonEmpty(p.DOB, c.DOB, c.Birthdate)
	p.Gender = utils.FirstNonEmpty(p.Gender, c.Gender)
	p.Email = utils.FirstNonEmpty(p.Email, c.Email)
	p.Mobile = utils.FirstNonEmpty(p.Mobile, c.Mobile)
	if p.DigiLockerID == "" {
		if v, ok := claims["digilockerid"].(string); ok {
			p.DigiLockerID = v
		}
	}
	if p.EAadhaar == "" {
		if v, ok := claims["eaadhaar"].(string); ok {
			p.EAadhaar = v
		}
	}
}
