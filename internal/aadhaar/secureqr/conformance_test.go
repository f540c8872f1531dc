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

package secureqr

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conformanceDir = "testdata"

// conformanceCase is the expected outcome stored next to each payload. Empty fields are not checked.
type conformanceCase struct {
	Success       bool   `json:"success"`
	Name          string `json:"name"`
	DOB           string `json:"dob"`
	Gender        string `json:"gender"`
	AadhaarNumber string `json:"aadhaarNumber"`
	ReferenceID   string `json:"referenceId"`
	Pincode       string `json:"pincode"`
	Address       string `json:"address"`
	Source        string `json:"source"`
	QRType        string `json:"qrType"`
	Layout        string `json:"layout"`
	Confidence    string `json:"confidence"`
	PhotoPrefix   string `json:"photoPrefix"`
}

func TestConformancePayloads(t *testing.T) {
	entries, err := os.ReadDir(conformanceDir)
	require.NoError(t, err)

	decoder := NewDecoderWithClock(func() time.Time { return scannedAt })
	cases := 0
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if ext != ".qr" && ext != ".xml" {
			continue
		}
		cases++
		name := strings.TrimSuffix(entry.Name(), ext)

		t.Run(name, func(t *testing.T) {
			payload, err := os.ReadFile(filepath.Join(conformanceDir, entry.Name()))
			require.NoError(t, err)
			golden, err := os.ReadFile(filepath.Join(conformanceDir, name+".json"))
			require.NoError(t, err)
			var want conformanceCase
			require.NoError(t, json.Unmarshal(golden, &want))

			identity := decoder.Decode(string(payload))

			require.Equal(t, want.Success, identity.Success, identity.ParseError)
			checks := map[string][2]string{
				"name":          {want.Name, identity.Name},
				"dob":           {want.DOB, identity.DOB},
				"gender":        {want.Gender, identity.Gender},
				"aadhaarNumber": {want.AadhaarNumber, identity.AadhaarNumber},
				"referenceId":   {want.ReferenceID, identity.ReferenceID},
				"pincode":       {want.Pincode, identity.Pincode},
				"address":       {want.Address, identity.Address},
				"source":        {want.Source, string(identity.Source)},
				"qrType":        {want.QRType, identity.QRType},
				"layout":        {want.Layout, identity.Layout},
				"confidence":    {want.Confidence, string(identity.Confidence)},
			}
			for field, pair := range checks {
				if pair[0] != "" {
					assert.Equal(t, pair[0], pair[1], field)
				}
			}
			if want.PhotoPrefix != "" {
				assert.True(t, strings.HasPrefix(identity.Photo, want.PhotoPrefix), "photo")
			}
			assert.NotNil(t, identity.ScannedAt)
		})
	}
	assert.NotZero(t, cases)
}
