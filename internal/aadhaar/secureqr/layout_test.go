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
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeStd(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		fields []string
		want   Classification
	}{
		{
			name:   "v2",
			fields: []string{testRefID, "0", "RAHUL KUMAR", "01-01-1995"},
			want:   Classification{Layout: LayoutV2, Name: 2, RefID: 0, Indicator: 1},
		},
		{
			name:   "v2 alternate",
			fields: []string{"2", testRefID, "Rahul Kumar", "01-01-1995"},
			want:   Classification{Layout: LayoutV2Alt, Name: 2, RefID: 1, Indicator: 0},
		},
		{
			name:   "v1",
			fields: []string{testRefID, "Rahul Kumar", "01-01-1995", "M"},
			want:   Classification{Layout: LayoutV1, Name: 1, RefID: 0, Indicator: -1},
		},
		{
			name:   "anchored",
			fields: []string{"ABC123", "2", testRefID, "R. K. D'Souza", "M"},
			want:   Classification{Layout: LayoutAnchored, Name: 3, RefID: 2, Indicator: 1},
		},
		{
			name:   "anchor beyond scan window",
			fields: []string{"1", "2", "3", "4", "5", "Rahul Kumar"},
			want:   Classification{Layout: LayoutFallback, Name: -1, RefID: -1, Indicator: -1},
		},
		{
			name:   "empty",
			fields: nil,
			want:   Classification{Layout: LayoutFallback, Name: -1, RefID: -1, Indicator: -1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.fields))
		})
	}
}

func TestFieldShapes(t *testing.T) {
	assert.True(t, IsNameShaped("Rahul Kumar"))
	assert.True(t, IsNameShaped("O'Neil-Smith Jr."))
	assert.False(t, IsNameShaped("M"))
	assert.False(t, IsNameShaped("..."))
	assert.False(t, IsNameShaped("01-01-1995"))

	assert.True(t, IsLongNumeric("1234567890"))
	assert.False(t, IsLongNumeric("123456789"))

	assert.True(t, IsIndicator("3"))
	assert.True(t, IsIndicator("12"))
	assert.False(t, IsIndicator("123"))
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "v2", LayoutV2.String())
	assert.Equal(t, "v2-alt", LayoutV2Alt.String())
	assert.Equal(t, "v1", LayoutV1.String())
	assert.Equal(t, "anchored", LayoutAnchored.String())
	assert.Equal(t, "fallback", LayoutFallback.String())
}
