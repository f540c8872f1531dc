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

package jpeg2000

import (
	"bytes"
	"context"
	"testing"
)

func FuzzDecode(f *testing.F) {
	for _, o := range []streamOptions{
		{comps: 1},
		{comps: 1, levels: 3},
		{comps: 3, levels: 2, mct: true},
		{comps: 1, levels: 1, sopAndEP: true, cbStyle: cbStyleReset | cbStyleVertCausal | cbStyleSegmentation},
	} {
		cs := buildCodestream(o)
		f.Add(cs)
		f.Add(wrapJP2(cs, colourSpaceSRGB))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := DecodeContext(context.Background(), bytes.NewReader(data), &Options{MaxPixels: 1 << 16})
		if err == nil && img.Bounds().Empty() {
			t.Fatalf("decoded an empty image without error")
		}
		_, _ = DecodeConfig(bytes.NewReader(data))
	})
}
