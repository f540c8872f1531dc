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
	"testing"
	"time"
)

func FuzzDecodePhotoTrailer(f *testing.F) {
	gray := grayCodestream()
	f.Add(jpegPhoto)
	f.Add(gray)
	f.Add(gray[:len(gray)/2])
	f.Add([]byte{0xFF, 0x4F, 0xFF, 0x51})
	f.Add([]byte{})

	decoder := NewDecoderWithClock(func() time.Time { return scannedAt })
	f.Fuzz(func(t *testing.T, trailer []byte) {
		identity := decoder.DecodeBytes(frame(v2Fields(), signature(), trailer))
		if identity.Name != "RAHUL KUMAR" || identity.Pincode != "411038" {
			t.Fatalf("text fields lost for trailer of %d bytes: %+v", len(trailer), identity)
		}
	})
}

func FuzzDecodeBytes(f *testing.F) {
	f.Add(frame(v2Fields(), signature(), grayCodestream()))
	f.Add(frame(v2Fields()))
	f.Add([]byte("xx RAHUL KUMAR 01-01-1995 M Pune 411001 834720200911 yy"))

	decoder := NewDecoderWithClock(func() time.Time { return scannedAt })
	f.Fuzz(func(t *testing.T, raw []byte) {
		if identity := decoder.DecodeBytes(raw); identity == nil {
			t.Fatalf("nil identity for %d bytes", len(raw))
		}
	})
}
