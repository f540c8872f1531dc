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

import "regexp"

// Layout is the field ordering recognised in a Secure QR payload.
type Layout int

const (
	// LayoutFallback means no ordering was recognised and fields were scraped by pattern.
	LayoutFallback Layout = iota
	// LayoutV2 is [refId, indicator, name, dob, gender, address x11].
	LayoutV2
	// LayoutV2Alt is [indicator, refId, name, dob, gender, address x11].
	LayoutV2Alt
	// LayoutV1 is [refId, name, dob, gender, address x11].
	LayoutV1
	// LayoutAnchored derives every offset from the first name-shaped field.
	LayoutAnchored
)

func (l Layout) String() string {
	switch l {
	case LayoutV2:
		return "v2"
	case LayoutV2Alt:
		return "v2-alt"
	case LayoutV1:
		return "v1"
	case LayoutAnchored:
		return "anchored"
	default:
		return "fallback"
	}
}

// Classification locates the structural fields of a payload. Indices are -1 when absent.
type Classification struct {
	Layout    Layout
	Name      int
	RefID     int
	Indicator int
}

const anchorScanLimit = 5

var (
	nameShape      = regexp.MustCompile(`^[A-Za-z\s.'-]{2,}$`)
	letter         = regexp.MustCompile(`[A-Za-z]`)
	longNumeric    = regexp.MustCompile(`^\d{10,}$`)
	indicatorShape = regexp.MustCompile(`^\d{1,2}$`)
	versionShape   = regexp.MustCompile(`^V\d{1,2}$`)
)

// IsNameShaped reports whether s looks like a person's name.
func IsNameShaped(s string) bool {
	return nameShape.MatchString(s) && letter.MatchString(s)
}

// IsLongNumeric reports whether s looks like a reference id.
func IsLongNumeric(s string) bool {
	return longNumeric.MatchString(s)
}

// IsIndicator reports whether s looks like the email/mobile indicator.
func IsIndicator(s string) bool {
	return indicatorShape.MatchString(s)
}

// Classify chooses the field layout from the shapes of the leading text fields. The
// checks run in order and the first that fits wins.
func Classify(fields []string) Classification {
	at := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	f0, f1, f2 := at(0), at(1), at(2)

	switch {
	case IsLongNumeric(f0) && !IsNameShaped(f1) && IsNameShaped(f2):
		return Classification{Layout: LayoutV2, Name: 2, RefID: 0, Indicator: 1}
	case IsIndicator(f0) && IsLongNumeric(f1) && IsNameShaped(f2):
		return Classification{Layout: LayoutV2Alt, Name: 2, RefID: 1, Indicator: 0}
	case IsLongNumeric(f0) && IsNameShaped(f1):
		return Classification{Layout: LayoutV1, Name: 1, RefID: 0, Indicator: -1}
	}

	for i := 0; i < min(anchorScanLimit, len(fields)); i++ {
		if !IsNameShaped(fields[i]) {
			continue
		}
		c := Classification{Layout: LayoutAnchored, Name: i, RefID: -1, Indicator: -1}
		for j := i - 1; j >= 0; j-- {
			switch {
			case c.RefID < 0 && IsLongNumeric(fields[j]):
				c.RefID = j
			case c.Indicator < 0 && IsIndicator(fields[j]):
				c.Indicator = j
			}
		}
		return c
	}
	return Classification{Layout: LayoutFallback, Name: -1, RefID: -1, Indicator: -1}
}
