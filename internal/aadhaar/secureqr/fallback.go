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
	"regexp"
	"strings"

	"github.com/rentroll/kyc/internal/aadhaar"
)

const scrapeWindow = 500

// ScrapeNote is set on identities recovered by pattern matching.
const ScrapeNote = "field delimiters not found; values recovered by pattern matching and may be incomplete"

var (
	scrapeName    = regexp.MustCompile(`[A-Z][A-Za-z.'-]+(?: [A-Z][A-Za-z.'-]+)+`)
	scrapeDOB     = regexp.MustCompile(`\b(\d{2}[-/]\d{2}[-/]\d{4}|\d{4}-\d{2}-\d{2})\b`)
	scrapeGender  = regexp.MustCompile(`\b(MALE|FEMALE|TRANSGENDER|Male|Female|M|F|T)\b`)
	scrapePincode = regexp.MustCompile(`\b([1-9]\d{5})\b`)
	scrapeRefID   = regexp.MustCompile(`\b(\d{4})\d{6,}\b`)
	scrapeLast4   = regexp.MustCompile(`\b(\d{4})\b`)
)

// scrape extracts whatever identity fields it can find in the leading bytes of data.
func scrape(data []byte) *aadhaar.DecodedIdentity {
	window := data
	if len(window) > scrapeWindow {
		window = window[:scrapeWindow]
	}
	text := printable(window)

	identity := &aadhaar.DecodedIdentity{
		Source:     aadhaar.SourceSecureQR,
		QRType:     aadhaar.QRTypeSecure,
		Layout:     LayoutFallback.String(),
		Confidence: aadhaar.ConfidenceLow,
		ParseNote:  ScrapeNote,
	}

	rest := text
	if m := scrapeDOB.FindStringSubmatchIndex(text); m != nil {
		identity.DOB = text[m[2]:m[3]]
		rest = text[:m[0]] + " " + text[m[1]:]
		if g := scrapeGender.FindStringSubmatch(text[m[1]:]); g != nil {
			identity.Gender = g[1]
		}
	}
	if m := scrapeName.FindString(rest); m != "" {
		identity.Name = m
	}
	if m := scrapeRefID.FindStringSubmatch(rest); m != nil {
		identity.AadhaarNumber = m[1]
		rest = scrapeRefID.ReplaceAllString(rest, " ")
	}
	if m := scrapePincode.FindStringSubmatch(rest); m != nil {
		identity.Pincode = m[1]
		identity.AddressComponents = map[string]string{aadhaar.AddressPincode: m[1]}
		identity.Address = m[1]
		rest = strings.Replace(rest, m[1], " ", 1)
	}
	if identity.AadhaarNumber == "" {
		if m := scrapeLast4.FindStringSubmatch(rest); m != nil {
			identity.AadhaarNumber = m[1]
		}
	}

	identity.HasProofOfIdentity = identity.Name != "" && identity.DOB != ""
	identity.HasProofOfAddress = identity.Pincode != ""
	identity.Success = identity.Name != "" || identity.DOB != "" || identity.AadhaarNumber != "" ||
		identity.Pincode != ""
	if !identity.Success {
		identity.ParseError = "no identity fields could be recovered"
	}
	return identity
}

// printable maps control and high bytes to spaces so that patterns can span the text.
func printable(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			c = ' '
		}
		out[i] = c
	}
	return string(out)
}
