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

// Package ekyc extracts identity attributes from Aadhaar eKYC XML documents.
package ekyc

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/photo"
	"github.com/rentroll/kyc/internal/system/log"
)

const loggerComponentName = "EKYCDecoder"

// addressAttributes maps address components to the XML attribute names that carry them.
var addressAttributes = map[string][]string{
	aadhaar.AddressCareOf:      {"co", "careof"},
	aadhaar.AddressHouse:       {"house"},
	aadhaar.AddressStreet:      {"street"},
	aadhaar.AddressLandmark:    {"lm", "landmark"},
	aadhaar.AddressLocation:    {"loc"},
	aadhaar.AddressVTC:         {"vtc"},
	aadhaar.AddressPostOffice:  {"po"},
	aadhaar.AddressSubDistrict: {"subdist"},
	aadhaar.AddressDistrict:    {"dist"},
	aadhaar.AddressState:       {"state"},
	aadhaar.AddressPincode:     {"pc"},
}

var (
	attributeCache = map[string]*regexp.Regexp{}
	elementCache   = map[string]*regexp.Regexp{
		"Poi":     regexp.MustCompile(`(?s)<Poi\b[^>]*>`),
		"Poa":     regexp.MustCompile(`(?s)<Poa\b[^>]*>`),
		"UidData": regexp.MustCompile(`(?s)<UidData\b[^>]*>`),
	}
	photoPattern   = regexp.MustCompile(`(?s)<Pht>\s*([A-Za-z0-9+/=\s]+?)\s*</Pht>`)
	xmlUnescaper   = strings.NewReplacer("&amp;", "&", "&quot;", `"`, "&apos;", "'", "&lt;", "<", "&gt;", ">")
)

func init() {
	names := []string{"uid", "referenceId", "name", "dob", "gender"}
	for _, attrs := range addressAttributes {
		names = append(names, attrs...)
	}
	for _, n := range names {
		attributeCache[n] = regexp.MustCompile(`(?:^|[\s<])` + regexp.QuoteMeta(n) + `\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	}
}

// LooksLikeXML reports whether a payload appears to be an XML document.
func LooksLikeXML(payload string) bool {
	trimmed := strings.TrimSpace(payload)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// Parse extracts identity attributes from an eKYC XML document. It never fails; problems are
// reported through ParseError on the returned identity.
func Parse(xml string) (identity *aadhaar.DecodedIdentity) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	identity = &aadhaar.DecodedIdentity{
		Source:     aadhaar.SourceXML,
		QRType:     aadhaar.QRTypeXML,
		Confidence: aadhaar.ConfidenceHigh,
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered while parsing eKYC XML", log.Any("panic", r))
			identity.Success = false
			identity.ParseError = fmt.Sprintf("failed to parse eKYC XML: %v", r)
		}
	}()

	if strings.TrimSpace(xml) == "" {
		identity.ParseError = "empty eKYC XML document"
		return identity
	}

	poi := elementTag(xml, "Poi")
	poa := elementTag(xml, "Poa")
	uidData := elementTag(xml, "UidData")

	identity.AadhaarNumber = scopedAttribute(xml, uidData, "uid")
	if identity.AadhaarNumber == "" {
		if ref := attribute(xml, "referenceId"); len(ref) >= 4 {
			identity.ReferenceID = ref
			identity.AadhaarNumber = ref[:4]
		}
	}
	identity.Name = scopedAttribute(xml, poi, "name")
	identity.DOB = scopedAttribute(xml, poi, "dob")
	identity.Gender = scopedAttribute(xml, poi, "gender")

	components := map[string]string{}
	for key, attrs := range addressAttributes {
		for _, attr := range attrs {
			if v := scopedAttribute(xml, poa, attr); v != "" {
				components[key] = v
				break
			}
		}
	}
	if len(components) > 0 {
		identity.AddressComponents = components
		identity.Address = aadhaar.JoinAddress(components)
		identity.Pincode = components[aadhaar.AddressPincode]
	}

	identity.HasProofOfIdentity = identity.Name != "" && identity.DOB != ""
	identity.HasProofOfAddress = len(components) > 0

	if m := photoPattern.FindStringSubmatch(xml); m != nil {
		if url, err := photoFromBase64(m[1]); err != nil {
			logger.Debug("Ignoring undecodable photo element", log.Error(err))
			identity.AddWarning("photo element could not be decoded")
		} else {
			identity.Photo = url
		}
	}

	identity.Success = identity.Name != "" || identity.AadhaarNumber != "" || identity.HasProofOfAddress
	if !identity.Success {
		identity.ParseError = "no identity attributes found in eKYC XML"
	}
	return identity
}

// elementTag returns the opening tag of the first element with the given name.
func elementTag(xml, element string) string {
	re, ok := elementCache[element]
	if !ok {
		return ""
	}
	return re.FindString(xml)
}

// scopedAttribute looks the attribute up inside scope first and then in the whole document.
func scopedAttribute(xml, scope, name string) string {
	if scope != "" {
		if v := attribute(scope, name); v != "" {
			return v
		}
	}
	return attribute(xml, name)
}

// attribute returns the unescaped value of the first occurrence of the named attribute.
func attribute(xml, name string) string {
	re, ok := attributeCache[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(xml)
	if m == nil {
		return ""
	}
	value := m[1]
	if value == "" {
		value = m[2]
	}
	return strings.TrimSpace(xmlUnescaper.Replace(value))
}

func photoFromBase64(encoded string) (string, error) {
	cleaned := strings.Join(strings.Fields(encoded), "")
	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", err
	}
	return photo.ToDataURL(raw)
}
