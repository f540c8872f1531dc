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

// Package aadhaar holds the identity model shared by the Aadhaar document decoders.
package aadhaar

import (
	"strings"
	"time"
	"unicode"
)

// Source identifies which encoding an identity was decoded from.
type Source string

const (
	// SourceXML marks identities read from an eKYC XML document.
	SourceXML Source = "xml"
	// SourceSecureQR marks identities read from a Secure QR payload.
	SourceSecureQR Source = "secure_qr"
)

// Confidence grades how an identity was recovered.
type Confidence string

const (
	// ConfidenceHigh is set when fields were read from a recognised structure.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow is set when fields were scraped by pattern matching.
	ConfidenceLow Confidence = "low"
)

// QRTypeSecure is the qrType reported for Secure QR payloads.
const QRTypeSecure = "secure"

// QRTypeXML is the qrType reported for plain XML QR payloads.
const QRTypeXML = "xml"

// Address component keys, in the order they are joined into a display address.
const (
	AddressCareOf      = "careOf"
	AddressHouse       = "house"
	AddressStreet      = "street"
	AddressLandmark    = "landmark"
	AddressLocation    = "location"
	AddressVTC         = "vtc"
	AddressPostOffice  = "postOffice"
	AddressSubDistrict = "subDistrict"
	AddressDistrict    = "district"
	AddressState       = "state"
	AddressPincode     = "pincode"
)

// AddressOrder is the display order of address components.
var AddressOrder = []string{
	AddressCareOf, AddressHouse, AddressStreet, AddressLandmark, AddressLocation, AddressVTC,
	AddressPostOffice, AddressSubDistrict, AddressDistrict, AddressState, AddressPincode,
}

// DecodedIdentity is the identity recovered from an Aadhaar XML or Secure QR document.
type DecodedIdentity struct {
	Success            bool              `json:"success"`
	Name               string            `json:"name,omitempty"`
	DOB                string            `json:"dob,omitempty"`
	Gender             string            `json:"gender,omitempty"`
	AadhaarNumber      string            `json:"aadhaarNumber,omitempty"`
	ReferenceID        string            `json:"referenceId,omitempty"`
	Address            string            `json:"address,omitempty"`
	AddressComponents  map[string]string `json:"addressComponents,omitempty"`
	Pincode            string            `json:"pincode,omitempty"`
	Photo              string            `json:"photo,omitempty"`
	EmailMobileFlag    int               `json:"emailMobileIndicator,omitempty"`
	HasProofOfIdentity bool              `json:"hasProofOfIdentity"`
	HasProofOfAddress  bool              `json:"hasProofOfAddress"`
	Source             Source            `json:"source"`
	QRType             string            `json:"qrType,omitempty"`
	Layout             string            `json:"layout,omitempty"`
	RawData            string            `json:"rawData,omitempty"`
	ScannedAt          *time.Time        `json:"scannedAt,omitempty"`
	Confidence         Confidence        `json:"confidence,omitempty"`
	ParseError         string            `json:"parseError,omitempty"`
	ParseNote          string            `json:"parseNote,omitempty"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// JoinAddress joins the present address components in display order with ", ".
func JoinAddress(components map[string]string) string {
	parts := make([]string, 0, len(components))
	for _, key := range AddressOrder {
		if v, ok := components[key]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// IsSuffixOnly reports whether the identity carries only the last four digits of the Aadhaar
// number. Spaces and hyphens are not counted.
func (d *DecodedIdentity) IsSuffixOnly() bool {
	n := 0
	for _, r := range d.AadhaarNumber {
		if !unicode.IsSpace(r) && r != '-' {
			n++
		}
	}
	return n == 4
}

// AddWarning records a non-fatal issue met while decoding.
func (d *DecodedIdentity) AddWarning(msg string) {
	d.Warnings = append(d.Warnings, msg)
}
