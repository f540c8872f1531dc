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

// Package secureqr decodes UIDAI Secure QR payloads: a big decimal integer wrapping a
// compressed, delimiter-framed byte stream of text fields, optional contact hashes, a
// digital signature and an embedded portrait.
package secureqr

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/aadhaar/binfield"
	"github.com/rentroll/kyc/internal/aadhaar/ekyc"
	"github.com/rentroll/kyc/internal/photo"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/utils"
)

const loggerComponentName = "SecureQRDecoder"

const (
	// PrimaryDelimiter separates fields in well-formed payloads.
	PrimaryDelimiter byte = 0xFF
	// SignatureLength is the size of the RSA signature that precedes the photo.
	SignatureLength = 256

	minPrimaryPositions   = 15
	minAlternatePositions = 10
	minOpaqueLength       = 100
	rawDataLimit          = 200
	addressFieldCount     = 11
	maxTextFields         = 18
)

// AlternateDelimiters are tried in order when the primary delimiter is too sparse.
var AlternateDelimiters = []byte{0x00, 0x0A, 0x09, 0x1E, 0x1C}

// addressFields is the order of the address fields that follow gender.
var addressFields = []string{
	aadhaar.AddressCareOf,
	aadhaar.AddressDistrict,
	aadhaar.AddressLandmark,
	aadhaar.AddressHouse,
	aadhaar.AddressLocation,
	aadhaar.AddressPincode,
	aadhaar.AddressPostOffice,
	aadhaar.AddressState,
	aadhaar.AddressStreet,
	aadhaar.AddressSubDistrict,
	aadhaar.AddressVTC,
}

// Email/mobile indicator values.
const (
	IndicatorNone   = 0
	IndicatorEmail  = 1
	IndicatorMobile = 2
	IndicatorBoth   = 3
)

var (
	// ErrUnsupportedPayload is reported for short payloads that are neither XML nor numeric.
	ErrUnsupportedPayload = errors.New("payload is neither XML nor a Secure QR code")
	// ErrEmptyPayload is reported for blank payloads.
	ErrEmptyPayload = errors.New("payload is empty")
)

// DecoderInterface defines the operations of the Secure QR decoder.
type DecoderInterface interface {
	Decode(payload string) *aadhaar.DecodedIdentity
	DecodeBytes(raw []byte) *aadhaar.DecodedIdentity
	DecodeContext(ctx context.Context, payload string) (*aadhaar.DecodedIdentity, error)
}

// Decoder is the default implementation of DecoderInterface.
type Decoder struct {
	now func() time.Time
}

// NewDecoder creates a decoder that stamps results with the wall clock.
func NewDecoder() DecoderInterface {
	return &Decoder{now: time.Now}
}

// NewDecoderWithClock creates a decoder that stamps results using now.
func NewDecoderWithClock(now func() time.Time) DecoderInterface {
	return &Decoder{now: now}
}

// ErrDecoderPanic is reported when decoding a payload panics.
var ErrDecoderPanic = errors.New("payload could not be decoded")

// DecodeContext runs Decode on a separate goroutine and returns ctx.Err() if ctx is done
// first. Decoding is CPU bound when a JPEG 2000 portrait is present; the portrait decode
// stops once ctx is done.
func (d *Decoder) DecodeContext(ctx context.Context, payload string) (*aadhaar.DecodedIdentity, error) {
	result := make(chan *aadhaar.DecodedIdentity, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
					Error("Payload decode panicked", log.Any("panic", r))
				result <- d.failed(payload, ErrDecoderPanic)
			}
		}()
		result <- d.decodePayload(ctx, payload)
	}()
	select {
	case identity := <-result:
		return identity, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Decode routes a scanned payload to the XML or Secure QR decoder. It never fails; problems
// are reported through ParseError, ParseNote and Warnings.
func (d *Decoder) Decode(payload string) *aadhaar.DecodedIdentity {
	return d.decodePayload(context.Background(), payload)
}

func (d *Decoder) decodePayload(ctx context.Context, payload string) *aadhaar.DecodedIdentity {
	trimmed := strings.TrimSpace(payload)
	switch {
	case trimmed == "":
		return d.failed(payload, ErrEmptyPayload)
	case ekyc.LooksLikeXML(trimmed):
		identity := ekyc.Parse(trimmed)
		d.stamp(identity, payload)
		return identity
	case utils.IsAllDigits(trimmed):
		raw, err := binfield.DecimalToBytes(trimmed)
		if err != nil {
			return d.failed(payload, err)
		}
		return d.decode(ctx, raw, payload)
	case len(trimmed) > minOpaqueLength:
		return d.decode(ctx, recoverBytes(trimmed), payload)
	}
	return d.failed(payload, ErrUnsupportedPayload)
}

// DecodeBytes decodes a payload that has already been converted to bytes.
func (d *Decoder) DecodeBytes(raw []byte) *aadhaar.DecodedIdentity {
	return d.decode(context.Background(), raw, base64.StdEncoding.EncodeToString(raw))
}

// recoverBytes turns a non-numeric payload into bytes, preferring base64.
func recoverBytes(s string) []byte {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil && len(b) > 0 {
			return b
		}
	}
	return []byte(s)
}

func (d *Decoder) failed(payload string, err error) *aadhaar.DecodedIdentity {
	identity := &aadhaar.DecodedIdentity{
		Source:     aadhaar.SourceSecureQR,
		ParseError: err.Error(),
	}
	d.stamp(identity, payload)
	return identity
}

func (d *Decoder) stamp(identity *aadhaar.DecodedIdentity, payload string) {
	now := d.now()
	identity.ScannedAt = &now
	identity.RawData = utils.Truncate(payload, rawDataLimit)
	if identity.QRType == "" {
		identity.QRType = aadhaar.QRTypeSecure
	}
}

func (d *Decoder) decode(ctx context.Context, raw []byte, payload string) *aadhaar.DecodedIdentity {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	data, compression := binfield.Inflate(raw)
	delim, positions, ok := selectDelimiter(data)
	if logger.IsDebugEnabled() {
		logger.Debug("Secure QR payload inflated",
			log.String("compression", string(compression)),
			log.Int("inflatedSize", len(data)),
			log.Int("delimiter", int(delim)),
			log.Int("delimiterCount", len(positions)))
	}

	var identity *aadhaar.DecodedIdentity
	if ok {
		identity = decodeFields(ctx, data, delim, positions)
	}
	if identity == nil {
		logger.Debug("Secure QR structure not recognised, falling back to pattern extraction")
		identity = scrape(data)
	}
	if compression == binfield.CompressionNone {
		identity.AddWarning("payload was not compressed; decoded as raw bytes")
	}
	d.stamp(identity, payload)
	return identity
}

// selectDelimiter picks the field delimiter. 0xFF is accepted with at least 15 positions;
// otherwise the first alternate with at least 10 wins, and 0xFF with at least 10 is the
// last resort.
func selectDelimiter(data []byte) (byte, []int, bool) {
	primary := binfield.Positions(data, PrimaryDelimiter)
	if len(primary) >= minPrimaryPositions {
		return PrimaryDelimiter, primary, true
	}
	for _, delim := range AlternateDelimiters {
		if positions := binfield.Positions(data, delim); len(positions) >= minAlternatePositions {
			return delim, positions, true
		}
	}
	if len(primary) >= minAlternatePositions {
		return PrimaryDelimiter, primary, true
	}
	return PrimaryDelimiter, primary, false
}

// decodeFields reads the delimited text fields and the trailing binary sections. It returns
// nil when the fields do not match any known layout.
func decodeFields(ctx context.Context, data []byte, delim byte, positions []int) *aadhaar.DecodedIdentity {
	raw := binfield.Fields(data, positions, maxTextFields)
	texts := make([]string, len(raw))
	for i, f := range raw {
		texts[i] = strings.TrimSpace(binfield.Latin1(f))
	}

	base := 0
	if len(texts) > 0 && versionShape.MatchString(texts[0]) {
		base = 1
	}
	c := Classify(texts[base:])
	if c.Layout == LayoutFallback {
		return nil
	}
	field := func(i int) string {
		if i < 0 || base+i >= len(texts) {
			return ""
		}
		return texts[base+i]
	}

	identity := &aadhaar.DecodedIdentity{
		Source:     aadhaar.SourceSecureQR,
		QRType:     aadhaar.QRTypeSecure,
		Layout:     c.Layout.String(),
		Confidence: aadhaar.ConfidenceHigh,
		Name:       field(c.Name),
		DOB:        field(c.Name + 1),
		Gender:     field(c.Name + 2),
	}
	if ref := field(c.RefID); len(ref) >= 4 {
		identity.ReferenceID = ref
		identity.AadhaarNumber = ref[:4]
	}
	indicator := IndicatorNone
	if v, err := strconv.Atoi(field(c.Indicator)); err == nil {
		indicator = v
	}
	identity.EmailMobileFlag = indicator

	components := map[string]string{}
	for i, key := range addressFields {
		if v := field(c.Name + 3 + i); v != "" {
			components[key] = v
		}
	}
	if len(components) > 0 {
		identity.AddressComponents = components
		identity.Address = aadhaar.JoinAddress(components)
		identity.Pincode = components[aadhaar.AddressPincode]
	}
	identity.HasProofOfIdentity = identity.Name != "" && identity.DOB != ""
	identity.HasProofOfAddress = len(components) > 0
	identity.Success = identity.Name != "" || identity.AadhaarNumber != ""

	lastText := base + c.Name + 2 + addressFieldCount
	if lastText < len(positions) {
		extractPhoto(ctx, identity, data, positions[lastText]+1, delim, indicator)
	} else {
		identity.AddWarning("payload ends before the photo section")
	}
	return identity
}

// extractPhoto skips the contact hashes and signature that follow the text fields and
// converts the remaining bytes to a data URL. Failures only add a warning.
func extractPhoto(ctx context.Context, identity *aadhaar.DecodedIdentity, data []byte, start int, delim byte,
	indicator int) {
	skip := 0
	switch indicator {
	case IndicatorEmail, IndicatorMobile:
		skip = 1
	case IndicatorBoth:
		skip = 2
	}
	pos := start
	for i := 0; i < skip && pos >= 0; i++ {
		pos = binfield.NextDelimited(data, pos, delim)
	}

	var img []byte
	if pos >= 0 && pos+SignatureLength < len(data) {
		img = data[pos+SignatureLength:]
	}
	if photo.Detect(img) == photo.FormatUnknown && start < len(data) {
		if offset, format := photo.Locate(data[start:]); format != photo.FormatUnknown {
			img = data[start+offset:]
		}
	}
	if len(img) == 0 {
		identity.AddWarning("no embedded photo found")
		return
	}

	url, err := photo.ToDataURLContext(ctx, img)
	if err != nil {
		identity.AddWarning("embedded photo could not be decoded: " + err.Error())
		return
	}
	if strings.HasPrefix(url, photo.JP2DataURLPrefix) {
		identity.AddWarning("embedded JPEG 2000 photo could not be transcoded")
	}
	identity.Photo = url
}
