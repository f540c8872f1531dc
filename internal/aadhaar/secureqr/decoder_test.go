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
	"bytes"
	"compress/flate"
	"compress/zlib"
	"context"
	"encoding/base64"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/photo"
)

const testRefID = "834720200911103045123"

var (
	scannedAt  = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	jpegPhoto  = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngPhoto   = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	addressSet = []string{
		"S/O Suresh Kumar", "Pune", "Near Temple", "12", "Kothrud", "411038",
		"Kothrud", "Maharashtra", "MG Road", "Haveli", "Pune",
	}
)

const wantAddress = "S/O Suresh Kumar, 12, MG Road, Near Temple, Kothrud, Pune, Kothrud, Haveli, Pune, Maharashtra, 411038"

type SecureQRDecoderTestSuite struct {
	suite.Suite
	decoder DecoderInterface
}

func TestSecureQRDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(SecureQRDecoderTestSuite))
}

func (suite *SecureQRDecoderTestSuite) SetupTest() {
	suite.decoder = NewDecoderWithClock(func() time.Time { return scannedAt })
}

func frame(fields []string, trailer ...[]byte) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(PrimaryDelimiter)
	}
	for _, t := range trailer {
		buf.Write(t)
	}
	return buf.Bytes()
}

func signature() []byte {
	return bytes.Repeat([]byte{0x5A}, SignatureLength)
}

func (suite *SecureQRDecoderTestSuite) compress(data []byte, zlibWrapped bool) []byte {
	var out bytes.Buffer
	if zlibWrapped {
		w := zlib.NewWriter(&out)
		_, err := w.Write(data)
		suite.Require().NoError(err)
		suite.Require().NoError(w.Close())
		return out.Bytes()
	}
	w, err := flate.NewWriter(&out, flate.BestCompression)
	suite.Require().NoError(err)
	_, err = w.Write(data)
	suite.Require().NoError(err)
	suite.Require().NoError(w.Close())
	return out.Bytes()
}

func toDecimal(b []byte) string {
	return new(big.Int).SetBytes(b).String()
}

func v2Fields() []string {
	return append([]string{testRefID, "0", "RAHUL KUMAR", "01-01-1995", "M"}, addressSet...)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeV2Layout() {
	for _, zlibWrapped := range []bool{false, true} {
		payload := toDecimal(suite.compress(frame(v2Fields(), signature(), jpegPhoto), zlibWrapped))

		identity := suite.decoder.Decode(payload)

		suite.True(identity.Success)
		suite.Equal("8347", identity.AadhaarNumber)
		suite.Equal(testRefID, identity.ReferenceID)
		suite.Equal("RAHUL KUMAR", identity.Name)
		suite.Equal("01-01-1995", identity.DOB)
		suite.Equal("M", identity.Gender)
		suite.Equal("411038", identity.Pincode)
		suite.Equal(wantAddress, identity.Address)
		suite.Equal("Haveli", identity.AddressComponents[aadhaar.AddressSubDistrict])
		suite.Equal(LayoutV2.String(), identity.Layout)
		suite.Equal(aadhaar.SourceSecureQR, identity.Source)
		suite.Equal(aadhaar.QRTypeSecure, identity.QRType)
		suite.Equal(aadhaar.ConfidenceHigh, identity.Confidence)
		suite.True(strings.HasPrefix(identity.Photo, "data:image/jpeg;base64,"))
		suite.True(identity.HasProofOfIdentity)
		suite.True(identity.HasProofOfAddress)
		suite.Require().NotNil(identity.ScannedAt)
		suite.Equal(scannedAt, *identity.ScannedAt)
		suite.Len(identity.RawData, rawDataLimit)
		suite.True(identity.IsSuffixOnly())
	}
}

func (suite *SecureQRDecoderTestSuite) TestDecodeV1Layout() {
	fields := append([]string{testRefID, "RAHUL KUMAR", "01-01-1995", "M"}, addressSet...)
	payload := toDecimal(suite.compress(frame(fields, signature(), jpegPhoto), false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal(LayoutV1.String(), identity.Layout)
	suite.Equal("RAHUL KUMAR", identity.Name)
	suite.Equal("8347", identity.AadhaarNumber)
	suite.Equal(wantAddress, identity.Address)
	suite.Equal(IndicatorNone, identity.EmailMobileFlag)
	suite.True(strings.HasPrefix(identity.Photo, "data:image/jpeg;base64,"))
}

func (suite *SecureQRDecoderTestSuite) TestDecodeVersionPrefixWithContactHashes() {
	fields := append([]string{"V2", "3", testRefID, "RAHUL KUMAR", "01-01-1995", "M"}, addressSet...)
	emailHash := append(bytes.Repeat([]byte{0x22}, 32), PrimaryDelimiter)
	mobileHash := append(bytes.Repeat([]byte{0x33}, 32), PrimaryDelimiter)
	payload := toDecimal(suite.compress(frame(fields, emailHash, mobileHash, signature(), pngPhoto), false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal(LayoutV2Alt.String(), identity.Layout)
	suite.Equal("RAHUL KUMAR", identity.Name)
	suite.Equal("8347", identity.AadhaarNumber)
	suite.Equal(IndicatorBoth, identity.EmailMobileFlag)
	suite.True(strings.HasPrefix(identity.Photo, "data:image/png;base64,"))
	suite.Empty(identity.Warnings)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeLocatesPhotoWhenOffsetIsWrong() {
	// Indicator claims both hashes are present but neither is.
	fields := append([]string{testRefID, "3", "RAHUL KUMAR", "01-01-1995", "M"}, addressSet...)
	payload := toDecimal(suite.compress(frame(fields, signature(), jpegPhoto), false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.True(strings.HasPrefix(identity.Photo, "data:image/jpeg;base64,"))
}

func (suite *SecureQRDecoderTestSuite) TestDecodeWithoutPhotoIsNonFatal() {
	payload := toDecimal(suite.compress(frame(v2Fields()), false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal("RAHUL KUMAR", identity.Name)
	suite.Empty(identity.Photo)
	suite.Contains(identity.Warnings, "no embedded photo found")
}

func (suite *SecureQRDecoderTestSuite) TestDecodeKeepsUnterminatedLastField() {
	data := []byte(strings.Join(v2Fields(), string([]byte{PrimaryDelimiter})))
	payload := toDecimal(suite.compress(data, false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal(LayoutV2.String(), identity.Layout)
	suite.Equal("Pune", identity.AddressComponents[aadhaar.AddressVTC])
	suite.Equal(wantAddress, identity.Address)
	suite.Contains(identity.Warnings, "payload ends before the photo section")
}

func (suite *SecureQRDecoderTestSuite) TestDecodeBytesUncompressed() {
	fields := append([]string{testRefID, "RAHUL KUMAR", "01-01-1995", "M"}, addressSet...)

	identity := suite.decoder.DecodeBytes(frame(fields, signature(), jpegPhoto))

	suite.True(identity.Success)
	suite.Equal(LayoutV1.String(), identity.Layout)
	suite.Contains(identity.Warnings, "payload was not compressed; decoded as raw bytes")
}

func (suite *SecureQRDecoderTestSuite) TestDecodeFallsBackToPatternExtraction() {
	text := []byte("xx RAHUL KUMAR 01-01-1995 M Pune 411001 834720200911 yy")
	payload := toDecimal(suite.compress(text, false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal(LayoutFallback.String(), identity.Layout)
	suite.Equal(aadhaar.ConfidenceLow, identity.Confidence)
	suite.Equal(ScrapeNote, identity.ParseNote)
	suite.Equal("RAHUL KUMAR", identity.Name)
	suite.Equal("01-01-1995", identity.DOB)
	suite.Equal("M", identity.Gender)
	suite.Equal("411001", identity.Pincode)
	suite.Equal("8347", identity.AadhaarNumber)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeFallbackWithNothingFound() {
	payload := toDecimal(suite.compress([]byte("zzzz zzzz zzzz"), false))

	identity := suite.decoder.Decode(payload)

	suite.False(identity.Success)
	suite.Equal(ScrapeNote, identity.ParseNote)
	suite.NotEmpty(identity.ParseError)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeRoutesXMLToEKYCParser() {
	identity := suite.decoder.Decode(`<PrintLetterBarcodeData uid="123412341234" name="Rahul Kumar" gender="M" house="12" vtc="Pune" pc="411001"/>`)

	suite.True(identity.Success)
	suite.Equal("Rahul Kumar", identity.Name)
	suite.Equal("123412341234", identity.AadhaarNumber)
	suite.Equal(aadhaar.SourceXML, identity.Source)
	suite.Equal(aadhaar.QRTypeXML, identity.QRType)
	suite.Require().NotNil(identity.ScannedAt)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeRejectsShortOpaquePayloads() {
	identity := suite.decoder.Decode("hello world")
	suite.False(identity.Success)
	suite.Equal(ErrUnsupportedPayload.Error(), identity.ParseError)
	suite.Equal("hello world", identity.RawData)

	identity = suite.decoder.Decode("   ")
	suite.False(identity.Success)
	suite.Equal(ErrEmptyPayload.Error(), identity.ParseError)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeLongOpaquePayloadAsBase64() {
	raw := suite.compress(frame(v2Fields(), signature(), jpegPhoto), true)
	payload := strings.Repeat(" ", 2) + encodeStd(raw)
	suite.Require().Greater(len(payload), minOpaqueLength)

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.Equal("RAHUL KUMAR", identity.Name)
}

// grayCodestream returns an 8x8 single-component JPEG 2000 codestream with one empty packet.
func grayCodestream() []byte {
	return []byte{
		0xFF, 0x4F,
		0xFF, 0x51, 0x00, 0x29, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x01, 0x07, 0x01, 0x01,
		0xFF, 0x52, 0x00, 0x0C, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x04, 0x04, 0x00, 0x01,
		0xFF, 0x5C, 0x00, 0x04, 0x40, 0x40,
		0xFF, 0x90, 0x00, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x01,
		0xFF, 0x93,
		0x00,
		0xFF, 0xD9,
	}
}

func (suite *SecureQRDecoderTestSuite) TestDecodeTranscodesJPEG2000Photo() {
	payload := toDecimal(suite.compress(frame(v2Fields(), signature(), grayCodestream()), false))

	identity := suite.decoder.Decode(payload)

	suite.True(identity.Success)
	suite.True(strings.HasPrefix(identity.Photo, "data:image/png;base64,"))
	suite.Empty(identity.Warnings)
}

func (suite *SecureQRDecoderTestSuite) TestDecodeKeepsFieldsWhenJPEG2000PhotoIsMalformed() {
	emptyComponent := grayCodestream()
	emptyComponent[19] = 0x01 // XOsiz
	emptyComponent[43] = 0xA6 // XRsiz of component 0

	oversized := grayCodestream()
	copy(oversized[12:16], []byte{0x00, 0x10, 0x00, 0x00}) // Ysiz = 1<<20

	truncated := grayCodestream()[:30]

	for name, cs := range map[string][]byte{
		"EmptyComponent": emptyComponent,
		"Oversized":      oversized,
		"Truncated":      truncated,
	} {
		suite.Run(name, func() {
			payload := toDecimal(suite.compress(frame(v2Fields(), signature(), cs), false))

			identity, err := suite.decoder.DecodeContext(context.Background(), payload)

			suite.Require().NoError(err)
			suite.True(identity.Success)
			suite.Equal("RAHUL KUMAR", identity.Name)
			suite.Equal("8347", identity.AadhaarNumber)
			suite.Equal("411038", identity.Pincode)
			suite.Equal(photo.JP2DataURLPrefix+base64.StdEncoding.EncodeToString(cs), identity.Photo)
			suite.Contains(identity.Warnings, "embedded JPEG 2000 photo could not be transcoded")
		})
	}
}

func (suite *SecureQRDecoderTestSuite) TestDecodeContext() {
	payload := toDecimal(suite.compress(frame(v2Fields(), signature(), jpegPhoto), false))

	identity, err := suite.decoder.DecodeContext(context.Background(), payload)
	suite.Require().NoError(err)
	suite.Equal("8347", identity.AadhaarNumber)
}

func (suite *SecureQRDecoderTestSuite) TestSelectDelimiter() {
	delim, positions, ok := selectDelimiter(bytes.Repeat([]byte("ab\n"), 12))
	suite.True(ok)
	suite.Equal(byte(0x0A), delim)
	suite.Len(positions, 12)

	delim, _, ok = selectDelimiter(bytes.Repeat([]byte("ab\xff"), 11))
	suite.True(ok)
	suite.Equal(PrimaryDelimiter, delim)

	_, _, ok = selectDelimiter([]byte("a\xffb\xffc"))
	suite.False(ok)
}
