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

// Package photo converts the binary portraits embedded in Aadhaar documents into data URLs
// that browsers can render.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rentroll/kyc/internal/photo/jpeg2000"
	"github.com/rentroll/kyc/internal/system/log"
)

const loggerComponentName = "PhotoCodec"

// Format identifies the encoding of an embedded portrait.
type Format string

const (
	// FormatUnknown is returned when no supported signature is found.
	FormatUnknown Format = ""
	// FormatJPEG is a baseline JPEG/JFIF image.
	FormatJPEG Format = "jpeg"
	// FormatPNG is a PNG image.
	FormatPNG Format = "png"
	// FormatJP2 is a JPEG 2000 image in a JP2 container.
	FormatJP2 Format = "jp2"
	// FormatJ2K is a raw JPEG 2000 codestream.
	FormatJ2K Format = "j2k"
)

// IsJPEG2000 reports whether the format is either JPEG 2000 flavour.
func (f Format) IsJPEG2000() bool {
	return f == FormatJP2 || f == FormatJ2K
}

var (
	// ErrEmptyPhoto is returned for zero-length photo data.
	ErrEmptyPhoto = errors.New("photo data is empty")
	// ErrUnknownFormat is returned when the photo bytes match no supported image format.
	ErrUnknownFormat = errors.New("photo data is not a recognised image format")
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	j2kMagic  = []byte{0xFF, 0x4F, 0xFF, 0x51}
	jp2Magic  = []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20}
)

// Detect identifies the image format from its leading bytes. Signatures are checked
// first; the content sniffer is consulted for anything they miss.
func Detect(b []byte) Format {
	switch {
	case len(b) == 0:
		return FormatUnknown
	case bytes.HasPrefix(b, jpegMagic[:2]):
		return FormatJPEG
	case bytes.HasPrefix(b, pngMagic[:2]):
		return FormatPNG
	case bytes.HasPrefix(b, j2kMagic[:2]):
		return FormatJ2K
	case jpeg2000.IsJPEG2000(b):
		return FormatJP2
	}

	mt := mimetype.Detect(b)
	switch {
	case mt.Is("image/jpeg"):
		return FormatJPEG
	case mt.Is("image/png"):
		return FormatPNG
	case mt.Is("image/jp2"), mt.Is("image/jpx"):
		return FormatJP2
	}
	return FormatUnknown
}

// Locate scans data for the first offset at which a supported image signature starts.
// It returns -1 when none is found.
func Locate(data []byte) (int, Format) {
	best, format := -1, FormatUnknown
	candidates := []struct {
		magic  []byte
		format Format
	}{
		{jp2Magic, FormatJP2},
		{j2kMagic, FormatJ2K},
		{jpegMagic, FormatJPEG},
		{pngMagic, FormatPNG},
	}
	for _, c := range candidates {
		if i := bytes.Index(data, c.magic); i >= 0 && (best < 0 || i < best) {
			best, format = i, c.format
		}
	}
	return best, format
}

// MaxPortraitPixels caps the decoded area of an embedded JPEG 2000 portrait. Aadhaar
// portraits are around 100x120 pixels.
const MaxPortraitPixels = 1 << 20

// JP2DataURLPrefix starts the data URL returned when a JPEG 2000 portrait could not be
// transcoded.
const JP2DataURLPrefix = "data:image/jp2;base64,"

// ToDataURL wraps JPEG and PNG bytes directly and transcodes JPEG 2000 to PNG. Other images
// recognised by the content sniffer are wrapped with their detected MIME type.
func ToDataURL(raw []byte) (string, error) {
	return ToDataURLContext(context.Background(), raw)
}

// ToDataURLContext is ToDataURL with JPEG 2000 decoding bound to ctx.
func ToDataURLContext(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmptyPhoto
	}
	switch f := Detect(raw); f {
	case FormatJPEG:
		return encode("image/jpeg", raw), nil
	case FormatPNG:
		return encode("image/png", raw), nil
	case FormatJP2, FormatJ2K:
		return DecodeJP2ToDataURLContext(ctx, raw), nil
	}

	if mt := mimetype.Detect(raw); strings.HasPrefix(mt.String(), "image/") {
		return encode(mt.String(), raw), nil
	}
	return "", ErrUnknownFormat
}

// DecodeJP2ToDataURL transcodes a JPEG 2000 image to a PNG data URL. When decoding fails the
// original bytes are returned as an image/jp2 data URL so that capable viewers can still
// render them. Empty input yields an empty string.
func DecodeJP2ToDataURL(raw []byte) string {
	return DecodeJP2ToDataURLContext(context.Background(), raw)
}

// DecodeJP2ToDataURLContext is DecodeJP2ToDataURL bound to ctx and limited to
// MaxPortraitPixels. A cancelled decode also falls back to the original bytes.
func DecodeJP2ToDataURLContext(ctx context.Context, raw []byte) (url string) {
	if len(raw) == 0 {
		return ""
	}
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("JPEG 2000 decoder panicked, returning original bytes",
				log.Int("size", len(raw)), log.Any("panic", r))
			url = encode("image/jp2", raw)
		}
	}()

	img, err := jpeg2000.DecodeContext(ctx, bytes.NewReader(raw), &jpeg2000.Options{MaxPixels: MaxPortraitPixels})
	if err != nil {
		logger.Debug("JPEG 2000 decode failed, returning original bytes",
			log.Int("size", len(raw)), log.Error(err))
		return encode("image/jp2", raw)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Warn("PNG encode failed, returning original bytes", log.Error(err))
		return encode("image/jp2", raw)
	}
	if logger.IsDebugEnabled() {
		logger.Debug("Transcoded JPEG 2000 photo",
			log.Int("width", img.Bounds().Dx()), log.Int("height", img.Bounds().Dy()))
	}
	return encode("image/png", buf.Bytes())
}

func encode(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
