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

// Package jpeg2000 implements a decoder for baseline JPEG 2000 Part 1 images, either as a
// raw codestream or wrapped in a JP2 container.
//
// Supported: any progression order, multiple tiles and tile-parts, 5/3 reversible and 9/7
// irreversible wavelets, RCT/ICT multi-component transforms, precincts, SOP/EPH markers and
// the reset, vertically causal and segmentation-symbol code-block styles. Arithmetic coding
// bypass, per-pass termination, POC and packed packet headers are reported as unsupported.
package jpeg2000

import (
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

// A FormatError reports that the input is not a valid JPEG 2000 image.
type FormatError string

func (e FormatError) Error() string { return "jpeg2000: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "jpeg2000: unsupported feature: " + string(e) }

const (
	jp2Signature        = "\x00\x00\x00\x0cjP  \r\n\x87\n"
	codestreamSignature = "\xff\x4f\xff\x51"

	maxInputSize = 32 << 20

	// DefaultMaxPixels is the image area accepted when Options.MaxPixels is zero.
	DefaultMaxPixels = 1 << 26
	// samplesPerPixel bounds the total samples over all components relative to the area.
	samplesPerPixel = 4
)

// Options limits the resources a single decode may use.
type Options struct {
	// MaxPixels is the largest image area accepted. Zero means DefaultMaxPixels.
	MaxPixels int
}

func (o *Options) maxPixels() int {
	if o == nil || o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return o.MaxPixels
}

// Enumerated colour spaces from the JP2 colr box.
const (
	colourSpaceUnknown = 0
	colourSpaceSRGB    = 16
	colourSpaceGrey    = 17
	colourSpaceSYCC    = 18
)

func init() {
	image.RegisterFormat("jp2", jp2Signature, Decode, DecodeConfig)
	image.RegisterFormat("j2k", codestreamSignature, Decode, DecodeConfig)
}

// Decode reads a JPEG 2000 image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	return DecodeContext(context.Background(), r, nil)
}

// DecodeContext is Decode with resource limits. It stops between tiles and components
// once ctx is done and returns ctx.Err().
func DecodeContext(ctx context.Context, r io.Reader, opts *Options) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	cs, colourSpace, err := locateCodestream(data)
	if err != nil {
		return nil, err
	}
	d := &decoder{ctx: ctx, data: cs, colourSpace: colourSpace, maxPixels: opts.maxPixels()}
	return d.decode()
}

// DecodeConfig returns the dimensions and colour model of a JPEG 2000 image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, err
	}
	cs, _, err := locateCodestream(data)
	if err != nil {
		return image.Config{}, err
	}
	d := &decoder{data: cs, maxPixels: DefaultMaxPixels}
	if err := d.readMainHeader(); err != nil {
		return image.Config{}, err
	}
	cfg := image.Config{
		Width:  d.siz.width - d.siz.x0,
		Height: d.siz.height - d.siz.y0,
	}
	switch len(d.siz.comps) {
	case 1:
		cfg.ColorModel = color.GrayModel
	case 3:
		cfg.ColorModel = color.RGBAModel
	default:
		cfg.ColorModel = color.NRGBAModel
	}
	return cfg, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxInputSize {
		return nil, UnsupportedError("input larger than 32 MiB")
	}
	return data, nil
}

// IsJPEG2000 reports whether data starts with a JP2 signature box or a codestream SOC+SIZ.
func IsJPEG2000(data []byte) bool {
	if len(data) >= 4 && string(data[:4]) == codestreamSignature {
		return true
	}
	return len(data) >= 8 && data[0] == 0 && data[1] == 0 && data[2] == 0 && string(data[4:6]) == "jP"
}

// locateCodestream returns the contiguous codestream and the enumerated colour space
// declared by the container, if any.
func locateCodestream(data []byte) ([]byte, int, error) {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0x4F {
		return data, colourSpaceUnknown, nil
	}
	if !IsJPEG2000(data) {
		return nil, 0, FormatError("missing JP2 signature or SOC marker")
	}

	colourSpace := colourSpaceUnknown
	var codestream []byte
	err := walkBoxes(data, func(boxType string, content []byte) (bool, error) {
		switch boxType {
		case "jp2h":
			return true, walkBoxes(content, func(inner string, body []byte) (bool, error) {
				if inner == "colr" && len(body) >= 7 && body[0] == 1 {
					colourSpace = int(binary.BigEndian.Uint32(body[3:7]))
				}
				return true, nil
			})
		case "jp2c":
			codestream = content
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, 0, err
	}
	if codestream == nil {
		return nil, 0, FormatError("no contiguous codestream box")
	}
	return codestream, colourSpace, nil
}

// walkBoxes iterates the boxes in data until fn returns false.
func walkBoxes(data []byte, fn func(boxType string, content []byte) (bool, error)) error {
	pos := 0
	for pos+8 <= len(data) {
		length := uint64(binary.BigEndian.Uint32(data[pos:]))
		boxType := string(data[pos+4 : pos+8])
		header := uint64(8)
		switch length {
		case 0:
			length = uint64(len(data) - pos)
		case 1:
			if pos+16 > len(data) {
				return FormatError("truncated extended box length")
			}
			length = binary.BigEndian.Uint64(data[pos+8:])
			header = 16
		}
		if length < header || uint64(pos)+length > uint64(len(data)) {
			return FormatError("box " + boxType + " overruns its container")
		}
		more, err := fn(boxType, data[uint64(pos)+header:uint64(pos)+length])
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		pos += int(length)
	}
	return nil
}
