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

// Package binfield provides byte level helpers for delimiter framed binary payloads.
package binfield

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"io"
	"math/big"
	"unicode/utf8"
)

// MaxInflatedSize caps the decompressed size of a payload.
const MaxInflatedSize = 4 << 20

// Compression reports how a payload was decompressed.
type Compression string

const (
	// CompressionRawDeflate marks a payload inflated as a raw deflate stream.
	CompressionRawDeflate Compression = "deflate"
	// CompressionZlib marks a payload inflated as a zlib wrapped stream.
	CompressionZlib Compression = "zlib"
	// CompressionNone marks a payload that was passed through unchanged.
	CompressionNone Compression = "none"
)

// ErrNotDecimal is returned when a numeric payload contains non digit characters.
var ErrNotDecimal = errors.New("payload is not a decimal number")

// ErrInflatedTooLarge is returned when a payload inflates beyond MaxInflatedSize.
var ErrInflatedTooLarge = errors.New("inflated payload exceeds size limit")

// DecimalToBytes converts a base 10 big integer string into its big-endian byte representation.
func DecimalToBytes(digits string) ([]byte, error) {
	if digits == "" {
		return nil, ErrNotDecimal
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, ErrNotDecimal
		}
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, ErrNotDecimal
	}
	return n.Bytes(), nil
}

// Inflate decompresses data as raw deflate, then as zlib, and otherwise returns it unchanged.
func Inflate(data []byte) ([]byte, Compression) {
	if out, err := inflateRaw(data); err == nil && len(out) > 0 {
		return out, CompressionRawDeflate
	}
	if out, err := inflateZlib(data); err == nil && len(out) > 0 {
		return out, CompressionZlib
	}
	return data, CompressionNone
}

func inflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer func() { _ = r.Close() }()
	return readBounded(r)
}

func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return readBounded(r)
}

func readBounded(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxInflatedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxInflatedSize {
		return nil, ErrInflatedTooLarge
	}
	return out, nil
}

// Positions returns every index at which delim occurs in data.
func Positions(data []byte, delim byte) []int {
	positions := make([]int, 0, 32)
	for i, b := range data {
		if b == delim {
			positions = append(positions, i)
		}
	}
	return positions
}

// Fields returns up to n byte ranges split at positions. Field i spans from the byte after
// delimiter i-1 up to delimiter i; when fewer than n delimiters exist, the bytes after the
// last one form the final field.
func Fields(data []byte, positions []int, n int) [][]byte {
	fields := make([][]byte, 0, n)
	start := 0
	for i := 0; i < n && i < len(positions); i++ {
		end := positions[i]
		fields = append(fields, data[start:end])
		start = end + 1
	}
	if len(fields) < n && start < len(data) {
		fields = append(fields, data[start:])
	}
	return fields
}

// NextDelimited returns the index just past the next delim at or after from, or -1 when none remains.
func NextDelimited(data []byte, from int, delim byte) int {
	if from < 0 || from >= len(data) {
		return -1
	}
	idx := bytes.IndexByte(data[from:], delim)
	if idx < 0 {
		return -1
	}
	return from + idx + 1
}

// Latin1 decodes ISO-8859-1 bytes into a string, keeping valid UTF-8 input as is.
func Latin1(b []byte) string {
	if isASCII(b) {
		return string(b)
	}
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
