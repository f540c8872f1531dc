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

package oauth

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
)

// maxFlowTokenLen bounds the caller-supplied token before it is decoded.
const maxFlowTokenLen = 2048

var flowTokenAAD = []byte("kyc-flow-token-v1")

var (
	// ErrFlowTokenInvalid is returned when a flow token cannot be opened.
	ErrFlowTokenInvalid = errors.New("flow token is invalid")
	// ErrFlowTokenKey is returned when the sealing key is not 32 bytes.
	ErrFlowTokenKey = errors.New("flow token key must be 32 bytes, raw or base64 encoded")
)

// FlowState is the part of an authorization attempt that must survive until the callback.
type FlowState struct {
	State     string `cbor:"1,keyasint"`
	Verifier  string `cbor:"2,keyasint"`
	CreatedAt int64  `cbor:"3,keyasint"`
}

// FlowSealer seals FlowState into an opaque token so that a stateless caller can hand the
// whole attempt back on the callback.
type FlowSealer struct {
	aead cipher.AEAD
}

// NewFlowSealer creates a sealer from a 32 byte key given raw or base64 encoded.
func NewFlowSealer(key string) (*FlowSealer, error) {
	raw, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow token cipher: %w", err)
	}
	return &FlowSealer{aead: aead}, nil
}

func parseKey(key string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(key); err == nil && len(b) == chacha20poly1305.KeySize {
			return b, nil
		}
	}
	if len(key) == chacha20poly1305.KeySize {
		return []byte(key), nil
	}
	return nil, ErrFlowTokenKey
}

// Seal encrypts fs into a URL-safe token.
func (s *FlowSealer) Seal(fs FlowState) (string, error) {
	plain, err := cbor.Marshal(fs)
	if err != nil {
		return "", fmt.Errorf("failed to encode flow state: %w", err)
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(s.aead.Seal(nonce, nonce, plain, flowTokenAAD)), nil
}

// Open decrypts a token produced by Seal.
func (s *FlowSealer) Open(token string) (FlowState, error) {
	var fs FlowState
	if token == "" || len(token) > maxFlowTokenLen {
		return fs, ErrFlowTokenInvalid
	}
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(sealed) < s.aead.NonceSize() {
		return fs, ErrFlowTokenInvalid
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, flowTokenAAD)
	if err != nil {
		return fs, ErrFlowTokenInvalid
	}
	if err := cbor.Unmarshal(plain, &fs); err != nil {
		return fs, ErrFlowTokenInvalid
	}
	return fs, nil
}
