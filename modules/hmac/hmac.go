// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hmac signs opaque tokens such as pagination cursors. A token is
// base64url(payload) + "." + base64url(HMAC-SHA256(base64url(payload))).
package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrMissingKey   = errors.New("missing hmac key")
	ErrInvalidToken = errors.New("invalid token")
)

var enc = base64.RawURLEncoding

// HMACConfig is parsed under HMAC_.
type HMACConfig struct {
	Secret string `env:"SECRET"`
}

type HMACSigner struct {
	key []byte
}

func NewHMACSigner(secret []byte) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, ErrMissingKey
	}
	return &HMACSigner{key: append([]byte(nil), secret...)}, nil
}

func (h *HMACSigner) Sign(payload []byte) (string, error) {
	body := enc.EncodeToString(payload)
	return body + "." + enc.EncodeToString(h.sum(body)), nil
}

// Verify returns the payload of a token signed with the same key.
func (h *HMACSigner) Verify(token string) ([]byte, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || strings.Contains(sig, ".") {
		return nil, ErrInvalidToken
	}
	mac, err := enc.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, h.sum(body)) {
		return nil, ErrInvalidToken
	}
	payload, err := enc.DecodeString(body)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return payload, nil
}

func (h *HMACSigner) sum(body string) []byte {
	m := hmac.New(sha256.New, h.key)
	m.Write([]byte(body))
	return m.Sum(nil)
}
