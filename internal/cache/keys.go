// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// GenerateKey creates a cache key from a purpose label and parameters.
//
// Parameters are serialized to JSON and hashed so that structurally
// equal parameter sets always produce the same key. Struct fields
// marshal in declaration order and map keys are sorted by the encoder,
// which makes the encoding canonical for the request types used here.
func GenerateKey(purpose string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a formatted key; only reachable for
		// unmarshalable types, which request structs are not.
		return fmt.Sprintf("%s:%v", purpose, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", purpose, hash[:16])
}
