// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidOperatorKey = errors.New("invalid operator key")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateOperatorKey derives the single privileged-operator key from
// the owner chat identity. Deterministic and verifiable.
func GenerateOperatorKey(ownerID int64, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	fmt.Fprintf(h, "operator:%d", ownerID)
	sum := h.Sum(nil)
	// URL-safe base64 without padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOperatorKey checks the presented key against the derived one.
func ValidateOperatorKey(ownerID int64, key, salt string) error {
	expected := GenerateOperatorKey(ownerID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidOperatorKey
	}
	return nil
}
