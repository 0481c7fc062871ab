// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Operator Key

The single privileged-operator key uses HMAC-SHA256 to create a
deterministic, verifiable key bound to the owner chat:

	key := auth.GenerateOperatorKey(ownerChatID, salt)
	err := auth.ValidateOperatorKey(ownerChatID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's
deterministic, the same owner id and salt always produce the same key.
This allows validation without storing the key anywhere; the operator
derives it once and presents it in the X-Operator-Key header.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
