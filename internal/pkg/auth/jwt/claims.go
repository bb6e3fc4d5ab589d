package jwt

import (
	"strings"
)

// Reserved claim names. Mint always sets them and they override caller-supplied values.
const (
	ClaimClientID = "client_id"
	ClaimIssuedAt = "iat"
	ClaimExpires  = "exp"
)

// Claims is the payload of a capability token: claim name to value
// (strings, booleans, numbers or nested structures).
type Claims map[string]any

// Clone returns a shallow copy so minting never mutates the caller's map.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c)+3)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// String returns the claim as a string, or "" when absent or not a string.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// ClientIdentity is the credential pair a deployment receives from the message provider.
// It is supplied once per SDK session and passed by value into every entry point.
type ClientIdentity struct {
	ClientID     string
	ClientSecret string
}

// Configured reports whether both halves of the credential are present.
func (i ClientIdentity) Configured() bool {
	return strings.TrimSpace(i.ClientID) != "" && i.ClientSecret != ""
}

// String keeps the secret out of logs and fmt output.
func (i ClientIdentity) String() string {
	return "ClientIdentity{" + i.ClientID + "}"
}
