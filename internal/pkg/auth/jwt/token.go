/*
Package jwt issues and verifies the HS256 capability tokens exchanged with the message provider.

A token binds an arbitrary claims map to a ClientIdentity: the payload always carries
client_id, iat and exp = iat + ttl, and is signed with the identity's secret.
*/
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"anychat/internal/pkg/errs"
)

// DefaultTTL is the token lifetime used when a caller passes a non-positive ttl (7 days).
const DefaultTTL = 7 * 24 * time.Hour

// Issuer mints and parses tokens. Now is the wall clock embedded into iat;
// tests replace it to pin issue times.
type Issuer struct {
	Now func() time.Time
}

// NewIssuer returns an Issuer backed by time.Now.
func NewIssuer() *Issuer {
	return &Issuer{Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i == nil || i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

// Mint signs claims for identity. Only an empty secret is rejected; an empty client id is
// signed as is. The result differs between calls made at different seconds because iat
// changes, so tokens must never be cached and compared.
func (i *Issuer) Mint(identity ClientIdentity, claims Claims, ttl time.Duration) (string, error) {
	if identity.ClientSecret == "" {
		return "", errs.NewError(errs.ErrInvalidCredential, "empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := i.now().Unix()

	payload := jwt.MapClaims(claims.Clone())
	payload[ClaimClientID] = identity.ClientID
	payload[ClaimIssuedAt] = now
	payload[ClaimExpires] = now + int64(ttl/time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	signed, err := token.SignedString([]byte(identity.ClientSecret))
	if err != nil {
		return "", errs.NewError(errs.ErrInvalidCredential, err.Error())
	}
	return signed, nil
}

// Parse verifies the signature with secret, checks exp against the issuer clock and
// returns the decoded claims. Numbers decode as float64.
func (i *Issuer) Parse(tokenString string, secret string) (Claims, error) {
	if secret == "" {
		return nil, errs.NewError(errs.ErrInvalidCredential, "empty signing secret")
	}

	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !mapClaims.VerifyExpiresAt(i.now().Unix(), true) {
		return nil, errors.New("token expired")
	}

	return Claims(mapClaims), nil
}
