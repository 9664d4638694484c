// Copyright 2026 The GymFit Authors
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

package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PersistedSession is the minimal fixed schema that must round-trip through
// the client for restore validation to work: the session ID plus the two
// fields reconciled against the routing context. Anything that fails to
// parse back into this shape is treated as absence of a session.
type PersistedSession struct {
	SessionID string
	UserID    string
	TenantID  *string
}

// TokenCodec signs and parses the persisted session blob as an HS256 JWT.
// The signature stops a client from editing its tenant binding; it does not
// replace the server-side store lookup.
type TokenCodec struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewTokenCodec creates a codec with the given signing secret.
func NewTokenCodec(secret []byte, issuer string, lifetime time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, issuer: issuer, lifetime: lifetime}
}

type sessionClaims struct {
	TenantID *string `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// Encode produces the signed token for a session.
func (c *TokenCodec) Encode(s *Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		TenantID: s.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.UserID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a persisted token. Malformed, tampered, or
// expired tokens yield nil with no error: corrupt persisted state means "no
// session", never a fault surfaced to the user.
func (c *TokenCodec) Decode(token string) *PersistedSession {
	if token == "" {
		return nil
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil
	}

	return &PersistedSession{
		SessionID: claims.ID,
		UserID:    claims.Subject,
		TenantID:  claims.TenantID,
	}
}
