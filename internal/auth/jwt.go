// Package auth provides bearer-token issuing and the request gates that
// protect the API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client calls PUT /signin/{email} → server upserts the identity and
//    issues a JWT bound to that email
// 2. Client sends `Authorization: <email> <token>` (the second field is the
//    credential; the first is only consulted by the two "my..." routes)
// 3. RequireAuth validates the signature and puts the token's email claim
//    into the request context
// 4. RequireAdmin additionally looks the identity up and checks its role
//
// There is no server-side session: every request re-proves identity from
// the token alone.
//
// TOKEN LIFETIME:
// Tokens deliberately carry no expiry claim. A token stays valid until the
// signing secret changes. Rotating ACCESS_TOKEN_SECRET is the revocation
// mechanism.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs and verifies the email-bound bearer tokens.
//
// It holds the HMAC secret used for both operations. The same secret must
// be used to verify a token as was used to sign it — which is exactly what
// makes secret rotation invalidate all outstanding tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims plus the one
// claim this system actually uses — the owner's email.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given email.
//
// The payload is {email, iat} with no expiration claim — see the package
// comment on token lifetime. Signing algorithm is HS256 (HMAC-SHA256):
// symmetric, fast, and fine for a single-server deployment.
func (s *TokenService) Issue(email string) (string, error) {
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the email claim.
//
// Checks performed:
//   - signature is valid under our secret (token wasn't tampered with)
//   - algorithm is HS256 (prevents algorithm-confusion attacks where an
//     attacker submits a token signed with "none")
//   - the email claim is present and non-empty
//
// Expiry is NOT required: tokens are issued without one. A token that does
// carry an exp claim in the past still fails, since the library validates
// exp whenever it is present.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Email == "" {
		return "", fmt.Errorf("auth: token has no email claim")
	}

	return c.Email, nil
}
