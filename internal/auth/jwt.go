// Package auth verifies the identity provider's session tokens and puts the
// caller's identity into the request context.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The user signs in at the external identity provider (IdP). Login UX and
//     credentials live entirely there.
//  2. The IdP hands the browser a signed session token (a JWT), sent back to
//     us as "Authorization: Bearer <jwt>" or in the "__session" cookie.
//  3. Middleware verifies the signature and expiry, then stores an Identity
//     (subject id plus whatever profile claims the token carries) in the
//     request context.
//  4. Handlers read the caller with IdentityFromContext / UserIDFromContext.
//     The client never gets to say who it is; the token does.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"user_2abc","email":"alice@example.com","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, sharedSecret)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Identity is the verified caller.
//
// UserID is the token subject and the users.id primary key. The profile
// fields are copied from optional claims and may be empty.
type Identity struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string

	// Token is the raw session token, kept so the userinfo endpoint can be
	// called on the caller's behalf.
	Token string
}

// sessionClaims is the JWT payload issued by the identity provider.
// The profile claim names follow OpenID Connect.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
}

// TokenVerifier checks session tokens signed with the secret shared with the
// identity provider.
type TokenVerifier struct {
	secret   []byte
	issuer   string // empty: iss not checked
	audience string // empty: aud not checked
}

// NewTokenVerifier returns a verifier for HS256 tokens.
// issuer and audience are optional; when set, tokens must carry them.
func NewTokenVerifier(secret, issuer, audience string) (*TokenVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Verify parses tokenStr and returns the caller it identifies.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid and the algorithm is HS256 (no "none", no RS/HS confusion)
//   - Token carries an expiry and it is in the future
//   - Issuer / audience match, when configured
func (v *TokenVerifier) Verify(tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var c sessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Identity{
		UserID:          c.Subject,
		Email:           c.Email,
		FirstName:       c.GivenName,
		LastName:        c.FamilyName,
		ProfileImageURL: c.Picture,
		Token:           tokenStr,
	}, nil
}

// Sign issues a session token for id that Verify accepts, valid for ttl.
//
// The identity provider does this in production. Sign exists for the
// devtoken command and for tests.
func (v *TokenVerifier) Sign(id Identity, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("auth: cannot sign a token without a subject")
	}

	now := time.Now()
	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:      id.Email,
		GivenName:  id.FirstName,
		FamilyName: id.LastName,
		Picture:    id.ProfileImageURL,
	}
	if v.audience != "" {
		c.Audience = jwt.ClaimStrings{v.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}
