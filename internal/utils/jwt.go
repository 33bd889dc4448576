package utils // package utils provides helper functions for token creation and parsing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // uuid generates the token ID (jti) used for revocation
)

// Token type claim values.  Access tokens authenticate API calls; refresh
// tokens may only be presented to the refresh endpoint.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AdminSubject is the JWT subject of the synthetic admin identity.  The
// admin is not a users row: login compares configured credentials and
// issues tokens with this subject, and the refresh and /me flows
// special-case it the same way.
const AdminSubject = "admin"

// Token bundles a signed JWT with its ID and expiry.  The JTI is what the
// logout flow blacklists; the expiry bounds how long the blacklist entry
// has to live.
type Token struct {
	Value string    // the serialized JWT string
	JTI   string    // unique token ID (uuid)
	Exp   time.Time // UTC expiration time
}

// Identity is the claim set carried by every token: who the caller is and
// which half of the role partition they belong to.
type Identity struct {
	Subject  string // user ID in decimal, or AdminSubject
	Role     string // "user" or "admin"
	Username string
	Email    string
}

// NewAccessToken signs a short-lived HS256 access token for the identity.
// The TTL is caller-supplied because a remember-me login stretches it.
func NewAccessToken(secret string, id Identity, ttl time.Duration) (Token, error) {
	return sign(secret, id, TokenTypeAccess, ttl)
}

// NewRefreshToken signs a long-lived HS256 refresh token.  Refresh tokens
// carry typ=refresh and are rejected by the access-token middleware, so a
// leaked refresh token cannot be used directly against protected routes.
func NewRefreshToken(secret string, id Identity, ttlDays int) (Token, error) {
	return sign(secret, id, TokenTypeRefresh, time.Duration(ttlDays)*24*time.Hour)
}

func sign(secret string, id Identity, typ string, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":      id.Subject,
		"role":     id.Role,
		"username": id.Username,
		"email":    id.Email,
		"typ":      typ,
		"jti":      jti,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, JTI: jti, Exp: exp}, nil
}

// ParsedToken is the validated view of a presented JWT.
type ParsedToken struct {
	Identity
	Type string
	JTI  string
	Exp  time.Time
}

var errInvalidToken = errors.New("invalid token")

// ParseToken validates signature, algorithm and expiry, and extracts the
// identity claims.  Any structural problem is reported as a generic invalid
// token error; callers never leak parse details to clients.
func ParseToken(secret, raw string) (ParsedToken, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ParsedToken{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ParsedToken{}, errInvalidToken
	}
	p := ParsedToken{
		Identity: Identity{
			Subject:  claimString(claims, "sub"),
			Role:     claimString(claims, "role"),
			Username: claimString(claims, "username"),
			Email:    claimString(claims, "email"),
		},
		Type: claimString(claims, "typ"),
		JTI:  claimString(claims, "jti"),
	}
	if p.Subject == "" || p.Role == "" {
		return ParsedToken{}, errInvalidToken
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.Exp = exp.Time.UTC()
	}
	return p, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
