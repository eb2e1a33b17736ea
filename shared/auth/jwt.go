package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTAuthenticator signs and validates HS256 tokens for a single issuer and audience.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// GenerateToken signs claims with secret.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// ValidateTokenWithClaims validates a token and parses it into claims, which must be a pointer.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}

// SessionClaims are carried by the session credential.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer issues and verifies session credentials.
type SessionIssuer struct {
	jwtAuth   JWTAuthenticator
	issuer    string
	secret    string
	expiresIn time.Duration
	now       func() time.Time
}

// NewSessionIssuer creates a SessionIssuer whose tokens are both issued by and addressed to issuer.
func NewSessionIssuer(issuer, secret string, expiresIn time.Duration) *SessionIssuer {
	return &SessionIssuer{
		jwtAuth:   NewJWTAuthenticator(issuer, issuer),
		issuer:    issuer,
		secret:    secret,
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// Issue returns a signed credential for the user and the moment it expires.
func (s *SessionIssuer) Issue(userID, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiresIn)

	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.issuer},
		},
	}

	token, err := s.jwtAuth.GenerateToken(claims, s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses a credential produced by Issue.
func (s *SessionIssuer) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, err := s.jwtAuth.ValidateTokenWithClaims(token, s.secret, claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
