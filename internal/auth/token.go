// Package auth verifies credentials, issues and checks access tokens, and
// decides who may act on which user.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"recipebox/internal/apperror"
)

// Claims binds a token to a user id.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies stateless HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, apperror.Configuration("auth jwt secret is required")
	}
	if ttl <= 0 {
		return nil, apperror.Configuration("auth token ttl must be positive, got %s", ttl)
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime of issued tokens; transports reuse it as the cookie max-age.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token for userID.
func (s *TokenService) Sign(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.Wrap(apperror.KindConfiguration, "sign access token", err)
	}
	return signed, nil
}

// Verify returns the user id bound to tokenString.
// An empty token yields MissingToken; anything unverifiable yields InvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", apperror.ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInvalidToken, apperror.ErrInvalidToken.Message, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", apperror.ErrInvalidToken
	}

	return claims.UserID, nil
}
