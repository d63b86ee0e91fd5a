package auth

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chirp-hub"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer signs tokens for users. The hub itself never issues tokens,
// cmd/token and the tests do.
type Issuer struct {
	secret   []byte
	duration time.Duration
}

func NewIssuer(secret string, duration time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), duration: duration}
}

// GenerateToken creates a signed JWT for a specific user.
func (i *Issuer) GenerateToken(userID chat.UserID) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	// HS256 is HMAC with SHA256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Resolver validates tokens and turns them into user ids.
// It is the identity collaborator of the session registry.
type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (r *Resolver) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

// ResolveIdentity accepts a raw token or a "Bearer <token>" header value.
func (r *Resolver) ResolveIdentity(_ context.Context, credential string) (chat.UserID, error) {
	claims, err := r.ValidateToken(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))
	if err != nil {
		return "", err
	}
	return chat.UserID(claims.UserID), nil
}
