// Package token issues and verifies the bearer credentials used by the
// API. A token encodes {user_id, role, exp} and is signed with
// HMAC-SHA-256.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is how long an issued token stays valid.
const Lifetime = 60 * time.Minute

var (
	// ErrInvalid covers absent, malformed and badly signed tokens.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned for a well-formed token past its expiry.
	ErrExpired = errors.New("expired token")
	// ErrRoleMismatch is returned when the token's role does not satisfy
	// the required one. The caller is authenticated but not authorized.
	ErrRoleMismatch = errors.New("role mismatch")
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID uint
	Role   string
}

// Issue signs a token for the given account valid for Lifetime.
func Issue(userID uint, role string, secret []byte) (string, error) {
	return issueWithExpiry(userID, role, secret, time.Now().Add(Lifetime))
}

func issueWithExpiry(userID uint, role string, secret []byte, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("missing secret")
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     expiresAt.Unix(),
	})
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns its claims.
// Returns ErrExpired or ErrInvalid on failure.
func Verify(tokString string, secret []byte) (*Claims, error) {
	if tokString == "" || len(secret) == 0 {
		return nil, ErrInvalid
	}
	tok, err := jwt.Parse(tokString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !tok.Valid || !ok {
		return nil, ErrInvalid
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalid
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalid
	}
	return &Claims{UserID: uint(userID), Role: role}, nil
}

// Authorize verifies the token and checks its role against the required
// one. It is a pure function of its arguments: the required role is
// passed explicitly per call site, no checker state is shared.
func Authorize(tokString string, requiredRole string, secret []byte) (uint, error) {
	claims, err := Verify(tokString, secret)
	if err != nil {
		return 0, err
	}
	if claims.Role != requiredRole {
		return 0, ErrRoleMismatch
	}
	return claims.UserID, nil
}
