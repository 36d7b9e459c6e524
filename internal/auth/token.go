package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the fields the API puts in its tokens.
type Claims struct {
	UserID    string
	Subject   string
	Role      string
	Name      string
	ExpiresAt *time.Time
}

// Expired reports whether the token carried an expiry that is before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// NormalizeToken strips an optional "Bearer " prefix and surrounding space.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// ParseToken reads the claims without checking the signature; the server is
// the verifier.
func ParseToken(token string) (*Claims, error) {
	token = NormalizeToken(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims := &Claims{
		UserID: claimString(mapClaims["userId"]),
		Role:   claimString(mapClaims["role"]),
		Name:   claimString(mapClaims["name"]),
	}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		claims.ExpiresAt = &t
	}

	if claims.UserID == "" && claims.Subject == "" {
		return nil, fmt.Errorf("%w: no userId or sub claim", ErrInvalidToken)
	}
	return claims, nil
}

func claimString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
