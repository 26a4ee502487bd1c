package stafftoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role,omitempty"`
}

type VerifiedStaff struct {
	StaffID   string
	Role      string
	ExpiresAt time.Time
}

var (
	ErrMissingToken  = errors.New("missing token")
	ErrMissingSecret = errors.New("missing signing secret")
)

// Issue signs an HS256 token for staffID. Used by dev tooling and tests; production
// tokens come from the dashboard's login service with the same secret.
func Issue(secret, audience, staffID, role string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks signature, expiry and audience, and returns the staff id from sub.
func Verify(tokenString, secret, audience string, now time.Time) (*VerifiedStaff, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(opts...)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	staffID := strings.TrimSpace(claims.Subject)
	if staffID == "" {
		return nil, fmt.Errorf("missing subject in token")
	}

	return &VerifiedStaff{
		StaffID:   staffID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
