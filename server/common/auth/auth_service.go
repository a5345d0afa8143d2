package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonlog "reno_server/server/common/log"
)

var (
	ErrSecretRequired    = errors.New("jwt secret is required")
	ErrPlaceholderSecret = errors.New("placeholder jwt secret is not allowed in production")
)

// Secrets that ship in example configs. Deploying with one of these in
// production is always a mistake.
var placeholderSecrets = map[string]struct{}{
	"your-secret-key-change-this": {},
	"change-me-in-production":     {},
}

const DefaultTTL = 7 * 24 * time.Hour

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration, production bool) (*Service, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if _, ok := placeholderSecrets[secret]; ok {
		if production {
			return nil, ErrPlaceholderSecret
		}
		commonlog.Warnf("using a placeholder jwt secret; tokens are forgeable")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

func (s *Service) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify returns the claims carried by a valid token, or nil on any
// failure. Callers cannot tell an expired token from a forged one; that
// distinction never leaves this package.
func (s *Service) Verify(token string) *Claims {
	claims, err := s.parse(token)
	if err != nil {
		commonlog.Debugf("token verification failed: %v", err)
		return nil
	}
	return claims
}

func (s *Service) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
