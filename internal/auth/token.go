package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/errors"
)

// TokenIssuer signs and verifies HS256 bearer tokens whose subject is the user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Annotate(err, "sign access token")
	}
	return signed, nil
}

// Parse returns the user id carried by a valid, unexpired token.
func (t *TokenIssuer) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", errors.Unauthorizedf("invalid authentication credentials")
	}
	if claims.Subject == "" {
		return "", errors.Unauthorizedf("invalid authentication credentials")
	}
	return claims.Subject, nil
}
