// Package confirm issues the signed tokens that let a client confirm or
// modify a pending plan without re-stating who it belongs to.
package confirm

import (
	"errors"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "ai-diet-planner"

var ErrInvalidToken = errors.New("invalid confirmation token")

// Claims binds a pending plan to its owner and date.
type Claims struct {
	PendingID string `json:"pid"`
	PlanDate  string `json:"date"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 confirmation tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token for pendingID that expires together with it.
func (i *Issuer) Issue(userID string, date time.Time, pendingID string) (string, error) {
	now := i.now()
	claims := Claims{
		PendingID: pendingID,
		PlanDate:  domain.FormatDate(date),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature, issuer and expiry.
func (i *Issuer) Verify(token string) (Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.PendingID == "" || c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return c, nil
}
