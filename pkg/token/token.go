// Package token mints and validates the bearer credentials used by the API.
// A credential carries the user's id, account, display name and supervisor
// flag so that handlers never need ambient global identity state.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todopro/pkg/apperror"
)

// Identity is the authenticated-context value threaded into every domain
// operation.
type Identity struct {
	UserID     uint   `json:"user_id"`
	Account    string `json:"account"`
	Name       string `json:"name"`
	Supervisor bool   `json:"supervisor"`
}

// Claims is the JWT payload for an Identity.
type Claims struct {
	Account    string `json:"account"`
	Name       string `json:"name"`
	Supervisor bool   `json:"supervisor"`
	jwt.RegisteredClaims
}

// Issuer signs and parses credentials with a shared HMAC secret.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewIssuer(secret, issuer, audience string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Issue mints a signed credential for the given identity.
func (i *Issuer) Issue(id Identity) (string, time.Time, error) {
	expiresAt := time.Now().Add(i.ttl)

	claims := Claims{
		Account:    id.Account,
		Name:       id.Name,
		Supervisor: id.Supervisor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse validates a credential and returns the identity it carries.
func (i *Issuer) Parse(tokenString string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, apperror.Authentication("invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Identity{}, apperror.Authentication("invalid token claims")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, apperror.Authentication("invalid token subject")
	}

	return Identity{
		UserID:     uint(userID),
		Account:    claims.Account,
		Name:       claims.Name,
		Supervisor: claims.Supervisor,
	}, nil
}
