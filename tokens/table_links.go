// Package tokens signs the links printed as QR codes on the scoring tables.
package tokens

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/hkdf"
)

var ErrInvalidToken = errors.New("invalid or expired table link")

const (
	issuer   = "judo-pools"
	keyLabel = "judo-pools table link v1"
)

type TableClaims struct {
	Table int `json:"table"`
	jwt.RegisteredClaims
}

// TableLinks issues and resolves signed table tokens. The signing key is derived
// from the configured secret so the raw secret never signs anything directly.
type TableLinks struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTableLinks derives the signing key. A zero ttl issues tokens that never expire.
func NewTableLinks(secret string, ttl time.Duration) (*TableLinks, error) {
	if secret == "" {
		return nil, errors.New("table link secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyLabel)), key); err != nil {
		return nil, fmt.Errorf("derive table link key: %w", err)
	}
	return &TableLinks{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a token for the table and its expiry (zero when it never expires).
func (l *TableLinks) Issue(table int) (string, time.Time, error) {
	if table < 1 {
		return "", time.Time{}, fmt.Errorf("table number must be positive, got %d", table)
	}
	now := l.now()
	claims := TableClaims{
		Table: table,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.Itoa(table),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var expires time.Time
	if l.ttl > 0 {
		expires = now.Add(l.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expires)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign table link: %w", err)
	}
	return signed, expires, nil
}

// Resolve verifies a token and returns its table number.
func (l *TableLinks) Resolve(token string) (int, error) {
	var claims TableClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return l.key, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Issuer != issuer || claims.Table < 1 {
		return 0, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(l.now()) {
		return 0, ErrInvalidToken
	}
	return claims.Table, nil
}
