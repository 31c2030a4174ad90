package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sitepulse/sitepulse/internal/config"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier validates HS256 bearer tokens issued by the identity service and
// extracts the subject user ID.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg config.Config) (*Verifier, error) {
	if cfg.AuthJWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("AUTH_JWT_SECRET is required in production")
		}
		return &Verifier{}, nil
	}
	return &Verifier{secret: []byte(cfg.AuthJWTSecret)}, nil
}

// VerifyToken returns the user ID carried in the token's subject claim.
func (v *Verifier) VerifyToken(raw string) (snowflake.ID, error) {
	if raw == "" {
		return 0, ErrMissingToken
	}
	if len(v.secret) == 0 {
		// Unsigned dev mode: the raw token is the user ID itself.
		return parseUserID(raw)
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return 0, ErrInvalidToken
	}
	return parseUserID(subject)
}

func parseUserID(raw string) (snowflake.ID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return snowflake.ID(id), nil
}
