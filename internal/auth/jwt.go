package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminSubject = "admin"

// JWTVerifier после проверки пароля выдаёт HS256-токен с ограниченным сроком жизни
type JWTVerifier struct {
	creds  Credentials
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTVerifier(creds Credentials, secret []byte, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{
		creds:  creds,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (v *JWTVerifier) Login(ctx context.Context, password string) (string, error) {
	if !v.creds.match(password) {
		return "", ErrUnauthorized
	}

	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth.JWTVerifier.Login: failed to sign token: %w", err)
	}
	return token, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenStr string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	if claims.Subject != adminSubject {
		return ErrUnauthorized
	}
	return nil
}
