// Package auth проверяет доступ администратора.
// Схема подключаемая: общий пароль (токен = пароль) или подписанный JWT.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/belekbox-shop/internal/config"
)

const (
	ModeSecret = "secret"
	ModeJWT    = "jwt"
)

var ErrUnauthorized = errors.New("unauthorized")

// Тексты отказа в доступе для клиента
const (
	MsgNotAuthorized = "Не авторизован"
	MsgWrongPassword = "Неверный пароль"
)

// Verifier выдаёт токен администратору и проверяет его в запросах.
type Verifier interface {
	Login(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, token string) error
}

// Credentials - пароль администратора в открытом виде или bcrypt-хеш
type Credentials struct {
	Password     string
	PasswordHash string
}

func (c Credentials) match(password string) bool {
	if password == "" {
		return false
	}
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
}

func (c Credentials) empty() bool {
	return c.Password == "" && c.PasswordHash == ""
}

// NewVerifier собирает проверку по настройкам
func NewVerifier(cfg config.AdminConfig) (Verifier, error) {
	creds := Credentials{Password: cfg.Password, PasswordHash: cfg.PasswordHash}
	if creds.empty() {
		return nil, fmt.Errorf("auth: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	switch cfg.AuthMode {
	case "", ModeSecret:
		return NewSecretVerifier(creds), nil
	case ModeJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("auth: JWT_SECRET must be set for jwt mode")
		}
		return NewJWTVerifier(creds, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTL)*time.Minute), nil
	default:
		return nil, fmt.Errorf("auth: unknown auth mode %q", cfg.AuthMode)
	}
}

// SecretVerifier - единый общий пароль, он же токен. Без сроков и без разделения администраторов.
type SecretVerifier struct {
	creds Credentials
}

func NewSecretVerifier(creds Credentials) *SecretVerifier {
	return &SecretVerifier{creds: creds}
}

func (v *SecretVerifier) Login(ctx context.Context, password string) (string, error) {
	if !v.creds.match(password) {
		return "", ErrUnauthorized
	}
	return password, nil
}

func (v *SecretVerifier) Verify(ctx context.Context, token string) error {
	if !v.creds.match(token) {
		return ErrUnauthorized
	}
	return nil
}
