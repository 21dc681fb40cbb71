package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/number-lifecycle/internal/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Определяем пользовательские ошибки для обработки JWT.
var (
	ErrTokenIsInvalid = errors.New("токен недействителен")
	ErrTokenIsExpired = errors.New("токен истёк")
)

type bearerTokenKey struct{}

// WithBearerToken кладёт токен вызывающего в контекст запроса.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// BearerToken достаёт токен из контекста.
func BearerToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey{}).(string)
	return token, ok && token != ""
}

// JWTCredentials отдаёт учётные данные текущего вызывающего.
// Токен выпускает внешний провайдер аутентификации; без секрета подпись
// не проверяется, но истёкший JWT всё равно считается отсутствующим.
// Непрозрачные (не JWT) токены без секрета передаются как есть.
type JWTCredentials struct {
	authSecretKey string // Секретный ключ для проверки подписи, может быть пустым
	now           func() time.Time
}

// NewJWTCredentials создает новый экземпляр JWTCredentials.
func NewJWTCredentials(authSecretKey string) *JWTCredentials {
	return &JWTCredentials{authSecretKey: authSecretKey, now: time.Now}
}

// Credential возвращает токен, если он есть и ещё действителен.
func (j *JWTCredentials) Credential(ctx context.Context) (string, bool) {
	token, ok := BearerToken(ctx)
	if !ok {
		return "", false
	}

	if err := j.ValidateToken(token); err != nil {
		logger.Log.Debug("bearer credential rejected", zap.Error(err))
		return "", false
	}

	return token, true
}

// ValidateToken проверяет срок действия и, если задан секрет, подпись токена.
func (j *JWTCredentials) ValidateToken(tokenString string) error {
	if j.authSecretKey == "" {
		return j.validateUnverified(tokenString)
	}

	parsedToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Проверяем, что метод подписи является HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.authSecretKey), nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenIsExpired
		}
		return fmt.Errorf("error while validating token: %w", err)
	}

	if !parsedToken.Valid {
		return ErrTokenIsInvalid
	}

	return nil
}

func (j *JWTCredentials) validateUnverified(tokenString string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil
		}
		return fmt.Errorf("error while parsing token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return ErrTokenIsInvalid
	}
	if exp != nil && !j.now().Before(exp.Time) {
		return ErrTokenIsExpired
	}

	return nil
}
