package auth

import (
	"time"

	"satta-service/internal/config"
	appErr "satta-service/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

const ScopeSession = "session"

// Claims bind a token to the device that opened a game session.
type Claims struct {
	SessionID string `json:"sessionId"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(sessionID string) (string, error) {
	conf := config.GlobalConfig.JWT
	duration := time.Duration(conf.Expire) * time.Hour
	claims := Claims{
		SessionID: sessionID,
		Scope:     ScopeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   sessionID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(conf.Secret))
}

func ParseSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != ScopeSession {
		return nil, appErr.ErrInvalidToken
	}
	return claims, nil
}
