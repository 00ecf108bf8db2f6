package utils

import (
	"context"
	"strconv"
	"time"

	"voyages-server/models"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

const (
	accessTokenMaxAge  = 24 * time.Hour
	refreshTokenMaxAge = 7 * 24 * time.Hour
)

// AccessToken is the claims payload of an access token. Role travels in the
// token but authorization always re-reads the user from the store, so a stale
// role cannot outlive the row.
type AccessToken struct {
	ID   uint        `json:"ID"`
	Role models.Role `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenManager signs access/refresh token pairs and keeps the refresh-token
// allow-list in Redis. Refresh tokens are single use: Rotate deletes the
// presented one before a new pair is issued.
type TokenManager struct {
	AccessSecret  string
	RefreshSecret string
	Redis         *redis.Client
}

func (t *TokenManager) CreateTokenPair(user *models.User) (access, refresh string, err error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, t.AccessSecret, accessTokenMaxAge)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, t.RefreshSecret, refreshTokenMaxAge)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: user.ID, Role: user.Role})
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.Claims{Subject: strconv.FormatUint(uint64(user.ID), 10)}
	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return "", "", err
	}

	if err := t.Redis.Set(bgContext, string(refreshToken), "true", refreshTokenMaxAge+5*time.Minute).Err(); err != nil {
		return "", "", err
	}

	return string(accessToken), string(refreshToken), nil
}

// Rotate consumes a verified refresh token. It reports false when the token is
// not on the allow-list (already used, revoked, or never issued).
func (t *TokenManager) Rotate(refreshToken string) (bool, error) {
	valid, err := t.Redis.Get(bgContext, refreshToken).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if valid != "true" {
		return false, nil
	}

	return true, t.Redis.Del(bgContext, refreshToken).Err()
}
