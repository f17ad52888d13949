package storage

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCodeNotFound       = errors.New("authorization code not found")
	ErrCodeAlreadyUsed    = errors.New("authorization code already used")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrTokenRevoked       = errors.New("refresh token is revoked")
	ErrTokenExpired       = errors.New("token is expired")
	ErrIdentityNotFound   = errors.New("social identity not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrKeyNotFound        = errors.New("redis key not found")
	InfoCacheDisabled     = errors.New("info cache is disabled")
)
