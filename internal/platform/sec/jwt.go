// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer through narrow interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// # Token Kinds

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// # Lifetimes

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails verification: bad
// signature, unexpected algorithm, wrong issuer, expiry, or kind mismatch.
var ErrInvalidToken = errors.New("sec: invalid token")

// TokenClaims is the payload embedded in both token kinds.
type TokenClaims struct {
	jwt.RegisteredClaims

	UserID string    `json:"id"`
	Kind   TokenKind `json:"type"`
}

// Remaining returns how long the token stays valid relative to now.
func (claims *TokenClaims) Remaining(now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(now)
}

// TokenPair is the credential bundle returned to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access-token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`
}

// TokenService signs and verifies HS256 tokens. Access and refresh tokens use
// distinct secrets, so one kind can never verify as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	now           func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(accessSecret, refreshSecret, issuer string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests to simulate expiry.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	service.now = now
	return service
}

// Now returns the service's current time.
func (service *TokenService) Now() time.Time { return service.now() }

// IssuePair mints a fresh access/refresh pair for a user.
func (service *TokenService) IssuePair(userID string) (*TokenPair, error) {
	access, err := service.sign(userID, KindAccess, AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := service.sign(userID, KindRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// Verify checks the token's signature and validity for the expected kind.
func (service *TokenService) Verify(tokenString string, expected TokenKind) (*TokenClaims, error) {
	secret, err := service.secretFor(expected)
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Kind != expected || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (service *TokenService) sign(userID string, kind TokenKind, ttl time.Duration) (string, error) {
	secret, err := service.secretFor(kind)
	if err != nil {
		return "", err
	}

	currentTime := service.now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (service *TokenService) secretFor(kind TokenKind) ([]byte, error) {
	switch kind {
	case KindAccess:
		return service.accessSecret, nil
	case KindRefresh:
		return service.refreshSecret, nil
	default:
		return nil, fmt.Errorf("sec: unknown token kind %q", kind)
	}
}
