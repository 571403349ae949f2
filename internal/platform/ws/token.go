package ws

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/config"
)

// Token verification errors returned by VerifyToken. Handlers map all of
// them to 401; the distinctions matter only for logging.
var (
	// ErrInvalidToken indicates a malformed, tampered, or wrongly signed token.
	ErrInvalidToken = errors.New("invalid subscriber token")

	// ErrExpiredToken indicates a token past its expiry.
	ErrExpiredToken = errors.New("subscriber token expired")

	// ErrWrongChannel indicates a valid token issued for a different channel.
	ErrWrongChannel = errors.New("token not valid for this channel")
)

// subscriberClaims carries the broadcast channel grant alongside the
// registered JWT claims.
type subscriberClaims struct {
	Channel string `json:"channel"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies short-lived subscriber tokens for the
// broadcast channel. Tokens are HS256-signed and scoped to a single channel.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	channel string
}

// NewTokenService creates a TokenService from broadcast configuration.
func NewTokenService(cfg config.BroadcastConfig) *TokenService {
	return &TokenService{
		secret:  []byte(cfg.TokenSecret),
		ttl:     cfg.TokenTTL,
		channel: cfg.Channel,
	}
}

// Channel returns the channel name tokens are issued for.
func (s *TokenService) Channel() string {
	return s.channel
}

// IssueToken returns a signed subscriber token and its expiry. Each token
// gets a fresh random subject so individual subscribers are distinguishable
// in logs.
func (s *TokenService) IssueToken() (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := subscriberClaims{
		Channel: s.channel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign subscriber token: %w", err)
	}

	return signed, expiresAt, nil
}

// VerifyToken validates a subscriber token and returns its subject. It
// rejects tokens signed with any method other than HS256.
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	claims := &subscriberClaims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Channel != s.channel {
		return "", ErrWrongChannel
	}

	return claims.Subject, nil
}
