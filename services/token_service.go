package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-api/config"
	"github.com/Dosada05/tournament-api/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// RefreshTokenTTL is fixed; only the access token lifetime is configurable.
const RefreshTokenTTL = 7 * 24 * time.Hour

const refreshTokenBytes = 32

// Claims is the typed payload of every access token.
type Claims struct {
	Name   string            `json:"name"`
	UserID string            `json:"nameid"`
	Roles  []string          `json:"role,omitempty"`
	Custom map[string]string `json:"custom,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role models.UserRole) bool {
	for _, r := range c.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// TokenIssuer signs and parses HS256 access tokens.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.Key == "" {
		return nil, errors.New("jwt signing key is not configured")
	}
	if cfg.AccessTokenTTL() <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive, got %v", cfg.AccessTokenTTL())
	}
	return &TokenIssuer{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenTTL(),
		now:      time.Now,
	}, nil
}

func (i *TokenIssuer) IssueAccessToken(user *models.User) (string, error) {
	now := i.now()
	roles := make([]string, len(user.Roles))
	for idx, r := range user.Roles {
		roles[idx] = string(r)
	}

	claims := Claims{
		Name:   user.UserName,
		UserID: user.ID,
		Roles:  roles,
		Custom: map[string]string{"age": strconv.Itoa(user.Age)},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UserName,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken fully validates a token, lifetime included.
func (i *TokenIssuer) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if err := claims.RegisteredClaims.Valid(); err != nil {
		return nil, fmt.Errorf("token is not valid: %w", err)
	}
	return claims, nil
}

// ParseExpiredAccessToken validates signature, algorithm, issuer and audience
// but ignores the lifetime. It is used only by the refresh exchange.
func (i *TokenIssuer) ParseExpiredAccessToken(tokenString string) (*Claims, error) {
	return i.parse(tokenString)
}

func (i *TokenIssuer) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !claims.VerifyIssuer(i.issuer, true) {
		return nil, errors.New("token has an invalid issuer")
	}
	if !claims.VerifyAudience(i.audience, true) {
		return nil, errors.New("token has an invalid audience")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// NewRefreshToken returns a random 256-bit value, base64 encoded.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
