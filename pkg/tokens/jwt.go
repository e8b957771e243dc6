package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

type TokenGenerator struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// GeneratorOption overrides token lifetimes.
type GeneratorOption func(*TokenGenerator)

func WithAccessTTL(d time.Duration) GeneratorOption {
	return func(tg *TokenGenerator) { tg.accessTTL = d }
}

func WithRefreshTTL(d time.Duration) GeneratorOption {
	return func(tg *TokenGenerator) { tg.refreshTTL = d }
}

func NewTokenGenerator(secret string, opts ...GeneratorOption) *TokenGenerator {
	tg := &TokenGenerator{
		secret:     []byte(secret),
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(tg)
	}
	return tg
}

// AccessTTL reports the configured access token lifetime, used to fill the
// expires_in field of token responses.
func (tg *TokenGenerator) AccessTTL() time.Duration { return tg.accessTTL }

// RefreshTTL reports the configured refresh session lifetime.
func (tg *TokenGenerator) RefreshTTL() time.Duration { return tg.refreshTTL }

func (tg *TokenGenerator) GenerateAccessToken(userID, email string, roles []string) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tg.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "backoffice-auth",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tg.secret)
}

// GenerateRefreshToken returns an opaque token; it carries no claims and is
// only meaningful against the server's session table.
func (tg *TokenGenerator) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tg.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
