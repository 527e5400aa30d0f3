package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goldjewelmy/goldstore-backend/pkg/config"
)

var sessionSigningMethod = jwt.SigningMethodHS256

// SessionIssuer mints and verifies the signed tokens that address a cart.
type SessionIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer builds an issuer from the cart config.
func NewSessionIssuer(cfg config.CartConfig) (*SessionIssuer, error) {
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, fmt.Errorf("cart token secret required")
	}
	if strings.TrimSpace(cfg.TokenIssuer) == "" {
		return nil, fmt.Errorf("cart token issuer required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionIssuer{
		secret: []byte(cfg.TokenSecret),
		issuer: cfg.TokenIssuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// NewSession returns a fresh session id and its token.
func (s *SessionIssuer) NewSession() (string, string, error) {
	sessionID := uuid.NewString()
	token, err := s.Issue(sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionID, token, nil
}

// Issue signs a token whose subject is sessionID.
func (s *SessionIssuer) Issue(sessionID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(sessionSigningMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing cart token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns its session id.
func (s *SessionIssuer) Parse(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("cart token is empty")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != sessionSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{sessionSigningMethod.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("cart token missing subject")
	}
	return claims.Subject, nil
}
