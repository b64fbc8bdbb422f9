package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/config"
)

// SessionClaims are the claims carried by a session token
type SessionClaims struct {
	OrganizationID string `json:"org"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens. Tokens are
// minted after a completed passkey ceremony and carry the contact and
// tenant organization identifiers.
type TokenManager struct {
	signingKey []byte
	tokenTTL   time.Duration
	issuer     string
}

// NewTokenManager creates a token manager from auth configuration
func NewTokenManager(cfg *config.AuthConfig, appName string) (*TokenManager, error) {
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("auth signing key is required")
	}
	if len(cfg.SigningKey) < 32 {
		return nil, fmt.Errorf("auth signing key must be at least 32 bytes")
	}
	return &TokenManager{
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   cfg.TokenTTLDuration(),
		issuer:     appName,
	}, nil
}

// Issue creates a signed session token for the given contact
func (m *TokenManager) Issue(contactID, organizationID uuid.UUID, email string) (string, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		OrganizationID: organizationID.String(),
		Email:          email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   contactID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses a session token and returns the tenant context
func (m *TokenManager) Validate(tokenString string) (*TenantContext, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	contactID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	organizationID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization claim: %w", err)
	}

	return &TenantContext{
		ContactID:      contactID,
		OrganizationID: organizationID,
		Email:          claims.Email,
	}, nil
}

// TTL returns the configured token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.tokenTTL
}
