package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/stokai/internal/models"
)

// TokenKind distinguishes the two token shapes the backend issues over a
// session's life.
type TokenKind string

const (
	// TokenKindFullProfile marks the ephemeral token issued at login or
	// signup. Its data claim embeds the whole user profile.
	TokenKindFullProfile TokenKind = "full_profile"
	// TokenKindIDOnly marks the confirmed token issued after OTP
	// verification. Its data claim is just the user id.
	TokenKindIDOnly TokenKind = "id_only"
)

// TokenPayload is the decoded claim set of a backend token. The shape is
// decided once here; callers branch on Kind instead of re-inspecting claims.
type TokenPayload struct {
	Kind      TokenKind
	UserID    uuid.UUID
	Profile   *models.User
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim has passed.
func (p *TokenPayload) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// User builds the best user record the payload allows: the embedded profile
// for an ephemeral token, or a record carrying only the id for a confirmed
// one.
func (p *TokenPayload) User() *models.User {
	if p.Kind == TokenKindFullProfile && p.Profile != nil {
		profile := *p.Profile
		return &profile
	}
	return &models.User{ID: p.UserID}
}

// DecodeToken inspects a backend token without verifying its signature; the
// client holds no signing secret and treats tokens as opaque credentials
// carrying display data.
func DecodeToken(tokenString string) (*TokenPayload, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("auth: decode token: %w", err)
	}

	payload := &TokenPayload{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		payload.ExpiresAt = exp.Time
	}

	switch data := claims["data"].(type) {
	case string:
		id, err := uuid.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("auth: token user id: %w", err)
		}
		payload.Kind = TokenKindIDOnly
		payload.UserID = id
	case map[string]any:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("auth: token profile claim: %w", err)
		}
		var profile models.User
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, fmt.Errorf("auth: token profile claim: %w", err)
		}
		payload.Kind = TokenKindFullProfile
		payload.UserID = profile.ID
		payload.Profile = &profile
	default:
		return nil, errors.New("auth: token carries no data claim")
	}

	return payload, nil
}
