package stub

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/stokai/internal/models"
)

type tokenClaims struct {
	// Data embeds the full user profile in an ephemeral token and just the
	// user id string in a confirmed token.
	Data any `json:"data"`
	jwt.RegisteredClaims
}

// GenerateEphemeralToken signs the pre-verification token whose data claim
// embeds the whole profile.
func GenerateEphemeralToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	return signToken(secret, user, user.ID, ttl)
}

// GenerateConfirmedToken signs the post-verification token whose data claim
// is the user id only.
func GenerateConfirmedToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	return signToken(secret, userID.String(), userID, ttl)
}

func signToken(secret string, data any, userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := &tokenClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a bearer token and returns the embedded user ID,
// whichever shape the data claim has.
func ParseToken(secret, tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	return uuid.Parse(claims.Subject)
}
