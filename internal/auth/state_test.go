package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/example/stokai/internal/models"
)

func TestReduceAuthStarted(t *testing.T) {
	id := uuid.New()
	payload := &TokenPayload{
		Kind:    TokenKindFullProfile,
		UserID:  id,
		Profile: &models.User{ID: id, Name: "Asha"},
	}

	pending := reduceAuthStarted("tok", payload, &Challenge{Key: "tok", Value: 123456})
	assert.Equal(t, StatusPendingOTP, pending.Status)
	assert.True(t, pending.RequiresOTP())
	assert.False(t, pending.IsAuthenticated())
	assert.NotNil(t, pending.Challenge)
	assert.Equal(t, "tok", pending.Token)
	assert.Equal(t, "Asha", pending.User.Name)

	direct := reduceAuthStarted("tok", payload, nil)
	assert.Equal(t, StatusAuthenticated, direct.Status)
	assert.Nil(t, direct.Challenge)
}

func TestReduceOTPVerified(t *testing.T) {
	id := uuid.New()
	prev := State{
		Status:    StatusPendingOTP,
		Token:     "ephemeral",
		TokenKind: TokenKindFullProfile,
		User:      &models.User{ID: id, Name: "Asha"},
		Challenge: &Challenge{Key: "ephemeral", Value: 111111},
		Err:       "invalid verification code",
	}

	confirmed := reduceOTPVerified(prev, "confirmed", &TokenPayload{Kind: TokenKindIDOnly, UserID: id})
	assert.Equal(t, StatusAuthenticated, confirmed.Status)
	assert.Equal(t, "confirmed", confirmed.Token)
	assert.Equal(t, TokenKindIDOnly, confirmed.TokenKind)
	assert.Nil(t, confirmed.Challenge, "verification clears the challenge")
	assert.Empty(t, confirmed.Err)

	// Backend kept the prior token valid: keep it.
	kept := reduceOTPVerified(prev, "", nil)
	assert.Equal(t, StatusAuthenticated, kept.Status)
	assert.Equal(t, "ephemeral", kept.Token)
	assert.Equal(t, "Asha", kept.User.Name)
}

func TestReduceFailureKeepsStatus(t *testing.T) {
	prev := State{
		Status:    StatusPendingOTP,
		Challenge: &Challenge{Key: "tok", Value: 222222},
	}

	next := reduceFailure(prev, "invalid verification code")
	assert.Equal(t, StatusPendingOTP, next.Status, "a failed verification allows a retry")
	assert.NotNil(t, next.Challenge)
	assert.Equal(t, "invalid verification code", next.Err)
}

func TestReduceLogout(t *testing.T) {
	next := reduceLogout()
	assert.Equal(t, StatusAnonymous, next.Status)
	assert.Empty(t, next.Token)
	assert.Nil(t, next.User)
	assert.Nil(t, next.Challenge)
	assert.Empty(t, next.Err)
}
