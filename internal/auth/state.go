package auth

import "github.com/example/stokai/internal/models"

// Status names the three session states. Invalid flag combinations from the
// old boolean pair (isAuthenticated, requiresOTP) are unrepresentable.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusPendingOTP    Status = "pending_otp"
	StatusAuthenticated Status = "authenticated"
)

// Challenge is the pending passcode challenge. Value is the passcode itself,
// surfaced by non-production backends for display.
type Challenge struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// State is the session slice. It is persisted wholesale for rehydration.
type State struct {
	Status    Status            `json:"status"`
	Token     string            `json:"token,omitempty"`
	TokenKind TokenKind         `json:"token_kind,omitempty"`
	User      *models.User      `json:"user,omitempty"`
	Challenge *Challenge        `json:"challenge,omitempty"`
	Err       string            `json:"error,omitempty"`
}

// IsAuthenticated reports whether the session holds a confirmed login.
func (s State) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

// RequiresOTP reports whether a passcode challenge is pending.
func (s State) RequiresOTP() bool { return s.Status == StatusPendingOTP }

// The transitions below are pure: they take the current state plus an event
// outcome and return the next state. The Store applies them under its lock,
// after the network call has completed.

func reduceAuthStarted(token string, payload *TokenPayload, challenge *Challenge) State {
	next := State{
		Token:     token,
		TokenKind: payload.Kind,
		User:      payload.User(),
	}
	if challenge != nil && challenge.Key != "" {
		next.Status = StatusPendingOTP
		next.Challenge = challenge
	} else {
		next.Status = StatusAuthenticated
	}
	return next
}

func reduceOTPVerified(prev State, token string, payload *TokenPayload) State {
	next := prev
	next.Status = StatusAuthenticated
	next.Challenge = nil
	next.Err = ""
	if token != "" && payload != nil {
		next.Token = token
		next.TokenKind = payload.Kind
		next.User = payload.User()
	}
	return next
}

func reduceFailure(prev State, message string) State {
	next := prev
	next.Err = message
	return next
}

func reduceProfile(prev State, user *models.User) State {
	next := prev
	next.User = user
	next.Err = ""
	return next
}

func reduceLogout() State {
	return State{Status: StatusAnonymous}
}
