package auth

import (
	"context"
	"errors"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/models"
)

// Service issues the authentication calls against the backend.
type Service struct {
	client *api.Client
}

// NewService constructs a Service on top of the shared transport.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// SignUpData is the registration payload.
type SignUpData struct {
	Mob      string `json:"mob"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	OTPKey string `json:"otpKey"`
	OTP    string `json:"otp"`
}

type authSessionData struct {
	UserID string `json:"user_id"`
	OTPKey string `json:"otpKey"`
	OTP    int    `json:"otp"`
}

type verifyOTPData struct {
	UserID  string `json:"user_id"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// AuthResult is the outcome of a login or signup call.
type AuthResult struct {
	Token       string
	Payload     *TokenPayload
	RequiresOTP bool
	Challenge   *Challenge
}

// VerifyResult is the outcome of a passcode verification call.
type VerifyResult struct {
	// Token is the confirmed token, empty when the backend kept the prior
	// one valid.
	Token   string
	Payload *TokenPayload
}

// Login starts a session for an existing phone number.
func (s *Service) Login(ctx context.Context, phone string) (*AuthResult, error) {
	if phone == "" {
		return nil, &api.ValidationError{Message: "phone number is required"}
	}

	var data authSessionData
	if err := s.client.Post(ctx, api.PathLogin, loginRequest{Phone: phone}, &data); err != nil {
		return nil, err
	}
	return s.buildAuthResult(data)
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, payload SignUpData) (*AuthResult, error) {
	if payload.Mob == "" || payload.FullName == "" {
		return nil, &api.ValidationError{Message: "phone number and full name are required"}
	}

	var data authSessionData
	if err := s.client.Post(ctx, api.PathSignUp, payload, &data); err != nil {
		return nil, err
	}
	return s.buildAuthResult(data)
}

func (s *Service) buildAuthResult(data authSessionData) (*AuthResult, error) {
	if data.OTPKey == "" {
		return nil, &api.BackendError{Message: "response is missing the session token"}
	}

	payload, err := DecodeToken(data.OTPKey)
	if err != nil {
		return nil, &api.BackendError{Message: err.Error()}
	}

	result := &AuthResult{
		Token:   data.OTPKey,
		Payload: payload,
	}
	if data.OTP != 0 {
		result.RequiresOTP = true
		result.Challenge = &Challenge{Key: data.OTPKey, Value: data.OTP}
	}
	return result, nil
}

// VerifyOTP confirms a pending challenge. Mismatched or expired passcodes
// come back as InvalidOTPError so the caller can stay in the pending state.
func (s *Service) VerifyOTP(ctx context.Context, challengeKey, code string) (*VerifyResult, error) {
	if code == "" {
		return nil, &api.InvalidOTPError{Message: "passcode is required"}
	}

	var data verifyOTPData
	err := s.client.Post(ctx, api.PathVerifyOTP, verifyOTPRequest{OTPKey: challengeKey, OTP: code}, &data)
	if err != nil {
		var ve *api.ValidationError
		var be *api.BackendError
		if errors.As(err, &ve) {
			return nil, &api.InvalidOTPError{Message: ve.Message}
		}
		if errors.As(err, &be) {
			return nil, &api.InvalidOTPError{Message: be.Message}
		}
		return nil, err
	}

	result := &VerifyResult{Token: data.Key}
	if data.Key != "" {
		payload, err := DecodeToken(data.Key)
		if err != nil {
			return nil, &api.BackendError{Message: err.Error()}
		}
		result.Payload = payload
	}
	return result, nil
}

// GetProfile fetches the full profile of the authenticated user.
func (s *Service) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.Get(ctx, api.PathProfile, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile patch and returns the updated
// record.
func (s *Service) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	var user models.User
	if err := s.client.Post(ctx, api.PathProfileUpdate, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the backend to drop the session. Best effort: the caller
// clears local state regardless of the outcome.
func (s *Service) Logout(ctx context.Context) error {
	return s.client.Post(ctx, api.PathLogout, nil, nil)
}
