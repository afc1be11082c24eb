package stub

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/stokai/internal/config"
	"github.com/example/stokai/internal/models"
)

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type loginRequest struct {
	Phone string `json:"phone"`
}

// Login starts a session for an existing phone number and issues a passcode
// challenge.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number is required")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "no account found for this phone number")
		}
		return err
	}

	return h.issueChallenge(c, &user)
}

type signUpRequest struct {
	Mob      string `json:"mob"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}

// SignUp creates an account and issues a passcode challenge.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Mob == "" || req.FullName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number and full name are required")
	}

	var existing models.User
	if err := h.db.Where("phone = ?", req.Mob).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "an account with this phone number already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	user := models.User{
		Name:  req.FullName,
		Email: req.Email,
		Phone: req.Mob,
		Code:  req.Code,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return h.issueChallenge(c, &user)
}

// issueChallenge mints the ephemeral token, stores the hashed passcode bound
// to it, and returns both. The passcode in the response is a convenience for
// environments without an SMS gateway.
func (h *AuthHandler) issueChallenge(c *fiber.Ctx, user *models.User) error {
	token, err := GenerateEphemeralToken(h.cfg.JWTSecret, user, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	code, err := GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate passcode")
	}

	codeHash, err := HashOTP(code)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store passcode")
	}

	challenge := models.OTPChallenge{
		UserID:    user.ID,
		Key:       token,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpires),
	}
	if err := h.db.Create(&challenge).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "passcode sent",
		"data": fiber.Map{
			"user_id": user.ID,
			"otpKey":  token,
			"otp":     code,
		},
	})
}

type verifyOTPRequest struct {
	OTPKey string `json:"otpKey"`
	OTP    string `json:"otp"`
}

// VerifyOTP confirms a pending challenge and issues the confirmed token.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OTPKey == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "otpKey and otp are required")
	}

	var challenge models.OTPChallenge
	err := h.db.Where("key = ? AND verified = false", req.OTPKey).
		Order("created_at desc").
		First(&challenge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
		}
		return err
	}

	if challenge.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	}

	if !CheckOTP(challenge.CodeHash, req.OTP) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
	}

	now := time.Now()
	challenge.Verified = true
	challenge.UsedAt = &now
	if err := h.db.Save(&challenge).Error; err != nil {
		return err
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", challenge.UserID).
		Update("status", true).Error; err != nil {
		return err
	}

	confirmed, err := GenerateConfirmedToken(h.cfg.JWTSecret, challenge.UserID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "phone number verified",
		"data": fiber.Map{
			"user_id": challenge.UserID,
			"key":     confirmed,
			"message": fmt.Sprintf("verified at %s", now.Format(time.RFC3339)),
		},
	})
}

// Logout acknowledges the session teardown. Tokens are stateless, so there
// is nothing to revoke.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

// GetProfile returns the authenticated user's full profile.
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "profile",
		"data":    user,
	})
}

// UpdateProfile applies a partial patch and returns the updated record.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	applyPatch(&user, patch)
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "profile updated",
		"data":    user,
	})
}

func applyPatch(user *models.User, patch models.ProfilePatch) {
	setIf := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setIf(&user.Name, patch.Name)
	setIf(&user.Email, patch.Email)
	setIf(&user.Phone, patch.Phone)
	setIf(&user.Code, patch.Code)
	setIf(&user.Pincode, patch.Pincode)
	setIf(&user.District, patch.District)
	setIf(&user.State, patch.State)
	setIf(&user.Country, patch.Country)
	setIf(&user.Address, patch.Address)
	setIf(&user.Gender, patch.Gender)
	setIf(&user.DateOfBirth, patch.DateOfBirth)
}
