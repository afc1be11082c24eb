package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the customer profile record exchanged with the backend.
//
// The wire shape follows the profile endpoints, which use camelCase
// timestamps unlike the rest of the API.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `gorm:"uniqueIndex" json:"phone"`
	Code        string    `json:"code"`
	Status      bool      `json:"status"`
	Pincode     string    `json:"pincode"`
	District    string    `json:"district"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	Address     string    `json:"address"`
	Gender      string    `json:"gender"`
	DateOfBirth string    `json:"date_of_birth"`
	ProfileURL  string    `json:"profile_url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate ensures UUIDs are generated for new records.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ProfilePatch carries the optional fields accepted by profile_update.
// Nil fields are left untouched.
type ProfilePatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Code        *string `json:"code,omitempty"`
	Pincode     *string `json:"pincode,omitempty"`
	District    *string `json:"district,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
	Address     *string `json:"address,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// OTPChallenge tracks a pending one-time passcode issued at login or signup.
// The code itself is stored hashed; Key is the ephemeral token the passcode
// is bound to.
type OTPChallenge struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Key       string     `gorm:"index" json:"key"`
	CodeHash  string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
