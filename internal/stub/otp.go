package stub

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GenerateOTP returns a random passcode in the six-digit range, so its
// decimal form never needs padding.
func GenerateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}

// HashOTP returns a bcrypt hash of the passcode for storage at rest.
func HashOTP(code int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(fmt.Sprintf("%d", code)), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckOTP compares a stored hash with the submitted passcode.
func CheckOTP(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
