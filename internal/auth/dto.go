package auth

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
)

const MinPasswordLength = 6

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks presence; any non-empty pair is accepted.
func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" || d.Password == "" {
		return internal.ErrMissingCredentials
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (d ChangePasswordDTO) Validate() error {
	if d.CurrentPassword == "" || d.NewPassword == "" || d.ConfirmPassword == "" {
		return internal.ErrPasswordFieldsRequired
	}
	if d.NewPassword != d.ConfirmPassword {
		return internal.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(d.NewPassword) < MinPasswordLength {
		return internal.ErrPasswordTooShort
	}
	return nil
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}

type ProfileResponse struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
