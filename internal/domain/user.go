package domain

import "time"

// User es la fila de cuentas que mantiene el backend de identidad.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	UserType         Role       `json:"user_type,omitempty"`
	PasswordHash     string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	OtpCodeHash      string     `json:"-"`
	OtpExpiresAt     *time.Time `json:"otp_expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Identity resume la cuenta tal como la ve un cliente del backend.
func (u User) Identity() AccountIdentity {
	return AccountIdentity{
		UserID:         u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		Role:           u.UserType,
	}
}

// AccountIdentity es el identificador y estado de verificacion de una cuenta.
type AccountIdentity struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	Role           Role   `json:"role,omitempty"`
}
