package model

import "time"

// MaxOTPAttempts caps failed verification attempts per token; the token is
// deleted once the cap is reached.
const MaxOTPAttempts = 5

// VerificationToken holds the 6-digit OTP emailed on signup. One active token
// exists per email: issuing a new one deletes any prior token.
type VerificationToken struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	OTP       string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (v *VerificationToken) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
