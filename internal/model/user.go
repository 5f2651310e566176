// Package model defines the data structures shared across the application.
package model

import "time"

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. Accounts are created unverified on signup and
// flip to verified once the emailed OTP is confirmed. Accounts created through
// GitHub OAuth are verified from the start and carry a non-zero GitHubID.
//
// PasswordHash and the reset-token pair never leave the server, hence json:"-".
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"` // stored lowercased; unique
	PasswordHash     string    `json:"-"`     // empty for OAuth-only accounts
	Role             Role      `json:"role"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	AvatarEmoji      string    `json:"avatarEmoji"`
	AvatarBackground string    `json:"avatarBackground"` // hex color
	GitHubID         int64     `json:"-"`                // 0 when not linked
	ResetToken       string    `json:"-"`
	ResetExpires     time.Time `json:"-"` // zero when no reset is pending
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserRef is the owner annotation attached to admin views of another user's
// data.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
