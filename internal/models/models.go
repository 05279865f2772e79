package models

import "time"

// User represents an account within the Circles platform.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary returns the public projection of the user shown in search results.
func (u User) Summary() UserSummary {
	return UserSummary{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// UserSummary is the subset of user details other users may see.
type UserSummary struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FriendRequest is a directed, pending invitation from one user to another.
// At most one exists per ordered (FromUser, ToUser) pair.
type FriendRequest struct {
	ID        string    `json:"id"`
	FromUser  string    `json:"fromUser"`
	ToUser    string    `json:"toUser"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
