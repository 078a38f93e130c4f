// Package model defines the data structures used throughout the application.
package model

import "time"

// DefaultStatus is the status string assigned to newly registered users.
const DefaultStatus = "I am new!"

// User represents a registered user account.
//
// PasswordHash holds the bcrypt hash of the user's password and carries
// `json:"-"` so it can never leak into an API response or a notification
// payload, regardless of which code path serializes the struct.
//
// Posts is the owned-set: the IDs of every post this user created. It is
// bookkeeping maintained alongside post creation/deletion. Authorization
// decisions are always made against Post.CreatorID, never this slice.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Posts        []string  `json:"posts,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreatorInfo is the public subset of a User embedded in post payloads.
type CreatorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
