package model

import "time"

// Post represents a user-authored feed item.
//
// ImageURL is a stable reference into the image store (e.g. "images/abc.png"),
// not the binary itself. CreatorID is the source of truth for ownership;
// Creator is the resolved public creator info, populated when the post is
// read back with its author embedded.
type Post struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	ImageURL  string       `json:"imageUrl"`
	CreatorID string       `json:"creatorId"`
	Creator   *CreatorInfo `json:"creator,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
