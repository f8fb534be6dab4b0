package model

import "time"

// Repository is a single entry of a user's repository listing.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	Description     string    `json:"description,omitempty"`
	StarCount       int       `json:"starCount"`
	ForkCount       int       `json:"forkCount"`
	PrimaryLanguage string    `json:"primaryLanguage,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
