// Package model contains domain types for the usersearch application.
// These types are independent of any external GitHub library.
package model

// UserProfile is the subset of a GitHub user record shown by the search widget.
type UserProfile struct {
	Login           string `json:"login"`
	DisplayName     string `json:"displayName,omitempty"` // empty when the user has no name set
	AvatarURL       string `json:"avatarUrl"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
	FollowerCount   int    `json:"followerCount"`
	PublicRepoCount int    `json:"publicRepoCount"`
	ProfileURL      string `json:"profileUrl"`
}

// Name returns the display name, falling back to the login.
func (p *UserProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Login
}
