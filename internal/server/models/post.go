package models

import "time"

// Post is a published blog entry. Author and Category are populated on reads
// that join the related rows.
type Post struct {
	ID         string
	Title      string
	Content    string
	ImageURL   string
	AuthorID   string
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Author   *AuthorProfile
	Category *Category
}
