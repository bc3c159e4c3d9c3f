package db

import "time"

// Page represents a slug-addressed static page with an optional photo.
// Timestamps are nullable at the column level so rows from the older
// schema revision can be migrated in place and backfilled. AutoMigrate never
// tightens an existing nullable column, so a legacy slug column keeps its
// original constraint while new tables get NOT NULL.
type Page struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Title   string  `gorm:"not null" json:"title"`
	Slug    string  `gorm:"unique;not null" json:"slug"`
	Content string  `gorm:"type:text;not null" json:"content"`
	Photo   *string `json:"photo"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PhotoPath returns the stored photo path or an empty string.
func (p Page) PhotoPath() string {
	if p.Photo == nil {
		return ""
	}
	return *p.Photo
}
