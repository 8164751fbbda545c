// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is the identity owned by the auth subsystem. Journals, posts,
// comments and follows reference it but never mutate it.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Journal is a collection of posts owned by one user. PINHash is only set
// while IsPrivate is true and never leaves the process.
type Journal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author"`
	ImageURL    *string   `json:"image_url"`
	IsPrivate   bool      `gorm:"not null;default:false;index" json:"is_private"`
	PINHash     *string   `gorm:"column:pin_hash;size:255" json:"-"`
}

// TableName specifies the table name for GORM
func (Journal) TableName() string {
	return "journals"
}

// HasPIN reports whether a PIN is configured. This is the only PIN-derived
// value that may be exposed outward.
func (j *Journal) HasPIN() bool {
	return j.PINHash != nil && *j.PINHash != ""
}

// JournalView is the outward representation of a journal.
type JournalView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      string    `json:"author"`
	AuthorID    uint      `json:"author_id"`
	ImageURL    *string   `json:"image_url"`
	IsPrivate   bool      `json:"is_private"`
	HasPIN      bool      `json:"has_pin"`
}

// View builds the outward representation of j.
func (j *Journal) View() JournalView {
	return JournalView{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Author:      j.User.Username,
		AuthorID:    j.UserID,
		ImageURL:    j.ImageURL,
		IsPrivate:   j.IsPrivate,
		HasPIN:      j.HasPIN(),
	}
}

// JournalViews converts a slice of journals.
func JournalViews(journals []*Journal) []JournalView {
	out := make([]JournalView, 0, len(journals))
	for _, j := range journals {
		out = append(out, j.View())
	}
	return out
}
