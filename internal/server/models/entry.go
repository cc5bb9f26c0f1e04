package models

import "time"

// Entry is a clipboard item stored in the cloud for a user.
type Entry struct {
	ID          string
	UserID      string
	Content     string
	IsFavorited bool
	Tags        []string
	CreatedAt   time.Time
}

// EntryFilter selects which of a user's entries a list query returns.
type EntryFilter int

const (
	EntryFilterAll EntryFilter = iota
	EntryFilterFavorited
	EntryFilterTagged
)
