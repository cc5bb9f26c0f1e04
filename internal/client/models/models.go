// Package models holds the client-side view of users, subscription records
// and clipboard entries.
package models

import "time"

type User struct {
	ID    string
	Email string
}

// Subscription is a subscription record owned by a user. The companion only
// cares whether at least one exists.
type Subscription struct {
	ID               string
	UserID           string
	Status           string
	CurrentPeriodEnd time.Time
}

type Entry struct {
	ID          string
	Content     string
	CreatedAt   time.Time
	IsFavorited bool
	Tags        []string
}

// EntryFilter selects one of the live entry queries.
type EntryFilter int

const (
	EntryFilterAll EntryFilter = iota
	EntryFilterFavorited
	EntryFilterTagged
)

func (f EntryFilter) String() string {
	switch f {
	case EntryFilterAll:
		return "all"
	case EntryFilterFavorited:
		return "favorited"
	case EntryFilterTagged:
		return "tagged"
	}
	return "unknown"
}

// ConnectionStatus is the state of the link to the backend.
type ConnectionStatus string

const (
	ConnectionOpened     ConnectionStatus = "opened"
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionClosed     ConnectionStatus = "closed"
)
