package models

import "time"

// Picture is a single gallery entry. IDs are assigned by the store in
// strictly ascending order and are never reused; ascending id is the
// canonical enumeration order for ordinal lookups.
type Picture struct {
	ID          int64
	Filename    string
	Description string
	TakenOn     *string // YYYY-MM-DD
	Location    *string // "lat,lon"
	CreatedAt   time.Time
}

type TagCount struct {
	Name  string
	Count int
}
