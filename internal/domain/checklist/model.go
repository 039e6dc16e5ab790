package checklist

import (
	"time"

	"github.com/rpggio/bigyear/internal/domain/species"
)

// TimestampLayout is the fixed-width UTC layout used for CreatedAt and SeenAt.
// Lists are ordered by comparing these strings, so every writer must use it.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// List is a user-created checklist.
type List struct {
	ID             string          `json:"ListId"`
	Name           string          `json:"Name"`
	CreatedAt      string          `json:"CreatedAt"`
	DimensionID    string          `json:"DimensionId"`
	SpeciesClasses []species.Class `json:"SpeciesClasses"`
}

// Entry tracks one species on one list.
type Entry struct {
	ID            string  `json:"EntryId"`
	ListID        string  `json:"ListId"`
	SpeciesID     string  `json:"SpeciesId"`
	Seen          bool    `json:"Seen"`
	SeenAt        *string `json:"SeenAt"`
	ReferenceLink *string `json:"ReferenceLink"`
	Comment       *string `json:"Comment"`
}

// Snapshot is the full user dataset exchanged with the sync backend.
type Snapshot struct {
	Lists   []List  `json:"lists"`
	Entries []Entry `json:"entries"`
}

// Empty reports whether the snapshot holds no lists.
func (s Snapshot) Empty() bool {
	return len(s.Lists) == 0
}

// Progress summarizes how much of a list has been seen.
type Progress struct {
	ListID string `json:"list_id"`
	Seen   int    `json:"seen"`
	Total  int    `json:"total"`
}
