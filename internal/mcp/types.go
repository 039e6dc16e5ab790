package mcp

import (
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/species"
)

type ListSpeciesParams struct {
	Class  string `json:"class,omitempty" jsonschema:"species class (Amphibia, Aves, Insecta, Mammalia, Reptilia); omit for all"`
	Status string `json:"status,omitempty" jsonschema:"status category filter: all, common, rare, exotic or unknown"`
	Query  string `json:"query,omitempty" jsonschema:"substring of the Danish, English or Latin name"`
}

type ListSpeciesResult struct {
	Count   int               `json:"count"`
	Species []species.Species `json:"species"`
}

type ListDimensionsParams struct{}

type ListDimensionsResult struct {
	Dimensions []dimension.Dimension `json:"dimensions"`
}

type CreateDimensionParams struct {
	Year         int    `json:"year,omitempty" jsonschema:"calendar year; defaults to the current year"`
	Month        int    `json:"month,omitempty" jsonschema:"month 1-12"`
	WeekNumber   int    `json:"week_number,omitempty" jsonschema:"ISO week 1-53"`
	LocationID   string `json:"location_id,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Region       string `json:"region,omitempty"`
}

type IDParams struct {
	ID string `json:"id" jsonschema:"identifier of the item"`
}

type DeletedResult struct {
	Deleted string `json:"deleted"`
}

type ListListsParams struct{}

type ListSummary struct {
	List   checklist.List `json:"list"`
	Seen   int            `json:"seen"`
	Total  int            `json:"total"`
	Active bool           `json:"active"`
}

type ListListsResult struct {
	ActiveListID string        `json:"active_list_id,omitempty"`
	Lists        []ListSummary `json:"lists"`
}

type CreateListParams struct {
	Name           string   `json:"name,omitempty" jsonschema:"display name; generated when omitted"`
	DimensionID    string   `json:"dimension_id" jsonschema:"dimension the list is scoped to"`
	SpeciesClasses []string `json:"species_classes" jsonschema:"one or more species classes to include"`
	Activate       bool     `json:"activate,omitempty" jsonschema:"make the new list the active list"`
}

type CreateListResult struct {
	List    checklist.List `json:"list"`
	Entries int            `json:"entries"`
	Active  bool           `json:"active"`
}

type GetListParams struct {
	ID     string `json:"id,omitempty" jsonschema:"list id; omit for the active list"`
	Filter string `json:"filter,omitempty" jsonschema:"entry filter: all, seen or unseen"`
	Status string `json:"status,omitempty" jsonschema:"status category filter: all, common, rare, exotic or unknown"`
	Query  string `json:"query,omitempty" jsonschema:"case-insensitive substring of the Danish name"`
	Sort   string `json:"sort,omitempty" jsonschema:"entry order: taxonomic (default), suggestions, seen_newest or seen_oldest"`
	Week   int    `json:"week,omitempty" jsonschema:"statistics week 1-52 for the suggestions order; defaults to the current week"`
}

// EntryView is an entry together with its species names.
type EntryView struct {
	Entry       checklist.Entry `json:"entry"`
	Class       species.Class   `json:"class,omitempty"`
	DanishName  string          `json:"danish_name,omitempty"`
	EnglishName string          `json:"english_name,omitempty"`
	LatinName   string          `json:"latin_name,omitempty"`
	// ObservationCount is set by the suggestions order.
	ObservationCount int `json:"obs_count,omitempty"`

	sortCode int
}

type GetListResult struct {
	List     checklist.List     `json:"list"`
	Progress checklist.Progress `json:"progress"`
	Sort     string             `json:"sort"`
	Week     int                `json:"week,omitempty"`
	Entries  []EntryView        `json:"entries"`
}

type ToggleEntryParams struct {
	EntryID string `json:"entry_id"`
	Seen    bool   `json:"seen" jsonschema:"true marks the species seen now, false clears it"`
}

type UpdateEntryNoteParams struct {
	EntryID       string `json:"entry_id"`
	ReferenceLink string `json:"reference_link,omitempty" jsonschema:"link to an observation; empty clears it"`
	Comment       string `json:"comment,omitempty" jsonschema:"free-text note; empty clears it"`
}

type EntryResult struct {
	Entry checklist.Entry `json:"entry"`
}

type ProbableForListParams struct {
	ListID string `json:"list_id,omitempty" jsonschema:"list id; omit for the active list"`
	Class  string `json:"class,omitempty" jsonschema:"restrict to one species class of the list, seen entries included"`
	Week   int    `json:"week,omitempty" jsonschema:"statistics week 1-52; defaults to the current week"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions; defaults to 20"`
}

type ProbableForClassParams struct {
	Class string `json:"class" jsonschema:"species class to rank"`
	Week  int    `json:"week,omitempty" jsonschema:"statistics week 1-52; defaults to the current week"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions; defaults to 20"`
}

// ProbableItem is a ranked suggestion with a link to recent observations.
type ProbableItem struct {
	EntryID           string  `json:"entry_id,omitempty"`
	SpeciesID         string  `json:"species_id"`
	Seen              bool    `json:"seen,omitempty"`
	RelativeScore     float64 `json:"r_score"`
	ObservationCount  int     `json:"obs_count"`
	DanishName        string  `json:"danish_name"`
	EnglishName       string  `json:"english_name,omitempty"`
	LatinName         string  `json:"latin_name,omitempty"`
	KnownLocationsURL string  `json:"known_locations_url,omitempty"`
	WeeklyTrend       string  `json:"weekly_trend,omitempty"`
}

type ProbableResult struct {
	ListID    string         `json:"list_id,omitempty"`
	Class     species.Class  `json:"class,omitempty"`
	Week      int            `json:"week"`
	WeekStart string         `json:"week_start"`
	Items     []ProbableItem `json:"items"`
}

type SetActiveListParams struct {
	ID string `json:"id,omitempty" jsonschema:"list id to select; empty clears the selection"`
}

type SetActiveListResult struct {
	ActiveListID string `json:"active_list_id"`
}

type SyncNowParams struct{}

type SyncNowResult struct {
	Outcome string `json:"outcome"`
}
