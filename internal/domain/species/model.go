package species

import "strings"

// Class is a taxonomic class tracked by checklists.
type Class string

const (
	Amphibia Class = "Amphibia"
	Aves     Class = "Aves"
	Insecta  Class = "Insecta"
	Mammalia Class = "Mammalia"
	Reptilia Class = "Reptilia"
)

// AllClasses lists every supported class in canonical order.
var AllClasses = []Class{Amphibia, Aves, Insecta, Mammalia, Reptilia}

// ParseClass returns the class matching s (case-insensitive).
func ParseClass(s string) (Class, bool) {
	for _, c := range AllClasses {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Species is an immutable reference record loaded from the species catalog.
type Species struct {
	ID          string `json:"speciesId"`
	Class       Class  `json:"speciesClass"`
	DanishName  string `json:"danishName"`
	EnglishName string `json:"englishName"`
	LatinName   string `json:"latinName"`
	Status      string `json:"speciesStatus"`
	SortCode    int    `json:"sortCodeInt"`
}

// StatusCategory groups status codes for filtering.
type StatusCategory string

const (
	StatusAll     StatusCategory = "all"
	StatusCommon  StatusCategory = "common"
	StatusRare    StatusCategory = "rare"
	StatusExotic  StatusCategory = "exotic"
	StatusUnknown StatusCategory = "unknown"
)

var statusCategories = map[string]StatusCategory{
	"A": StatusCommon, "X": StatusCommon, "C": StatusCommon,
	"AU": StatusRare, "HU": StatusRare, "BU": StatusRare, "CU": StatusRare, "U": StatusRare, "AS": StatusRare,
	"EU": StatusExotic, "DU": StatusExotic, "E": StatusExotic, "D": StatusExotic,
}

// StatusCategoryOf maps a status code to its category.
func StatusCategoryOf(status string) StatusCategory {
	if cat, ok := statusCategories[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return cat
	}
	return StatusUnknown
}

// SearchOptions narrows a name search.
type SearchOptions struct {
	Class  Class
	Limit  int
	Offset int
}
