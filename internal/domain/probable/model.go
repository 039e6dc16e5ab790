package probable

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/bigyear/internal/isoweek"
)

var (
	// ErrInvalidWeek indicates a week outside 1..isoweek.MaxWeek.
	ErrInvalidWeek = errors.New("week must be between 1 and 52")
	// ErrListRequired indicates a list-scoped query without a list id.
	ErrListRequired = errors.New("an active list is required")
	// ErrClassRequired indicates a class-scoped query without a class.
	ErrClassRequired = errors.New("species class is required")
)

// Candidate is one ranked species suggestion.
type Candidate struct {
	EntryID          string  `json:"entry_id,omitempty"`
	SpeciesID        string  `json:"species_id"`
	Seen             bool    `json:"seen,omitempty"`
	RelativeScore    float64 `json:"r_score"`
	ObservationCount int     `json:"obs_count"`
	DanishName       string  `json:"danish_name"`
	EnglishName      string  `json:"english_name"`
	LatinName        string  `json:"latin_name"`
	WeeklyTrend      string  `json:"weekly_trend,omitempty"`
}

// Result is a ranked suggestion list for one week.
type Result struct {
	Week  int         `json:"week"`
	Items []Candidate `json:"items"`
}

// Less orders candidates by observation count descending, then relative
// score descending, then species id ascending. Two candidates compare equal
// only when all three match.
func Less(a, b Candidate) bool {
	if a.ObservationCount != b.ObservationCount {
		return a.ObservationCount > b.ObservationCount
	}
	if a.RelativeScore != b.RelativeScore {
		return a.RelativeScore > b.RelativeScore
	}
	return a.SpeciesID < b.SpeciesID
}

// CurrentWeek returns the statistics week containing now. ISO week 53 maps
// to week 52 since no statistics exist for it.
func CurrentWeek(now time.Time) int {
	return isoweek.Clamp(isoweek.Of(now).Week)
}

const dofSearchURL = "https://dofbasen.dk/search/result.php"

// KnownLocationsURL links to the DOF-basen observations of a species in the
// given week of year and the year before. It returns "" when speciesID is
// blank or week is outside 1..53. year <= 0 means the current year.
func KnownLocationsURL(speciesID string, week, year int) string {
	id := strings.TrimSpace(speciesID)
	if id == "" || week < 1 || week > 53 {
		return ""
	}
	if year <= 0 {
		year = time.Now().Year()
	}

	params := url.Values{}
	params.Set("design", "table")
	params.Set("soeg", "soeg")
	params.Set("periode", "maanedaar")
	params.Set("uge", strconv.Itoa(week))
	params.Set("aar_first", strconv.Itoa(year-1))
	params.Set("aar_second", strconv.Itoa(year))
	params.Set("artdata", "art")
	params.Set("hiddenart", id)
	params.Set("obstype", "observationer")
	params.Set("summering", "yes")
	params.Set("sortering", "dato")
	return dofSearchURL + "?" + params.Encode()
}
