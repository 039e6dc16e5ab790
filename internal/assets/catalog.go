package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/metrics"
)

// DefaultWeekStatTTL is how long a weekly statistics snapshot stays cached.
const DefaultWeekStatTTL = time.Hour

// Asset paths relative to the source root.
const (
	dimensionsPath  = "Data/dimensions.json"
	weeklyTrendPath = "Data/WeekStat/species_weekly_trend.json"
)

const weeklyTrendKey = "weeklytrend"

// SpeciesPath returns the catalog path of one class.
func SpeciesPath(class species.Class) string {
	return fmt.Sprintf("Data/Species/SPECIES-%s.json", class)
}

// WeekStatPath returns the statistics path of one class and week.
func WeekStatPath(class species.Class, week int) string {
	return fmt.Sprintf("Data/WeekStat/%s-%d.json", class, week)
}

// WeekStatRow is one species line of a weekly statistics snapshot.
type WeekStatRow struct {
	SpeciesID        string
	RelativeScore    float64
	ObservationCount int
	DanishName       string
}

// WeekStat is the statistics snapshot of one (class, week).
type WeekStat struct {
	Class   species.Class
	Week    int
	Species []WeekStatRow
}

// WeeklyTrend is one row of the derived weekly-trend file.
type WeeklyTrend struct {
	SpeciesID   string `json:"speciesId"`
	WeeklyTrend string `json:"weeklyTrend"`
}

// Catalog decodes the reference data files served by a Source.
type Catalog struct {
	source  Source
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithMetrics records fetches on m.
func WithMetrics(m *metrics.Metrics) CatalogOption {
	return func(c *Catalog) { c.metrics = m }
}

// WithWeekStatTTL sets the week-stat cache lifetime.
func WithWeekStatTTL(ttl time.Duration) CatalogOption {
	return func(c *Catalog) {
		if ttl > 0 {
			c.cache = cache.New(ttl, ttl*2)
		}
	}
}

// WithLogger sets the catalog logger.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog creates a Catalog reading from source.
func NewCatalog(source Source, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		source: source,
		cache:  cache.New(DefaultWeekStatTTL, DefaultWeekStatTTL*2),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawSpecies accepts ids and sort codes written either as strings or numbers.
type rawSpecies struct {
	ID          flexString `json:"speciesId"`
	Class       string     `json:"speciesClass"`
	DanishName  string     `json:"danishName"`
	EnglishName string     `json:"englishName"`
	LatinName   string     `json:"latinName"`
	Status      string     `json:"speciesStatus"`
	SortCode    flexString `json:"sortCodeInt"`
}

// SpeciesFile fetches the catalog of one class. The file is either a bare
// array of species or an object with a "species" array. Every returned record
// carries the requested class; records naming a different class are skipped.
func (c *Catalog) SpeciesFile(ctx context.Context, class species.Class) ([]species.Species, error) {
	name := SpeciesPath(class)
	data, err := c.source.Fetch(ctx, name)
	c.metrics.AssetFetched("species", err)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decodeJSON(c.source.Location(name), data, &raw); err != nil {
		return nil, err
	}

	var records []rawSpecies
	switch firstToken(raw) {
	case '[':
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, &DecodeError{URL: c.source.Location(name), Preview: preview(string(raw)), Err: err}
		}
	case '{':
		var wrapped struct {
			Species *[]rawSpecies `json:"species"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Species == nil {
			return nil, fmt.Errorf("%w: species data for %s", ErrUnexpectedShape, class)
		}
		records = *wrapped.Species
	default:
		return nil, fmt.Errorf("%w: species data for %s", ErrUnexpectedShape, class)
	}

	out := make([]species.Species, 0, len(records))
	for _, r := range records {
		sp := species.Species{
			ID:          string(r.ID),
			Class:       class,
			DanishName:  r.DanishName,
			EnglishName: r.EnglishName,
			LatinName:   r.LatinName,
			Status:      r.Status,
			SortCode:    r.SortCode.Int(),
		}
		if sp.ID == "" {
			c.logger.Warn("skipping species without id", "class", class)
			continue
		}
		if parsed, ok := species.ParseClass(r.Class); ok && parsed != class {
			c.logger.Warn("skipping species of another class", "class", class, "species_id", sp.ID, "species_class", parsed)
			continue
		}
		out = append(out, sp)
	}
	return out, nil
}

// DimensionsPreset fetches the dimension presets.
func (c *Catalog) DimensionsPreset(ctx context.Context) ([]dimension.Dimension, error) {
	data, err := c.source.Fetch(ctx, dimensionsPath)
	c.metrics.AssetFetched("dimensions", err)
	if err != nil {
		return nil, err
	}
	var dims []dimension.Dimension
	if err := decodeJSON(c.source.Location(dimensionsPath), data, &dims); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: dimension presets: %v", ErrUnexpectedShape, err)
		}
		return nil, err
	}
	return dims, nil
}

type rawWeekStatRow struct {
	SpeciesID  flexString `json:"speciesid"`
	RScore     *float64   `json:"rScore"`
	ObsCount   *float64   `json:"obsCount"`
	DanishName string     `json:"DanishName"`
}

// WeekStat fetches the statistics snapshot of one class and week. A snapshot
// that is missing or empty at the source is returned as an empty snapshot.
// Results are cached per (class, week).
func (c *Catalog) WeekStat(ctx context.Context, class species.Class, week int) (*WeekStat, error) {
	key := fmt.Sprintf("weekstat:%s:%d", class, week)
	if cached, found := c.cache.Get(key); found {
		if stat, ok := cached.(*WeekStat); ok {
			c.metrics.WeekStatCache(true)
			return stat, nil
		}
	}
	c.metrics.WeekStatCache(false)

	stat := &WeekStat{Class: class, Week: week, Species: []WeekStatRow{}}

	name := WeekStatPath(class, week)
	data, err := c.source.Fetch(ctx, name)
	c.metrics.AssetFetched("week_stat", err)
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug("week stat missing, using empty snapshot", "class", class, "week", week)
		c.cache.Set(key, stat, cache.DefaultExpiration)
		return stat, nil
	}
	if err != nil {
		return nil, err
	}

	var payload struct {
		Species []rawWeekStatRow `json:"species"`
	}
	if err := decodeJSON(c.source.Location(name), data, &payload); err != nil {
		if !errors.Is(err, ErrEmptyBody) {
			return nil, err
		}
	}

	for _, r := range payload.Species {
		row := WeekStatRow{
			SpeciesID:  string(r.SpeciesID),
			DanishName: r.DanishName,
		}
		if r.RScore != nil {
			row.RelativeScore = *r.RScore
		}
		if r.ObsCount != nil {
			row.ObservationCount = int(math.Round(*r.ObsCount))
		}
		stat.Species = append(stat.Species, row)
	}

	c.cache.Set(key, stat, cache.DefaultExpiration)
	return stat, nil
}

// SpeciesWeeklyTrend fetches the weekly-trend file. Rows without a species id
// are dropped. A decoded file is cached like a week-stat snapshot.
func (c *Catalog) SpeciesWeeklyTrend(ctx context.Context) ([]WeeklyTrend, error) {
	if cached, found := c.cache.Get(weeklyTrendKey); found {
		if rows, ok := cached.([]WeeklyTrend); ok {
			return rows, nil
		}
	}

	data, err := c.source.Fetch(ctx, weeklyTrendPath)
	c.metrics.AssetFetched("trend", err)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := decodeJSON(c.source.Location(weeklyTrendPath), data, &raw); err != nil {
		return nil, err
	}
	if firstToken(raw) != '[' {
		return nil, fmt.Errorf("%w: weekly trend must be an array", ErrUnexpectedShape)
	}

	var rows []struct {
		SpeciesID   flexString `json:"speciesId"`
		WeeklyTrend flexString `json:"weeklyTrend"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &DecodeError{URL: c.source.Location(weeklyTrendPath), Preview: preview(string(raw)), Err: err}
	}

	out := make([]WeeklyTrend, 0, len(rows))
	for _, r := range rows {
		if r.SpeciesID == "" {
			continue
		}
		out = append(out, WeeklyTrend{SpeciesID: string(r.SpeciesID), WeeklyTrend: string(r.WeeklyTrend)})
	}
	c.cache.Set(weeklyTrendKey, out, cache.DefaultExpiration)
	return out, nil
}

func firstToken(raw json.RawMessage) byte {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return 0
	}
	return trimmed[0]
}

// flexString decodes a JSON string or number into its text form. null and
// missing values decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Int parses the value as an integer, returning 0 when it is not numeric.
func (f flexString) Int() int {
	if f == "" {
		return 0
	}
	if n, err := strconv.Atoi(string(f)); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(string(f), 64); err == nil {
		return int(v)
	}
	return 0
}
