package assets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/jarcoal/httpmock"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapSource(files map[string]string) *DirSource {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return &DirSource{FS: fsys, Root: "testdata"}
}

func TestCatalog_SpeciesFileShapes(t *testing.T) {
	src := mapSource(map[string]string{
		"Data/Species/SPECIES-Aves.json": `[
			{"speciesId": "A1", "speciesClass": "Aves", "danishName": "Solsort", "sortCodeInt": 10, "speciesStatus": "A"},
			{"speciesId": 2, "danishName": "Musvit", "sortCodeInt": "5"}
		]`,
		"Data/Species/SPECIES-Mammalia.json": `{"species": [{"speciesId": "M1", "speciesClass": "Mammalia", "sortCodeInt": 1}]}`,
		"Data/Species/SPECIES-Insecta.json":  `{"items": []}`,
		"Data/Species/SPECIES-Reptilia.json": `"nope"`,
	})
	catalog := NewCatalog(src)
	ctx := context.Background()

	aves, err := catalog.SpeciesFile(ctx, species.Aves)
	require.NoError(t, err)
	require.Len(t, aves, 2)
	assert.Equal(t, "A1", aves[0].ID)
	assert.Equal(t, 10, aves[0].SortCode)
	assert.Equal(t, "2", aves[1].ID)
	assert.Equal(t, species.Aves, aves[1].Class, "missing class falls back to the requested class")
	assert.Equal(t, 5, aves[1].SortCode)

	mammals, err := catalog.SpeciesFile(ctx, species.Mammalia)
	require.NoError(t, err)
	require.Len(t, mammals, 1)

	_, err = catalog.SpeciesFile(ctx, species.Insecta)
	require.ErrorIs(t, err, ErrUnexpectedShape)

	_, err = catalog.SpeciesFile(ctx, species.Reptilia)
	require.ErrorIs(t, err, ErrUnexpectedShape)

	_, err = catalog.SpeciesFile(ctx, species.Amphibia)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_SpeciesFileSkipsOtherClasses(t *testing.T) {
	src := mapSource(map[string]string{
		"Data/Species/SPECIES-Aves.json": `[
			{"speciesId": "A1", "speciesClass": "Aves", "sortCodeInt": 1},
			{"speciesId": "M9", "speciesClass": "Mammalia", "sortCodeInt": 2},
			{"speciesId": "A2", "speciesClass": "unknown", "sortCodeInt": 3}
		]`,
	})

	list, err := NewCatalog(src).SpeciesFile(context.Background(), species.Aves)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, sp := range list {
		assert.Equal(t, species.Aves, sp.Class)
	}
	assert.Equal(t, "A1", list[0].ID)
	assert.Equal(t, "A2", list[1].ID)
}

func TestCatalog_SpeciesFileUTF16(t *testing.T) {
	text := `{"species":[{"speciesId":"A1","speciesClass":"Aves","sortCodeInt":1}]}`
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0x00)
	}
	src := &DirSource{FS: fstest.MapFS{"Data/Species/SPECIES-Aves.json": {Data: data}}}

	list, err := NewCatalog(src).SpeciesFile(context.Background(), species.Aves)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A1", list[0].ID)
}

func TestCatalog_DimensionsPreset(t *testing.T) {
	src := mapSource(map[string]string{
		"Data/dimensions.json": `[{"DimensionId": "dk-2026", "Year": 2026, "Month": null, "Region": "DK"}]`,
	})
	dims, err := NewCatalog(src).DimensionsPreset(context.Background())
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, "dk-2026", dims[0].ID)
	assert.Nil(t, dims[0].Month)
	assert.Equal(t, "DK", *dims[0].Region)

	bad := mapSource(map[string]string{"Data/dimensions.json": `{"DimensionId": "x"}`})
	_, err = NewCatalog(bad).DimensionsPreset(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestCatalog_WeekStat(t *testing.T) {
	src := mapSource(map[string]string{
		"Data/WeekStat/Aves-10.json": `{"species": [
			{"speciesid": 101, "rScore": 0.5, "obsCount": 12, "DanishName": "Solsort"},
			{"speciesid": "102"}
		]}`,
		"Data/WeekStat/Mammalia-10.json": "",
	})
	m, err := metrics.New()
	require.NoError(t, err)
	catalog := NewCatalog(src, WithMetrics(m))
	ctx := context.Background()

	stat, err := catalog.WeekStat(ctx, species.Aves, 10)
	require.NoError(t, err)
	require.Len(t, stat.Species, 2)
	assert.Equal(t, WeekStatRow{SpeciesID: "101", RelativeScore: 0.5, ObservationCount: 12, DanishName: "Solsort"}, stat.Species[0])
	assert.Equal(t, WeekStatRow{SpeciesID: "102"}, stat.Species[1])

	empty, err := catalog.WeekStat(ctx, species.Mammalia, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Species)

	missing, err := catalog.WeekStat(ctx, species.Insecta, 10)
	require.NoError(t, err)
	assert.Empty(t, missing.Species)
}

func TestCatalog_WeekStatIsCached(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://assets.example/Data/WeekStat/Aves-3.json",
		httpmock.NewStringResponder(http.StatusOK, `{"species":[{"speciesid":"A1","obsCount":1}]}`))

	src := NewHTTPSource("https://assets.example/", 0)
	src.Client = &http.Client{Transport: transport}
	catalog := NewCatalog(src)

	for i := 0; i < 3; i++ {
		stat, err := catalog.WeekStat(context.Background(), species.Aves, 3)
		require.NoError(t, err)
		require.Len(t, stat.Species, 1)
	}
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestCatalog_WeekStatServerError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://assets.example/Data/WeekStat/Aves-4.json",
		httpmock.NewStringResponder(http.StatusInternalServerError, "down"))
	transport.RegisterResponder(http.MethodGet, "https://assets.example/Data/WeekStat/Aves-5.json",
		httpmock.NewStringResponder(http.StatusNotFound, ""))

	src := NewHTTPSource("https://assets.example", 0)
	src.Client = &http.Client{Transport: transport}
	catalog := NewCatalog(src)

	_, err := catalog.WeekStat(context.Background(), species.Aves, 4)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	stat, err := catalog.WeekStat(context.Background(), species.Aves, 5)
	require.NoError(t, err)
	assert.Empty(t, stat.Species)
}

func TestCatalog_SpeciesWeeklyTrend(t *testing.T) {
	src := mapSource(map[string]string{
		"Data/WeekStat/species_weekly_trend.json": `[
			{"speciesId": "A1", "weeklyTrend": "up"},
			{"speciesId": "", "weeklyTrend": "down"},
			{"weeklyTrend": "flat"},
			{"speciesId": 7, "weeklyTrend": null}
		]`,
	})
	rows, err := NewCatalog(src).SpeciesWeeklyTrend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []WeeklyTrend{
		{SpeciesID: "A1", WeeklyTrend: "up"},
		{SpeciesID: "7", WeeklyTrend: ""},
	}, rows)

	bad := mapSource(map[string]string{"Data/WeekStat/species_weekly_trend.json": `{"rows": []}`})
	_, err = NewCatalog(bad).SpeciesWeeklyTrend(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestCatalog_SpeciesWeeklyTrendIsCached(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://assets.example/Data/WeekStat/species_weekly_trend.json",
		httpmock.NewStringResponder(http.StatusOK, `[{"speciesId":"A1","weeklyTrend":"up"}]`))

	src := NewHTTPSource("https://assets.example", 0)
	src.Client = &http.Client{Transport: transport}
	catalog := NewCatalog(src)

	for i := 0; i < 3; i++ {
		rows, err := catalog.SpeciesWeeklyTrend(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 1)
	}
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestHTTPSource_InvalidJSONCarriesURL(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://assets.example/Data/dimensions.json",
		httpmock.NewStringResponder(http.StatusOK, "<html>oops</html>"))

	src := NewHTTPSource("https://assets.example", 0)
	src.Client = &http.Client{Transport: transport}

	_, err := NewCatalog(src).DimensionsPreset(context.Background())
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "https://assets.example/Data/dimensions.json", decodeErr.URL)
	assert.Equal(t, "<html>oops</html>", decodeErr.Preview)
}
