package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/probable"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/isoweek"
)

const defaultProbableLimit = 20

// Entry orders accepted by get_list.
const (
	SortTaxonomic   = "taxonomic"
	SortSuggestions = "suggestions"
	SortSeenNewest  = "seen_newest"
	SortSeenOldest  = "seen_oldest"
)

// Handler implements the tool operations on top of the domain services.
type Handler struct {
	species    SpeciesService
	dimensions DimensionService
	lists      ListService
	probable   ProbableService
	state      StateService
	now        func() time.Time
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{
		species:    svc.Species,
		dimensions: svc.Dimensions,
		lists:      svc.Lists,
		probable:   svc.Probable,
		state:      svc.State,
		now:        time.Now,
	}
}

func (h *Handler) ListSpecies(ctx context.Context, req ListSpeciesParams) (ListSpeciesResult, error) {
	category, err := parseStatus(req.Status)
	if err != nil {
		return ListSpeciesResult{}, err
	}
	list, err := h.species.Search(ctx, req.Query, species.Class(req.Class))
	if err != nil {
		return ListSpeciesResult{}, err
	}
	list = species.FilterByStatus(list, category)
	if list == nil {
		list = []species.Species{}
	}
	return ListSpeciesResult{Count: len(list), Species: list}, nil
}

func (h *Handler) ListDimensions(ctx context.Context) (ListDimensionsResult, error) {
	dims, err := h.dimensions.List(ctx)
	if err != nil {
		return ListDimensionsResult{}, err
	}
	if dims == nil {
		dims = []dimension.Dimension{}
	}
	return ListDimensionsResult{Dimensions: dims}, nil
}

func (h *Handler) CreateDimension(ctx context.Context, req CreateDimensionParams) (dimension.Dimension, error) {
	dim, err := h.dimensions.Create(ctx, dimension.CreateRequest{
		Year:         req.Year,
		Month:        req.Month,
		WeekNumber:   req.WeekNumber,
		LocationID:   req.LocationID,
		Municipality: req.Municipality,
		Region:       req.Region,
	})
	if err != nil {
		return dimension.Dimension{}, err
	}
	return *dim, nil
}

func (h *Handler) DeleteDimension(ctx context.Context, req IDParams) (DeletedResult, error) {
	if err := h.dimensions.Remove(ctx, req.ID); err != nil {
		return DeletedResult{}, err
	}
	return DeletedResult{Deleted: req.ID}, nil
}

func (h *Handler) ListLists(ctx context.Context) (ListListsResult, error) {
	lists, err := h.lists.ListLists(ctx)
	if err != nil {
		return ListListsResult{}, err
	}
	active, err := h.state.ActiveListID(ctx)
	if err != nil {
		return ListListsResult{}, err
	}

	resp := ListListsResult{ActiveListID: active, Lists: make([]ListSummary, 0, len(lists))}
	for _, l := range lists {
		progress, err := h.lists.ListProgress(ctx, l.ID)
		if err != nil {
			return ListListsResult{}, err
		}
		resp.Lists = append(resp.Lists, ListSummary{
			List:   l,
			Seen:   progress.Seen,
			Total:  progress.Total,
			Active: l.ID == active,
		})
	}
	return resp, nil
}

func (h *Handler) CreateList(ctx context.Context, req CreateListParams) (CreateListResult, error) {
	classes := make([]species.Class, 0, len(req.SpeciesClasses))
	for _, raw := range req.SpeciesClasses {
		classes = append(classes, species.Class(raw))
	}
	list, err := h.lists.CreateList(ctx, checklist.CreateListRequest{
		Name:           req.Name,
		DimensionID:    req.DimensionID,
		SpeciesClasses: classes,
	})
	if err != nil {
		return CreateListResult{}, err
	}
	progress, err := h.lists.ListProgress(ctx, list.ID)
	if err != nil {
		return CreateListResult{}, err
	}
	if req.Activate {
		if err := h.state.SetActiveListID(ctx, list.ID); err != nil {
			return CreateListResult{}, err
		}
	}
	return CreateListResult{List: *list, Entries: progress.Total, Active: req.Activate}, nil
}

func (h *Handler) GetList(ctx context.Context, req GetListParams) (GetListResult, error) {
	filter := strings.ToLower(strings.TrimSpace(req.Filter))
	switch filter {
	case "", "all", "seen", "unseen":
	default:
		return GetListResult{}, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("unknown filter %q", req.Filter)}
	}
	category, err := parseStatus(req.Status)
	if err != nil {
		return GetListResult{}, err
	}
	order, err := parseSort(req.Sort)
	if err != nil {
		return GetListResult{}, err
	}
	query := strings.ToLower(strings.TrimSpace(req.Query))

	listID, err := h.listOrActive(ctx, req.ID)
	if err != nil {
		return GetListResult{}, err
	}

	var (
		week   int
		counts map[string]int
	)
	if order == SortSuggestions {
		// Suggestions only make sense for species still to be seen.
		filter = "unseen"
		week = h.weekOrCurrent(req.Week)
		counts, err = h.probable.ObservationCounts(ctx, listID, week)
		if err != nil {
			return GetListResult{}, err
		}
	}

	list, err := h.lists.GetList(ctx, listID)
	if err != nil {
		return GetListResult{}, err
	}
	entries, err := h.lists.ListEntries(ctx, listID)
	if err != nil {
		return GetListResult{}, err
	}
	progress, err := h.lists.ListProgress(ctx, listID)
	if err != nil {
		return GetListResult{}, err
	}
	catalog, err := h.speciesIndex(ctx)
	if err != nil {
		return GetListResult{}, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		if (filter == "seen" && !e.Seen) || (filter == "unseen" && e.Seen) {
			continue
		}
		view := EntryView{Entry: e}
		sp, ok := catalog[e.SpeciesID]
		if ok {
			view.Class = sp.Class
			view.DanishName = sp.DanishName
			view.EnglishName = sp.EnglishName
			view.LatinName = sp.LatinName
			view.sortCode = sp.SortCode
		}
		if category != "" && category != species.StatusAll && (!ok || species.StatusCategoryOf(sp.Status) != category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(view.DanishName), query) {
			continue
		}
		view.ObservationCount = counts[e.SpeciesID]
		views = append(views, view)
	}

	switch order {
	case SortSuggestions:
		sortBySuggestion(views)
	case SortSeenNewest:
		sortBySeenAt(views, true)
	case SortSeenOldest:
		sortBySeenAt(views, false)
	default:
		sortEntryViews(views)
	}
	return GetListResult{List: *list, Progress: progress, Sort: order, Week: week, Entries: views}, nil
}

func (h *Handler) DeleteList(ctx context.Context, req IDParams) (DeletedResult, error) {
	if _, err := h.lists.GetList(ctx, req.ID); err != nil {
		return DeletedResult{}, err
	}
	if err := h.state.RemoveList(ctx, req.ID); err != nil {
		return DeletedResult{}, err
	}
	return DeletedResult{Deleted: req.ID}, nil
}

func (h *Handler) ToggleEntry(ctx context.Context, req ToggleEntryParams) (EntryResult, error) {
	entry, err := h.lists.ToggleEntrySeenByID(ctx, req.EntryID, req.Seen)
	if err != nil {
		return EntryResult{}, err
	}
	return EntryResult{Entry: *entry}, nil
}

func (h *Handler) UpdateEntryNote(ctx context.Context, req UpdateEntryNoteParams) (EntryResult, error) {
	entry, err := h.lists.UpdateEntryNote(ctx, req.EntryID, req.ReferenceLink, req.Comment)
	if err != nil {
		return EntryResult{}, err
	}
	return EntryResult{Entry: *entry}, nil
}

func (h *Handler) ProbableForList(ctx context.Context, req ProbableForListParams) (ProbableResult, error) {
	listID, err := h.listOrActive(ctx, req.ListID)
	if err != nil {
		return ProbableResult{}, err
	}
	week := h.weekOrCurrent(req.Week)

	var res *probable.Result
	if strings.TrimSpace(req.Class) != "" {
		res, err = h.probable.ForListAndClass(ctx, listID, species.Class(req.Class), week, limitOrDefault(req.Limit))
	} else {
		res, err = h.probable.TopUnseenForList(ctx, listID, week, limitOrDefault(req.Limit))
	}
	if err != nil {
		return ProbableResult{}, err
	}
	out := h.probableResult(res)
	out.ListID = listID
	if class, ok := species.ParseClass(req.Class); ok {
		out.Class = class
	}
	return out, nil
}

func (h *Handler) ProbableForClass(ctx context.Context, req ProbableForClassParams) (ProbableResult, error) {
	week := h.weekOrCurrent(req.Week)
	res, err := h.probable.ForClass(ctx, species.Class(req.Class), week, limitOrDefault(req.Limit))
	if err != nil {
		return ProbableResult{}, err
	}
	out := h.probableResult(res)
	if class, ok := species.ParseClass(req.Class); ok {
		out.Class = class
	}
	return out, nil
}

func (h *Handler) SetActiveList(ctx context.Context, req SetActiveListParams) (SetActiveListResult, error) {
	if err := h.state.SetActiveListID(ctx, req.ID); err != nil {
		return SetActiveListResult{}, err
	}
	active, err := h.state.ActiveListID(ctx)
	if err != nil {
		return SetActiveListResult{}, err
	}
	return SetActiveListResult{ActiveListID: active}, nil
}

func (h *Handler) SyncNow(ctx context.Context) (SyncNowResult, error) {
	outcome, err := h.state.SyncNow(ctx)
	if err != nil {
		return SyncNowResult{}, err
	}
	return SyncNowResult{Outcome: string(outcome)}, nil
}

func (h *Handler) listOrActive(ctx context.Context, listID string) (string, error) {
	if id := strings.TrimSpace(listID); id != "" {
		return id, nil
	}
	active, err := h.state.ActiveListID(ctx)
	if err != nil {
		return "", err
	}
	if active == "" {
		return "", probable.ErrListRequired
	}
	return active, nil
}

func (h *Handler) weekOrCurrent(week int) int {
	if week == 0 {
		return probable.CurrentWeek(h.now())
	}
	return week
}

func (h *Handler) probableResult(res *probable.Result) ProbableResult {
	now := h.now()
	year := now.Year()
	out := ProbableResult{
		Week:      res.Week,
		WeekStart: isoweek.StartDate(isoweek.Of(now).Year, res.Week).Format(time.DateOnly),
		Items:     make([]ProbableItem, 0, len(res.Items)),
	}
	for _, c := range res.Items {
		out.Items = append(out.Items, ProbableItem{
			EntryID:           c.EntryID,
			SpeciesID:         c.SpeciesID,
			Seen:              c.Seen,
			RelativeScore:     c.RelativeScore,
			ObservationCount:  c.ObservationCount,
			DanishName:        c.DanishName,
			EnglishName:       c.EnglishName,
			LatinName:         c.LatinName,
			KnownLocationsURL: probable.KnownLocationsURL(c.SpeciesID, res.Week, year),
			WeeklyTrend:       c.WeeklyTrend,
		})
	}
	return out
}

func (h *Handler) speciesIndex(ctx context.Context) (map[string]species.Species, error) {
	all, err := h.species.List(ctx, "")
	if err != nil {
		return nil, err
	}
	index := make(map[string]species.Species, len(all))
	for _, sp := range all {
		index[sp.ID] = sp
	}
	return index, nil
}

func parseStatus(raw string) (species.StatusCategory, error) {
	category := species.StatusCategory(strings.ToLower(strings.TrimSpace(raw)))
	switch category {
	case "", species.StatusAll, species.StatusCommon, species.StatusRare, species.StatusExotic, species.StatusUnknown:
		return category, nil
	default:
		return "", &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("unknown status category %q", raw)}
	}
}

func parseSort(raw string) (string, error) {
	order := strings.ToLower(strings.TrimSpace(raw))
	switch order {
	case "":
		return SortTaxonomic, nil
	case SortTaxonomic, SortSuggestions, SortSeenNewest, SortSeenOldest:
		return order, nil
	default:
		return "", &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("unknown sort %q", raw)}
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultProbableLimit
	}
	return limit
}

// sortEntryViews orders entries by species sort code, then species ID.
func sortEntryViews(views []EntryView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].sortCode != views[j].sortCode {
			return views[i].sortCode < views[j].sortCode
		}
		return views[i].Entry.SpeciesID < views[j].Entry.SpeciesID
	})
}

// sortBySuggestion orders entries by observation count, highest first, then
// taxonomically.
func sortBySuggestion(views []EntryView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].ObservationCount != views[j].ObservationCount {
			return views[i].ObservationCount > views[j].ObservationCount
		}
		if views[i].sortCode != views[j].sortCode {
			return views[i].sortCode < views[j].sortCode
		}
		return views[i].Entry.SpeciesID < views[j].Entry.SpeciesID
	})
}

// sortBySeenAt orders entries by sighting time. Entries without one go last,
// in taxonomic order.
func sortBySeenAt(views []EntryView, newestFirst bool) {
	sortEntryViews(views)
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Entry.SeenAt, views[j].Entry.SeenAt
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case newestFirst:
			return *a > *b
		default:
			return *a < *b
		}
	})
}
