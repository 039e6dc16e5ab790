package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `bigyear tracks a personal "Big Year": which species you have seen this year.

Core concepts:
- Species: reference records per class (Amphibia, Aves, Insecta, Mammalia, Reptilia). Read-only.
- Dimension: the scope a list is created against (year, optional month/week/location/region).
- List: a checklist with one entry per species of its selected classes.
- Entry: one species on one list; seen or unseen, with optional reference link and comment.
- Active list: the list used when a tool's list_id is omitted.
- Week: a statistics week 1-52 (ISO week 53 folds into 52).

Typical workflow:
1) list_lists to see existing lists and the active one.
2) create_list (dimension_id from list_dimensions, species_classes) or set_active_list.
3) probable_for_list to see which unseen species are most likely this week.
4) toggle_entry when a species is seen; update_entry_note to record where.
5) sync_now after bulk edits when a backend is configured (edits also sync automatically).

Docs:
- bigyear://docs/probable (how suggestions are ranked)
- bigyear://docs/sync (how devices reconcile)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "bigyear://docs/probable",
		Name:        "docs_probable",
		Title:       "Probable species ranking",
		Description: "How probable_for_list and probable_for_class rank species.",
		Content: `# Probable species

Suggestions come from weekly observation statistics per class.

- probable_for_list: unseen entries of the list whose species appear in the
  week's statistics of any class the list covers. With class, the list's
  entries in that class's statistics, seen ones included.
- probable_for_class: every species in one class's statistics for the week.
- get_list with sort=suggestions: the list's unseen entries ordered by their
  highest observation count across the list's classes for the week.

Ranking: observation count (desc), then relative score (desc), then species
id (asc). The default limit is 20. Omitting week uses the current week.

Each item carries known_locations_url, a DOF-basen search for the species in
that week of this year and last year, and weekly_trend when the trend file
lists the species. Results report week_start, the Monday of the week.
`,
	},
	{
		URI:         "bigyear://docs/sync",
		Name:        "docs_sync",
		Title:       "Device sync",
		Description: "How local lists reconcile with the sync backend.",
		Content: `# Sync

Each device has a stable id sent as X-Device-Id. The backend stores one full
snapshot (lists and entries) per device.

One reconciliation:
- no backend configured or offline: skipped
- local has no lists, remote has lists: remote replaces local (pulled)
- local has lists: local replaces remote (pushed)
- both empty: noop

Edits request a sync automatically after a short debounce. sync_now runs one
immediately and reports failures.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
