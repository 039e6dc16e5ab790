package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every tool to server.
func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool(server, "list_species",
		"List reference species in taxonomic order, optionally filtered by class, status category and name",
		h.ListSpecies)
	addTool(server, "list_dimensions",
		"List the dimensions (year, region, location scopes) lists can be created against",
		func(ctx context.Context, _ ListDimensionsParams) (ListDimensionsResult, error) {
			return h.ListDimensions(ctx)
		})
	addTool(server, "create_dimension",
		"Create a user-defined dimension; the year defaults to the current year",
		h.CreateDimension)
	addTool(server, "delete_dimension",
		"Delete a dimension by id",
		h.DeleteDimension)

	addTool(server, "list_lists",
		"List all checklists, newest first, with seen/total progress and the active list",
		func(ctx context.Context, _ ListListsParams) (ListListsResult, error) {
			return h.ListLists(ctx)
		})
	addTool(server, "create_list",
		"Create a checklist with one unseen entry per species of the selected classes",
		h.CreateList)
	addTool(server, "get_list",
		"Get a checklist with its progress and entries (species names included), filtered by seen state, status category or Danish name and ordered taxonomically, by sighting time or by this week's suggestions",
		h.GetList)
	addTool(server, "delete_list",
		"Delete a checklist and all of its entries",
		h.DeleteList)
	addTool(server, "toggle_entry",
		"Mark a checklist entry seen (stamped now) or unseen",
		h.ToggleEntry)
	addTool(server, "update_entry_note",
		"Set or clear an entry's reference link and comment",
		h.UpdateEntryNote)

	addTool(server, "probable_for_list",
		"Rank the unseen species of a list by how often they were observed in a week, or all its entries of one class",
		h.ProbableForList)
	addTool(server, "probable_for_class",
		"Rank every species of a class by how often it was observed in a week",
		h.ProbableForClass)

	addTool(server, "set_active_list",
		"Select the active checklist used when list_id is omitted; empty id clears it",
		h.SetActiveList)
	addTool(server, "sync_now",
		"Reconcile local lists with the sync backend and report the outcome",
		func(ctx context.Context, _ SyncNowParams) (SyncNowResult, error) {
			return h.SyncNow(ctx)
		})
}

// addTool registers fn as a typed tool. Domain errors are mapped to coded
// APIErrors and returned to the client as tool errors.
func addTool[In, Out any](server *sdkmcp.Server, name, description string, fn func(context.Context, In) (Out, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
			out, err := fn(ctx, in)
			if err != nil {
				var zero Out
				return nil, zero, toolError(err)
			}
			return nil, out, nil
		})
}
