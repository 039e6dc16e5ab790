package main

import (
	"context"
	"fmt"

	"github.com/rpggio/bigyear/internal/mcp"
	"github.com/spf13/cobra"
)

func (c *cli) listsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List checklists, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.ListLists(ctx)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				tw := newTable(cmd.OutOrStdout(), "", "ID", "NAME", "DIMENSION", "SEEN", "CREATED")
				for _, l := range res.Lists {
					marker := ""
					if l.Active {
						marker = "*"
					}
					row(tw, marker, l.List.ID, l.List.Name, l.List.DimensionID,
						fmt.Sprintf("%d/%d", l.Seen, l.Total), l.List.CreatedAt)
				}
				return tw.Flush()
			})
		},
	}
	cmd.AddCommand(
		c.listsCreateCommand(),
		c.listsShowCommand(),
		c.listsDeleteCommand(),
		c.listsToggleCommand(),
		c.listsNoteCommand(),
		c.listsUseCommand(),
	)
	return cmd
}

func (c *cli) listsCreateCommand() *cobra.Command {
	var params mcp.CreateListParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a checklist for one or more species classes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.CreateList(ctx, params)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with %d entries\n", res.List.ID, res.List.Name, res.Entries)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "List name (default List-NNNN)")
	cmd.Flags().StringVar(&params.DimensionID, "dimension", "", "Dimension id")
	cmd.Flags().StringSliceVar(&params.SpeciesClasses, "class", nil, "Species class to include (repeatable)")
	cmd.Flags().BoolVar(&params.Activate, "activate", false, "Make the new list active")
	_ = cmd.MarkFlagRequired("dimension")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func (c *cli) listsShowCommand() *cobra.Command {
	var params mcp.GetListParams
	cmd := &cobra.Command{
		Use:   "show [ID]",
		Short: "Show a checklist's entries (default active list)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				params.ID = args[0]
			}
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.GetList(ctx, params)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s  %d/%d seen\n", res.List.ID, res.List.Name, res.Progress.Seen, res.Progress.Total)
				if res.Sort == mcp.SortSuggestions {
					fmt.Fprintf(out, "suggestions for week %d\n", res.Week)
					tw := newTable(out, "ENTRY", "SPECIES", "NAME", "OBS")
					for _, e := range res.Entries {
						row(tw, e.Entry.ID, e.Entry.SpeciesID, e.DanishName, fmt.Sprint(e.ObservationCount))
					}
					return tw.Flush()
				}
				tw := newTable(out, "ENTRY", "SPECIES", "NAME", "SEEN", "COMMENT")
				for _, e := range res.Entries {
					seen := ""
					if e.Entry.Seen {
						seen = strOrDash(e.Entry.SeenAt)
					}
					row(tw, e.Entry.ID, e.Entry.SpeciesID, e.DanishName, seen, strOrDash(e.Entry.Comment))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&params.Filter, "filter", "all", "Entries to show: all, seen, unseen")
	cmd.Flags().StringVar(&params.Status, "status", "all", "Status category: all, common, rare, exotic, unknown")
	cmd.Flags().StringVarP(&params.Query, "query", "q", "", "Match a substring of the Danish name")
	cmd.Flags().StringVar(&params.Sort, "sort", mcp.SortTaxonomic, "Order: taxonomic, suggestions, seen_newest, seen_oldest")
	cmd.Flags().IntVar(&params.Week, "week", 0, "Statistics week for --sort suggestions (default current week)")
	return cmd
}

func (c *cli) listsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a checklist and its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				if _, err := h.DeleteList(ctx, mcp.IDParams{ID: args[0]}); err != nil {
					return cliError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (c *cli) listsToggleCommand() *cobra.Command {
	var unseen bool
	cmd := &cobra.Command{
		Use:   "toggle ENTRY_ID",
		Short: "Mark an entry seen (or unseen with --unseen)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.ToggleEntry(ctx, mcp.ToggleEntryParams{EntryID: args[0], Seen: !unseen})
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				if res.Entry.Seen {
					fmt.Fprintf(cmd.OutOrStdout(), "%s seen at %s\n", res.Entry.ID, strOrDash(res.Entry.SeenAt))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s unseen\n", res.Entry.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unseen, "unseen", false, "Clear the seen mark")
	return cmd
}

func (c *cli) listsNoteCommand() *cobra.Command {
	var params mcp.UpdateEntryNoteParams
	cmd := &cobra.Command{
		Use:   "note ENTRY_ID",
		Short: "Set an entry's reference link and comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.EntryID = args[0]
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.UpdateEntryNote(ctx, params)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", res.Entry.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&params.ReferenceLink, "link", "", "Reference link (empty clears)")
	cmd.Flags().StringVar(&params.Comment, "comment", "", "Comment (empty clears)")
	return cmd
}

func (c *cli) listsUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use [ID]",
		Short: "Select the active checklist; no id clears the selection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params mcp.SetActiveListParams
			if len(args) == 1 {
				params.ID = args[0]
			}
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.SetActiveList(ctx, params)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				if res.ActiveListID == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "no active list")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "active list %s\n", res.ActiveListID)
				}
				return nil
			})
		},
	}
}
