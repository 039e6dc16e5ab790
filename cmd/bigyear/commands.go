package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rpggio/bigyear/internal/domain/probable"
	"github.com/rpggio/bigyear/internal/isoweek"
	"github.com/rpggio/bigyear/internal/mcp"
	"github.com/spf13/cobra"
)

func (c *cli) bootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Load reference species and dimensions into the local store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger, closer := c.newLogger(cfg)
			defer closer.Close()

			s, res, err := c.openSession(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "replaced:  %s\n", joinOrDash(res.Replaced))
			fmt.Fprintf(out, "unchanged: %s\n", joinOrDash(res.Unchanged))
			fmt.Fprintf(out, "dimensions: %d\n", res.Dimensions)
			return nil
		},
	}
}

func (c *cli) speciesCommand() *cobra.Command {
	var params mcp.ListSpeciesParams
	cmd := &cobra.Command{
		Use:   "species",
		Short: "List reference species in taxonomic order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.ListSpecies(ctx, params)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				tw := newTable(cmd.OutOrStdout(), "ID", "CLASS", "DANISH", "ENGLISH", "LATIN", "STATUS")
				for _, sp := range res.Species {
					row(tw, sp.ID, string(sp.Class), sp.DanishName, sp.EnglishName, sp.LatinName, sp.Status)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&params.Class, "class", "", "Species class (Amphibia, Aves, Insecta, Mammalia, Reptilia)")
	cmd.Flags().StringVar(&params.Status, "status", "", "Status category: all, common, rare, exotic, unknown")
	cmd.Flags().StringVarP(&params.Query, "query", "q", "", "Match a substring of the Danish, English or Latin name")
	return cmd
}

func (c *cli) dimensionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "List dimensions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.ListDimensions(ctx)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				tw := newTable(cmd.OutOrStdout(), "ID", "YEAR", "MONTH", "WEEK", "REGION", "MUNICIPALITY", "LOCATION")
				for _, d := range res.Dimensions {
					row(tw, d.ID, fmt.Sprint(d.Year), intOrDash(d.Month), intOrDash(d.WeekNumber),
						strOrDash(d.Region), strOrDash(d.Municipality), strOrDash(d.LocationID))
				}
				return tw.Flush()
			})
		},
	}

	var create mcp.CreateDimensionParams
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user-defined dimension",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				dim, err := h.CreateDimension(ctx, create)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), dim)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dim.ID)
				return nil
			})
		},
	}
	createCmd.Flags().IntVar(&create.Year, "year", 0, "Year (default current year)")
	createCmd.Flags().IntVar(&create.Month, "month", 0, "Month 1-12")
	createCmd.Flags().IntVar(&create.WeekNumber, "week", 0, "ISO week 1-53")
	createCmd.Flags().StringVar(&create.LocationID, "location", "", "Location id")
	createCmd.Flags().StringVar(&create.Municipality, "municipality", "", "Municipality")
	createCmd.Flags().StringVar(&create.Region, "region", "", "Region")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a dimension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				if _, err := h.DeleteDimension(ctx, mcp.IDParams{ID: args[0]}); err != nil {
					return cliError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(createCmd, deleteCmd)
	return cmd
}

func (c *cli) probableCommand() *cobra.Command {
	var (
		listID string
		class  string
		week   int
		limit  int
		next   bool
		prev   bool
	)
	cmd := &cobra.Command{
		Use:   "probable",
		Short: "Rank species likely to be seen this week",
		Long: `Rank species by how often they were observed in a statistics week.

Without --class, ranks the unseen species of a list (--list or the active
list). With --class alone, ranks every species of that class regardless of
lists. With --class and --list, ranks the list's entries of that class,
seen ones included.

--next and --prev step one week from --week (or the current week), wrapping
between week 52 and week 1.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if next || prev {
				if week == 0 {
					week = probable.CurrentWeek(time.Now())
				}
				if next {
					week = isoweek.Next(week)
				} else {
					week = isoweek.Prev(week)
				}
			}
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				var (
					res mcp.ProbableResult
					err error
				)
				switch {
				case class != "" && listID != "":
					res, err = h.ProbableForList(ctx, mcp.ProbableForListParams{ListID: listID, Class: class, Week: week, Limit: limit})
				case class != "":
					res, err = h.ProbableForClass(ctx, mcp.ProbableForClassParams{Class: class, Week: week, Limit: limit})
				default:
					res, err = h.ProbableForList(ctx, mcp.ProbableForListParams{ListID: listID, Week: week, Limit: limit})
				}
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "week %d (%s)\n", res.Week, res.WeekStart)
				tw := newTable(cmd.OutOrStdout(), "#", "SPECIES", "NAME", "OBS", "R-SCORE")
				for i, item := range res.Items {
					row(tw, fmt.Sprint(i+1), item.SpeciesID, item.DanishName,
						fmt.Sprint(item.ObservationCount), fmt.Sprintf("%.3f", item.RelativeScore))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&listID, "list", "", "List id (default active list)")
	cmd.Flags().StringVar(&class, "class", "", "Rank one class: the whole class, or the list's entries of it with --list")
	cmd.Flags().IntVar(&week, "week", 0, "Statistics week 1-52 (default current week)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of suggestions (default 20)")
	cmd.Flags().BoolVar(&next, "next", false, "Use the week after --week")
	cmd.Flags().BoolVar(&prev, "prev", false, "Use the week before --week")
	cmd.MarkFlagsMutuallyExclusive("next", "prev")
	return cmd
}

func (c *cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local lists with the sync backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, h *mcp.Handler) error {
				res, err := h.SyncNow(ctx)
				if err != nil {
					return cliError(err)
				}
				if c.asJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Outcome)
				return nil
			})
		},
	}
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row(tw, headers...)
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func joinOrDash[T ~string](items []T) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, ", ")
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func strOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
