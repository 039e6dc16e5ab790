package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/bigyear/internal/app"
	"github.com/rpggio/bigyear/internal/bootstrap"
	"github.com/rpggio/bigyear/internal/config"
	"github.com/rpggio/bigyear/internal/logging"
	"github.com/rpggio/bigyear/internal/mcp"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	asJSON     bool
	logLevel   string
	stderr     io.Writer
	appOpts    []app.Option
}

// rootCommand creates the bigyear command tree.
func rootCommand(opts ...app.Option) *cobra.Command {
	c := &cli{stderr: os.Stderr, appOpts: opts}

	rootCmd := &cobra.Command{
		Use:           "bigyear",
		Short:         "Track the species you see this year",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML config file (default $BIGYEAR_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		c.bootstrapCommand(),
		c.speciesCommand(),
		c.dimensionsCommand(),
		c.listsCommand(),
		c.probableCommand(),
		c.syncCommand(),
		c.mcpCommand(),
	)
	return rootCmd
}

func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	return cfg, nil
}

func (c *cli) newLogger(cfg config.Config) (*slog.Logger, io.Closer) {
	logger, closer, err := logging.New(cfg.Log.Level, cfg.Log.Path, c.stderr)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
	}
	return logger, closer
}

// withSession opens and starts an application session, runs fn against its
// tool handler and closes the session again.
func (c *cli) withSession(ctx context.Context, fn func(ctx context.Context, h *mcp.Handler) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger, closer := c.newLogger(cfg)
	defer closer.Close()

	s, _, err := c.openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, mcp.NewHandler(services(s)))
}

// openSession opens the local store and runs startup: reference data load,
// then a best-effort sync.
func (c *cli) openSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.Session, bootstrap.Result, error) {
	s, err := app.Open(ctx, cfg, append([]app.Option{app.WithLogger(logger)}, c.appOpts...)...)
	if err != nil {
		return nil, bootstrap.Result{}, err
	}
	res, err := s.Start(ctx)
	if err != nil {
		s.Close()
		return nil, bootstrap.Result{}, err
	}
	return s, res, nil
}

func services(s *app.Session) mcp.Services {
	return mcp.Services{
		Species:    s.Species,
		Dimensions: s.Dimensions,
		Lists:      s.Lists,
		Probable:   s.Probable,
		State:      s,
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cliError unwraps domain errors into their coded form for display.
func cliError(err error) error {
	if apiErr := mcp.MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
