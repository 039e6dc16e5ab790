package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/bigyear/internal/mcp"
	"github.com/spf13/cobra"
)

func (c *cli) mcpCommand() *cobra.Command {
	var (
		mode string
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the checklist tools over MCP (stdio or streamable HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.MCP.Mode = mode
			}
			if cmd.Flags().Changed("host") {
				cfg.MCP.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.MCP.Port = port
			}
			if cfg.MCP.Mode != "stdio" && cfg.MCP.Mode != "http" {
				return fmt.Errorf("unknown mcp mode %q (want stdio or http)", cfg.MCP.Mode)
			}

			// Stdout carries the protocol in stdio mode, so logs always go
			// to stderr or the log file.
			logger, closer := c.newLogger(cfg)
			defer closer.Close()

			ctx := cmd.Context()
			s, _, err := c.openSession(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			server := mcp.NewServer(mcp.Config{
				Services:      services(s),
				TransportMode: cfg.MCP.Mode,
				Token:         cfg.MCP.Token,
				Logger:        logger,
			})

			if cfg.MCP.Mode == "stdio" {
				logger.Info("starting stdio transport")
				return server.Run(ctx, &sdkmcp.StdioTransport{})
			}
			return runHTTP(ctx, logger, server, fmt.Sprintf("%s:%d", cfg.MCP.Host, cfg.MCP.Port), cfg.MCP.Token != "")
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "stdio", "Transport: stdio or http")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	return cmd
}

func runHTTP(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, addr string, auth bool) error {
	mcpHandler := mcp.NewHTTPHandler(server)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening", "addr", addr, "auth", auth)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
