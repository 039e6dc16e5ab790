package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/probable"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/syncer"
)

// SpeciesService defines species catalog operations needed by MCP.
type SpeciesService interface {
	List(ctx context.Context, class species.Class) ([]species.Species, error)
	Search(ctx context.Context, query string, class species.Class) ([]species.Species, error)
}

// DimensionService defines dimension operations needed by MCP.
type DimensionService interface {
	Create(ctx context.Context, req dimension.CreateRequest) (*dimension.Dimension, error)
	List(ctx context.Context) ([]dimension.Dimension, error)
	Remove(ctx context.Context, id string) error
}

// ListService defines list and entry operations needed by MCP.
type ListService interface {
	CreateList(ctx context.Context, req checklist.CreateListRequest) (*checklist.List, error)
	ListLists(ctx context.Context) ([]checklist.List, error)
	GetList(ctx context.Context, listID string) (*checklist.List, error)
	ListEntries(ctx context.Context, listID string) ([]checklist.Entry, error)
	ListProgress(ctx context.Context, listID string) (checklist.Progress, error)
	ToggleEntrySeenByID(ctx context.Context, entryID string, seen bool) (*checklist.Entry, error)
	UpdateEntryNote(ctx context.Context, entryID, referenceLink, comment string) (*checklist.Entry, error)
}

// ProbableService defines probable species queries needed by MCP.
type ProbableService interface {
	TopUnseenForList(ctx context.Context, listID string, week, limit int) (*probable.Result, error)
	ForClass(ctx context.Context, class species.Class, week, limit int) (*probable.Result, error)
	ForListAndClass(ctx context.Context, listID string, class species.Class, week, limit int) (*probable.Result, error)
	ObservationCounts(ctx context.Context, listID string, week int) (map[string]int, error)
}

// StateService holds per-device selection and sync state.
type StateService interface {
	ActiveListID(ctx context.Context) (string, error)
	SetActiveListID(ctx context.Context, listID string) error
	RemoveList(ctx context.Context, listID string) error
	SyncNow(ctx context.Context) (syncer.Outcome, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Species    SpeciesService
	Dimensions DimensionService
	Lists      ListService
	Probable   ProbableService
	State      StateService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	// Token, when set in http mode, is the bearer token clients must send.
	Token  string
	Logger *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "bigyear",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is a local pipe; only http checks tokens.
	if cfg.TransportMode == "http" && cfg.Token != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.Token))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
