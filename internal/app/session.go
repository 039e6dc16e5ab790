// Package app wires the store, the services and the sync machinery into one
// application session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpggio/bigyear/internal/assets"
	"github.com/rpggio/bigyear/internal/bootstrap"
	"github.com/rpggio/bigyear/internal/config"
	"github.com/rpggio/bigyear/internal/device"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/probable"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/metrics"
	"github.com/rpggio/bigyear/internal/repository"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/rpggio/bigyear/internal/syncer"
)

// ErrNoAssetSource is returned when no reference data location is configured.
var ErrNoAssetSource = errors.New("no asset source configured: set assets.dir, assets.s3.bucket or assets.base_url")

// Session owns everything one running application needs.
type Session struct {
	DB         *sqlite.DB
	Catalog    *assets.Catalog
	Species    *species.Service
	Dimensions *dimension.Service
	Lists      *checklist.Service
	Probable   *probable.Service
	Bootstrap  *bootstrap.Service
	Device     *device.Identity
	Sync       *syncer.Reconciler

	syncClient *syncer.Client
	prefs      *sqlite.PreferenceRepository
	debouncer  *syncer.Debouncer
	logger     *slog.Logger
}

type options struct {
	source  assets.Source
	metrics *metrics.Metrics
	logger  *slog.Logger
	online  syncer.OnlineChecker
	syncer  func(*syncer.Client)
}

// Option configures Open.
type Option func(*options)

// WithSource overrides the asset source built from config.
func WithSource(src assets.Source) Option {
	return func(o *options) { o.source = src }
}

// WithMetrics records service metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger shared by every service.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOnlineChecker sets the connectivity check used before syncing.
func WithOnlineChecker(c syncer.OnlineChecker) Option {
	return func(o *options) { o.online = c }
}

// WithSyncClient lets the caller adjust the backend client, e.g. its
// transport.
func WithSyncClient(fn func(*syncer.Client)) Option {
	return func(o *options) { o.syncer = fn }
}

// Open opens the local store and builds the services. Close must be called
// when done.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	src := o.source
	if src == nil {
		var err error
		src, err = sourceFromConfig(ctx, cfg.Assets)
		if err != nil {
			return nil, err
		}
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}
	db, err := sqlite.Open(ctx, cfg.DB.Path, sqlite.Options{
		AllowUserDataReset: cfg.Store.AllowUserDataReset,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	speciesRepo := sqlite.NewSpeciesRepository(db)
	dimensionRepo := sqlite.NewDimensionRepository(db)
	listRepo := sqlite.NewListRepository(db)
	entryRepo := sqlite.NewEntryRepository(db)
	prefs := sqlite.NewPreferenceRepository(db)

	catalog := assets.NewCatalog(src,
		assets.WithMetrics(o.metrics),
		assets.WithWeekStatTTL(cfg.Assets.WeekStatCacheTTL),
		assets.WithLogger(logger),
	)
	identity := device.NewIdentity(prefs, logger)

	client := syncer.NewClient(cfg.Sync.BaseURL, identity, cfg.Sync.Timeout)
	if o.syncer != nil {
		o.syncer(client)
	}
	syncOpts := []syncer.Option{syncer.WithMetrics(o.metrics), syncer.WithLogger(logger)}
	if o.online != nil {
		syncOpts = append(syncOpts, syncer.WithOnlineChecker(o.online))
	}
	reconciler := syncer.NewReconciler(client, listRepo, entryRepo, syncOpts...)

	s := &Session{
		DB:         db,
		Catalog:    catalog,
		Species:    species.NewService(speciesRepo, logger),
		Dimensions: dimension.NewService(dimensionRepo, logger),
		Bootstrap:  bootstrap.NewService(catalog, speciesRepo, dimensionRepo, o.metrics, logger),
		Device:     identity,
		Sync:       reconciler,
		syncClient: client,
		prefs:      prefs,
		logger:     logger,
	}

	var notifier checklist.ChangeNotifier
	if client.Enabled() {
		s.debouncer = syncer.NewDebouncer(cfg.Sync.Debounce, func(ctx context.Context) {
			_, _ = reconciler.Run(ctx, syncer.PolicyLog)
		})
		notifier = s.debouncer
	}
	s.Lists = checklist.NewService(listRepo, entryRepo, speciesRepo, notifier, logger)
	s.Probable = probable.NewService(catalog, entryRepo, speciesRepo, s.Lists, logger)

	return s, nil
}

// Start loads reference data, then attempts a sync. A bootstrap failure is
// returned; a sync failure is only logged.
func (s *Session) Start(ctx context.Context) (bootstrap.Result, error) {
	res, err := s.Bootstrap.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("bootstrap: %w", err)
	}
	outcome, _ := s.Sync.Run(ctx, syncer.PolicyLog)
	s.logger.Debug("startup sync", "outcome", outcome)
	return res, nil
}

// SyncEnabled reports whether a backend endpoint is configured.
func (s *Session) SyncEnabled() bool {
	return s.syncClient.Enabled()
}

// SyncNow runs one reconciliation and reports its error.
func (s *Session) SyncNow(ctx context.Context) (syncer.Outcome, error) {
	return s.Sync.Run(ctx, syncer.PolicySurface)
}

// ActiveListID returns the list the user last selected, or "" when none is
// selected.
func (s *Session) ActiveListID(ctx context.Context) (string, error) {
	id, err := s.prefs.GetPreference(ctx, sqlite.PrefActiveListID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active list: %w", err)
	}
	return id, nil
}

// SetActiveListID selects listID. An empty id clears the selection.
func (s *Session) SetActiveListID(ctx context.Context, listID string) error {
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return s.prefs.DeletePreference(ctx, sqlite.PrefActiveListID)
	}
	if _, err := s.Lists.GetList(ctx, listID); err != nil {
		return err
	}
	return s.prefs.SetPreference(ctx, sqlite.PrefActiveListID, listID)
}

// RemoveList deletes a list and clears the selection if it was active.
func (s *Session) RemoveList(ctx context.Context, listID string) error {
	if err := s.Lists.RemoveList(ctx, listID); err != nil {
		return err
	}
	active, err := s.ActiveListID(ctx)
	if err != nil {
		return err
	}
	if active == listID {
		return s.SetActiveListID(ctx, "")
	}
	return nil
}

// Close pushes a pending debounced sync, then closes the store.
func (s *Session) Close() error {
	if s.debouncer != nil {
		s.debouncer.Close()
	}
	return s.DB.Close()
}

func sourceFromConfig(ctx context.Context, cfg config.AssetsConfig) (assets.Source, error) {
	switch {
	case cfg.Dir != "":
		return assets.NewDirSource(cfg.Dir), nil
	case cfg.S3.Bucket != "":
		return assets.NewS3Source(ctx, assets.S3Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	case cfg.BaseURL != "":
		return assets.NewHTTPSource(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, ErrNoAssetSource
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
