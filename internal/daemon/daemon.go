package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/injection"
	"marquee/internal/inventory"
	"marquee/internal/logging"
	"marquee/internal/playcount"
	"marquee/internal/selection"
	"marquee/internal/slideshow"
	"marquee/internal/store"
)

// Daemon owns the slideshow services and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	scanner    *inventory.Scanner
	ledger     *playcount.Ledger
	selector   *selection.Selector
	machine    *slideshow.Machine
	injector   *injection.Injector
	moderation *api.ModerationService

	registry *prometheus.Registry
	metrics  *metrics
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	reloadMu  sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	StartedAt       time.Time
	DatabasePath    string
	LockFilePath    string
	PlayCountsPath  string
	VideoDir        string
	TotalCategories int
	TotalVideos     int
	TotalPlays      int
	InjectedSlides  int
}

// New constructs a daemon with initialized dependencies. Nothing touches the
// filesystem until Start.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	scanner := inventory.NewScannerFromConfig(cfg, logger)
	ledger := playcount.NewLedger(cfg.PlayCountsPath(), logger)
	injector := injection.NewInjector(logger)
	registry := prometheus.NewRegistry()

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      st,
		scanner:    scanner,
		ledger:     ledger,
		selector:   selection.New(scanner, ledger, logger),
		machine:    slideshow.NewMachine(st, cfg.Slideshow.DefaultDuration, logger),
		injector:   injector,
		moderation: api.NewModerationService(st, injector, logger),
		registry:   registry,
		metrics:    newMetrics(registry),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, loads inventory, play counts and approved
// submissions, then begins serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.bootstrap(d.ctx); err != nil {
		d.abortStart()
		return err
	}
	if err := d.api.start(d.ctx); err != nil {
		d.abortStart()
		return err
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("marquee daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()))
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	d.cancel()
	d.ctx = nil
	d.cancel = nil
}

func (d *Daemon) bootstrap(ctx context.Context) error {
	if _, err := d.ReloadInventory(); err != nil {
		return err
	}
	approved, err := d.store.ApprovedSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("load approved submissions: %w", err)
	}
	injected := d.injector.Rebuild(approved)
	d.metrics.injectedSlides.Set(float64(injected))

	state := d.machine.State(ctx)
	d.logger.Info("slideshow state restored",
		logging.String(logging.FieldEventType, "slideshow_state_restored"),
		logging.String(logging.FieldSlideID, state.CurrentSlideID),
		logging.Int("slide_index", state.CurrentSlideIndex),
		logging.Int("hidden_slides", len(state.HiddenSlideIDs)),
		logging.Int("injected_slides", injected))
	return nil
}

// Stop stops the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath),
			logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"),
			logging.String(logging.FieldImpact, "the next start may report another instance"))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// ReloadInventory rescans the video directory and reloads play counts,
// pruning entries for videos that no longer exist.
func (d *Daemon) ReloadInventory() (api.ReloadResult, error) {
	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()

	inv, err := d.scanner.Scan()
	if err != nil {
		return api.ReloadResult{}, fmt.Errorf("scan inventory: %w", err)
	}
	pruned, err := d.ledger.Load(inv.Known)
	if err != nil {
		return api.ReloadResult{}, fmt.Errorf("load play counts: %w", err)
	}

	categories := len(inv.Categories())
	d.metrics.inventoryCategories.Set(float64(categories))
	d.metrics.inventoryVideos.Set(float64(inv.TotalVideos()))
	return api.ReloadResult{
		Status:          "reloaded",
		TotalCategories: categories,
		TotalVideos:     inv.TotalVideos(),
		PrunedCounts:    pruned,
	}, nil
}

// Handler exposes the HTTP API routes without a listener.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler()
}

// Addr returns the address the API listens on once started.
func (d *Daemon) Addr() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	inv := d.scanner.Current()
	return Status{
		Running:         d.running.Load(),
		StartedAt:       d.startedAt,
		DatabasePath:    d.store.Path(),
		LockFilePath:    d.lockPath,
		PlayCountsPath:  d.ledger.Path(),
		VideoDir:        d.scanner.Root(),
		TotalCategories: len(inv.Categories()),
		TotalVideos:     inv.TotalVideos(),
		TotalPlays:      d.ledger.Total(),
		InjectedSlides:  d.injector.Len(),
	}
}
