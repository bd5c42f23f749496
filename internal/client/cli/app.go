package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/backup"
	"github.com/dmitrijs2005/stockkeeper/internal/client/config"
	"github.com/dmitrijs2005/stockkeeper/internal/client/services"
	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/stockkeeper/internal/filex"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/grpcremote"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/memory"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/postgres"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// syncRunner is the part of syncer.Orchestrator the REPL drives.
type syncRunner interface {
	RunSync(ctx context.Context) (*syncer.Result, error)
	Start(ctx context.Context, interval time.Duration)
	State() syncer.State
	LastError() error
	FailedStage() string
	LastSyncedAt(ctx context.Context) (time.Time, error)
	Pending(ctx context.Context) (models.Counts, error)
}

type exporter interface {
	Enabled() bool
	Export(ctx context.Context) (string, error)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	inventory services.InventoryService
	sync      syncRunner
	remote    remote.Store
	backup    exporter
	closers   []io.Closer

	mu   sync.Mutex
	mode Mode

	// cmdMu is held while a REPL command runs.
	cmdMu sync.Mutex

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

// openRemote is a seam for tests.
var openRemote = func(ctx context.Context, c *config.Config) (remote.Store, error) {
	switch c.RemoteBackend {
	case config.BackendGRPC:
		s, err := grpcremote.Dial(c.GatewayAddr, c.ClientInfo)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, c.RemoteDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", c.RemoteBackend)
	}
}

// NewApp opens the local database and the remote store and wires the
// inventory service, the sync orchestrator and the backup exporter.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if c.LogFile != "" {
		if _, err := filex.EnsureParentDir(c.LogFile); err != nil {
			return nil, err
		}
	}
	logger, logCloser := logging.NewFileLogger(c.LogFile, slog.LevelInfo)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		_ = logCloser.Close()
		return nil, err
	}

	store, err := openRemote(ctx, c)
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("open remote store: %w", err)
	}

	repos := storage.NewSQLiteRepositoryManager()
	orch := syncer.NewOrchestrator(db, repos, store, logger, syncer.Options{
		RemoteTimeout:     c.RemoteTimeout,
		LegacyAuditInsert: c.LegacyAuditInsert,
		ClientInfo:        c.ClientInfo,
	})
	exp := backup.NewExporter(db, repos, backup.Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}, logger)

	return &App{
		config:      c,
		logger:      logger,
		inventory:   services.NewInventoryService(db, repos, c.Username, logger),
		sync:        orch,
		remote:      store,
		backup:      exp,
		closers:     []io.Closer{store, db, logCloser},
		mode:        ModeOffline,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: isTerminal(int(os.Stdin.Fd())),
	}, nil
}

// Run starts background sync and the online watcher, then blocks in the
// REPL until the user exits or a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bgCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.sync.Start(bgCtx, a.config.SyncInterval)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(bgCtx, a.config.OnlineCheckInterval)
	}()

	fmt.Fprintln(a.out, "Welcome to stockkeeper (type 'help' for commands)")

	done := make(chan struct{})
	go func() {
		runREPL(ctx, a, a.getStatus, a.reader, a.out, a.interactive, &a.cmdMu)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// A command in flight finishes before the store and db close; the
		// REPL starts no new one once ctx is done.
		a.cmdMu.Lock()
		defer a.cmdMu.Unlock()
		fmt.Fprintln(a.out, "\nBye!")
	}

	cancel()
	wg.Wait()
	return a.Close()
}

// Close releases the remote store, the database and the log file.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) getStatus() string {
	return fmt.Sprintf("(%s %s)", a.config.Username, a.Mode())
}

// StartOnlineStatusWatcher pings the remote store every interval and flips
// the mode between online and offline. It blocks until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.remote.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
