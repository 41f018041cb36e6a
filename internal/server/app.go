// Package server initializes and runs the storage core: it opens the
// database, applies migrations, connects the blob backend, wires the
// services together and drives the periodic retention sweep until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/cache"
	"github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mycloud/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	UserService  *services.UserService
	FileService  *services.FileService
	ShareService *services.ShareService
	QuotaService *services.QuotaService
	Sweeper      *services.SweeperService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	fileRepo := rm.Files(db)
	userRepo := rm.Users(db)

	usageCache := cache.NewUsageCache(c.UsageCacheSize, c.UsageCacheTTL)
	quota := services.NewQuotaService(fileRepo, usageCache, logger)
	share := services.NewShareService(fileRepo, quota, c)
	files := services.NewFileService(db, rm.Files, blobs, quota, share, logger)
	users := services.NewUserService(userRepo, c)
	sweeper := services.NewSweeperService(fileRepo, blobs, quota, logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		UserService:  users,
		FileService:  files,
		ShareService: share,
		QuotaService: quota,
		Sweeper:      sweeper,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runSweepLoop triggers a retention sweep on every tick until ctx is
// cancelled. Sweep failures are logged by the sweeper itself; the loop
// keeps running so a transient backend outage never stops retention.
func (app *App) runSweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Sweeper.Sweep(ctx); err != nil {
				app.logger.Error(ctx, "retention sweep failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSweepLoop(ctx, app.config.SweepInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
