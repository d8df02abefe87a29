package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/config"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/database"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/localstore"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/logger"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/queue"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/router"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsDevelopment())
	defer log.Sync()
	zap.ReplaceGlobals(log.Desugar())

	if err := run(cfg, log); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Device-local state
	kv, err := localstore.Open(cfg.StateDir)
	if err != nil {
		return err
	}
	history, err := localstore.NewHistory(kv, cfg.HistoryLimit)
	if err != nil {
		log.Warnw("completed orders log unreadable, starting empty", "error", err)
	}

	// Remote store (optional)
	var (
		orderStore service.OrderStore
		staffStore session.StaffStore
		mirror     menu.Mirror
		remote     *menu.Remote
		mode       = "local-only"
	)
	if cfg.RemoteConfigured() {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Infow("migrations applied")
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		defer pool.Close()

		pingCtx, cancel := context.WithTimeout(ctx, cfg.RemoteTimeout)
		if err := pool.Ping(pingCtx); err != nil {
			// Orders still complete; their save results will show the failures.
			log.Warnw("remote database unreachable at startup", "error", err)
		}
		cancel()

		queries := database.New(pool)
		orderStore, staffStore = queries, queries
		remote = menu.NewRemote(queries)
		mirror = remote
		mode = "remote"
	} else {
		log.Infow("DATABASE_URL not configured, running in local-only mode")
	}

	// Menu
	menuFile, err := loadMenu(ctx, cfg, remote, log)
	if err != nil {
		return err
	}
	catalog := menu.NewCatalog(menuFile, mirror, log)

	// Engine
	persister := service.NewPersister(orderStore, demoStaffParams(), cfg.RemoteTimeout, log)
	engine := service.NewEngine(persister, history, log)

	snapshots := localstore.NewSnapshotter(kv, engine, log)
	if state, ok, err := snapshots.Load(); err != nil {
		log.Warnw("pos state unreadable, starting with empty tables", "error", err)
	} else if ok {
		engine.Restore(state)
	}
	if engine.InitializeTables() {
		log.Infow("tables initialized")
	}
	if err := snapshots.Save(); err != nil {
		log.Warnw("save pos state", "error", err)
	}
	engine.AddListener(snapshots)

	hub := ws.NewHub(log)
	go hub.Run(ctx)
	engine.AddListener(hub)

	if cfg.RabbitMQURL != "" {
		broker, err := queue.NewRabbitMQBroker(cfg.RabbitMQURL)
		if err != nil {
			log.Warnw("order events disabled", "error", err)
		} else {
			defer broker.Close()
			events := queue.NewOrderEvents(broker, log)
			defer events.Wait()
			engine.AddListener(events)
			log.Infow("publishing order events", "queue", queue.QueueOrdersPaid)
		}
	}

	// Sessions
	sessions := session.NewManager(kv, cfg.SessionTTL)
	authn := session.NewAuthenticator(session.Passwords{
		Admin:   cfg.AdminPassword,
		Cashier: cfg.CashierPassword,
	}, staffStore)

	receiptOpts := receipt.DefaultOptions()
	receiptOpts.Location = cfg.Location()

	r := router.New(cfg, router.Deps{
		Engine:     engine,
		Catalog:    catalog,
		History:    history,
		Auth:       authn,
		Sessions:   sessions,
		Hub:        hub,
		Receipt:    receiptOpts,
		RemoteMode: mode,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting server", "port", cfg.Port, "mode", mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := snapshots.Save(); err != nil {
		log.Warnw("save pos state on shutdown", "error", err)
	}
	return nil
}

// loadMenu picks the catalog source: remote menu_items when configured and
// non-empty, then MENU_FILE, then the built-in café menu. Extras always come
// from the file.
func loadMenu(ctx context.Context, cfg *config.Config, remote *menu.Remote, log *zap.SugaredLogger) (menu.File, error) {
	file := menu.Default()
	source := "default"
	if cfg.MenuFile != "" {
		f, err := menu.LoadFile(cfg.MenuFile)
		if err != nil {
			return menu.File{}, err
		}
		file, source = f, cfg.MenuFile
	}

	if remote != nil {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.RemoteTimeout)
		defer cancel()
		items, skipped, err := remote.Load(loadCtx)
		switch {
		case err != nil:
			log.Warnw("remote menu unavailable, using local menu", "error", err)
		case len(items) > 0:
			file.Items, source = items, "remote"
			if skipped > 0 {
				log.Warnw("skipped invalid remote menu rows", "count", skipped)
			}
		}
	}

	log.Infow("menu loaded", "source", source, "items", len(file.Items), "extras", len(file.Extras))
	return file, nil
}

func demoStaffParams() []database.EnsureStaffUserParams {
	var params []database.EnsureStaffUserParams
	for _, s := range session.DemoStaff() {
		params = append(params, database.EnsureStaffUserParams{ID: s.ID, Email: s.Email, Role: s.Role})
	}
	return params
}
