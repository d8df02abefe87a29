package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/config"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/database"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/logger"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// CLI flags
	menuPath := flag.String("menu", "", "Menu YAML file (default: MENU_FILE, then the built-in menu)")
	skipMenu := flag.Bool("skip-menu", false, "Only seed staff accounts")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(true)
	defer log.Sync()

	if !cfg.RemoteConfigured() {
		log.Fatal("DATABASE_URL is not configured")
	}
	if *menuPath == "" {
		*menuPath = cfg.MenuFile
	}

	if err := run(cfg, *menuPath, *skipMenu, log); err != nil {
		log.Fatalw("seed failed", "error", err)
	}
	log.Info("seed completed successfully")
}

func run(cfg *config.Config, menuPath string, skipMenu bool, log *zap.SugaredLogger) error {
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info("migrations applied")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	// Staff and menu go in one transaction: both or neither.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	queries := database.New(pool).WithTx(tx)

	if err := seedStaff(ctx, queries, cfg, log); err != nil {
		return err
	}
	if !skipMenu {
		if err := seedMenu(ctx, queries, menuPath, log); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// seedStaff upserts the built-in accounts with the configured passwords so
// email login works with the same secrets as quick login.
func seedStaff(ctx context.Context, q *database.Queries, cfg *config.Config, log *zap.SugaredLogger) error {
	passwords := map[string]string{
		session.AdminEmail:   cfg.AdminPassword,
		session.CashierEmail: cfg.CashierPassword,
	}
	if cfg.AdminPassword == "7890" || cfg.CashierPassword == "1111" {
		log.Warn("seeding staff with default passwords; set ADMIN_PASSWORD and CASHIER_PASSWORD in production")
	}

	for _, s := range session.DemoStaff() {
		hash, err := session.HashPassword(passwords[s.Email])
		if err != nil {
			return err
		}
		user, err := q.UpsertStaffUser(ctx, database.UpsertStaffUserParams{
			ID:           s.ID,
			Email:        s.Email,
			Role:         s.Role,
			PasswordHash: hash,
		})
		if err != nil {
			return fmt.Errorf("upsert staff %s: %w", s.Email, err)
		}
		log.Infow("staff account ready", "email", user.Email, "id", user.ID, "role", user.Role)
	}
	return nil
}

func seedMenu(ctx context.Context, q *database.Queries, path string, log *zap.SugaredLogger) error {
	file := menu.Default()
	if path != "" {
		f, err := menu.LoadFile(path)
		if err != nil {
			return err
		}
		file = f
	}

	remote := menu.NewRemote(q)
	for _, item := range file.Items {
		if err := remote.SaveMenuItem(ctx, item); err != nil {
			return fmt.Errorf("seed menu item %s: %w", item.ID, err)
		}
	}
	log.Infow("menu seeded", "items", len(file.Items))
	return nil
}
