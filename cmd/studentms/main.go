// Command studentms runs the student records HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/password"
	"github.com/kbukum/studentms/internal/auth/token"
	"github.com/kbukum/studentms/internal/config"
	"github.com/kbukum/studentms/internal/database"
	"github.com/kbukum/studentms/internal/logger"
	"github.com/kbukum/studentms/internal/observability"
	"github.com/kbukum/studentms/internal/server"
	"github.com/kbukum/studentms/internal/server/endpoint"
	"github.com/kbukum/studentms/internal/server/handler"
	"github.com/kbukum/studentms/internal/user"
	"github.com/kbukum/studentms/internal/version"
)

const serviceName = "studentms"

func main() {
	configFile := flag.String("config", "", "path to config.yml (default: search standard locations)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetShortVersion())
		return
	}

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}

	var cfg config.AppConfig
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logger, cfg.Base.Name)
	log := logger.GetGlobalLogger()
	log.Info("Starting", map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Base.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obsShutdown, err := observability.Init(ctx, cfg.Observability,
		cfg.Base.Name, version.GetVersionInfo().Version, cfg.Base.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsShutdown(shCtx); err != nil {
			log.Warn("Observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	db, err := database.NewWithContext(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&user.User{}); err != nil {
			return err
		}
	}

	store := user.NewStore(db)
	hasher := password.NewHasher(cfg.Auth.Password)
	tokens, err := token.NewService(&cfg.Auth.JWT)
	if err != nil {
		return err
	}

	if err := seedAdmin(ctx, store, hasher, cfg.Seed, log); err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	engine := srv.GinEngine()
	engine.GET("/", endpoint.Root(cfg.Base.Name))
	engine.GET("/health", endpoint.Health(cfg.Base.Name, db.PingContext))
	engine.GET("/info", endpoint.Info(cfg.Base.Name))

	handler.Mount(engine, handler.Deps{
		Store:  store,
		Hasher: hasher,
		Tokens: tokens,
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return srv.Stop(context.Background())
}

// seedAdmin creates the configured bootstrap admin account unless one with
// that email already exists.
func seedAdmin(ctx context.Context, store *user.Store, hasher password.Hasher, seed config.SeedConfig, log *logger.Logger) error {
	if seed.AdminEmail == "" {
		return nil
	}
	if seed.AdminPassword == "" {
		return fmt.Errorf("seed.admin_password is required when seed.admin_email is set")
	}

	existing, err := store.FindByEmail(ctx, seed.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := hasher.Hash(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	name := seed.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := &user.User{
		FullName:     name,
		Email:        seed.AdminEmail,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Status:       "active",
	}
	if err := store.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Info("Seed admin created", map[string]interface{}{
		"email": seed.AdminEmail,
	})
	return nil
}
