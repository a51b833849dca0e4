package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/agriconnect/agriconnect"
	"github.com/agriconnect/agriconnect/provider/local"
	"github.com/agriconnect/agriconnect/provider/supabase"
)

type config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string
	DBPath          string
	Debug           bool
}

func loadConfig() config {
	// missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	return config{
		Port:            getenv("PORT", "8570"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		JWTSecret:       getenv("JWT_SECRET", "dev-only-signing-key"),
		DBPath:          getenv("DB_PATH", "./agriconnect.db"),
		Debug:           os.Getenv("DEBUG") != "",
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	provider, profiles, err := buildProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("provider setup failed: %s", err)
	}

	store := agriconnect.New(provider, profiles)
	if err := store.Bootstrap(ctx); err != nil {
		log.Fatalf("session store bootstrap failed: %s", err)
	}
	defer store.Close()

	engine := django.New("./views", ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	guard := agriconnect.NewGuard(store)
	pages := agriconnect.NewPageController(store, agriconnect.WithControllerDebug(cfg.Debug))
	agriconnect.RegisterPageRoutes(srv.Router(), pages, guard)

	api := agriconnect.NewAPIController(store)
	agriconnect.RegisterAPIRoutes(srv.Router(), api, jwtGuard(cfg))

	srv.Router().Static("/public", "./public", router.Static{})

	go func() {
		if err := srv.Serve(":" + cfg.Port); err != nil {
			log.Fatalf("server stopped: %s", err)
		}
	}()

	fmt.Printf("listening on :%s\n", cfg.Port)
	WaitExitSignal()
}

// buildProvider picks the hosted backend when project credentials are set,
// the embedded SQLite one otherwise. Both expose the same boundaries.
func buildProvider(ctx context.Context, cfg config) (agriconnect.IdentityProvider, agriconnect.ProfileStore, error) {
	if cfg.SupabaseURL != "" {
		p, err := supabase.New(supabase.DefaultConfig(cfg.SupabaseURL, cfg.SupabaseAnonKey))
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := local.EnsureSchema(ctx, db); err != nil {
		return nil, nil, err
	}

	p, err := local.New(db, local.Config{SigningKey: []byte(cfg.JWTSecret)})
	if err != nil {
		return nil, nil, err
	}

	return p, p, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
