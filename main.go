// Spotify player web application. Sign in with Spotify, browse your saved
// tracks and playlists, search the catalog, and start playback on your
// active device.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/justestif/go-spotify-player/internal/auth"
	"github.com/justestif/go-spotify-player/internal/config"
	"github.com/justestif/go-spotify-player/internal/db"
	"github.com/justestif/go-spotify-player/internal/spotify"
	"github.com/justestif/go-spotify-player/internal/web"
	webfs "github.com/justestif/go-spotify-player/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger.SetLevel(cfg.LogLevel)

	authenticator, err := auth.New(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
	})
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}

	factory := spotify.NewFactory(logger.With("component", "spotify"))

	sessions, history, cleanup, err := buildStores(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Create sub-filesystems for templates and static files
	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		Auth:        authenticator,
		Catalog:     factory,
		Sessions:    sessions,
		History:     history,
		TemplatesFS: templates,
		StaticFS:    static,
		Logger:      logger.With("component", "web"),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// buildStores picks the session store and play history based on which
// external stores are configured. Precedence: Redis sessions over Postgres
// sessions over in-memory; play history needs Postgres.
func buildStores(cfg *config.Config, logger *log.Logger) (web.SessionManager, web.PlayHistory, func(), error) {
	cleanup := func() {}

	var database *db.DB
	var history web.PlayHistory

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("connecting to database: %w", err)
		}
		cleanup = database.Close

		if err := database.AutoMigrate(ctx); err != nil {
			database.Close()
			return nil, nil, func() {}, fmt.Errorf("migrating database: %w", err)
		}

		history = database.Plays()
		logger.Info("play history enabled")
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)

		prev := cleanup
		cleanup = func() {
			_ = rdb.Close()
			prev()
		}

		logger.Info("using redis session store")
		return web.NewRedisSessionStore(rdb), history, cleanup, nil
	}

	if database != nil {
		logger.Info("using postgres session store")
		return web.NewDBSessionStore(database), history, cleanup, nil
	}

	logger.Info("using in-memory session store")
	return web.NewSessionStore(), history, cleanup, nil
}
