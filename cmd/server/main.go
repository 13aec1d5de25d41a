package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/config"
	"github.com/supernovahq/movie-match/internal/database"
	"github.com/supernovahq/movie-match/internal/discuss"
	"github.com/supernovahq/movie-match/internal/handler"
	"github.com/supernovahq/movie-match/internal/imagestore"
	"github.com/supernovahq/movie-match/internal/kinopoisk"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/queue"
	"github.com/supernovahq/movie-match/internal/repository"
	"github.com/supernovahq/movie-match/internal/router"
	"github.com/supernovahq/movie-match/internal/session"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed; session flags need redis")
	}

	images, err := imagestore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccess, cfg.MinioSecret, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("imagestore: %v", err)
	}

	users := repository.NewUserRepo(db)
	films := repository.NewFilmRepo(db)
	watch := repository.NewWatchRepo(db)

	catalog := kinopoisk.NewClient(cfg.CatalogURL, cfg.CatalogKeys)
	prompts := discuss.NewClient(cfg.AIURL, cfg.AIKey, cfg.AIModel)
	engine := session.NewEngine(
		session.NewRepoStore(users, films, watch),
		catalog,
		session.NewRedisFlagStore(rdb),
	)

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, rdb),
		Films:   handler.NewFilmHandler(films, watch, catalog, images, prompts),
		Watch:   handler.NewWatchHandler(films, watch, catalog, images),
		Session: handler.NewSessionHandler(engine),
		Profile: handler.NewProfileHandler(watch),
	}

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, handlers, cfg.JWTSecret, limiter)

	// Background consumer keeps the session audit log flowing.
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
