package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/config"
	"goodsmarket/internal/es"
	"goodsmarket/internal/events"
	"goodsmarket/internal/handlers"
	"goodsmarket/internal/logging"
	"goodsmarket/internal/ratelimit"
	"goodsmarket/internal/transport/http"
	"goodsmarket/internal/trending"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	producer := events.NewKafkaPublisher([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	tokens := &auth.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	trends := trending.NewCachedFetcher(
		trending.NewHTTPFetcher(nil),
		30*time.Minute,
	)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Logger())

	deps := httpserver.Deps{
		Auth:      &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		Home:      &handlers.HomeHandler{DB: db},
		Questions: &handlers.QuestionHandler{DB: db},
		Details:   &handlers.DetailsHandler{DB: db, Producer: producer},
		Comments:  &handlers.CommentHandler{DB: db, Producer: producer},
		Baskets:   &handlers.BasketHandler{DB: db, Producer: producer},
		Products:  &handlers.ProductHandler{DB: db, Producer: producer},
		Tags:      &handlers.TagsHandler{DB: db, Trends: trends},
		Search:    handlers.NewSearchHandler(esClient, configuration.ES_INDEX),
		Tokens:    tokens,
		Limiter:   ratelimit.New(ratelimit.DefaultPolicy()),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
