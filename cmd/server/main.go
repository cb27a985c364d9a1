package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"chart-oracle/internal/analyzer"
	"chart-oracle/internal/bot"
	"chart-oracle/internal/cache"
	"chart-oracle/internal/config"
	"chart-oracle/internal/db"
	"chart-oracle/internal/forecast"
	"chart-oracle/internal/handler"
	"chart-oracle/internal/repository"
	"chart-oracle/internal/storage"
	"chart-oracle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	connectPostgres  = db.Connect
	connectRedis     = cache.Connect
	initTracerFunc   = tracing.InitTracer
	newUserRepoFunc  = repository.NewUserRepository
	newAnalyzerFunc  = analyzer.NewAnalyzer
	newImageStoreFn  = storage.NewImageStore
	newOpenAIClient  = func(apiKey, model string) forecast.LLMClient { return forecast.NewOpenAIClient(apiKey, model) }
	newComposerFunc  = forecast.NewComposer
	startTelegramBot = bot.StartTelegramBot
	newHandlerFunc   = handler.New
	newRouterFunc    = gin.Default
	setupSignal      = ossignal.Notify
	waitForSignal    = func(quit <-chan os.Signal) { <-quit }
	startHTTPServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTP     = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := connectPostgres(ctx, cfg.DatabaseURL)
	redisClient := connectRedis(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	var registrar bot.UserRegistrar
	if pool != nil {
		userRepo := newUserRepoFunc(pool, tracer)
		if err := userRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		registrar = userRepo
	}

	chartAnalyzer := newAnalyzerFunc()

	imageStore, err := newImageStoreFn(cfg.ImageDir)
	if err != nil {
		log.Fatalf("failed to prepare image store: %v", err)
	}

	var composer *forecast.Composer
	if cfg.OpenAIAPIKey != "" {
		llm := newOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		composer = newComposerFunc(
			tracer,
			llm,
			redisClient,
			time.Duration(cfg.ForecastTimeoutSecs)*time.Second,
			time.Duration(cfg.ForecastCacheTTLSecs)*time.Second,
		)
	}

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	var botComposer bot.ForecastComposer
	if composer != nil {
		botComposer = composer
	}
	tb := startTelegramBot(registrar, chartAnalyzer, botComposer, imageStore)

	h := newHandlerFunc(tracer, chartAnalyzer)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("chart-oracle"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServer(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignal(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignal(quit)
	log.Println("Shutting down server...")

	cancel()
	if tb != nil {
		tb.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTP(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func httpAddrFromEnv() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
