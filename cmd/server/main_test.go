package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"chart-oracle/internal/analyzer"
	"chart-oracle/internal/bot"
	"chart-oracle/internal/config"
	"chart-oracle/internal/forecast"
	"chart-oracle/internal/handler"
	"chart-oracle/internal/repository"
	"chart-oracle/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(t)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestHTTPAddrFromEnv(t *testing.T) {
	t.Setenv("PORT", "")
	if got := httpAddrFromEnv(); got != ":8080" {
		t.Fatalf("expected default :8080, got %s", got)
	}

	t.Setenv("PORT", "9090")
	if got := httpAddrFromEnv(); got != ":9090" {
		t.Fatalf("expected :9090, got %s", got)
	}

	t.Setenv("PORT", ":7070")
	if got := httpAddrFromEnv(); got != ":7070" {
		t.Fatalf("expected :7070, got %s", got)
	}
}

func stubServerDeps(t *testing.T) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origConnectPostgres := connectPostgres
	origConnectRedis := connectRedis
	origInitTracer := initTracerFunc
	origNewUserRepo := newUserRepoFunc
	origNewAnalyzer := newAnalyzerFunc
	origNewImageStore := newImageStoreFn
	origNewOpenAI := newOpenAIClient
	origNewComposer := newComposerFunc
	origStartTelegram := startTelegramBot
	origNewHandler := newHandlerFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignal
	origWait := waitForSignal
	origStartHTTP := startHTTPServer
	origShutdownHTTP := shutdownHTTP

	imageDir := t.TempDir()

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{ImageDir: imageDir, ForecastTimeoutSecs: 1, ForecastCacheTTLSecs: 1}
	}
	connectPostgres = func(context.Context, string) *pgxpool.Pool { return nil }
	connectRedis = func(context.Context, string) *redis.Client { return nil }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newUserRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.UserRepository { return nil }
	newAnalyzerFunc = analyzer.NewAnalyzer
	newImageStoreFn = storage.NewImageStore
	newOpenAIClient = func(string, string) forecast.LLMClient { return nil }
	newComposerFunc = func(trace.Tracer, forecast.LLMClient, *redis.Client, time.Duration, time.Duration) *forecast.Composer {
		return nil
	}
	startTelegramBot = func(bot.UserRegistrar, bot.ChartAnalyzer, bot.ForecastComposer, bot.ImageSaver) *tele.Bot {
		return nil
	}
	newHandlerFunc = handler.New
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignal = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignal = func(<-chan os.Signal) {}
	startHTTPServer = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTP = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		connectPostgres = origConnectPostgres
		connectRedis = origConnectRedis
		initTracerFunc = origInitTracer
		newUserRepoFunc = origNewUserRepo
		newAnalyzerFunc = origNewAnalyzer
		newImageStoreFn = origNewImageStore
		newOpenAIClient = origNewOpenAI
		newComposerFunc = origNewComposer
		startTelegramBot = origStartTelegram
		newHandlerFunc = origNewHandler
		newRouterFunc = origNewRouter
		setupSignal = origSetupSignal
		waitForSignal = origWait
		startHTTPServer = origStartHTTP
		shutdownHTTP = origShutdownHTTP
	}
}
