package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/console"
	"liyu1981.xyz/tank-console/pkg/db"
	consoleHttp "liyu1981.xyz/tank-console/pkg/http"
	"liyu1981.xyz/tank-console/pkg/session"
)

const sessionPurgeInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil && os.Getenv(common.EnvKeyGoEnv) != "production" {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	common.ConfigureLogging(common.LogOptions{Dir: cfg.LogDir})
	logger := common.GetLogger()

	dbInstance := db.GetInstance(db.UseDialector(cfg.DbType))
	store := session.NewGormStore(dbInstance.Conn, cfg.SessionMaxAge, []byte(cfg.SessionSecret))

	consoleCore := &console.Console{
		Api: api.NewClient(cfg.ApiBaseURL, cfg.ApiTimeout),
	}
	consoleCore.WithDefaultServices()

	rs := &consoleHttp.ConsoleServer{
		Server:   gin.Default(),
		Console:  consoleCore,
		Sessions: store,
	}
	rs.SetLoginLimit(cfg.LoginRate, cfg.LoginBurst)
	rs.Setup()

	var handler http.Handler = rs.Server
	if len(cfg.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(sessionPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := store.PurgeExpired(); err != nil {
					logger.Warn("Session purge failed", zap.Error(err))
				} else if n > 0 {
					logger.Info("Expired sessions purged", zap.Int64("count", n))
				}
				rs.SweepIdle(time.Duration(cfg.SessionMaxAge) * time.Second)
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HttpHostPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("http server created with:",
		zap.String("api_base_url", cfg.ApiBaseURL),
		zap.Duration("api_timeout", cfg.ApiTimeout),
		zap.Float64("login_rate", cfg.LoginRate),
		zap.Int("login_burst", cfg.LoginBurst),
		zap.Strings("allowed_origins", cfg.AllowedOrigins))

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HttpHostPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("http server shutdown failed: %v", err)
		}
		logger.Info("HTTP server shut down gracefully")
	case err := <-errChan:
		log.Fatalf("http server failed to serve: %v", err)
	}
}
