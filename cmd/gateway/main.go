package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/config"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/handler"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/middleware"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/routes"
	pkgcache "github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/cache"
	pkglogger "github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
	pkgredis "github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "config file (default configs/config.<APP_ENV>.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("gateway stopped")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	dotenvFiles := config.LoadDotEnv()

	if configPath == "" {
		configPath = config.Path()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pkglogger.InitStructured(pkglogger.Options{Env: cfg.App.Env, Service: "freelancer-gateway", Level: cfg.Log.Level})
	log := pkglogger.GetLogger()
	log.Info().Strs("env_files", dotenvFiles).Str("config", configPath).Msg("starting gateway")
	config.LogResolved(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Warn().Err(err).Msg("continuing without Redis")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Msg("connected to Redis")
		}
	}
	cacheService := pkgcache.NewService(redisClient)

	proxy, err := handler.NewProxyHandler(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	if err != nil {
		return err
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Gateway.AllowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "X-Cache"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	routes.Setup(router, proxy, cacheService, redisClient, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend.BaseURL).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
