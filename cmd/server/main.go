package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/database"
	"github.com/docvault/docvault/internal/document/cache"
	"github.com/docvault/docvault/internal/document/handler"
	"github.com/docvault/docvault/internal/document/repository"
	"github.com/docvault/docvault/internal/document/service"
	"github.com/docvault/docvault/internal/oidc"
	"github.com/docvault/docvault/internal/tokens"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
	"github.com/docvault/docvault/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging first (controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: backend=%s redis=%s auth=%v rate_limit=%v",
		cfg.Database.Backend, cfg.Redis.Addr(), cfg.Auth.Enabled, cfg.RateLimit.Enabled)

	ctx := context.Background()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s backend: %v", cfg.Database.Backend, err)
	}
	defer closeRepo()

	// Redis serves the cache and, when configured, the rate limiter. An
	// unreachable Redis is not fatal: every lookup becomes a miss.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisUp := redisClient.Ping(ctx).Err() == nil
	if redisUp {
		logger.Infof("connected to redis at %s", cfg.Redis.Addr())
	} else {
		logger.Warnf("redis unreachable at %s, caching degrades to misses", cfg.Redis.Addr())
	}

	svc := service.New(repo, cache.NewRedis(redisClient, cfg.Cache.Prefix, cfg.Cache.TTL))

	r := gin.New()

	// Lightweight CORS for dev/test; production should sit behind a
	// stricter policy at the edge.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisUp {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness gates on storage; the cache is advisory because the
	// service runs degraded without it
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{}
		ready := true
		if _, err := repo.List(c.Request.Context(), 0, 1); err != nil {
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
		}
		deps["cache"] = redisClient.Ping(c.Request.Context()).Err() == nil

		status := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	var authn gin.HandlerFunc
	if cfg.Auth.Enabled {
		if ver := buildVerifier(ctx, cfg); ver != nil {
			authn = middleware.AuthMiddleware(ver)
		} else {
			logger.Warnf("auth enabled but no verifier is configured; mutating routes will reject every request")
			authn = func(c *gin.Context) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication unavailable"})
			}
		}
	}

	handler.New(svc).Register(r, authn)
	handler.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("document service listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
}

// openRepository builds the configured storage backend. The returned
// close function releases the underlying connections.
func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, func(), error) {
	switch cfg.Database.Backend {
	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("documents")
		repo := repository.NewMongoRepo(col)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		logger.Warnf("using the in-memory backend; documents do not survive a restart")
		return repository.NewMemoryRepo(), func() {}, nil
	}
}

// buildVerifier picks the token verifier for the auth gate: OIDC when an
// issuer is configured, the shared-secret HS256 verifier when JWT_SECRET
// is set, and the insecure claims parser only behind its explicit opt-in.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Auth.OIDCIssuer != "" && cfg.Auth.OIDCClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			logger.Infof("auth gate: OIDC verifier, issuer=%s", cfg.Auth.OIDCIssuer)
			return ver
		}
	}
	if cfg.Auth.JWTSecret != "" {
		logger.Infof("auth gate: HS256 verifier")
		return tokens.NewVerifier(cfg.Auth.JWTSecret)
	}
	if cfg.Auth.AllowInsecureToken {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	return nil
}
