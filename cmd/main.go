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

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/config"
	"github.com/weiawesome/birdup/internal/consumer"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/handler"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/reconciler"
	"github.com/weiawesome/birdup/internal/repository"
	"github.com/weiawesome/birdup/internal/service"
	"github.com/weiawesome/birdup/pkg/database"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/middleware"
	"github.com/weiawesome/birdup/pkg/pubsub"
	"github.com/weiawesome/birdup/pkg/storage"
)

const revocationCleanupInterval = 10 * time.Minute

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "birdup",
	})
	logger := pkglog.L()

	// 3. Init DB and migrate every table
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// 4. Caches: Redis when configured, in-process otherwise
	var (
		counters  cache.CounterStore
		feedCache cache.FeedCache
	)
	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(cache.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		counters = cache.NewRedisCounterStore(rdb)
		feedCache = cache.NewRedisFeedCache(rdb)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	} else {
		counters = cache.NewMemoryCounterStore()
		feedCache = cache.NewMemoryFeedCache()
		logger.Warn().Msg("REDIS_ADDRESS not configured; using in-process caches")
	}

	// 5. Event bus and object storage
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pubsub")
	}
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("pubsub ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create storage")
	}

	// 6. Tokens and auth middleware
	tokens, err := pkgjwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens, cfg.Auth.CookieName)

	// 7. Repositories and services
	userRepo := repository.NewGormUserRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	mode := policy.GroupPostingMode(cfg.Posting.GroupPolicy)
	followSvc := service.NewFollowService(followRepo, userRepo, groupRepo, postRepo, counters, bus, cfg.Feed.PageSize)
	feedSvc := service.NewFeedService(postRepo, userRepo, groupRepo, followSvc, feedCache, service.FeedOptions{
		PageSize:                   cfg.Feed.PageSize,
		ProfileFeedIncludesGrouped: cfg.Feed.ProfileFeedIncludesGrouped,
		PostingMode:                mode,
		HomeCacheTTL:               cfg.Cache.HomeFeedTTL,
	})
	svcs := handler.Services{
		Users:    service.NewUserService(userRepo, tokens, store),
		Feed:     feedSvc,
		Posts:    service.NewPostService(postRepo, commentRepo, groupRepo, followRepo, store, bus, mode),
		Comments: service.NewCommentService(commentRepo, postRepo, bus),
		Groups:   service.NewGroupService(groupRepo, bus),
		Follows:  followSvc,
		Search:   service.NewSearchService(postRepo, userRepo, groupRepo),
	}

	// 8. Event consumer: follower counters and home feed invalidation
	eventConsumer := consumer.New(bus, counters, feedSvc)
	if err := eventConsumer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start event consumer")
	}
	logger.Info().Msg("event consumer started")

	// 9. Reconciler and revocation cleanup
	rec := reconciler.New(counters, followRepo, cfg.Reconciler)
	rec.Start(ctx)
	logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")

	go func() {
		ticker := time.NewTicker(revocationCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := tokens.CleanupExpiredRevocations(); n > 0 {
					logger.Debug().Int("removed", n).Msg("expired token revocations cleaned")
				}
			}
		}
	}()

	// 10. Setup Gin router + HTTP server
	httpHandler := handler.NewHandler(svcs, store, authMiddleware, handler.Options{
		LoginPath:      cfg.Auth.LoginPath,
		CookieName:     cfg.Auth.CookieName,
		CookieSecure:   cfg.Auth.CookieSecure,
		PageSize:       cfg.Feed.PageSize,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("birdup starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 11. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		// stop consumer loop, reconciler ticker and revocation cleanup
		cancel()

		if err := eventConsumer.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing event consumer")
		}

		rec.Stop()
		<-rec.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}

		if err := bus.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing pubsub")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("birdup stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}
