// Package container wires the coordination layer together with samber/do.
// Each *Package function registers one concern's providers; binaries pick
// the packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/events"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/handlers"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/leaderboard"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/messaging"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/middleware"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/ratelimit"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/session"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/streak"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options configures both binaries.
type Options struct {
	Port            int    `default:"8888"           help:"Port to listen on"                       short:"p"`
	RedisAddr       string `default:"localhost:6379" help:"Redis server address"                    short:"r"`
	LogFormat       string `default:"console"        help:"Log format: console or json"`
	RateLimit       int    `default:"120"            help:"Requests allowed per caller per window"`
	RateLimitWindow int    `default:"60"             help:"Rate limit window in seconds"`
	ConsumerGroup   string `default:"coordination"   help:"Redis stream consumer group name"`
}

// LoggerPackage provides the process-wide zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client and the kv.Store built on
// it. The store owns the client's lifecycle.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		cfg := kv.DefaultRedisConfig()
		cfg.Addr = opts.RedisAddr

		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})

		return client, nil
	})

	do.Provide(injector, func(i *do.Injector) (*kv.RedisStore, error) {
		client := do.MustInvoke[*redis.Client](i)

		return kv.NewRedisStore(client), nil
	})

	do.Provide(injector, func(i *do.Injector) (kv.Store, error) {
		return do.MustInvoke[*kv.RedisStore](i), nil
	})
}

// CoordinationPackage provides the rate limiter, streak tracker,
// leaderboard service, and session cache.
func CoordinationPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		return ratelimit.NewLimiter(do.MustInvoke[kv.Store](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*streak.Tracker, error) {
		return streak.NewTracker(do.MustInvoke[kv.Store](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*leaderboard.Service, error) {
		return leaderboard.NewService(do.MustInvoke[kv.Store](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*session.Cache, error) {
		return session.NewCache(do.MustInvoke[kv.Store](i), do.MustInvoke[*zap.Logger](i)), nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions for the activity event pipeline.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, fmt.Errorf("container: create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.ActivityRecorded], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[events.ActivityRecorded](group.Publisher(), events.TopicActivityRecorded), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.ScoreUpdated], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[events.ScoreUpdated](group.Publisher(), events.TopicScoreUpdated), nil
	})
}

// ConsumerGroupPackage provides the worker's consumer group: one consumer
// per event type, folding events into streaks and leaderboards.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: opts.ConsumerGroup,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, fmt.Errorf("container: create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)

		streakHandler := events.NewStreakHandler(do.MustInvoke[*streak.Tracker](i), logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicActivityRecorded, streakHandler.Handle, logger))

		scoreHandler := events.NewScoreHandler(do.MustInvoke[*leaderboard.Service](i), logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicScoreUpdated, scoreHandler.Handle, logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the Huma API with middleware and
// routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Study Coordination", "1.0.0"))

		api.UseMiddleware(middleware.RateLimiter(
			api,
			do.MustInvoke[*ratelimit.Limiter](i),
			middleware.RateLimitConfig{
				Limit:  int64(opts.RateLimit),
				Window: time.Duration(opts.RateLimitWindow) * time.Second,
			},
			logger,
		))

		progress := handlers.NewProgressHandler(
			do.MustInvoke[*streak.Tracker](i),
			do.MustInvoke[*leaderboard.Service](i),
			do.MustInvoke[*session.Cache](i),
			do.MustInvoke[messaging.Publish[events.ActivityRecorded]](i),
			do.MustInvoke[messaging.Publish[events.ScoreUpdated]](i),
			logger,
		)
		handlers.RegisterRoutes(api, progress)

		health := handlers.NewHealthHandler(do.MustInvoke[kv.Store](i))
		handlers.RegisterHealthRoutes(api, health)

		return api, nil
	})
}

// Ping verifies that the shared store is reachable, for startup checks.
func Ping(ctx context.Context, injector *do.Injector) error {
	return do.MustInvoke[kv.Store](injector).Ping(ctx)
}
