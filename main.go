package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Xantonozar/billkhata-go/config"
	"github.com/Xantonozar/billkhata-go/internal/apiclient"
	"github.com/Xantonozar/billkhata-go/internal/dashboard"
	"github.com/Xantonozar/billkhata-go/internal/realtime"
	"github.com/Xantonozar/billkhata-go/logger"
	"github.com/Xantonozar/billkhata-go/types"
)

func main() {
	logger.InitLogger()
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewClient(cfg.API.BaseURL, cfg.API.Key,
		apiclient.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))

	user, err := resolveUser(ctx, client, cfg)
	if err != nil {
		log.Fatalw("Failed to resolve current user", "error", err, "khataId", cfg.Room.KhataID)
	}
	log.Infow("Running pipeline", "khataId", user.KhataID, "userId", user.ID, "role", user.Role)

	subscriber, cleanup, err := buildSubscriber(cfg)
	if err != nil {
		log.Fatalw("Failed to build realtime subscriber", "error", err)
	}
	defer cleanup()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	engine := dashboard.NewEngine(client, user, dashboard.NewLogSink())
	if err := engine.Run(ctx, subscriber); err != nil && ctx.Err() == nil {
		log.Fatalw("Pipeline stopped", "error", err)
	}
	log.Info("Shutting down")
}

// resolveUser looks the configured user up in the room's member list so role
// gating reflects what the server says, not local configuration.
func resolveUser(ctx context.Context, client *apiclient.Client, cfg *config.Config) (types.CurrentUser, error) {
	members, err := client.ListMembers(ctx, cfg.Room.KhataID)
	if err != nil {
		return types.CurrentUser{}, err
	}
	for _, m := range members {
		if m.ID == cfg.Room.UserID {
			return types.CurrentUser{
				ID:      m.ID,
				Name:    m.Name,
				Role:    m.Role,
				KhataID: cfg.Room.KhataID,
			}, nil
		}
	}
	// Unknown users still get a read-only view of the room.
	return types.CurrentUser{
		ID:      cfg.Room.UserID,
		Role:    types.RoleMember,
		KhataID: cfg.Room.KhataID,
	}, nil
}

func buildSubscriber(cfg *config.Config) (types.Subscriber, func(), error) {
	rtCfg := realtime.Config{
		SubscribeTimeout: time.Duration(cfg.Realtime.SubscribeTimeoutSeconds) * time.Second,
		EventBufferSize:  cfg.Realtime.EventBufferSize,
	}

	switch cfg.Realtime.Transport {
	case "websocket":
		sub := realtime.NewWebsocketSubscriber(cfg.Realtime.WebsocketURL, rtCfg)
		return sub, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sub.Shutdown(ctx); err != nil {
				logger.GetLogger().Warnw("Websocket subscriber shutdown failed", "error", err)
			}
		}, nil
	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sub := realtime.NewRedisSubscriber(rdb, rtCfg)
		return sub, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sub.Shutdown(ctx); err != nil {
				logger.GetLogger().Warnw("Redis subscriber shutdown failed", "error", err)
			}
			if err := rdb.Close(); err != nil {
				logger.GetLogger().Warnw("Redis close failed", "error", err)
			}
		}, nil
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.GetLogger().Infow("Metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.GetLogger().Errorw("Metrics server stopped", "error", err)
		os.Exit(1)
	}
}
