package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"autorevive/internal/auth"
	"autorevive/internal/bidledger"
	"autorevive/internal/config"
	"autorevive/internal/database/db_client"
	"autorevive/internal/fanout"
	"autorevive/internal/http/bidhandler"
	"autorevive/internal/http/http_server"
	"autorevive/internal/listing"
	"autorevive/internal/redis/redis_client"
	"autorevive/internal/services/bidding"
	"autorevive/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (cross-instance bid fan-out)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Postgres (listings + bid ledger)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	listingStore := listing.NewPgStore(pgDb)
	ledger := bidledger.NewPgLedger(pgDb)

	// 5. Live-update fan-out: in-process hub + Redis relay between instances
	hub := fanout.NewHub(cfg.FanoutBuffer)
	bridge := fanout.NewRedisBridge(redisClient, hub)
	go bridge.Run(ctx)

	// 6. Bid commit coordinator
	coordinator := bidding.NewCoordinator(listingStore, ledger, bridge)

	// 7. Identity verification for the bid endpoint
	verifier := auth.NewVerifier(cfg.JwtSecret)

	// 8. WS server pushes hub events to subscribed viewers
	wsSrv := ws.NewWsServer(hub)

	// 9. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, bidhandler.New(coordinator, verifier))
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
