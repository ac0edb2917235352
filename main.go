package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coderoomsgo/internal/config"
	"coderoomsgo/internal/database/db_client"
	"coderoomsgo/internal/http/http_server"
	"coderoomsgo/internal/http/roomhandler"
	"coderoomsgo/internal/matchlog"
	"coderoomsgo/internal/problems"
	"coderoomsgo/internal/redis/redis_client"
	"coderoomsgo/internal/services/room"
	"coderoomsgo/internal/ws"
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

	// 3. Redis (match stream)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Postgres db client
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Problem catalog (falls back to the builtin seed when the table is empty)
	catalog := problems.Load(ctx, pgDb)

	// 6. Room state machine
	roomSvc := room.NewRoomService(room.Config{
		MaxRoomSize: cfg.MaxRoomSize,
		RoundTime:   cfg.RoundTime(),
		Grace:       cfg.RoundGrace(),
	}, catalog, matchlog.NewPublisher(redisClient))

	// 7. Background: match stream ➜ Postgres synchroniser
	matchlog.Run(ctx, redisClient, pgDb)

	// 8. WebSocket server + liveness sweep
	wsSrv := ws.NewWsServer(roomSvc, cfg.SweepInterval())
	go wsSrv.RunSweeper(ctx)

	// 9. HTTP + WS server
	rh := roomhandler.New(roomSvc, catalog, matchlog.NewStore(pgDb))
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, rh)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
