package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/humanbelnik/kinoswap/matchroom/internal/config"
	http_init "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/init"
	http_identity_middleware "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/middleware/identity"
	http_movie "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/movie"
	http_ops "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/ops"
	http_queue "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/queue"
	http_room "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/room"
	http_swagger "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/swagger"
	ws_room "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/ws/room"
	infra_catalog_breaker "github.com/humanbelnik/kinoswap/matchroom/internal/infra/catalog"
	infra_nats_events "github.com/humanbelnik/kinoswap/matchroom/internal/infra/nats"
	infra_pg_init "github.com/humanbelnik/kinoswap/matchroom/internal/infra/postgres/init"
	infra_postgres_movie "github.com/humanbelnik/kinoswap/matchroom/internal/infra/postgres/movie"
	infra_postgres_watchlist "github.com/humanbelnik/kinoswap/matchroom/internal/infra/postgres/watchlist"
	infra_redis_code_set "github.com/humanbelnik/kinoswap/matchroom/internal/infra/redis/code_set"
	infra_redis_init "github.com/humanbelnik/kinoswap/matchroom/internal/infra/redis/init"
	infra_session_cache "github.com/humanbelnik/kinoswap/matchroom/internal/infra/redis/session"
	session_auth "github.com/humanbelnik/kinoswap/matchroom/internal/service/auth/session"
	storage_room "github.com/humanbelnik/kinoswap/matchroom/internal/storage/room"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
	usecase_queue "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/queue"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
	usecase_swipe "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/swipe"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

const (
	codeSetKey      = "room_codes"
	sessionCacheKey = "session_cache"
)

type publisher interface {
	usecase_swipe.EventPublisher
	Close()
}

func Go(cfg *config.Config) {
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	defer redisConn.Close()
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	defer pgConn.Close()

	events := mustPublisher(cfg.NATS)
	defer events.Close()

	registry := storage_room.New()
	codeSet := infra_redis_code_set.New(redisConn, codeSetKey)
	catalog := infra_catalog_breaker.New(infra_postgres_movie.New(pgConn), infra_catalog_breaker.Config{
		FailureThreshold: cfg.Catalog.FailureThreshold,
		OpenTimeout:      cfg.Catalog.OpenTimeout,
		MaxRequests:      cfg.Catalog.MaxRequests,
	})
	watchlist := infra_postgres_watchlist.New(pgConn)

	hub := ws_room.NewHub()

	roomUC := usecase_room.New(registry, codeSet, usecase_room.Config{
		CodeLength: cfg.Room.CodeLength,
		PinLength:  cfg.Room.PinLength,
	})
	swipeUC := usecase_swipe.New(registry, hub, catalog, watchlist, events)
	queueUC := usecase_queue.New(registry, catalog, watchlist, usecase_queue.Config{
		PriorityRatio: cfg.Queue.PriorityRatio,
		BlockSize:     cfg.Queue.BlockSize,
		DefaultLimit:  cfg.Queue.DefaultLimit,
		MaxLimit:      cfg.Queue.MaxLimit,
	})
	movieUC := usecase_movie.New(catalog)

	sweeper := usecase_swipe.NewSweeper(swipeUC, roomUC, usecase_swipe.SweeperConfig{
		Interval:          cfg.Room.SweepInterval,
		InactivityTimeout: cfg.Room.InactivityTimeout,
		GracePeriod:       cfg.Room.GracePeriod,
		Retention:         cfg.Room.Retention,
	})

	sessionCache := infra_session_cache.New(redisConn, sessionCacheKey)
	identity := http_identity_middleware.New(session_auth.New(sessionCache))

	controllerPool := http_init.NewControllerPool(net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port), identity.Identify())
	controllerPool.Add(http_swagger.New(""))
	controllerPool.Add(http_ops.New(map[string]http_ops.Check{
		"redis": func(context.Context) error {
			return redisConn.Ping().Err()
		},
		"postgres": func(ctx context.Context) error {
			return pgConn.PingContext(ctx)
		},
	}))
	controllerPool.Add(http_room.New(roomUC, swipeUC))
	controllerPool.Add(http_queue.New(queueUC))
	controllerPool.Add(http_movie.New(movieUC))
	controllerPool.Add(ws_room.NewController(hub, swipeUC, ws_room.Config{
		MessagesPerSecond: cfg.WS.MessagesPerSecond,
		Burst:             cfg.WS.Burst,
	}))
	controllerPool.Register()

	root := newSupervisor(logger)
	rooms := suture.New("room-layer", childSpec())
	api := suture.New("api-layer", childSpec())
	root.Add(rooms)
	root.Add(api)

	rooms.Add(hub)
	rooms.Add(sweeper)
	api.Add(controllerPool)

	logger.Info("matchroom is up", slog.String("addr", net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)))
	if err := root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", slog.String("error", err.Error()))
	}
	logger.Info("matchroom stopped")
}

func mustPublisher(cfg config.NATS) publisher {
	if cfg.URL == "" {
		slog.Info("NATS_URL is empty, room events are not published")
		return infra_nats_events.Noop{}
	}
	p, err := infra_nats_events.Connect(infra_nats_events.Config{
		URL:           cfg.URL,
		Name:          "matchroom",
		SubjectPrefix: cfg.SubjectPrefix,
	})
	if err != nil {
		panic(fmt.Errorf("connect nats: %w", err))
	}
	return p
}

func newSupervisor(logger *slog.Logger) *suture.Supervisor {
	spec := childSpec()
	spec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()
	return suture.New("matchroom", spec)
}

func childSpec() suture.Spec {
	return suture.Spec{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
