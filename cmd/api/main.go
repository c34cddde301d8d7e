package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/hotel_booking/internal/adapter/events"
	"github.com/srgjo27/hotel_booking/internal/adapter/handler"
	"github.com/srgjo27/hotel_booking/internal/adapter/lock"
	"github.com/srgjo27/hotel_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/hotel_booking/internal/adapter/repository/mongodb"
	"github.com/srgjo27/hotel_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
	"github.com/srgjo27/hotel_booking/internal/core/services"
	"github.com/srgjo27/hotel_booking/internal/platform/config"
	"github.com/srgjo27/hotel_booking/internal/platform/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bookingRepo, roomRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	var redisClient *redis.Client
	var locker ports.Locker

	if cfg.RedisEnabled() {
		logger.Info("connecting to redis", "addr", cfg.RedisAddr())

		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr(),
			DB:   0,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		logger.Info("redis connected")
		locker = lock.NewRedisLocker(redisClient, cfg.LockTTL)
	} else {
		logger.Warn("redis disabled: booking writes are serialized in-process only, occupancy cache off")
		locker = lock.NewLocalLocker(cfg.LockTTL)
	}

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		logger.Error("failed to open event publisher", "broker", cfg.EventBroker, "err", err)
		os.Exit(1)
	}
	defer publisher.Close()

	clock := services.SystemClock{}
	manager := services.NewBookingManager(bookingRepo, roomRepo, clock)
	bookingService := services.NewBookingService(manager, bookingRepo, locker, publisher, redisClient, clock, logger, services.Options{
		LockTTL:          cfg.LockTTL,
		CacheTTL:         cfg.OccupancyCacheTTL,
		NoShowCutoffHour: cfg.NoShowCutoffHour,
	})

	bookingHandler := handler.NewBookingHandler(bookingService, logger)

	go bookingService.RunNoShowSweep(ctx, cfg.NoShowInterval)

	mux := http.NewServeMux()
	bookingHandler.Register(mux)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.WithRequestLogging(mux, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	logger.Info("server exiting")
}

func openStore(ctx context.Context, cfg config.App, logger *slog.Logger) (ports.BookingRepository, ports.RoomRepository, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.NewPostgresDB(cfg.Postgres, logger)
		if err != nil {
			return nil, nil, nil, err
		}

		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		if err := database.SeedRooms(ctx, db, cfg.SeedRooms); err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		return postgres.NewBookingRepository(db), postgres.NewRoomRepository(db), func() { db.Close() }, nil

	case "mongo":
		db, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			return nil, nil, nil, err
		}

		closeFn := func() { _ = db.Client().Disconnect(context.Background()) }

		rooms := mongodb.NewRoomRepository(db)
		if err := rooms.SeedRooms(ctx, cfg.SeedRooms); err != nil {
			closeFn()
			return nil, nil, nil, err
		}

		return mongodb.NewBookingRepository(db), rooms, closeFn, nil

	case "memory":
		logger.Warn("using in-memory store, data is lost on restart", "rooms", cfg.SeedRooms)
		return memory.NewBookingStore(), memory.NewRoomStore(memory.SeedRooms(cfg.SeedRooms)...), func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func openPublisher(cfg config.App, logger *slog.Logger) (ports.EventPublisher, error) {
	switch cfg.EventBroker {
	case "nats":
		logger.Info("publishing booking events to nats", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
		return events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
	case "amqp":
		logger.Info("publishing booking events to rabbitmq", "exchange", cfg.AMQPExchange)
		return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	case "none", "":
		return events.NewLogPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
	}
}
