package main

import (
	"chirp-hub/api"
	"chirp-hub/auth"
	"chirp-hub/contract"
	healthgrpc "chirp-hub/grpc"
	"chirp-hub/infrastructure/redisbus"
	"chirp-hub/observability"
	"chirp-hub/repositories"
	"chirp-hub/runtime"
	"chirp-hub/services"
	"chirp-hub/transport/websocket"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// 5. Event path: services publish on the bus when there is one, the hub
	// always consumes its local queue.
	queue := runtime.NewEventQueue(config.EventBufferSize)
	var publisher contract.EventPublisher = queue
	var bus *redisbus.Source
	if config.RedisURL != "" {
		client, err := redisbus.NewClient(ctx, config.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer func() { _ = client.Close() }()
		publisher = redisbus.NewPublisher(client, config.RedisChannel)
		bus = redisbus.NewSource(log, client, config.RedisChannel, queue)
		log.Info("Cross-instance event bus enabled", "channel", config.RedisChannel)
	}

	// 6. Collaborators & Hub
	store := repositories.NewStore(db, log)
	chats := services.NewChatService(log, store, publisher)
	resolver := auth.NewResolver(config.JWTSecret)
	hub := runtime.NewHub(log, runtime.HubConfig{
		DeliveryTimeout:  config.DeliveryTimeout,
		PingInterval:     config.PingInterval,
		PongTimeout:      config.PongTimeout,
		RestartInterval:  config.RestartInterval,
		StatsInterval:    config.StatsInterval,
		TouchOnAnyFrame:  config.TouchOnAnyFrame,
		MaxContentLength: config.MaxContentLength,
	}, queue, publisher, resolver, chats, chats, metrics)
	if bus != nil {
		hub.AddWorkers(bus)
	}

	// 7. HTTP & gRPC servers
	ws := websocket.NewHandler(log, hub, websocket.Options{
		SendBuffer:     config.SendBufferSize,
		WriteTimeout:   config.DeliveryTimeout,
		MaxFrameSize:   config.MaxFrameSize,
		AllowedOrigins: config.Origins(),
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           api.NewRouter(log, chats, resolver, ws, registry, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	health := healthgrpc.NewHealthServer(log)

	// 8. Run until a signal or the first failure
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Start(gctx)
	})
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return health.Serve(listener)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		health.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		hub.Stop()
		health.GracefulStop()
		return err
	})
	health.SetServing(true)

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}
