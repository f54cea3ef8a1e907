package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/delivery/grpc/handler"
	"storefront/internal/delivery/grpc/proto"
	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/catalog"
	"storefront/internal/infrastructure/file"
	"storefront/internal/infrastructure/httpapi"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/memory"
	"storefront/internal/infrastructure/mongodb"
	"storefront/internal/infrastructure/nats"
	"storefront/internal/infrastructure/token"
	"storefront/internal/usecase"

	"google.golang.org/grpc"
)

type App struct {
	cfg    *config.Config
	logger *logger.Logger
}

func New(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		logger: logger.New(os.Stdout, cfg.Log.Level),
	}
}

// gateways are the remote services, served either over HTTP or by the
// offline backend.
type gateways struct {
	auth        repositories.AuthGateway
	catalog     repositories.CatalogGateway
	orders      repositories.OrderGateway
	fulfillment repositories.FulfillmentGateway
	status      repositories.StatusGateway
	client      *httpapi.Client
}

func (a *App) Run() error {
	a.logger.Info("Starting storefront", "backend", a.cfg.Backend.Driver, "state", a.cfg.State.Driver)

	state, closeState, err := a.initStateStore()
	if err != nil {
		return err
	}
	defer closeState()

	gw, err := a.initGateways()
	if err != nil {
		return err
	}

	session := usecase.NewSessionStore(gw.auth, state, token.NewCodec(), a.logger)
	if gw.client != nil {
		gw.client.SetTokenSource(session)
	}

	ctx := context.Background()
	sessionStatus := session.RestoreSession(ctx)
	a.logger.Info("Session restored", "status", sessionStatus)

	cart := usecase.NewCartStore(state, a.logger)
	if err := cart.Load(ctx); err != nil {
		a.logger.Warn("Failed to load cart, starting empty", "error", err)
	}

	tracker := usecase.NewOrderTracker(gw.orders, gw.status, session, a.logger)

	publisher := a.initNATS(tracker)
	defer publisher.Close()

	checkout := usecase.NewCheckout(session, cart, gw.orders, tracker, publisher, a.logger)
	defer checkout.Wait()

	orderHandler := handler.NewStorefrontHandler(handler.Dependencies{
		Session:  session,
		Cart:     cart,
		Catalog:  usecase.NewCatalog(gw.catalog),
		Checkout: checkout,
		Tracker:  tracker,
		Orders:   usecase.NewOrderUseCase(session, gw.orders, gw.fulfillment, tracker, a.logger),
		Logger:   a.logger,
	})

	grpcServer, lis, err := a.initGRPCServer(orderHandler)
	if err != nil {
		return err
	}

	return a.runServerWithGracefulShutdown(grpcServer, lis)
}

func (a *App) initStateStore() (repositories.StateStore, func(), error) {
	noop := func() {}

	switch a.cfg.State.Driver {
	case config.StateMemory:
		a.logger.Warn("Using in-memory state, session and cart are lost on exit")
		return memory.NewStateStore(), noop, nil

	case config.StateMongo:
		a.logger.Info("Connecting to MongoDB", "uri", a.cfg.Mongo.URI, "db", a.cfg.Mongo.DB)
		store, err := mongodb.NewStateStore(a.cfg.Mongo.URI, a.cfg.Mongo.DB, a.cfg.State.Namespace, a.logger)
		if err != nil {
			a.logger.Error("Failed to connect to MongoDB", "error", err)
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				a.logger.Warn("Failed to close MongoDB connection", "error", err)
			}
		}, nil

	default:
		dir := filepath.Join(a.cfg.State.Dir, a.cfg.State.Namespace)
		store, err := file.NewStateStore(dir)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("Using file state", "dir", dir)
		return store, noop, nil
	}
}

func (a *App) initGateways() (*gateways, error) {
	if a.cfg.Backend.Driver == config.BackendMemory {
		products, err := a.loadMenu()
		if err != nil {
			return nil, err
		}

		opts := []memory.BackendOption{memory.WithCatalog(products)}
		if a.cfg.Backend.SigningKey != "" {
			opts = append(opts, memory.WithSigningKey([]byte(a.cfg.Backend.SigningKey)))
		} else {
			a.logger.Warn("OFFLINE_SIGNING_KEY not set, offline credentials use the built-in demo key")
		}
		backend := memory.NewBackend(a.cfg.Tenant, opts...)
		a.logger.Info("Using offline backend", "products", len(products))
		return &gateways{
			auth:        backend,
			catalog:     backend,
			orders:      backend,
			fulfillment: backend,
			status:      backend,
		}, nil
	}

	client := httpapi.NewClient(httpapi.Endpoints{
		Orders:      a.cfg.Backend.OrdersURL,
		Fulfillment: a.cfg.Backend.FulfillmentURL,
		Status:      a.cfg.Backend.StatusURL,
		Users:       a.cfg.Backend.UsersURL,
	}, a.cfg.Tenant, a.cfg.Backend.Timeout, a.logger)

	return &gateways{
		auth:        client,
		catalog:     client,
		orders:      client,
		fulfillment: client,
		status:      client,
		client:      client,
	}, nil
}

func (a *App) loadMenu() ([]entities.Product, error) {
	if a.cfg.Backend.CatalogFile == "" {
		return catalog.Default(), nil
	}
	products, err := catalog.LoadFile(a.cfg.Backend.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return products, nil
}

// initNATS connects the event bus. Without NATS the storefront still
// works; tracking views just have to refresh on their own.
func (a *App) initNATS(tracker *usecase.OrderTracker) usecase.EventPublisher {
	if a.cfg.NATS.URL == "" {
		a.logger.Info("NATS URL not set, order events disabled")
		return &noopPublisher{}
	}

	bus, err := nats.NewEventBus(a.cfg.NATS.URL, a.logger)
	if err != nil {
		a.logger.Warn("Failed to connect to NATS, continuing without order events",
			"error", err,
			"url", a.cfg.NATS.URL)
		return &noopPublisher{}
	}

	err = bus.SubscribeStatusChanges(a.cfg.NATS.StatusSubject, func(event nats.StatusChangedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := tracker.Refresh(ctx, event.OrderID); err != nil {
			a.logger.Warn("Failed to refresh order after status event", "order_id", event.OrderID, "error", err)
		}
	})
	if err != nil {
		a.logger.Warn("Status change notifications disabled", "error", err)
	}

	return bus
}

type noopPublisher struct{}

func (n *noopPublisher) PublishOrderPlaced(ctx context.Context, order *entities.Order) error {
	return nil
}

func (n *noopPublisher) Close() {
}

func (a *App) initGRPCServer(h *handler.StorefrontHandler) (*grpc.Server, net.Listener, error) {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(a.loggingInterceptor()),
	)

	proto.RegisterStorefrontServer(grpcServer, h)

	lis, err := net.Listen("tcp", ":"+a.cfg.GRPC.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on port %s: %w", a.cfg.GRPC.Port, err)
	}

	return grpcServer, lis, nil
}

func (a *App) runServerWithGracefulShutdown(grpcServer *grpc.Server, lis net.Listener) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("Starting gRPC server", "port", a.cfg.GRPC.Port)
		serverErrors <- grpcServer.Serve(lis)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		a.logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shutdownComplete := make(chan struct{})

		go func() {
			grpcServer.GracefulStop()
			close(shutdownComplete)
		}()

		select {
		case <-shutdownComplete:
			a.logger.Info("Graceful shutdown completed")
		case <-ctx.Done():
			a.logger.Warn("Graceful shutdown timeout, forcing stop")
			grpcServer.Stop()
		}

		return nil
	}
}

func (a *App) loggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			a.logger.Warn("gRPC call failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
		} else {
			a.logger.Debug("gRPC call completed", "method", info.FullMethod, "duration", time.Since(start))
		}
		return resp, err
	}
}
