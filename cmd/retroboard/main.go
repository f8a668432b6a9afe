package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/handler"
	"github.com/goevery/retroboard/internal/metrics"
	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/persistence/mongodb"
	"github.com/goevery/retroboard/internal/persistence/sqlite"
	"github.com/goevery/retroboard/internal/server"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	logger          *zap.Logger
	settings        Settings
	engine          persistence.Engine
	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer
}

func NewApp(logger *zap.Logger, settings Settings, engine persistence.Engine) *App {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(promRegistry)

	originChecker := server.NewOriginChecker(settings.AllowedOriginList())
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	registry := broadcaster.NewInMemoryRegistry(logger, appMetrics)
	deliveryRouter := broadcaster.NewRouter(logger, appMetrics, registry)
	notifier := broadcaster.NewNotifier(logger, deliveryRouter)

	idValidator := handler.NewIdValidator()
	identityResolver := handler.NewIdentityResolver(engine)
	writeMu := &sync.Mutex{}

	joinHandler := handler.NewJoinHandler(idValidator, registry, deliveryRouter)
	leaveHandler := handler.NewLeaveHandler(idValidator, registry)
	userHandler := handler.NewUserHandler(engine, writeMu)
	retrospectiveHandler := handler.NewRetrospectiveHandler(idValidator, engine, identityResolver, notifier, writeMu)
	noteHandler := handler.NewNoteHandler(idValidator, engine, identityResolver, notifier, writeMu)

	router := server.NewRouter(
		logger,
		appMetrics,
		joinHandler,
		leaveHandler,
	)

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		registry,
		router,
		settings.SendBufferSize,
		int64(settings.ReadLimit),
	)
	restServer := server.NewRESTServer(
		logger,
		promRegistry,
		userHandler,
		retrospectiveHandler,
		noteHandler,
	)

	return &App{
		logger,
		settings,
		engine,
		websocketServer,
		restServer,
	}
}

func (a *App) setup(ctx context.Context) error {
	err := a.engine.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setup persistence engine: %w", err)
	}

	a.startHttpServer(ctx)

	return nil
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter()
	if a.settings.BasePath != "" {
		router = router.PathPrefix(a.settings.BasePath).Subrouter()
	}

	a.websocketServer.Register(router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address),
		zap.String("storeDriver", a.settings.StoreDriver))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	err = a.engine.Close(shutdownCtx)
	if err != nil {
		a.logger.Error("failed to close persistence engine",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func openEngine(settings Settings) (persistence.Engine, error) {
	switch settings.StoreDriver {
	case StoreDriverSQLite:
		return sqlite.Open(settings.SQLitePath)
	case StoreDriverMongoDB:
		return mongodb.Connect(settings.MongoDBURI, settings.MongoDBDatabase)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", settings.StoreDriver)
	}
}

func main() {
	ctx := context.Background()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to parse settings from environment", zap.Error(err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	engine, err := openEngine(settings)
	if err != nil {
		logger.Fatal("failed to open persistence engine", zap.Error(err))
	}

	app := NewApp(logger, settings, engine)

	err = app.setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
}
