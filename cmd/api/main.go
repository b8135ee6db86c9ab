package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/memory"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/document"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/sqlite"
	activityService "github.com/cmlabs-hris/hris-dataflow-go/internal/service/activity"
	dataflowService "github.com/cmlabs-hris/hris-dataflow-go/internal/service/dataflow"
	notificationService "github.com/cmlabs-hris/hris-dataflow-go/internal/service/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/service/realtime"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Output: "stdout"})
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close document store", zap.Error(err))
		}
		if db != nil {
			db.Close()
		}
	}()

	m := metrics.New()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewProducer(events.Config{
			Brokers:   cfg.Kafka.Brokers,
			Topic:     cfg.Kafka.Topic,
			QueueSize: cfg.Kafka.QueueSize,
		}, log, m)
		log.Info("activity events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	repos := document.NewRepositories(store)

	notifications := notificationService.NewNotificationService(repos.Notifications, repos.Profiles, m, log, notificationService.Config{
		MaxRetries:    cfg.Notification.MaxRetries,
		RetryInterval: cfg.Notification.RetryInterval,
	})
	recorder := activityService.NewRecorder(repos.Activities, publisher, m, log)
	dataflowSvc := dataflowService.NewDataFlowService(dataflowService.Dependencies{
		Transactor:      store,
		Profiles:        repos.Profiles,
		LeaveTypes:      repos.LeaveTypes,
		LeaveRequests:   repos.LeaveRequests,
		LeaveBalances:   repos.LeaveBalances,
		Policies:        repos.Policies,
		Acknowledgments: repos.Acknowledgments,
		Meetings:        repos.Meetings,
		Notifications:   notifications,
		Activity:        recorder,
		Metrics:         m,
		Logger:          log,
	})
	realtimeManager := realtime.NewManager(realtime.Dependencies{
		Profiles:      repos.Profiles,
		LeaveRequests: repos.LeaveRequests,
		Policies:      repos.Policies,
		Notifications: repos.Notifications,
		Audience:      notifications,
		Metrics:       m,
		Logger:        log,
	})
	defer realtimeManager.Close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
	}, JWTService, appHTTP.Handlers{
		Profile:      appHTTP.NewProfileHandler(dataflowSvc, log),
		Leave:        appHTTP.NewLeaveHandler(dataflowSvc, log),
		Policy:       appHTTP.NewPolicyHandler(dataflowSvc, log),
		Meeting:      appHTTP.NewMeetingHandler(dataflowSvc, log),
		Notification: appHTTP.NewNotificationHandler(dataflowSvc, log),
		Activity:     appHTTP.NewActivityHandler(dataflowSvc),
		Stream:       appHTTP.NewStreamHandler(realtimeManager, JWTService, log),
		Metrics:      m.Handler(),
	})

	scheduler := cron.NewScheduler(log)
	if cfg.Accrual.Enabled {
		cron.NewLeaveJobs(dataflowSvc, cfg.Accrual.Interval, log).RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// streams hang off baseCtx so shutdown can end them
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		log.Info("server running", zap.String("addr", server.Addr), zap.String("store", cfg.Store.Driver), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	waitForShutdown(server, cancelStreams, log)
}

// openStore returns the configured document store. db is non-nil only for
// the postgres driver and must be closed after the store.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (docstore.Store, *database.DB, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		store := postgresql.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, db, nil
	case config.StoreSQLite:
		store, err := sqlite.NewStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		log.Warn("using in-memory document store; data is lost on restart")
		return memory.New(), nil, nil
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM, then ends open
// streams before draining the server.
func waitForShutdown(server *http.Server, cancelStreams context.CancelFunc, log *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	cancelStreams()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
