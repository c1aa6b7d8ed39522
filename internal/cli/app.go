package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pos-agent/config"
	"github.com/fekuna/omnipos-pos-agent/internal/auth"
	"github.com/fekuna/omnipos-pos-agent/internal/category"
	catRepoPkg "github.com/fekuna/omnipos-pos-agent/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-pos-agent/internal/category/usecase"
	"github.com/fekuna/omnipos-pos-agent/internal/connectivity"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-pos-agent/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-pos-agent/internal/product/usecase"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/fekuna/omnipos-pos-agent/internal/remote/grpcsink"
	"github.com/fekuna/omnipos-pos-agent/internal/remote/kafkasink"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/fekuna/omnipos-pos-agent/internal/store/bolt"
	"github.com/fekuna/omnipos-pos-agent/internal/store/sqlite"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction"
	txRepoPkg "github.com/fekuna/omnipos-pos-agent/internal/transaction/repository"
	txUCPkg "github.com/fekuna/omnipos-pos-agent/internal/transaction/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const probeInterval = 5 * time.Second

// app holds the local side of the agent: store, repositories and use cases.
type app struct {
	cfg    *config.Config
	logger logger.ZapLogger
	store  store.Store

	products     product.UseCase
	categories   category.UseCase
	transactions transaction.UseCase
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		Filename:          cfg.Logger.Filename,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	return logger.NewZapLogger(logConfig)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "bolt", "":
		return bolt.Open(cfg.Path, cfg.OpenTimeout)
	case "sqlite":
		return sqlite.Open(ctx, cfg.Path, cfg.OpenTimeout)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openApp(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*app, error) {
	taxRate, err := decimal.NewFromString(cfg.Sync.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_TAX_RATE %q: %w", cfg.Sync.TaxRate, err)
	}
	ids, err := idgen.New(cfg.Terminal.NodeID)
	if err != nil {
		return nil, err
	}

	s, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	log.Debug("local store opened", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))

	prodRepo := prodRepoPkg.NewStoreRepository(s)
	catRepo := catRepoPkg.NewStoreRepository(s)
	txRepo := txRepoPkg.NewStoreRepository(s)

	return &app{
		cfg:          cfg,
		logger:       log,
		store:        s,
		products:     prodUCPkg.NewProductUseCase(prodRepo, ids, log),
		categories:   catUCPkg.NewCategoryUseCase(catRepo, prodRepo, ids, log),
		transactions: txUCPkg.NewTransactionUseCase(txRepo, prodRepo, ids, taxRate, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) terminal() auth.Terminal {
	return auth.Terminal{
		MerchantID: a.cfg.Terminal.MerchantID,
		StoreID:    a.cfg.Terminal.StoreID,
	}
}

// remoteSide is the configured sink plus the monitor that watches it.
type remoteSide struct {
	sink    remote.Sink
	monitor connectivity.Monitor
	// run keeps the monitor up to date until ctx is done.
	run   func(ctx context.Context)
	close func() error
}

func (a *app) openRemote() (*remoteSide, error) {
	switch a.cfg.Sync.Sink {
	case "grpc", "":
		conn, err := grpc.NewClient(a.cfg.Remote.GRPCTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("failed to create grpc client for %s: %w", a.cfg.Remote.GRPCTarget, err)
		}
		monitor := connectivity.NewGRPCMonitor(conn, a.logger)
		return &remoteSide{
			sink:    grpcsink.New(conn, a.terminal(), a.logger),
			monitor: monitor,
			run:     monitor.Run,
			close:   conn.Close,
		}, nil
	case "kafka":
		writer := kafkasink.NewWriter(&kafkasink.Config{
			Brokers: a.cfg.Kafka.Brokers,
			Topic:   a.cfg.Kafka.Topic,
		})
		monitor := connectivity.NewProbeMonitor(kafkasink.Probe(a.cfg.Kafka.Brokers), probeInterval, a.logger)
		return &remoteSide{
			sink:    kafkasink.New(writer, a.cfg.Kafka.Topic, a.terminal(), a.logger),
			monitor: monitor,
			run:     monitor.Run,
			close:   writer.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown sync sink %q", a.cfg.Sync.Sink)
	}
}
