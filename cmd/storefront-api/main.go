// Command storefront-api serves the catalog, order and statistics API over
// HTTP, plus a gRPC health service.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/MikeMC777/storefront-api/internal/clock"
	"github.com/MikeMC777/storefront-api/internal/config"
	"github.com/MikeMC777/storefront-api/internal/events"
	"github.com/MikeMC777/storefront-api/internal/health"
	"github.com/MikeMC777/storefront-api/internal/logging"
	"github.com/MikeMC777/storefront-api/internal/metrics"
	ord "github.com/MikeMC777/storefront-api/internal/order"
	prod "github.com/MikeMC777/storefront-api/internal/product"
	"github.com/MikeMC777/storefront-api/internal/stats"
	"github.com/MikeMC777/storefront-api/internal/store"
)

// @title       Storefront API
// @version     1.0
// @description Catalog, orders and statistics.
// @BasePath    /
func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(
			config.Load,
			func(cfg config.Config) logging.Config { return cfg.Logging() },
			logging.New,
			func() clock.Clock { return clock.Real{} },
			newStorage,
			newPublisher,
			newServices,
			newEngine,
		),
		fx.Invoke(runHTTP, runGRPCHealth, watchConfig),
	).Run()
}

type storage struct {
	Products prod.Repository
	Orders   ord.Repository
	Pinger   health.Pinger
}

func newStorage(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (storage, error) {
	if cfg.StoreDriver == store.DriverMemory {
		log.Warn("using in-memory store; data is lost on exit")
		return storage{
			Products: prod.NewMemRepo(),
			Orders:   ord.NewMemRepo(),
			Pinger:   health.AlwaysUp,
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return storage{}, err
	}
	if err := store.Migrate(pool); err != nil {
		pool.Close()
		return storage{}, err
	}
	log.Info("connected to postgres, migrations applied")

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return storage{
		Products: prod.NewPGRepo(pool, cfg.StoreQueryTimeout),
		Orders:   ord.NewPGRepo(pool, cfg.StoreQueryTimeout),
		Pinger:   pool,
	}, nil
}

func newPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}, nil
	}
	p, err := events.NewKafkaProducer(cfg.KafkaBrokers, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return p.Close() },
	})
	return p, nil
}

type services struct {
	fx.Out

	Products *prod.Service
	Orders   *ord.Service
	Stats    *stats.Service
	Probe    *health.Probe
	Metrics  *metrics.Metrics
}

func newServices(st storage, clk clock.Clock, pub events.Publisher, log *zap.Logger) services {
	ps := prod.NewService(st.Products, clk, log)
	osvc := ord.NewService(st.Orders, st.Products, clk, pub, log)
	ss := stats.NewService(ps, osvc)
	return services{
		Products: ps,
		Orders:   osvc,
		Stats:    ss,
		Probe:    health.NewProbe(st.Pinger, 2*time.Second),
		Metrics:  metrics.New(ss, time.Now(), log),
	}
}

type engineParams struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Products *prod.Service
	Orders   *ord.Service
	Stats    *stats.Service
	Probe    *health.Probe
	Metrics  *metrics.Metrics
}

func newEngine(p engineParams) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return newRouter(deps{
		Products: p.Products,
		Orders:   p.Orders,
		Stats:    p.Stats,
		Probe:    p.Probe,
		Metrics:  p.Metrics,
		Log:      p.Log,
		Service:  p.Config.ServiceName,
		Version:  p.Config.ServiceVersion,
	})
}

func runHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return err
			}
			log.Info("http listening", zap.String("addr", l.Addr().String()))
			go func() {
				if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http serve", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
			log.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
	})
}

func runGRPCHealth(lc fx.Lifecycle, cfg config.Config, probe *health.Probe, log *zap.Logger) {
	if cfg.GRPCAddr == "" {
		return
	}
	srv := health.NewGRPCServer(cfg.ServiceName, probe, cfg.HealthInterval, log)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			srv.Start(l)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
			srv.Stop(ctx)
			return nil
		},
	})
}

func watchConfig(cfg config.Config, level zap.AtomicLevel, log *zap.Logger) {
	if cfg.WatchLogLevel(level, log) {
		log.Info("watching config file", zap.String("file", cfg.ConfigFile))
	}
}
