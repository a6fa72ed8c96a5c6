package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"garthbid/internal/config"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/banker"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/infrastructure/metrics"
	"garthbid/internal/infrastructure/mockdata"
	"garthbid/internal/infrastructure/snapshot"
	"garthbid/internal/server"
	"garthbid/pkg/application/connectors"
	"garthbid/pkg/application/modules"
	"garthbid/pkg/contextx"
	"garthbid/pkg/logx"
	"garthbid/pkg/middlewarex"
)

const httpServerReadHeaderTimeout = 5 * time.Second

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Application держит собранные сервисы и HTTP обработчик.
type Application struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	deals   *dealflow.Service
	console *banker.Console
	handler http.Handler
	ready   atomic.Bool
	closers []func(context.Context)
}

// New собирает сервисы по конфигу. Часы передаются снаружи, чтобы тесты
// управляли таймерами и недельной блокировкой.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, clk clock.Clock) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
	}

	store, err := app.snapshotStore(ctx)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	now := clk.Now()

	app.deals = dealflow.NewService(dealflow.NewStore(), clk).
		WithFeeRate(cfg.DealFlow.FeeRate).
		WithPaymentWindow(cfg.DealFlow.PaymentWindow).
		WithTimerInterval(cfg.DealFlow.TimerInterval).
		WithMetrics(app.metrics)

	if cfg.DealFlow.SeedMockData {
		if err = mockdata.SeedDeals(ctx, app.deals, now); err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("mockdata.SeedDeals: %w", err)
		}
	}

	if app.console, err = app.newConsole(ctx, clk, store); err != nil {
		app.Close(ctx)
		return nil, err
	}

	srv := server.NewServer(
		server.NewDealServer(app.deals),
		server.NewBankerServer(app.console).WithStreamInterval(cfg.DealFlow.TimerInterval),
	)

	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger(log),
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
	)
	srv.RegisterRoutes(r)

	app.handler = r
	app.ready.Store(true)

	return app, nil
}

func (a *Application) snapshotStore(ctx context.Context) (banker.SnapshotStore, error) {
	if a.cfg.Redis.Address == "" {
		logger(ctx).Info("banker snapshots kept in memory")
		return snapshot.NewMemory(), nil
	}

	rds := &connectors.Redis{
		Username:           a.cfg.Redis.Username,
		Password:           a.cfg.Redis.Password,
		Address:            a.cfg.Redis.Address,
		DatabaseNumber:     a.cfg.Redis.DB,
		PoolSize:           a.cfg.Redis.PoolSize,
		MinIdleConnections: a.cfg.Redis.MinIdleConns,
		MaxIdleConnections: a.cfg.Redis.MaxIdleConns,
	}
	a.closers = append(a.closers, rds.Close)

	client, err := rds.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("rds.Client: %w", err)
	}

	return snapshot.NewRedis(client).WithTTL(a.cfg.Redis.SnapshotTTL), nil
}

func (a *Application) newConsole(ctx context.Context, clk clock.Clock, store banker.SnapshotStore) (*banker.Console, error) {
	weekday, err := a.cfg.Banker.Weekday()
	if err != nil {
		return nil, err
	}

	loc, err := a.cfg.Banker.Location()
	if err != nil {
		return nil, err
	}

	var items []entity.BankerItem
	if a.cfg.Banker.SeedMockData {
		items = mockdata.BankerItems(clk.Now())
	}

	console := banker.NewConsole(items, clk, banker.NewLockClock(weekday, a.cfg.Banker.LockHour, loc, a.cfg.Banker.LockOverride)).
		WithSelector(banker.NewCompetitionSelector(a.cfg.Banker.CompetingCacheTTL)).
		WithMetrics(a.metrics).
		WithSnapshots(store).
		WithNudgeStep(a.cfg.Banker.NudgeStep)

	if err = console.SetTemplate(ctx, a.cfg.Banker.DefaultTemplate); err != nil {
		return nil, fmt.Errorf("console.SetTemplate: %w", err)
	}

	restored, err := console.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("console.Restore: %w", err)
	}

	logger(ctx).Info("banker console ready",
		slog.Int("items", len(items)),
		slog.Bool("restored", restored),
		slog.Bool("locked", console.IsLocked()),
	)

	return console, nil
}

func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) Ready() bool {
	return a.ready.Load()
}

func (a *Application) Close(ctx context.Context) {
	a.ready.Store(false)

	for _, closeFn := range a.closers {
		closeFn(ctx)
	}
}

// Run обслуживает API, пробы и метрики до отмены ctx.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close(context.WithoutCancel(ctx))

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, &http.Server{
		//nolint:exhaustruct
		Addr:              a.cfg.HTTP.ListenAddress,
		Handler:           a.handler,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          a.cfg.App.Name,
		Version:       a.cfg.App.Version,
		ListenAddress: a.cfg.Probe.ListenAddress,
		Ready:         a.Ready,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: a.cfg.Metrics.ListenAddress,
		Gatherer:      a.metrics.Registry(),
	}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

// Run собирает приложение с системными часами и блокируется до отмены ctx.
func Run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx = contextx.WithLogger(ctx, log)

	app, err := New(ctx, cfg, log, clock.New())
	if err != nil {
		return fmt.Errorf("application.New: %w", err)
	}

	logger(ctx).Info("application started",
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
	)

	return app.Run(ctx)
}
