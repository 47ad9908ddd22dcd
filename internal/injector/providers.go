package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/jitterball/internal/config"
	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/observability/metrics"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/scene"
	"github.com/zeusync/jitterball/internal/telemetry"
	"github.com/zeusync/jitterball/internal/view"
)

// App is the fully wired demo host.
type App struct {
	Config    config.Config
	Logger    *log.Logger
	Bus       bus.EventBus
	Scene     *scene.Scene
	Metrics   *metrics.Metrics
	Scheduler *perturb.Scheduler
	View      *view.View
	// Telemetry is nil when disabled in the config.
	Telemetry *telemetry.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideScene,
	ProvideMetrics,
	ProvideScheduler,
	ProvideView,
	ProvideTelemetry,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	lc, err := cfg.Log.ToLogger()
	if err != nil {
		return nil, err
	}
	return log.New(lc)
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideScene(cfg config.Config, logger *log.Logger, eb bus.EventBus) (*scene.Scene, error) {
	return scene.New(cfg.Scene.ToScene(), scene.WithLogger(logger), scene.WithPublisher(eb))
}

func ProvideMetrics(cfg config.Config, sc *scene.Scene, eb bus.EventBus) (*metrics.Metrics, error) {
	m := metrics.New(cfg.Telemetry.IncludeRuntime)
	if err := m.WatchScene(sc); err != nil {
		return nil, fmt.Errorf("register scene metrics: %w", err)
	}
	m.WatchBus(eb)
	return m, nil
}

func ProvideScheduler(cfg config.Config, logger *log.Logger, eb bus.EventBus, m *metrics.Metrics) (*perturb.Scheduler, error) {
	return perturb.New(cfg.Perturb.ToScheduler(),
		perturb.WithSource(cfg.Perturb.Source()),
		perturb.WithLogger(logger),
		perturb.WithPublisher(eb),
		perturb.WithObserver(m),
	)
}

func ProvideView(cfg config.Config, sc *scene.Scene, scheduler *perturb.Scheduler, logger *log.Logger, eb bus.EventBus) (*view.View, error) {
	sphere, err := cfg.Sphere.Entity()
	if err != nil {
		return nil, err
	}
	return view.New(sphere, cfg.Scene.FrameInterval, sc, scheduler,
		view.WithLogger(logger),
		view.WithPublisher(eb),
	)
}

func ProvideTelemetry(cfg config.Config, sc *scene.Scene, eb bus.EventBus, m *metrics.Metrics, logger *log.Logger) (*telemetry.Server, error) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}
	return telemetry.NewServer(cfg.Telemetry.ToServer(), sc, eb, m.Handler(), logger)
}
