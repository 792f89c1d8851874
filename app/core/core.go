package core

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/civitas-ai/civitas-ai/app/statemanager"
	"github.com/civitas-ai/civitas-ai/app/store/sqlstore"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type Core struct {
	cfg CoreConfig

	stores       func() *sqlstore.Provider
	cache        types.Cache
	fileStorage  FileStorage
	stateManager *statemanager.StateManager

	httpClient *http.Client
	httpEngine *gin.Engine

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("civitas", "core"),
		httpEngine: gin.New(),
	}

	setupSqlStore(core)
	setupCache(core)
	setupFileStorage(core)

	core.stateManager = statemanager.New(core.Store().TrafficCopStateStore(), core.cache)

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

// ServiceName is the service identity stamped on platform telemetry
// records this process emits about itself.
func (s *Core) ServiceName() string {
	if s.cfg.ServiceName == "" {
		return "data-infrastructure"
	}
	return s.cfg.ServiceName
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Cache() types.Cache {
	return s.cache
}

func (s *Core) FileStorage() FileStorage {
	return s.fileStorage
}

func (s *Core) StateManager() *statemanager.StateManager {
	return s.stateManager
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}
