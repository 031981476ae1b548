package main

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/dew-go/internal/core/service"
	"github.com/yndnr/dew-go/internal/infra/buildinfo"
	"github.com/yndnr/dew-go/internal/infra/confloader"
	"github.com/yndnr/dew-go/internal/infra/shutdown"
	"github.com/yndnr/dew-go/internal/infra/tlsroots"
	"github.com/yndnr/dew-go/internal/server/config"
	"github.com/yndnr/dew-go/internal/server/httpserver"
	"github.com/yndnr/dew-go/internal/server/httpserver/handler"
	"github.com/yndnr/dew-go/internal/server/localserver"
	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
	"github.com/yndnr/dew-go/internal/telemetry/logger"
	"github.com/yndnr/dew-go/internal/telemetry/metric"
)

const (
	shutdownTimeout = 30 * time.Second

	// generatedKeyLength is the size of keys printed by -genkey.
	generatedKeyLength = 32
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		genKey      = flag.Bool("genkey", false, "Print a random hex security.encryption_key and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("dew-server %s\n", buildinfo.String())
		return nil
	}
	if *genKey {
		return writeKey(os.Stdout)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	build := buildinfo.Get()
	log.Info("starting dew-server",
		"version", build.Version,
		"commit", build.Commit,
		"go", build.GoVersion,
		"config", *configFile)

	engine, err := initStorage(cfg, slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// A corrupt snapshot must stop startup rather than serve an empty list
	// that would overwrite it on the next flush.
	if err := engine.Recover(context.Background()); err != nil {
		return fmt.Errorf("storage recovery: %w", err)
	}
	engine.Start()

	metrics := metric.Global()
	if err := metrics.Register(metric.NewCollector(storeStats(engine))); err != nil {
		engine.Close()
		return fmt.Errorf("register metrics: %w", err)
	}

	todos := service.NewTodoService(engine,
		service.WithLogger(slogLogger),
		service.WithMetrics(metrics))

	instanceID := ulid.Make().String()
	api := handler.New(handler.Config{
		Todos:      todos,
		Admin:      engine,
		InstanceID: instanceID,
		Settings:   config.Sanitize(cfg),
		Logger:     slogLogger,
	})

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		API:                api,
		MetricsHandler:     metrics.Handler(),
		Recorder:           metrics,
		Logger:             slogLogger,
		RateLimit:          cfg.Server.RateLimit,
		RateBurst:          cfg.Server.RateBurst,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		EnableAudit:        cfg.Server.AuditLog,
	})

	certs, err := initTLS(cfg, slogLogger)
	if err != nil {
		engine.Close()
		return fmt.Errorf("init tls: %w", err)
	}

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, certs.serverConfig())
	ln, err := httpServer.Listen()
	if err != nil {
		certs.stop()
		engine.Close()
		return fmt.Errorf("listen on %s: %w", cfg.Server.HTTP.Addr, err)
	}

	var local *localserver.Server
	var localLn net.Listener
	if path := cfg.Server.Local.SocketPath; path != "" {
		local = localserver.New(path, router)
		if localLn, err = local.Listen(); err != nil {
			ln.Close()
			certs.stop()
			engine.Close()
			return err
		}
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogLogger))

	// Hooks run in reverse order: listeners first, then watchers, then the
	// engine so its final snapshot sees every accepted mutation.
	shutdownHandler.OnShutdown("storage", func(ctx context.Context) error {
		return engine.Close()
	})

	cfgWatcher := watchConfig(*configFile, slogLogger)
	shutdownHandler.OnShutdown("watchers", func(ctx context.Context) error {
		certs.stop()
		if cfgWatcher != nil {
			return cfgWatcher.Stop()
		}
		return nil
	})

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		return httpServer.Shutdown(ctx)
	})

	if local != nil {
		shutdownHandler.OnShutdown("local socket", func(ctx context.Context) error {
			return local.Shutdown(ctx)
		})
		go serve(local, localLn, log, shutdownHandler)
		log.Info("local socket listening", "path", local.Path())
	}

	go serve(httpServer, ln, log, shutdownHandler)

	log.Info("server started",
		"addr", ln.Addr().String(),
		"tls", httpServer.TLS(),
		"instance", instanceID)

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

type server interface {
	Serve(ln net.Listener) error
}

// serve runs srv on ln and starts a shutdown if it fails.
func serve(srv server, ln net.Listener, log logger.Logger, sh *shutdown.Handler) {
	if err := srv.Serve(ln); err != nil {
		log.Error("server error", "addr", ln.Addr().String(), "error", err)
		sh.Trigger()
	}
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initStorage creates the storage engine.
func initStorage(cfg *config.ServerConfig, log *slog.Logger) (*storage.Engine, error) {
	storageCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	storageCfg.Logger = log
	return storage.New(storageCfg)
}

// storeStats adapts engine stats for the metrics collector.
func storeStats(engine *storage.Engine) func() metric.StoreStats {
	return func() metric.StoreStats {
		s := engine.Stats()
		return metric.StoreStats{
			Todos:            s.Todos,
			Generation:       s.Generation,
			SnapshotWrites:   s.SnapshotWrites,
			SnapshotFailures: s.SnapshotFailures,
			LastSnapshotAt:   s.LastSnapshotAt,
		}
	}
}

// certSource holds the hot-reloading certificate, if TLS is on.
type certSource struct {
	watcher *tlsroots.Watcher
}

func initTLS(cfg *config.ServerConfig, log *slog.Logger) (*certSource, error) {
	if !cfg.Server.HTTP.TLSEnabled() {
		return &certSource{}, nil
	}
	w, err := tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
		tlsroots.WithLogger(log))
	if err != nil {
		return nil, err
	}
	w.StartAsync()
	return &certSource{watcher: w}, nil
}

func (c *certSource) serverConfig() *tls.Config {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.ServerTLSConfig()
}

func (c *certSource) stop() {
	if c.watcher != nil {
		c.watcher.Stop()
	}
}

// watchConfig reloads log.level when the config file changes. Other
// settings need a restart. Returns nil when there is no file to watch.
func watchConfig(configFile string, log *slog.Logger) *confloader.Watcher {
	if configFile == "" {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(configFile); err != nil {
		log.Warn("config watcher unavailable", "error", err)
		w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w
}

// writeKey prints a new snapshot encryption key in the hex form
// security.encryption_key expects.
func writeKey(w io.Writer) error {
	key, err := snapshot.GenerateKey(generatedKeyLength)
	if err != nil {
		return err
	}
	defer snapshot.ZeroKey(key)

	_, err = fmt.Fprintln(w, hex.EncodeToString(key))
	return err
}
