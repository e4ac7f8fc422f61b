package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/voxgate/voxgate/api/cmd/build/all"
	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mux"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/jobbus/stores/jobdb"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/domain/keybus/stores/keycache"
	"github.com/voxgate/voxgate/business/domain/keybus/stores/keydb"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/domain/usagebus/stores/usagedb"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/domain/userbus/stores/usercache"
	"github.com/voxgate/voxgate/business/domain/userbus/stores/userdb"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/domain/voicebus/stores/voicedb"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/sdk/throttle"
	"github.com/voxgate/voxgate/foundation/keystore"
	"github.com/voxgate/voxgate/foundation/logger"
	"github.com/voxgate/voxgate/foundation/mlclient"
	"github.com/voxgate/voxgate/foundation/otel"
)

var build = "develop"

type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"90s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"foundation/zarf/keys"`
		Issuer     string `envconfig:"AUTH_ISSUER" default:"https://voxgate.io/auth/"`
		ActiveKID  string `envconfig:"AUTH_ACTIVE_KID" default:""`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"voxgate"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	ML struct {
		TTSHost    string        `envconfig:"ML_TTS_HOST" default:"http://localhost:8001"`
		STTHost    string        `envconfig:"ML_STT_HOST" default:"http://localhost:8002"`
		Timeout    time.Duration `envconfig:"ML_TIMEOUT" default:"60s"`
		BatchLimit int           `envconfig:"ML_BATCH_LIMIT" default:"4"`
	}
	RateLimit struct {
		Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
		Limit  int           `envconfig:"RATE_LIMIT_DEFAULT" default:"60"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:"tempo:4317"`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"VOXGATE"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
		Enabled     bool    `envconfig:"TEMPO_ENABLED" default:"false"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "VOXGATE", otel.GetTraceID, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "VOXGATE"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	log.Info(ctx, "startup", "version", cfg.Version)
	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	// -------------------------------------------------------------------------
	// Auth Support

	log.Info(ctx, "startup", "status", "initializing authentication support")

	ks := keystore.New()

	kids, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}
	if len(kids) == 0 {
		return fmt.Errorf("no signing keys found in %q", cfg.Auth.KeysFolder)
	}

	activeKID := cfg.Auth.ActiveKID
	if activeKID == "" {
		activeKID = kids[0]
	}

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
		Enabled:     cfg.Tempo.Enabled,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Inference Services

	log.Info(ctx, "startup", "status", "initializing inference clients",
		"tts", cfg.ML.TTSHost, "stt", cfg.ML.STTHost)

	ml := mlclient.New(mlclient.Config{
		Log:     log,
		TTSHost: cfg.ML.TTSHost,
		STTHost: cfg.ML.STTHost,
		Timeout: cfg.ML.Timeout,
	})

	// -------------------------------------------------------------------------
	// Rate Limiting

	limiter := throttle.New(throttle.Config{
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.Limit,
	})

	go func() {
		ticker := time.NewTicker(cfg.RateLimit.Window)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Sweep()
		}
	}()

	// -------------------------------------------------------------------------
	// Business Domains

	log.Info(ctx, "startup", "status", "initializing business domains")

	userBus := userbus.NewCore(usercache.NewStore(log, userdb.NewStore(log, db), 5*time.Minute))
	keyBus := keybus.NewCore(log, keycache.NewStore(log, keydb.NewStore(log, db), time.Minute))
	usageBus := usagebus.NewCore(usagedb.NewStore(log, db))
	jobBus := jobbus.NewCore(log, jobdb.NewStore(log, db), usageBus, ml, cfg.ML.BatchLimit)
	voiceBus := voicebus.NewCore(voicedb.NewStore(log, db))

	authClient := auth.New(auth.Config{
		Log:       log,
		UserBus:   userBus,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
		ActiveKID: activeKID,
	})

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:    cfg.Version.Build,
		Log:      log,
		DB:       db,
		Tracer:   tracer,
		Limiter:  limiter,
		MLClient: ml,
		BusConfig: mux.BusConfig{
			KeyBus:   keyBus,
			JobBus:   jobBus,
			UsageBus: usageBus,
			VoiceBus: voiceBus,
		},
		AuthConfig: mux.AuthConfig{
			Auth: authClient,
		},
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
