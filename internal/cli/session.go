package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sas-panel/internal/cache"
	"sas-panel/internal/channel"
	"sas-panel/internal/client"
	"sas-panel/internal/common/config"
	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/common/observability"
)

// session is everything one command needs to talk to the backend.
type session struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	prompt *prompter

	obs     *observability.Observability
	rdb     *redis.Client
	metrics *http.Server
	client  *client.Client
}

// loadConfig reads --config or the default search path and applies the
// connection flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err.Error())
	}

	if v, _ := cmd.Flags().GetString("url"); v != "" {
		cfg.Channel.URL = v
	}
	if v, _ := cmd.Flags().GetString("username"); v != "" {
		cfg.Credentials.Username = v
	}
	if v, _ := cmd.Flags().GetString("password"); v != "" {
		cfg.Credentials.Password = v
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		cfg.Channel.RequestTimeout = int(d / time.Millisecond)
	}
	return cfg, nil
}

// openSession loads config, connects and returns a ready client. The caller
// must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	s := &session{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog),
		prompt: newPrompter(cmd),
	}

	if err := s.connect(cmd); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) connect(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := s.cfg

	if cfg.Metrics.Listen != "" {
		s.serveMetrics(cfg.Metrics.Listen)
	}

	s.obs = observability.New(observability.Options{
		ServiceName: cfg.App.Name,
		Tracing:     cfg.Tracing.Enabled,
		SampleRatio: cfg.Tracing.SampleRatio,
		Logger:      s.log,
	})

	var results client.ResultCache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); cfg.Cache.Enabled && !noCache {
		rc, rdb, err := cache.FromConfig(ctx, cfg.Cache)
		if err != nil {
			s.log.Warn("result cache disabled", map[string]interface{}{"error": err})
		} else {
			s.rdb = rdb
			results = rc
		}
	}

	if cfg.Credentials.Username == "" {
		user, err := s.prompt.line("Username: ")
		if err != nil {
			return err
		}
		cfg.Credentials.Username = user
	}
	if cfg.Credentials.Password == "" {
		pw, err := s.prompt.secret("Password: ")
		if err != nil {
			return err
		}
		cfg.Credentials.Password = pw
	}

	ws, err := channel.Dial(ctx, cfg.Channel.GetURL(), channel.SettingsFromConfig(cfg.Channel), s.log)
	if err != nil {
		return err
	}

	s.client = client.New(ws, client.Options{
		Timeout:       config.GetDuration(cfg.Channel.RequestTimeout),
		Credential:    client.Credential{Username: cfg.Credentials.Username, Password: cfg.Credentials.Password},
		Logger:        s.log,
		Cache:         results,
		Observability: s.obs,
	})
	return nil
}

func (s *session) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		s.log.Info("metrics server listening", map[string]interface{}{"addr": addr})
		if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server failed", map[string]interface{}{"error": err})
		}
	}()
}

func (s *session) Close() {
	if s.client != nil {
		_ = s.client.Close()
		<-s.client.Done()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.metrics.Shutdown(ctx)
		cancel()
	}
	s.obs.Shutdown()
	_ = s.zapLog.Sync()
}
