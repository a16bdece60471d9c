// cmd/sas-stub/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sas-panel/internal/channel"
	"sas-panel/internal/common/config"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/stubserver"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	latency := flag.Duration("latency", 0, "Delay every reply by this much")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}

	zapLog := logger.New("info", "console")
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	stub, err := stubserver.New(stubserver.Options{
		Username: cfg.Stub.Username,
		Password: cfg.Stub.Password,
		Timezone: cfg.Stub.Timezone,
		Channel:  channel.SettingsFromConfig(cfg.Channel),
		Latency:  *latency,
		Logger:   log,
	})
	if err != nil {
		zapLog.Fatal("stub init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stub.ListenAndServe(ctx, cfg.Stub.Listen); err != nil {
		zapLog.Error("stub server failed", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("stub server stopped")
}
