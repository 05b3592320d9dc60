package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canary-bot/internal/ai"
	"canary-bot/internal/analytics"
	"canary-bot/internal/bot"
	"canary-bot/internal/config"
	"canary-bot/internal/guild"
	"canary-bot/internal/metrics"
	"canary-bot/internal/modules/audit"
	"canary-bot/internal/modules/automod"
	"canary-bot/internal/modules/discipline"
	"canary-bot/internal/modules/economy"
	"canary-bot/internal/modules/marriage"
	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	storage.SetLegacyLocation(cfg.Location())
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("storage init failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer backend.Close()
	backend = metrics.InstrumentBackend(backend)

	files := cfg.Storage.Files
	rules, err := automod.NewSettingsStore(ctx, backend, files.Settings, logger)
	if err != nil {
		logger.Fatal("automod settings failed", zap.Error(err))
	}
	auditLogger := audit.NewLogger(backend, files.StaffLogs, cfg.Staff.AuditLogCap, logger)

	services := bot.Services{
		Guilds:     guild.NewStore(backend, files.Guilds, logger),
		Rules:      rules,
		Automod:    automod.NewEngine(rules, cfg.Automod, logger),
		Discipline: discipline.New(backend, files.Warns, files.Mutes, logger),
		Economy:    economy.New(backend, files.Coins, cfg.Economy, cfg.Location(), logger),
		Marriage:   marriage.New(backend, files.Marriages, cfg.Marriage, cfg.Location(), logger),
		Audit:      auditLogger,
		Analytics:  analytics.New(auditLogger),
		AI:         ai.New(cfg.AI, logger),
	}

	botSvc, err := bot.New(cfg, logger, services)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started", zap.String("storage", cfg.Storage.Driver), zap.Bool("ai", services.AI.Enabled()))

	var server *http.Server
	if cfg.Health.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", metrics.Handler())
		server = &http.Server{Addr: cfg.Health.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(shutdownCtx)
	}
	botSvc.Close(shutdownCtx)
}
