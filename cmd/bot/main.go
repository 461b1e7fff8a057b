package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/config"
	cronrunner "ledgerbot/internal/cron"
	"ledgerbot/internal/db"
	"ledgerbot/internal/handler"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/logger"
	gormrepository "ledgerbot/internal/repository/gorm"
	"ledgerbot/internal/wiguna"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("TB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("TB_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Bot.Token == "" {
		log.Fatal("bot token missing (bot.token / TB_BOT_TOKEN)")
	}

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		log.Fatal("invalid bot timezone", zap.String("timezone", cfg.Bot.Timezone), zap.Error(err))
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	ledgerSvc := &ledger.Service{
		Repo:   store,
		Logger: log,
		Admins: cfg.Bot.Admins,
		Loc:    loc,
	}
	signals := wiguna.NewClient(wiguna.Config{
		SignalURL: cfg.Wiguna.SignalURL,
		AuthURL:   cfg.Wiguna.AuthURL,
		Email:     cfg.Wiguna.Email,
		Password:  cfg.Wiguna.Password,
		Token:     cfg.Wiguna.Token,
		Timeout:   cfg.Wiguna.Timeout,
	}, store, log)

	tgBot, err := bot.New(cfg.Bot, ledgerSvc, signals, log)
	if err != nil {
		log.Fatal("bot init failed", zap.Error(err))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	ledgerHandler := &handler.LedgerHandler{Ledger: ledgerSvc}
	ledgerHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(log, loc, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.DailyRecap, func(ctx context.Context) {
			if err := tgBot.BroadcastDailyRecap(ctx); err != nil {
				log.Warn("daily recap broadcast failed", zap.Error(err))
			}
		}); err != nil {
			log.Fatal("invalid daily recap schedule", zap.String("spec", cfg.Cron.DailyRecap), zap.Error(err))
		}
		cronRunner.Start()
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	if cfg.Cron.Enabled {
		cronRunner.Stop()
	}
	log.Info("stopped")
}
