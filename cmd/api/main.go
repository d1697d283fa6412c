package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "pawnshop-backend/internal/adapter/http"
	mw "pawnshop-backend/internal/adapter/middleware"
	"pawnshop-backend/internal/adapter/repository/mysql"
	"pawnshop-backend/internal/config"
	"pawnshop-backend/internal/infrastructure/cache"
	"pawnshop-backend/internal/infrastructure/db"
	"pawnshop-backend/internal/infrastructure/kafka"
	"pawnshop-backend/internal/infrastructure/logger"
	"pawnshop-backend/internal/infrastructure/metrics"
	ucCatalog "pawnshop-backend/internal/usecase/catalog"
	"pawnshop-backend/internal/usecase/outbox"
	ucRate "pawnshop-backend/internal/usecase/ratetable"
	ucReport "pawnshop-backend/internal/usecase/report"
	ucTicket "pawnshop-backend/internal/usecase/ticket"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.NewLogger(cfg.AppMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		zl.Fatal("load settings", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		zl.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zl.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if cfg.AutoMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
	}

	rdb, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		zl.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	m := metrics.New()

	tickets := mysql.NewTicketRepository(gdb)
	branches := mysql.NewBranchRepository(gdb)
	categories := mysql.NewCategoryRepository(gdb)
	users := mysql.NewUserBranchRepository(gdb)
	terms := settings.Terms()

	ticketUC := ucTicket.NewUsecase(tickets, mysql.NewInvoiceRepository(gdb), mysql.NewGormUoW(gdb), ucTicket.Options{
		Terms:                terms,
		Products:             settings.Products(),
		DefaultRateTableCode: settings.DefaultRateTableCode,
		AuctionCustomerID:    settings.AuctionCustomerID,
	}, zl.Named("ticket"), m)

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		relay := outbox.NewRelay(
			mysql.NewOutboxRepository(gdb),
			kafka.NewEventPublisher(producer, cfg.KafkaTopic, zl.Named("publisher")),
			zl.Named("outbox"), m, cfg.OutboxBatchSize, cfg.OutboxInterval(),
		)
		go relay.Run(ctx)
	} else {
		zl.Warn("KAFKA_BROKERS empty, outbox relay disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover(), middleware.RequestID())

	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"database": sqlDB.PingContext,
			"redis":    cache.Ping(rdb),
		}),
		Tickets:    httpadp.NewTicketHandler(ticketUC),
		RateTables: httpadp.NewRateTableHandler(ucRate.NewUsecase(mysql.NewRateTableRepository(gdb), branches, categories, zl.Named("ratetable"))),
		Catalog:    httpadp.NewCatalogHandler(ucCatalog.NewUsecase(branches, categories, users, zl.Named("catalog"))),
		Reports:    httpadp.NewReportHandler(ucReport.NewUsecase(mysql.NewReportSource(gdb), tickets, terms, zl.Named("report"))),
	}, m.Handler(),
		mw.BranchScope(users, zl.Named("scope")),
		mw.Idempotency(rdb, cfg.IdempotencyTTL(), zl.Named("idempotency")),
	)

	addr := ":" + cfg.AppPort
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
