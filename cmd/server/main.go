package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/config"
	"github.com/Chrissie21/GrowSafeWebApp/internal/handler"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/auth"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/kafka"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/observability"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/redis"
	core "github.com/Chrissie21/GrowSafeWebApp/internal/repository/postgres"
	service "github.com/Chrissie21/GrowSafeWebApp/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	shutdownTracing, metricsHandler := observability.Setup("growsafe-ledger")
	defer shutdownTracing(context.Background())

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping Postgres: %v", err)
	}

	userRepo := core.NewPostgresUserRepository(db)
	profileRepo := core.NewPostgresProfileRepository(db)
	transactionRepo := core.NewPostgresTransactionRepository(db)
	investmentRepo := core.NewPostgresInvestmentRepository(db)
	optionRepo := core.NewPostgresOptionRepository(db)
	historyRepo := core.NewPostgresHistoryRepository(db)
	txManager := core.NewTxManager(db)

	redisClient := redis.NewClient(cfg.RedisAddr)
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.LedgerTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.LedgerTopic, "growsafe-ledger-group")
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go consumer.Consume(consumerCtx)
	defer consumer.Close()
	defer stopConsumer()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authSvc := service.NewAuthService(userRepo, profileRepo, txManager, tokens, redisClient, producer)
	ledgerSvc := service.NewLedgerService(userRepo, profileRepo, transactionRepo, investmentRepo, historyRepo, txManager, producer)
	investmentSvc := service.NewInvestmentService(profileRepo, investmentRepo, optionRepo, txManager, redisClient, producer)

	h := handler.NewHandler(authSvc, ledgerSvc, investmentSvc)
	router := handler.SetupRouter(h, redisClient, tokens, metricsHandler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	slog.Info("server stopped")
}
