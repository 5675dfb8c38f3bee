package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/infrastructure/dynamo"
	redisinfra "github.com/go-auth-api/internal/infrastructure/redis"
	"github.com/go-auth-api/internal/infrastructure/smtp"
	"github.com/go-auth-api/internal/infrastructure/sns"
	"github.com/go-auth-api/internal/infrastructure/token"
	transporthttp "github.com/go-auth-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET must be set")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Redis key-value store for OTP codes.
	redisClient := redisinfra.NewClient(cfg)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARN: Redis not reachable at startup: %v", err)
	}
	cancelPing()

	// Verification codes go out over email by default; SMS via SNS when
	// OTP_DELIVERY=sms.
	var notifier transporthttp.Notifier
	if cfg.OTPDelivery == "sms" {
		sender, err := sns.NewCodeNotifier(cfg)
		if err != nil {
			log.Fatalf("SNS notifier: %v", err)
		}
		notifier = sender
	} else {
		notifier = smtp.NewCodeNotifier(smtp.NewMailer(cfg))
	}

	deps := &transporthttp.Deps{
		UserRepo: dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		KV:       redisinfra.NewKV(redisClient),
		Notifier: notifier,
		Codec:    token.NewCodec(cfg.TokenSecret),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
