package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/config"
	"github.com/Dev-2427/Dev-MyTodo/internal/handler"
	"github.com/Dev-2427/Dev-MyTodo/internal/mailer"
	"github.com/Dev-2427/Dev-MyTodo/internal/messaging/nats"
	"github.com/Dev-2427/Dev-MyTodo/internal/middleware"
	"github.com/Dev-2427/Dev-MyTodo/internal/platform/logger"
	"github.com/Dev-2427/Dev-MyTodo/internal/platform/metrics"
	"github.com/Dev-2427/Dev-MyTodo/internal/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/router"
	"github.com/Dev-2427/Dev-MyTodo/internal/session"
	"github.com/Dev-2427/Dev-MyTodo/internal/usecase"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.String("uri", cfg.MongoURI), zap.Error(err))
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	log.Info("Successfully connected to MongoDB", zap.String("database", cfg.MongoDB))
	db := mongoClient.Database(cfg.MongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	log.Info("Successfully connected to Redis", zap.String("addr", cfg.RedisAddr))

	var events usecase.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.NewPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.String("url", cfg.NATSURL), zap.Error(err))
		}
		defer publisher.Close()
		events = nats.NewEvents(publisher)
		log.Info("Successfully connected to NATS", zap.String("url", cfg.NATSURL))
	} else {
		log.Warn("NATS_URL is not set, event publishing is disabled")
	}

	var mail mailer.Mailer
	if cfg.MailerSendAPIKey != "" {
		mail = mailer.NewMailerSendService(cfg.MailerSendAPIKey, cfg.MailFromEmail, cfg.MailFromName, log.Logger)
		log.Info("Using MailerSend for outgoing mail")
	} else {
		mail = mailer.NewSMTPMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFromEmail, cfg.MailFromName, log.Logger)
		log.Info("Using SMTP for outgoing mail", zap.String("host", cfg.SMTPHost))
	}

	userRepo := repository.NewUserRepository(db, redisClient, log.Logger)
	todoRepo := repository.NewTodoRepository(db, log.Logger)

	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	authUsecase := usecase.NewAuthUsecase(userRepo, todoRepo, mail, sessions, events, cfg.SessionTTL, log.Logger)
	todoUsecase := usecase.NewTodoUsecase(todoRepo, events, log.Logger)

	m := metrics.NewManager("mytodo")
	if cfg.MetricsPort != "" {
		go func() {
			if err := metrics.StartServer(cfg.MetricsPort, log.Logger, m.Registry); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	authHandler := handler.NewAuthHandler(authUsecase, m, log.Logger)
	todoHandler := handler.NewTodoHandler(todoUsecase, m, log.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(log.Logger))
	router.SetupUserRoutes(r, authHandler, sessions, log.Logger)
	router.SetupTodoRoutes(r, todoHandler, sessions, log.Logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("Starting HTTP server", zap.String("address", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
