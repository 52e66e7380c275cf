package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/config"
	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/api/routes"
	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/identity"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/pubsub"
	fsrepo "github.com/yoockh/yoointerview/internal/repositories/firestore"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
	"github.com/yoockh/yoointerview/internal/voice"
	"github.com/yoockh/yoointerview/internal/workers"
)

type interviewStore interface {
	interview.Repository
	services.InterviewReader
}

func main() {
	_ = godotenv.Load()
	log := logger.New()

	app, err := config.LoadApp()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	voiceErr := app.Voice.Err()
	if voiceErr != nil {
		log.WithError(voiceErr).Error("interviews cannot be started until the voice service is configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openDocumentStore(ctx, log, app.DocumentStore)

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	summaries := cache.NewSummaryCache(cache.NewRedisCache(config.RedisClient), app.SummaryTTL)
	states := pubsub.NewStatePublisher(config.RedisClient, log)

	saver := &interview.Saver{Repo: store, Summaries: summaries, Logger: log}
	if app.TranscriptBucket != "" {
		up, err := storage.NewGCSUploader(ctx, app.TranscriptBucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer up.Close()

		saver.Archive = &workers.ArchiveQueue{Redis: config.RedisClient}
		pool := &workers.ArchiveWorkerPool{
			Redis:    config.RedisClient,
			Records:  store,
			Archiver: storage.NewTranscriptArchiver(up),
			Logger:   log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("archive workers")
		}
		log.WithField("bucket", app.TranscriptBucket).Info("transcript archiving enabled")
	}

	registry := interview.NewRegistry(interview.Deps{
		Voice:       voice.NewVapiClient(app.Voice.BaseURL, app.Voice.PublicKey, nil),
		AssistantID: app.Voice.AssistantID,
		ConfigErr:   voiceErr,
		Saver:       saver,
		Notifier:    states,
		Logger:      log,
	})

	watcher := identity.NewWatcher()
	watcher.Subscribe(func(ch identity.Change) {
		if ch.Kind == identity.SignedOut {
			registry.SignedOut(ch.UserID)
		}
	})

	accounts := services.NewAccountService(
		identity.NewSupabaseClient(app.Auth.SupabaseURL, app.Auth.AnonKey, nil),
		pgrepo.NewProfileRepo(config.PostgresDB),
		watcher,
		log,
	)
	history := services.NewHistoryService(store, summaries)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		JWT: middleware.JWTConfig{
			Secret:   app.Auth.JWTSecret,
			Issuer:   app.Auth.JWTIssuer,
			Audience: app.Auth.JWTAudience,
		},
		Auth:      handlers.NewAuthHandler(accounts),
		Interview: handlers.NewInterviewHandler(registry),
		History:   handlers.NewHistoryHandler(history),
		Webhook:   handlers.NewWebhookHandler(registry, app.Voice.WebhookSecret, log),
		WS:        handlers.NewWSHandler(registry, states, log, app.AllowedOrigins),
	})

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", app.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	// interviews that ended just before shutdown are still being written
	registry.Wait()
	_ = config.CloseMongo(shutdownCtx)
	if config.FirestoreClient != nil {
		_ = config.FirestoreClient.Close()
	}
	_ = config.RedisClient.Close()
}

func openDocumentStore(ctx context.Context, log *logrus.Logger, kind string) interviewStore {
	if kind == config.StoreFirestore {
		if err := config.InitFirestore(ctx); err != nil {
			log.WithError(err).Fatal("Firestore init error")
		}
		log.Info("Firestore connected")
		return fsrepo.NewInterviewRepo(config.FirestoreClient)
	}

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Warn("MongoDB index creation failed")
	}
	log.Info("MongoDB connected")
	return mongorepo.NewInterviewRepo(config.MongoDatabase())
}
