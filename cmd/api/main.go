package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sick-fits/internal/core/auth"
	"sick-fits/internal/core/cache"
	"sick-fits/internal/core/config"
	"sick-fits/internal/core/database"
	"sick-fits/internal/core/logger"
	"sick-fits/internal/core/server"
	"sick-fits/internal/mail"
	"sick-fits/internal/repo"
	"sick-fits/internal/service"
	"sick-fits/internal/storage"
	gql "sick-fits/internal/transport/graphql"
	"sick-fits/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.Build(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   true,
		},
	})
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	itemCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if itemCache != nil {
		if err := itemCache.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, item cache will fall through", zap.Error(err))
		}
		defer itemCache.Close()
	}

	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer)
	users := repo.NewUserRepo(db)
	authSvc := service.NewAuthService(service.AuthDeps{
		Users:       users,
		Hasher:      auth.NewHasher(cfg.Security.BcryptCost),
		Tokens:      jwter,
		Mailer:      newMailer(cfg, log),
		FrontendURL: cfg.App.FrontendURL,
		Log:         log,
	})
	itemSvc := service.NewItemService(service.ItemDeps{
		Items:    repo.NewItemRepo(db),
		Users:    users,
		Cache:    itemCache,
		CacheTTL: time.Duration(cfg.Redis.ItemTTLSec) * time.Second,
		Log:      log,
	})
	schema := gql.NewSchema(gql.NewResolver(gql.Deps{
		Auth:    authSvc,
		Items:   itemSvc,
		Cookies: auth.Cookies{Secure: cfg.JWT.CookieSecure},
		Log:     log,
	}))

	deps := router.APIDeps{
		Schema:       schema,
		Tokens:       jwter,
		Health:       dbHealth(db),
		AllowOrigins: []string{cfg.App.FrontendURL},
		Limits: router.Limits{
			RPS:           cfg.Security.RateLimitRPS,
			Burst:         cfg.Security.RateLimitBurst,
			MaxConcurrent: cfg.Security.MaxConcurrent,
		},
	}
	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3(context.Background(), storage.Options{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			log.Fatal("s3 init", zap.Error(err))
		}
		deps.Images = storage.Images{Store: store}
	} else {
		log.Warn("s3.bucket not set, image uploads disabled")
	}

	r := router.NewAPIEngine(log, deps)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("storefront api starting",
		zap.String("addr", addr),
		zap.String("graphql", baseURL+"/graphql"),
		zap.String("health", baseURL+"/health"),
		zap.String("frontend", cfg.App.FrontendURL),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("storefront api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("storefront api stopped gracefully")
}

func newMailer(cfg *config.Config, l *zap.Logger) mail.Sender {
	if cfg.Mail.Driver == "smtp" {
		return mail.NewSMTP(mail.SMTPOptions{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}
	l.Info("mail driver is log, reset mails are only logged")
	return mail.Log{L: l}
}

func dbHealth(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
