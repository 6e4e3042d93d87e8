package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trendforge/backend/internal/auth"
	"github.com/trendforge/backend/internal/config"
	"github.com/trendforge/backend/internal/database"
	"github.com/trendforge/backend/internal/generate"
	"github.com/trendforge/backend/internal/generations"
	"github.com/trendforge/backend/internal/logging"
	"github.com/trendforge/backend/internal/providers"
	"github.com/trendforge/backend/internal/server"
	"github.com/trendforge/backend/internal/topics"
	"github.com/trendforge/backend/internal/trending"
	"github.com/trendforge/backend/internal/users"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendforge-api",
		Short: "TrendForge content generation backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("auth.token_ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().String("signing-secret", "", "Session signing secret (overrides env)")
	cmd.PersistentFlags().String("trends-feed-url", defaults.GetString("trends.feed_url"), "Trending topics feed URL")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "trends.feed_url", "trends-feed-url")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "trendforge-auth",
		Audience:      "trendforge-api",
		TokenTTL:      appConfig.TokenTTL,
	})

	completions := providers.NewGroqClient(providers.GroqConfig{
		APIKey:  appConfig.GroqAPIKey,
		BaseURL: appConfig.GroqBaseURL,
		Model:   appConfig.GroqModel,
	})
	images := providers.NewGeminiClient(providers.GeminiConfig{
		APIKey: appConfig.GeminiAPIKey,
		Model:  appConfig.GeminiModel,
	})
	imageHost, err := providers.NewCloudinaryHost(providers.CloudinaryConfig{
		CloudName: appConfig.CloudinaryCloudName,
		APIKey:    appConfig.CloudinaryAPIKey,
		APISecret: appConfig.CloudinaryAPISecret,
		Folder:    appConfig.CloudinaryFolder,
	})
	if err != nil {
		return err
	}

	usersService, err := users.NewService(users.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	topicsService, err := topics.NewService(topics.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	generationsService, err := generations.NewService(generations.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}

	fetcher, err := trending.NewFetcher(trending.FetcherConfig{
		FeedURL:    appConfig.TrendsFeedURL,
		Revalidate: appConfig.TrendsRevalidate,
		Backfiller: trending.NewBackfiller(completions, logger),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	blogService, err := generate.NewBlogService(generate.BlogServiceConfig{
		Completions: completions,
		Images:      images,
		Topics:      topicsService,
		Generations: generationsService,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: tokenManager,
		Users:        usersService,
		Topics:       topicsService,
		Generations:  generationsService,
		Trending:     fetcher,
		Scripts:      generate.NewScriptService(completions, logger),
		Images:       generate.NewImageService(images, imageHost, logger),
		Blogs:        blogService,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
