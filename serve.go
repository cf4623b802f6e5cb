package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"skillswap/carousel"
	"skillswap/config"
	"skillswap/editor"
	"skillswap/handlers"
	"skillswap/middleware"
	"skillswap/models"
	"skillswap/notify"
	"skillswap/routes"
	"skillswap/upload"
	"skillswap/websocket"
)

const sweepInterval = time.Minute

func newServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")
	return cmd
}

func runServe(ctx context.Context, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Release())
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	log.Info("Starting SkillSwap server", zap.String("mode", gin.Mode()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	uploader, err := upload.NewCloudinary(upload.Config{
		CloudName:    cfg.CloudinaryCloudName,
		UploadPreset: cfg.CloudinaryUploadPreset,
		UploadPrefix: cfg.CloudinaryUploadPrefix,
		Folder:       cfg.CloudinaryFolder,
	}, log.Named("upload"))
	if err != nil {
		return err
	}

	features := models.SeedFeatures()
	rotator, err := carousel.NewRotator(len(features), cfg.FeatureRotationInterval, log.Named("carousel"))
	if err != nil {
		return err
	}

	keys, err := vapidKeys(cfg, log)
	if err != nil {
		return err
	}

	hub := websocket.NewManager(log.Named("ws"))
	store := editor.NewStore(models.SeedDraft, cfg.SessionTTL, log.Named("editor"))
	tokens := middleware.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL)

	h := handlers.New(handlers.Options{
		Store:       store,
		Tokens:      tokens,
		Uploader:    uploader,
		Events:      hub,
		Push:        notify.NewPusher(keys, log.Named("push")),
		Rotator:     rotator,
		Features:    features,
		Showcase:    models.SeedShowcase(),
		Logger:      log.Named("handlers"),
		BaseContext: gctx,
	})

	router := routes.SetupRouter(h, routes.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		Tokens:         tokens,
		Limiter:        middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		Logger:         log.Named("http"),
		WebSocket:      hub.Handler(tokens.Parse),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return rotator.Run(gctx) })
	g.Go(func() error { return store.RunSweeper(gctx, sweepInterval) })
	g.Go(func() error {
		log.Info("Server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		h.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

// vapidKeys returns the configured VAPID pair, generating a throwaway one
// when none is set.
func vapidKeys(cfg config.Config, log *zap.Logger) (notify.VAPID, error) {
	keys := notify.VAPID{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDEmail,
	}
	if keys.PublicKey != "" && keys.PrivateKey != "" {
		return keys, nil
	}

	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return notify.VAPID{}, err
	}
	keys.PrivateKey, keys.PublicKey = priv, pub
	log.Warn("Generated VAPID keys for this run; set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY to keep push subscriptions valid across restarts",
		zap.String("publicKey", pub))
	return keys, nil
}
