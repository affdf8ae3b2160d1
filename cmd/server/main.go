package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/arencloud/pagevault/internal/accounts"
	"github.com/arencloud/pagevault/internal/api"
	"github.com/arencloud/pagevault/internal/config"
	"github.com/arencloud/pagevault/internal/db"
	"github.com/arencloud/pagevault/internal/logging"
	"github.com/arencloud/pagevault/internal/media"
	"github.com/arencloud/pagevault/internal/s3"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if err := db.Init(cfg, logger); err != nil {
		logger.Fatal("failed to init db", zap.Error(err))
	}

	// Each request builds its own provider client from that request's
	// credentials; no client state crosses requests.
	factory := func(ctx context.Context, creds s3.Credentials, region string) (media.ObjectStore, error) {
		return s3.New(ctx, creds, s3.Options{
			Region:      region,
			Endpoint:    cfg.S3Endpoint,
			URLTemplate: cfg.URLTemplate,
		})
	}
	svc := media.NewService(
		media.NewStore(db.DB),
		accounts.NewResolver(db.DB),
		factory,
		media.ServiceConfig{Namespace: cfg.MediaNamespace, DefaultRegion: cfg.DefaultRegion},
		logger,
	)

	r := api.Router(cfg, logger, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       0, // allow long-running uploads/downloads; rely on LB timeouts
		WriteTimeout:      0,
		MaxHeaderBytes:    1 << 20, // 1MB headers
	}
	logger.Info("server starting", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
