package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tricks_check/cache"
	"tricks_check/fixpool"
	"tricks_check/frontend"
	"tricks_check/store"
	"tricks_check/wcl"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http/websocket service",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := wcl.Resolve(cfg.DefaultLocale)
	if err != nil {
		return errors.Wrapf(err, "TRICKS_LOCALE %q", cfg.DefaultLocale)
	}

	cs, err := cache.NewStorage(cfg.CacheDir, cfg.CacheExpires, wcl.TableHash)
	if err != nil {
		return err
	}

	ledger, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	pool := fixpool.New(
		fixpool.Options{
			Cache:  cs,
			Ledger: ledger,
			Logger: logger,
			Locale: loc,
		},
	)
	go pool.Run(ctx)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	frontend.Route(g, pool, cfg.RecaptchaKey)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: g,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Listen: %s", cfg.Listen)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return errors.WithStack(err)
	}
	return nil
}
