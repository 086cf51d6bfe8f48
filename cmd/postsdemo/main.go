package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	postsdemo "github.com/anitschke/go-postsdemo"
	"github.com/anitschke/go-postsdemo/auth"
	"github.com/anitschke/go-postsdemo/config"
	"github.com/anitschke/go-postsdemo/ui"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	listen := flag.String("listen", cfg.Server.Listen, "address the UI listens on")
	baseURL := flag.String("base-url", cfg.Client.BaseURL, "root URL of the posts API")
	flag.Parse()
	cfg.Server.Listen = *listen
	cfg.Client.BaseURL = *baseURL

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	logger.SetLevel(cfg.Log.Level)
	if cfg.Log.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("posts demo stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	client, err := postsdemo.NewDefaultClient(postsdemo.DefaultClientOptions{
		HTTPClient:    &http.Client{},
		BaseURL:       cfg.Client.BaseURL,
		Timeout:       cfg.Client.Timeout,
		Authorization: auth.Authorization{Token: cfg.Client.AuthToken},
		Headers:       cfg.Client.Headers,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	state := &postsdemo.ViewState{}
	notices := &ui.Notices{}
	dispatcher := postsdemo.NewDispatcher(client, state, notices, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           ui.NewServer(dispatcher, state, notices, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"listen":   cfg.Server.Listen,
			"base_url": cfg.Client.BaseURL,
		}).Info("posts demo listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Don't leave a cancellable fetch running past shutdown.
	if err := dispatcher.CancelRequest(); err == nil {
		logger.Info("cancelled in-flight request")
	}
	dispatcher.Wait()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
