package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/biasbot/biasbot/internal/api"
	"github.com/biasbot/biasbot/internal/completion"
	"github.com/biasbot/biasbot/internal/config"
	"github.com/biasbot/biasbot/internal/promptbank"
	"github.com/biasbot/biasbot/internal/services/sweeper"
	"github.com/biasbot/biasbot/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	policy := session.Policy{
		DailyLimit: cfg.DailyLimit,
		Idle:       cfg.Idle,
		SessionMax: cfg.SessionMax,
	}
	store := session.NewStore(policy, session.WithEviction(cfg.EvictAfter, cfg.EvictInterval))
	defer store.Close()

	bank := promptbank.Load(cfg.PromptsPath, logger)
	if bank.FromDefaults() {
		logger.Printf("serve: prompt bank fell back to built-in defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PromptsWatch {
		go func() {
			if err := bank.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("serve: prompt bank watch stopped: %v", err)
			}
		}()
	}

	client := completion.NewOpenAIClient(completion.Options{
		BaseURL:     cfg.Completion.BaseURL,
		APIKey:      cfg.Completion.APIKey,
		Model:       cfg.Completion.Model,
		MaxTokens:   cfg.MaxReplyTokens,
		Temperature: cfg.Temperature,
	})

	sw := sweeper.New(store, bank,
		sweeper.WithLogger(logger),
		sweeper.WithInterval(cfg.SweepInterval),
		sweeper.WithGreeting(cfg.Greeting),
	)
	if err := sw.Start(); err != nil {
		return err
	}
	defer sw.Stop()

	handler := api.NewHandler(store, client,
		api.WithLogger(logger),
		api.WithReinjectionProbability(cfg.ReinjectionProbability),
		api.WithHistoryTail(cfg.HistoryTail),
		api.WithAskTimeout(cfg.AskTimeout),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("serve: listening on %s (daily limit %d, idle %s, session max %s)",
			srv.Addr, cfg.DailyLimit, cfg.Idle, cfg.SessionMax)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Printf("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
