package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/comigor/tailortalk/internal/agent"
	"github.com/comigor/tailortalk/internal/llm"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/metrics"
	"github.com/comigor/tailortalk/internal/server"
	"github.com/comigor/tailortalk/internal/session"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat server",
		Long: `Serve POST /chat, /healthz and /metrics.

Each chat session gets its own model conversation; pass the returned
session_id back to continue it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.host and server.port)")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr()
	}

	registry, err := newRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	backend, err := llm.NewBackend(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer backend.Close()

	var rec agent.Journal
	if j := openJournal(cfg.Journal); j != nil {
		defer j.Close()
		rec = j
	}

	m := metrics.New()
	store, err := session.NewStore(func(ctx context.Context, id string) (session.Conversation, error) {
		sess, err := backend.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		conv, err := agent.New(ctx, sess, registry, agent.Options{
			SessionID:  id,
			MaxRounds:  cfg.Agent.MaxRounds,
			TimeBudget: cfg.Agent.TimeBudget,
			TimeZone:   cfg.Calendar.TimeZone,
			Journal:    rec,
			Metrics:    m,
		})
		if err != nil {
			return nil, err
		}
		return conv, nil
	}, session.Options{TTL: cfg.Sessions.TTL, Max: cfg.Sessions.Max, Metrics: m})
	if err != nil {
		return err
	}
	defer store.Stop()

	logger.L.Info("tailortalk ready", "version", version, "llm_provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return server.New(store, m).ListenAndServe(ctx, addr)
}
