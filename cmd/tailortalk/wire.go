package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"github.com/comigor/tailortalk/internal/calendar"
	"github.com/comigor/tailortalk/internal/config"
	"github.com/comigor/tailortalk/internal/journal"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/pkg/tools"
)

// loadConfig reads .env (if present) into the environment, then the
// configuration, and applies the log level.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.L.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func newCalendarClient(ctx context.Context, cfg config.CalendarConfig) (*calendar.Client, error) {
	tz := cfg.TimeZone
	if tz == "" {
		tz = calendar.DefaultTimeZone
	}

	var provider calendar.Provider
	switch cfg.Provider {
	case config.CalendarGoogle, "":
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", tz, err)
		}
		provider, err = calendar.NewGoogleProvider(ctx, cfg.CredentialsPath, loc)
		if err != nil {
			return nil, err
		}
	case config.CalendarICS:
		provider = calendar.NewICSProvider(cfg.ICSPath)
	default:
		return nil, fmt.Errorf("unsupported calendar provider %q", cfg.Provider)
	}

	logger.L.Info("calendar backend ready", "provider", cfg.Provider, "calendar_id", cfg.CalendarID, "timezone", tz)
	return calendar.NewClient(provider, cfg.CalendarID, tz)
}

func newRegistry(ctx context.Context, cfg *config.Config) (*tools.Registry, error) {
	cal, err := newCalendarClient(ctx, cfg.Calendar)
	if err != nil {
		return nil, err
	}
	return tools.NewCalendarRegistry(cal), nil
}

// openJournal returns nil when the journal is disabled.
func openJournal(cfg config.JournalConfig) *journal.Journal {
	if !cfg.Enabled {
		return nil
	}
	return journal.New(cfg.Path)
}
