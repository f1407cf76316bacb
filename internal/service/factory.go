package service

import (
	"log/slog"

	"basegraph.app/dropbox2slack/core/config"
	"basegraph.app/dropbox2slack/internal/cursor"
	"basegraph.app/dropbox2slack/internal/dropbox"
	"basegraph.app/dropbox2slack/internal/slack"
)

type ServicesConfig struct {
	Config config.Config
	Store  cursor.Store
	Logger *slog.Logger
}

type Services struct {
	dropbox *dropbox.Client
	webhook *slack.Webhook
	store   cursor.Store
	cfg     config.Config
	logger  *slog.Logger
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		dropbox: dropbox.New(dropbox.Config{
			BaseURL: cfg.Config.Dropbox.APIURL,
			Token:   cfg.Config.Dropbox.Token,
			Timeout: cfg.Config.HTTPTimeout,
		}),
		webhook: slack.NewWebhook(slack.Config{
			WebhookURL: cfg.Config.Slack.WebhookURL,
			Timeout:    cfg.Config.HTTPTimeout,
		}),
		store:  cfg.Store,
		cfg:    cfg.Config,
		logger: cfg.Logger,
	}
}

func (s *Services) Sync() SyncService {
	return NewSyncService(s.dropbox, s.dropbox, s.webhook, s.store, SyncConfig{
		TargetDir: s.cfg.Dropbox.TargetDir,
		CursorKey: cursor.Key,
		Timeout:   s.cfg.SyncTimeout,
	}, s.logger)
}

func (s *Services) Cursors() cursor.Store {
	return s.store
}

func (s *Services) Dropbox() *dropbox.Client {
	return s.dropbox
}
