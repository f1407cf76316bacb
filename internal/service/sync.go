package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/dropbox2slack/common/id"
	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/internal/cursor"
	"basegraph.app/dropbox2slack/internal/dropbox"
	"basegraph.app/dropbox2slack/internal/metrics"
	"basegraph.app/dropbox2slack/internal/model"
)

type SyncResult struct {
	RunID        int64
	Cursor       string // cursor persisted at the end of the run
	Bootstrapped bool   // no stored cursor; started from the latest Dropbox state
	Reset        bool   // Dropbox invalidated the cursor and a new one was stored
	Pages        int
	Entries      int
	Files        int
	Skipped      int
	LinkFailures int
	Dispatch     DispatchResult
}

// SyncService runs one change-notification cycle: load cursor, fetch
// changes, persist the new cursor, resolve links, post to Slack.
type SyncService interface {
	Run(ctx context.Context) (*SyncResult, error)
}

type SyncConfig struct {
	TargetDir string
	CursorKey string

	// Timeout bounds one run. Runs ignore the caller's cancellation; changes
	// behind a persisted cursor still have to reach Slack.
	Timeout time.Duration
}

const defaultSyncTimeout = 5 * time.Minute

type syncService struct {
	feed       ChangeFeed
	store      cursor.Store
	aggregator *Aggregator
	dispatcher *Dispatcher
	cfg        SyncConfig
	logger     *slog.Logger
}

func NewSyncService(feed ChangeFeed, links LinkResolver, sender MessageSender, store cursor.Store, cfg SyncConfig, logger *slog.Logger) SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CursorKey == "" {
		cfg.CursorKey = cursor.Key
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSyncTimeout
	}
	return &syncService{
		feed:       feed,
		store:      store,
		aggregator: NewAggregator(links, logger),
		dispatcher: NewDispatcher(sender, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *syncService) Run(ctx context.Context) (result *SyncResult, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
	defer cancel()

	result = &SyncResult{RunID: id.New()}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(result.RunID),
		Component: "dropbox2slack.service.sync",
	})

	defer func() {
		metrics.RecordSyncRun(err == nil)
	}()

	entries, fetchErr := s.fetchChanges(ctx, result)
	if len(entries) == 0 {
		if fetchErr == nil {
			s.logger.InfoContext(ctx, "no changes", "cursor_reset", result.Reset)
		}
		return result, fetchErr
	}

	sc := logger.StartSpan(ctx, "sync.aggregate")
	aggregated := s.aggregator.Aggregate(sc.Context(), entries, s.cfg.TargetDir)
	sc.SetInt("files", aggregated.Files.FileCount())
	sc.End()

	result.Files = aggregated.Files.FileCount()
	result.Skipped = aggregated.Skipped
	result.LinkFailures = aggregated.LinkFailures

	if aggregated.Files.Len() > 0 {
		sc = logger.StartSpan(ctx, "sync.dispatch")
		result.Dispatch = s.dispatcher.Dispatch(sc.Context(), aggregated.Files)
		sc.End()
	}

	s.logger.InfoContext(ctx, "sync run complete",
		"pages", result.Pages,
		"entries", result.Entries,
		"files", result.Files,
		"skipped", result.Skipped,
		"link_failures", result.LinkFailures,
		"messages_sent", result.Dispatch.Sent,
		"messages_fallback", result.Dispatch.Fallbacks,
		"messages_failed", result.Dispatch.Failed,
	)

	return result, fetchErr
}

// fetchChanges pages through list_folder/continue, persisting every returned
// cursor before looking at its entries. When a later page fails, the entries
// already collected are returned alongside the error so they still reach Slack.
func (s *syncService) fetchChanges(ctx context.Context, result *SyncResult) ([]model.ChangeEntry, error) {
	sc := logger.StartSpan(ctx, "sync.fetch_changes")
	defer sc.End()
	ctx = sc.Context()

	current, err := s.loadCursor(ctx, result)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	var entries []model.ChangeEntry
	for {
		page, err := s.feed.ListFolderContinue(ctx, current)
		if errors.Is(err, dropbox.ErrCursorReset) {
			s.logger.WarnContext(ctx, "dropbox reset the cursor, starting from latest state")
			return entries, s.resetCursor(ctx, result)
		}
		if err != nil {
			err = fmt.Errorf("fetching changes: %w", err)
			sc.RecordError(err)
			return entries, err
		}

		if err := s.store.Put(ctx, s.cfg.CursorKey, page.Cursor); err != nil {
			err = fmt.Errorf("persisting cursor: %w", err)
			sc.RecordError(err)
			return entries, err
		}

		current = page.Cursor
		result.Cursor = page.Cursor
		result.Pages++
		result.Entries += len(page.Entries)
		entries = append(entries, page.Entries...)

		if !page.HasMore {
			break
		}
	}

	sc.SetInt("entries", len(entries))
	return entries, nil
}

func (s *syncService) loadCursor(ctx context.Context, result *SyncResult) (string, error) {
	current, err := s.store.Get(ctx, s.cfg.CursorKey)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, cursor.ErrNotFound) {
		return "", fmt.Errorf("loading cursor: %w", err)
	}

	s.logger.InfoContext(ctx, "no stored cursor, bootstrapping", "target_dir", s.cfg.TargetDir)
	current, err = s.feed.GetLatestCursor(ctx, s.cfg.TargetDir)
	if err != nil {
		return "", fmt.Errorf("bootstrapping cursor: %w", err)
	}
	result.Bootstrapped = true
	return current, nil
}

func (s *syncService) resetCursor(ctx context.Context, result *SyncResult) error {
	fresh, err := s.feed.GetLatestCursor(ctx, s.cfg.TargetDir)
	if err != nil {
		return fmt.Errorf("bootstrapping cursor after reset: %w", err)
	}
	if err := s.store.Put(ctx, s.cfg.CursorKey, fresh); err != nil {
		return fmt.Errorf("persisting cursor: %w", err)
	}
	result.Reset = true
	result.Cursor = fresh
	return nil
}
