package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/internal/metrics"
	"basegraph.app/dropbox2slack/internal/model"
)

type AggregateResult struct {
	Files        *model.ChannelFiles
	Skipped      int // folder and deleted entries
	LinkFailures int
}

// Aggregator turns change entries into per-channel file lists.
type Aggregator struct {
	links  LinkResolver
	logger *slog.Logger
}

func NewAggregator(links LinkResolver, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{links: links, logger: logger}
}

// Aggregate resolves a shared link for every file entry and groups the files
// by channel. A file whose link cannot be resolved is logged and skipped; it
// never aborts the batch.
func (a *Aggregator) Aggregate(ctx context.Context, entries []model.ChangeEntry, targetDir string) *AggregateResult {
	result := &AggregateResult{Files: model.NewChannelFiles()}

	for _, entry := range entries {
		metrics.RecordChangeEntry(string(entry.Kind))
		if !entry.IsFile() {
			result.Skipped++
			continue
		}

		channel := ChannelForPath(targetDir, entry.Path)
		fileCtx := logger.WithLogFields(ctx, logger.LogFields{
			Path:    logger.Ptr(entry.Path),
			Channel: logger.Ptr(channel),
		})

		info, err := a.resolve(fileCtx, entry.Path)
		if err != nil {
			result.LinkFailures++
			metrics.RecordLinkFailure()
			a.logger.ErrorContext(fileCtx, "skipping file: shared link not resolved", "error", err)
			continue
		}

		if channel == "" {
			a.logger.WarnContext(fileCtx, "file path has no channel segment under target dir, using webhook default channel", "target_dir", targetDir)
		}

		result.Files.Add(channel, info)
		metrics.RecordFileRelayed()
		a.logger.DebugContext(fileCtx, "file queued for slack", "shared_link", info.SharedLink)
	}

	return result
}

func (a *Aggregator) resolve(ctx context.Context, path string) (model.FileInfo, error) {
	existing, err := a.links.ListSharedLinks(ctx, path)
	if err != nil {
		return model.FileInfo{}, fmt.Errorf("listing shared links: %w", err)
	}

	url, err := a.links.EnsureSharedLink(ctx, path, existing)
	if err != nil {
		return model.FileInfo{}, fmt.Errorf("ensuring shared link: %w", err)
	}

	return model.NewFileInfo(path, url)
}

// ChannelForPath returns the first path segment below targetDir. Dropbox
// paths are case-insensitive, so the prefix match is too. A file sitting
// directly in targetDir yields its own name. Paths outside targetDir, or with
// nothing left after the prefix, map to "".
func ChannelForPath(targetDir, path string) string {
	root := strings.TrimSuffix(targetDir, "/")
	if len(path) <= len(root)+1 || !strings.EqualFold(path[:len(root)], root) || path[len(root)] != '/' {
		return ""
	}

	channel, _, _ := strings.Cut(path[len(root)+1:], "/")
	return channel
}
