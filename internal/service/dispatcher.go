package service

import (
	"context"
	"errors"
	"log/slog"

	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/internal/metrics"
	"basegraph.app/dropbox2slack/internal/model"
	"basegraph.app/dropbox2slack/internal/slack"
)

type DispatchResult struct {
	Sent      int
	Fallbacks int
	Failed    int
}

// Dispatcher posts one summary message per channel.
type Dispatcher struct {
	sender MessageSender
	logger *slog.Logger
}

func NewDispatcher(sender MessageSender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch sends every channel's message in channel order. A rejected channel
// is retried exactly once without a channel so the webhook's default channel
// receives it; every other failure is logged and not retried.
func (d *Dispatcher) Dispatch(ctx context.Context, files *model.ChannelFiles) DispatchResult {
	var result DispatchResult

	for _, channel := range files.Channels() {
		chCtx := logger.WithLogFields(ctx, logger.LogFields{Channel: logger.Ptr(channel)})
		msg := model.NewOutboundMessage(channel, files.Files(channel))

		d.logger.InfoContext(chCtx, "sending slack message", "files", len(files.Files(channel)))
		err := d.sender.Send(chCtx, msg)

		switch {
		case err == nil:
			result.Sent++
			metrics.RecordMessage(metrics.MessageSent)

		case errors.Is(err, slack.ErrChannelNotFound) && channel != "":
			d.logger.WarnContext(chCtx, "slack channel does not exist, sending to default channel", "error", err)
			result.Fallbacks++
			metrics.RecordMessage(metrics.MessageFallback)
			if retryErr := d.sender.Send(chCtx, msg.WithoutChannel()); retryErr != nil {
				d.logger.ErrorContext(chCtx, "default channel send failed", "error", retryErr)
			} else {
				d.logger.InfoContext(chCtx, "message delivered to default channel")
			}

		default:
			result.Failed++
			metrics.RecordMessage(metrics.MessageFailed)
			d.logger.ErrorContext(chCtx, "slack message failed", "error", err)
		}
	}

	return result
}
