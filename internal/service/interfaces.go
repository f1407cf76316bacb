package service

import (
	"context"

	"basegraph.app/dropbox2slack/internal/dropbox"
	"basegraph.app/dropbox2slack/internal/model"
)

// ChangeFeed is the list_folder half of the Dropbox client.
type ChangeFeed interface {
	GetLatestCursor(ctx context.Context, path string) (string, error)
	ListFolderContinue(ctx context.Context, cursor string) (*dropbox.ChangePage, error)
}

// LinkResolver is the shared-link half of the Dropbox client.
type LinkResolver interface {
	ListSharedLinks(ctx context.Context, path string) ([]dropbox.SharedLink, error)
	EnsureSharedLink(ctx context.Context, path string, existing []dropbox.SharedLink) (string, error)
}

// MessageSender delivers one message without retrying.
type MessageSender interface {
	Send(ctx context.Context, msg model.OutboundMessage) error
}
