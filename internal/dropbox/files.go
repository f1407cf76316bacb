package dropbox

import (
	"context"
	"errors"

	"basegraph.app/dropbox2slack/internal/model"
)

// ChangePage is one list_folder/continue result. Cursor is always set and
// must be persisted even when Entries is empty.
type ChangePage struct {
	Cursor  string
	Entries []model.ChangeEntry
	HasMore bool
}

type latestCursorRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

type cursorResponse struct {
	Cursor string `json:"cursor"`
}

type continueRequest struct {
	Cursor string `json:"cursor"`
}

type listFolderEntry struct {
	Tag         string `json:".tag"`
	PathDisplay string `json:"path_display"`
}

type listFolderResponse struct {
	Cursor  string            `json:"cursor"`
	Entries []listFolderEntry `json:"entries"`
	HasMore bool              `json:"has_more"`
}

// GetLatestCursor returns a cursor positioned at the current state of path,
// covering changes recursively.
func (c *Client) GetLatestCursor(ctx context.Context, path string) (string, error) {
	const endpoint = "files/list_folder/get_latest_cursor"

	var resp cursorResponse
	if err := c.rpc(ctx, endpoint, latestCursorRequest{Path: path, Recursive: true}, &resp); err != nil {
		return "", err
	}
	if resp.Cursor == "" {
		return "", &UpstreamError{Endpoint: endpoint, StatusCode: 200, Err: errors.New("response has no cursor")}
	}
	return resp.Cursor, nil
}

// ListFolderContinue returns the changes recorded since cursor.
func (c *Client) ListFolderContinue(ctx context.Context, cursor string) (*ChangePage, error) {
	const endpoint = "files/list_folder/continue"

	var resp listFolderResponse
	if err := c.rpc(ctx, endpoint, continueRequest{Cursor: cursor}, &resp); err != nil {
		return nil, err
	}
	if resp.Cursor == "" {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: 200, Err: errors.New("response has no cursor")}
	}

	page := &ChangePage{
		Cursor:  resp.Cursor,
		HasMore: resp.HasMore,
		Entries: make([]model.ChangeEntry, 0, len(resp.Entries)),
	}
	for _, e := range resp.Entries {
		page.Entries = append(page.Entries, model.ChangeEntry{
			Kind: model.EntryKind(e.Tag),
			Path: e.PathDisplay,
		})
	}
	return page, nil
}
