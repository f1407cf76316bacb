package dropbox

import (
	"context"
	"errors"
)

type Audience string

const (
	AudiencePublic Audience = "public"
	AudienceTeam   Audience = "team"
)

type LinkSettings struct {
	Audience      Audience `json:"audience"`
	Access        string   `json:"access"`
	AllowDownload bool     `json:"allow_download"`
}

var (
	// existing links are narrowed to the team; new links are public.
	reuseSettings  = LinkSettings{Audience: AudienceTeam, Access: "viewer", AllowDownload: true}
	createSettings = LinkSettings{Audience: AudiencePublic, Access: "viewer", AllowDownload: true}
)

type SharedLink struct {
	URL string `json:"url"`
}

type listSharedLinksRequest struct {
	Path       string `json:"path"`
	DirectOnly bool   `json:"direct_only"`
}

type listSharedLinksResponse struct {
	Links []SharedLink `json:"links"`
}

type modifySharedLinkRequest struct {
	URL      string       `json:"url"`
	Settings LinkSettings `json:"settings"`
}

type createSharedLinkRequest struct {
	Path     string       `json:"path"`
	Settings LinkSettings `json:"settings"`
}

// ListSharedLinks returns the links that point directly at path. An empty
// slice means the file has never been shared.
func (c *Client) ListSharedLinks(ctx context.Context, path string) ([]SharedLink, error) {
	var resp listSharedLinksResponse
	if err := c.rpc(ctx, "sharing/list_shared_links", listSharedLinksRequest{Path: path, DirectOnly: true}, &resp); err != nil {
		return nil, err
	}
	if resp.Links == nil {
		return []SharedLink{}, nil
	}
	return resp.Links, nil
}

// EnsureSharedLink reuses the first existing link, re-applying the viewer
// settings, or creates a new public link when there is none. Reuse never
// creates a second link for the same file.
func (c *Client) EnsureSharedLink(ctx context.Context, path string, existing []SharedLink) (string, error) {
	if len(existing) > 0 {
		url := existing[0].URL
		if err := c.rpc(ctx, "sharing/modify_shared_link_settings", modifySharedLinkRequest{URL: url, Settings: reuseSettings}, nil); err != nil {
			return "", err
		}
		return url, nil
	}

	const endpoint = "sharing/create_shared_link_with_settings"
	var created SharedLink
	if err := c.rpc(ctx, endpoint, createSharedLinkRequest{Path: path, Settings: createSettings}, &created); err != nil {
		return "", err
	}
	if created.URL == "" {
		return "", &UpstreamError{Endpoint: endpoint, StatusCode: 200, Err: errors.New("response has no url")}
	}
	return created.URL, nil
}
