package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"basegraph.app/dropbox2slack/internal/dropbox"
	"basegraph.app/dropbox2slack/internal/model"
)

// fakeLinks resolves links from fixed tables keyed by path.
type fakeLinks struct {
	existing map[string][]dropbox.SharedLink
	created  map[string]string
	listErr  map[string]error
	calls    []string
}

func newFakeLinks() *fakeLinks {
	return &fakeLinks{
		existing: make(map[string][]dropbox.SharedLink),
		created:  make(map[string]string),
		listErr:  make(map[string]error),
	}
}

func (f *fakeLinks) ListSharedLinks(_ context.Context, path string) ([]dropbox.SharedLink, error) {
	f.calls = append(f.calls, "list:"+path)
	if err := f.listErr[path]; err != nil {
		return nil, err
	}
	return f.existing[path], nil
}

func (f *fakeLinks) EnsureSharedLink(_ context.Context, path string, existing []dropbox.SharedLink) (string, error) {
	if len(existing) > 0 {
		f.calls = append(f.calls, "modify:"+path)
		return existing[0].URL, nil
	}
	f.calls = append(f.calls, "create:"+path)
	return f.created[path], nil
}

// fakeSender records messages and replays queued errors in order.
type fakeSender struct {
	sent []model.OutboundMessage
	errs []error
}

func (f *fakeSender) Send(_ context.Context, msg model.OutboundMessage) error {
	f.sent = append(f.sent, msg)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

type apiCall struct {
	Endpoint string
	Body     map[string]any
}

// upstreamMock fakes both the Dropbox RPC API (under /2/) and the Slack
// webhook (at /slack) on one httptest server.
type upstreamMock struct {
	server *httptest.Server

	mu            sync.Mutex
	calls         []apiCall
	slackMessages []map[string]any
	latestCursor  string
	pages         []string // list_folder/continue bodies, served in order
	continueError *mockReply
	links         map[string][]string // path -> existing link urls
	createdURL    string
	slackReplies  []mockReply // served in order, then 200 ok

	// failWhenDrained makes continue return 500 once pages is empty.
	failWhenDrained bool
}

type mockReply struct {
	status int
	body   string
}

func newUpstreamMock() *upstreamMock {
	m := &upstreamMock{
		latestCursor: "cursor-value",
		links:        make(map[string][]string),
		createdURL:   "https://created.shared.link",
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *upstreamMock) dropboxURL() string { return m.server.URL + "/2" }
func (m *upstreamMock) webhookURL() string { return m.server.URL + "/slack" }
func (m *upstreamMock) close() { m.server.Close() }

func (m *upstreamMock) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	m.mu.Lock()
	defer m.mu.Unlock()

	if r.URL.Path == "/slack" {
		m.slackMessages = append(m.slackMessages, body)
		reply := mockReply{status: http.StatusOK, body: "ok"}
		if len(m.slackReplies) > 0 {
			reply = m.slackReplies[0]
			m.slackReplies = m.slackReplies[1:]
		}
		w.WriteHeader(reply.status)
		_, _ = io.WriteString(w, reply.body)
		return
	}

	endpoint := strings.TrimPrefix(r.URL.Path, "/2/")
	m.calls = append(m.calls, apiCall{Endpoint: endpoint, Body: body})

	switch endpoint {
	case "files/list_folder/get_latest_cursor":
		writeJSON(w, http.StatusOK, map[string]any{"cursor": m.latestCursor})
	case "files/list_folder/continue":
		if m.continueError != nil {
			w.WriteHeader(m.continueError.status)
			_, _ = io.WriteString(w, m.continueError.body)
			return
		}
		if len(m.pages) == 0 && m.failWhenDrained {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		page := `{"cursor":"UT-cursor","entries":[]}`
		if len(m.pages) > 0 {
			page = m.pages[0]
			m.pages = m.pages[1:]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, page)
	case "sharing/list_shared_links":
		path, _ := body["path"].(string)
		links := []map[string]string{}
		for _, u := range m.links[path] {
			links = append(links, map[string]string{"url": u})
		}
		writeJSON(w, http.StatusOK, map[string]any{"links": links})
	case "sharing/modify_shared_link_settings":
		writeJSON(w, http.StatusOK, map[string]any{"url": body["url"]})
	case "sharing/create_shared_link_with_settings":
		writeJSON(w, http.StatusOK, map[string]any{"url": m.createdURL})
	default:
		http.NotFound(w, r)
	}
}

func (m *upstreamMock) endpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Endpoint)
	}
	return out
}

func (m *upstreamMock) callsTo(endpoint string) []apiCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []apiCall
	for _, c := range m.calls {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (m *upstreamMock) messages() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any(nil), m.slackMessages...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
