package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/waypoint"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...httpAdapter.Option) *httptest.Server {
	t.Helper()
	client, err := waypoint.New()
	require.NoError(t, err)
	srv := httptest.NewServer(httpAdapter.NewHandler(client, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestServer_StatelessProcess(t *testing.T) {
	srv := newServer(t)

	resp, out := call(t, srv, http.MethodPost, "/v1/process", domain.TurnRequest{
		Input: "trip to Denver next weekend",
		Mode:  domain.ModeQuick,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "travel", out["domain"])
	assert.Equal(t, "gathering", out["phase"])
	assert.NotNil(t, out["conversation"])
}

func TestServer_ConversationLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, out := call(t, srv, http.MethodPost, "/v1/conversations", map[string]any{"id": "c1", "input": "I want to plan a trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "destination", out["question"])

	resp, _ = call(t, srv, http.MethodPost, "/v1/conversations", map[string]any{"id": "c1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var last map[string]any
	for _, input := range []string{"Denver", "next weekend", "Chicago", "my wife", "$800", "yes"} {
		resp, last = call(t, srv, http.MethodPost, "/v1/conversations/c1/turns", map[string]any{"input": input})
		require.Equal(t, http.StatusOK, resp.StatusCode, input)
	}
	assert.Equal(t, "confirmed", last["phase"])
	activity := last["created_activity"].(map[string]any)
	id := activity["id"].(string)

	resp, out = call(t, srv, http.MethodGet, "/v1/activities/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Trip to Denver", out["title"])

	resp, out = call(t, srv, http.MethodGet, "/v1/activities/"+id+"/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out["tasks"])

	resp, out = call(t, srv, http.MethodGet, "/v1/conversations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"c1"}, out["conversations"])

	resp, out = call(t, srv, http.MethodGet, "/v1/conversations/c1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", out["phase"])

	resp, _ = call(t, srv, http.MethodDelete, "/v1/conversations/c1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodGet, "/v1/conversations/c1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ErrorMapping(t *testing.T) {
	srv := newServer(t, httpAdapter.WithMaxInputSize(16))

	resp, _ := call(t, srv, http.MethodPost, "/v1/conversations", map[string]any{"id": "s1", "input": "trip", "mode": "smart"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out := call(t, srv, http.MethodPost, "/v1/conversations/s1/turns", map[string]any{"input": "Rome", "mode": "quick"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, out["error"], "mode")

	resp, _ = call(t, srv, http.MethodPost, "/v1/process", map[string]any{"input": "hi", "mode": "fast"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodPost, "/v1/process", map[string]any{"input": strings.Repeat("a", 17)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodGet, "/v1/activities/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/process", strings.NewReader("{broken"))
	raw, err := srv.Client().Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

type unreadableStore struct {
	*memory.Store
}

func (unreadableStore) Load(context.Context, string) (*domain.Conversation, error) {
	return nil, fmt.Errorf("%w: backend unavailable", domain.ErrStorage)
}

func TestServer_StartConversationLookupFailure(t *testing.T) {
	store := unreadableStore{memory.NewStore()}
	client, err := waypoint.New(waypoint.WithConversationStore(store))
	require.NoError(t, err)
	srv := httptest.NewServer(httpAdapter.NewHandler(client))
	t.Cleanup(srv.Close)

	resp, out := call(t, srv, http.MethodPost, "/v1/conversations", map[string]any{"id": "c1", "input": "trip to Rome"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, out["error"], "backend unavailable")

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "nothing is created when the lookup fails")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, httpAdapter.StatusFor(domain.ErrStorage))
	assert.Equal(t, http.StatusGatewayTimeout, httpAdapter.StatusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusBadRequest, httpAdapter.StatusFor(domain.ErrUnknownDomain))
	assert.Equal(t, http.StatusInternalServerError, httpAdapter.StatusFor(assert.AnError))
}

func TestServer_HealthInfoMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	srv := newServer(t, httpAdapter.WithMetricsHandler(metrics.Handler()))

	resp, out := call(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])

	_, out = call(t, srv, http.MethodGet, "/info", nil)
	assert.Equal(t, waypoint.Version, out["version"])

	raw, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusOK, raw.StatusCode)

	_, out = call(t, srv, http.MethodGet, "/v1/catalog", nil)
	assert.Equal(t, "general", out["default"])
}

func TestServer_EventsStreamMergePatches(t *testing.T) {
	srv := newServer(t)
	_, _ = call(t, srv, http.MethodPost, "/v1/conversations", map[string]any{"id": "c1", "input": "I want to plan a trip"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/conversations/c1/events?watch=slots", nil)
	require.NoError(t, err)
	stream, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	lines := bufio.NewScanner(stream.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	resp, _ := call(t, srv, http.MethodPost, "/v1/conversations/c1/turns", map[string]any{"input": "Denver"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data string
	for lines.Scan() {
		if after, ok := strings.CutPrefix(lines.Text(), "data: {"); ok {
			data = "{" + after
			break
		}
	}
	require.NotEmpty(t, data)

	var patch map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &patch))
	slots := patch["slots"].(map[string]any)
	assert.Contains(t, slots, "location.destination")
	assert.NotContains(t, patch, "id", "merge patches carry only changes")
}
