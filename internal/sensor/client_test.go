package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feedJSON = `{
  "channel": {
    "id": 12345,
    "name": "uv-channel",
    "description": "rooftop UV sensor",
    "created_at": "2024-01-01T00:00:00Z",
    "updated_at": "2024-06-01T00:00:00Z"
  },
  "feeds": [
    {"field1": "1.0", "created_at": "t1", "entry_id": 1},
    {"field1": null, "created_at": "t2", "entry_id": 2},
    {"field1": "3.0", "created_at": "t3", "entry_id": 3}
  ]
}`

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(srv.Client(), ClientConfig{
		BaseURL:   srv.URL,
		ChannelID: "12345",
		ReadKey:   "read-key",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestFetchFeed(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotResults string
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotResults = r.URL.Query().Get("results")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedJSON))
	})

	page, err := newClientFor(t, srv).FetchFeed(context.Background(), "30")
	require.NoError(t, err)
	require.Equal(t, "/channels/12345/feeds.json", gotPath)
	require.Equal(t, "read-key", gotKey)
	require.Equal(t, "30", gotResults)
	require.Equal(t, "uv-channel", page.Channel.Name)
	require.Len(t, page.Feeds, 3)
}

func TestFetchFeedUpstreamError(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	_, err := newClientFor(t, srv).FetchFeed(context.Background(), "30")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

type failingClient struct {
	calls int
}

func (f *failingClient) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	return nil, errors.New("dial tcp: connection refused")
}

func TestFetchFeedRetriesThenStops(t *testing.T) {
	t.Parallel()

	fc := &failingClient{}
	c, err := NewClient(fc, ClientConfig{
		BaseURL:   "http://feed.invalid",
		ChannelID: "12345",
		ReadKey:   "read-key",
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.FetchFeed(context.Background(), "30")
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Equal(t, fetchRetries, fc.calls)
	// two pauses between three attempts, none after the last one
	require.Less(t, elapsed, 550*time.Millisecond)
}

func TestFetchFeedRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"channel":{},"feeds":[]}`))
	})

	_, err := newClientFor(t, srv).FetchFeed(context.Background(), "30")
	require.Error(t, err)
	require.Contains(t, err.Error(), "channel name")
}

func TestSummaryEndpoint(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	var gotResults string
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotResults = r.URL.Query().Get("results")
		_, _ = w.Write([]byte(feedJSON))
	})

	h := NewHandler(newClientFor(t, srv), HandlerConfig{DefaultResults: "30", DefaultRawResults: "2"}, zap.NewNop().Sugar())
	r := gin.New()
	r.GET("/sensor-data", h.Summary)
	r.GET("/sensor-data/hourly", h.Raw)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensor-data", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "30", gotResults, "default results forwarded upstream")
	require.JSONEq(t, `{
		"sensorData": {"averageValue": 2, "lastTimestamp": "t3"},
		"channelInfo": {"name": "uv-channel", "description": "rooftop UV sensor"}
	}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensor-data/hourly?results=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "5", gotResults, "explicit results wins over default")
	require.JSONEq(t, `{
		"sensorData": [
			{"value": 1.0, "timestamp": "t1"},
			{"value": 3.0, "timestamp": "t3"}
		],
		"channelInfo": {"name": "uv-channel", "description": "rooftop UV sensor"}
	}`, w.Body.String())
}

func TestSummaryEndpointUpstreamFailure(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	h := NewHandler(newClientFor(t, srv), HandlerConfig{DefaultResults: "30", DefaultRawResults: "2"}, zap.NewNop().Sugar())
	r := gin.New()
	r.GET("/sensor-data", h.Summary)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensor-data", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Message)
}
