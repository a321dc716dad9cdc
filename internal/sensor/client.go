package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const fetchRetries = 3

// ClientConfig identifies the upstream channel and read credentials.
type ClientConfig struct {
	BaseURL   string
	ChannelID string
	ReadKey   string
	Timeout   time.Duration
}

// ClientConfigFromEnv reads the upstream feed config from env vars.
func ClientConfigFromEnv() ClientConfig {
	base := os.Getenv("THINGSPEAK_BASE_URL")
	if base == "" {
		base = "https://api.thingspeak.com"
	}
	return ClientConfig{
		BaseURL:   base,
		ChannelID: os.Getenv("THINGSPEAK_CHANNEL_ID"),
		ReadKey:   os.Getenv("THINGSPEAK_READ_API_KEY"),
		Timeout:   10 * time.Second,
	}
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches feed pages from the upstream channel.
type Client struct {
	client  httpClient
	baseURL *url.URL
	cfg     ClientConfig
}

// NewClient builds a feed client. Pass nil to use a default http.Client
// bounded by the configured timeout.
func NewClient(client httpClient, cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed base url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{client: client, baseURL: base, cfg: cfg}, nil
}

// FetchFeed retrieves and validates the last `results` entries of the
// channel feed. Transport errors are retried a few times with a short pause;
// HTTP-level failures are not.
func (c *Client) FetchFeed(ctx context.Context, results string) (*FeedPage, error) {
	feedURL := c.baseURL.JoinPath("channels", c.cfg.ChannelID, "feeds.json")
	q := feedURL.Query()
	q.Set("api_key", c.cfg.ReadKey)
	q.Set("results", results)
	feedURL.RawQuery = q.Encode()

	var resp *http.Response
	var err error
	for attempt := 0; attempt < fetchRetries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, feedURL.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err = c.client.Do(req)
		if err == nil || attempt == fetchRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	page := new(FeedPage)
	if err := json.Unmarshal(body, page); err != nil {
		return nil, fmt.Errorf("decode feed payload: %w", err)
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}
