package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crowdpulse/pkg/config"
)

// Client talks to an Apify-compatible actor-run API. An ingestion run
// is two calls: start an actor synchronously, then list the items the
// run collected into its default dataset.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ActorRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data ActorRun `json:"data"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ApifyBaseURL, "/"),
		token:   cfg.ApifyToken,
		// Synchronous actor runs block until the crawl finishes
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// actorPath converts "owner/name" actor IDs to the "owner~name" form
// the API expects in URLs.
func actorPath(actorID string) string {
	return strings.ReplaceAll(actorID, "/", "~")
}

// RunActor starts an actor with the given input and waits for the run
// to finish.
func (c *Client) RunActor(ctx context.Context, actorID string, input interface{}) (*ActorRun, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync?token=%s",
		c.baseURL, actorPath(actorID), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor run request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("actor run returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode actor run response: %w", err)
	}
	if envelope.Data.DefaultDatasetID == "" {
		return nil, fmt.Errorf("actor run has no dataset")
	}

	return &envelope.Data, nil
}

// ListItems returns the raw items a run collected. Items are returned
// undecoded so each platform adapter can apply its own field rules.
func (c *Client) ListItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?format=json&clean=true&token=%s",
		c.baseURL, url.PathEscape(datasetID), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset items request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset items returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}

	return items, nil
}

// CheckToken verifies the configured API token by fetching the account
// it belongs to. Used by the connectivity check, not by ingestion runs.
func (c *Client) CheckToken(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v2/users/me?token=%s", c.baseURL, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token check returned status %d", resp.StatusCode)
	}
	return nil
}
