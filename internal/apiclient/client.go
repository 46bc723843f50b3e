// Package apiclient is a thin HTTP client for konditiond's reference
// transport, grounded on the reference CLI's own API client: a bearer-
// token-authenticated http.Client wrapper with one method per endpoint.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client calls a konditiond instance's reference HTTP transport.
type Client struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// New builds a Client with a 30s request timeout, matching the reference
// CLI's own client default.
func New(baseURL, adminKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		AdminKey:   adminKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EvaluateContext is the subset of targeting.Context fields the CLI can
// pass through as query parameters.
type EvaluateContext struct {
	StableID   string
	Locale     string
	Platform   string
	AppVersion string
	Axes       map[string]string
}

// EvaluateResult mirrors httpapi's evaluateResponse wire shape.
type EvaluateResult struct {
	Feature          string `json:"feature"`
	Value            any    `json:"value"`
	Decision         string `json:"decision"`
	MatchedRuleIndex int    `json:"matchedRuleIndex"`
	SkippedByRollout int    `json:"skippedByRollout"`
	Bucket           int    `json:"bucket"`
	BucketComputed   bool   `json:"bucketComputed"`
}

func (c *Client) Evaluate(ctx context.Context, feature string, ec EvaluateContext) (EvaluateResult, error) {
	u, err := url.Parse(c.BaseURL + "/v1/evaluate/" + feature)
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("apiclient: parse url: %w", err)
	}
	q := u.Query()
	if ec.StableID != "" {
		q.Set("stableId", ec.StableID)
	}
	if ec.Locale != "" {
		q.Set("locale", ec.Locale)
	}
	if ec.Platform != "" {
		q.Set("platform", ec.Platform)
	}
	if ec.AppVersion != "" {
		q.Set("appVersion", ec.AppVersion)
	}
	for axis, val := range ec.Axes {
		q.Set("axis."+axis, val)
	}
	u.RawQuery = q.Encode()

	var result EvaluateResult
	err = c.do(ctx, http.MethodGet, u.String(), nil, false, &result)
	return result, err
}

// SnapshotResult mirrors httpapi's snapshotResponse wire shape.
type SnapshotResult struct {
	Namespace     string `json:"namespace"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
	Raw           string `json:"raw"`
}

func (c *Client) Export(ctx context.Context) (SnapshotResult, error) {
	var result SnapshotResult
	err := c.do(ctx, http.MethodGet, c.BaseURL+"/v1/snapshot", nil, false, &result)
	return result, err
}

// LoadResult mirrors httpapi's loadResponse wire shape.
type LoadResult struct {
	OK            bool   `json:"ok"`
	FeatureCount  int    `json:"featureCount"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
}

func (c *Client) Load(ctx context.Context, raw []byte) (LoadResult, error) {
	var result LoadResult
	err := c.do(ctx, http.MethodPost, c.BaseURL+"/v1/snapshots", raw, true, &result)
	return result, err
}

func (c *Client) LoadPatch(ctx context.Context, raw []byte) (LoadResult, error) {
	var result LoadResult
	err := c.do(ctx, http.MethodPost, c.BaseURL+"/v1/snapshots/patch", raw, true, &result)
	return result, err
}

// RollbackResult mirrors httpapi's rollbackResponse wire shape.
type RollbackResult struct {
	OK            bool   `json:"ok"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
}

func (c *Client) Rollback(ctx context.Context, steps int) (RollbackResult, error) {
	body, _ := json.Marshal(map[string]int{"steps": steps})
	var result RollbackResult
	err := c.do(ctx, http.MethodPost, c.BaseURL+"/v1/rollback", body, true, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, admin bool, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.AdminKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("apiclient: %s %s: status %s: %s", method, target, strconv.Itoa(resp.StatusCode), respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}
