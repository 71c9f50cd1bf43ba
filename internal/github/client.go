// Package github is a small client for the GitHub releases REST API.
//
// It covers the three lookups the resolver needs (latest release, release by
// tag and a paginated release listing) and builds the authenticated request
// used to download an asset by id. A 404 maps to ErrReleaseNotFound and an
// error envelope maps to *APIError, which also matches ErrReleaseNotFound.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds metadata requests. Asset downloads use their own client.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "gitrel"

	mediaTypeJSON   = "application/vnd.github.v3+json"
	mediaTypeBinary = "application/octet-stream"

	// maxErrorBody caps how much of an error body is read.
	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// Client talks to the GitHub releases API.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
	log       *zap.SugaredLogger
}

// NewClient creates a client, filling unset Config fields with defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		log:       cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c
}

// LatestRelease returns the newest non-draft, non-prerelease release.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	return c.getRelease(ctx, c.repoURL(owner, repo, "releases", "latest"))
}

// ReleaseByTag returns the release whose tag equals tag exactly.
func (c *Client) ReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	return c.getRelease(ctx, c.repoURL(owner, repo, "releases", "tags", tag))
}

// ListReleases returns one page of releases, newest first. Pages start at 1.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, page, perPage int) ([]Release, error) {
	u := c.repoURL(owner, repo, "releases") + "?" + url.Values{
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := decodeEnvelope(http.StatusOK, trimmed); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("decode releases page %d: expected a list", page)
	}

	var releases []Release
	if err := json.Unmarshal(trimmed, &releases); err != nil {
		return nil, fmt.Errorf("decode releases page %d: %w", page, err)
	}
	return releases, nil
}

// AssetURL is the API endpoint that serves an asset's bytes.
func (c *Client) AssetURL(owner, repo string, id int64) string {
	return c.repoURL(owner, repo, "releases", "assets", strconv.FormatInt(id, 10))
}

// NewAssetRequest builds an authenticated octet-stream request for an asset.
func (c *Client) NewAssetRequest(ctx context.Context, owner, repo string, id int64) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.AssetURL(owner, repo, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, mediaTypeBinary)
	return req, nil
}

func (c *Client) getRelease(ctx context.Context, u string) (*Release, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Release
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	if payload.TagName == "" && payload.Message != "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: payload.Message}
	}

	rel := payload.Release
	return &rel, nil
}

// get performs a JSON GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, mediaTypeJSON)

	c.log.Debugw("github request", "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrReleaseNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err := decodeEnvelope(resp.StatusCode, body); err != nil {
			return nil, err
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
}

func (c *Client) repoURL(owner, repo string, segments ...string) string {
	parts := []string{c.baseURL, "repos", url.PathEscape(owner), url.PathEscape(repo)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}

// decodeEnvelope returns an *APIError when body is an error envelope, nil otherwise.
func decodeEnvelope(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == "" {
		return nil
	}
	return &APIError{StatusCode: status, Message: env.Message}
}
