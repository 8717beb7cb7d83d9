package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/digger/internal/shared"
)

const (
	// TagPath is the classification endpoint relative to the base URL.
	TagPath = "/v1/tag"
	// HealthPath is the liveness endpoint relative to the base URL.
	HealthPath = "/v1/health"
)

// HTTPTagger implements [Tagger] over JSON/HTTP.
type HTTPTagger struct {
	api    *APIService
	logger *log.Logger
}

type wireRequest struct {
	Items    []Item `json:"items"`
	Mode     string `json:"mode"`
	Strategy string `json:"strategy"`
}

// NewHTTPTagger builds a tagger from configuration. A blank base URL yields [shared.ErrCollaboratorUnavailable].
func NewHTTPTagger(cfg shared.TaggerConfig, logger *log.Logger) (*HTTPTagger, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: tagger.base_url is not set", shared.ErrCollaboratorUnavailable)
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &HTTPTagger{api: NewAPIService(cfg.BaseURL, NewHTTPClient(cfg)), logger: logger}, nil
}

// NewHTTPClient returns a client carrying the configured credentials and timeout.
func NewHTTPClient(cfg shared.TaggerConfig) *http.Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	var client *http.Client
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret, TokenURL: cfg.TokenURL}
		client = cc.Client(ctx)
	case cfg.APIKey != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}))
	default:
		return base
	}
	client.Timeout = timeout
	return client
}

// Name returns the host the tagger talks to.
func (t *HTTPTagger) Name() string { return t.api.BaseURL() }

// Check reports [shared.ErrCollaboratorUnavailable] when the service cannot be reached or answers the health
// endpoint with a 5xx status. Services without a health endpoint pass.
func (t *HTTPTagger) Check(ctx context.Context) error {
	resp, err := t.api.Get(ctx, HealthPath)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCollaboratorUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: health check status %d", shared.ErrCollaboratorUnavailable, resp.StatusCode)
	}
	t.logger.Debug("health check", "status", resp.StatusCode)
	return nil
}

// Tag sends one chunk to the service.
func (t *HTTPTagger) Tag(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(wireRequest{Items: req.Items, Mode: req.Mode.String(), Strategy: req.Strategy.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	start := time.Now()
	resp, err := t.api.Post(ctx, TagPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	t.logger.Debug("tag request", "items", len(req.Items), "status", resp.StatusCode, "elapsed", time.Since(start))

	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, truncate(resp.Body, 200))
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", shared.ErrAPIRequest)
	}

	var out Response
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
