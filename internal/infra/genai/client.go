// Package genai talks to the Gemini and Imagen REST endpoints.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"coursecraft/config"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
)

const defaultTimeout = 60 * time.Second

// client implements service.ContentGenerator.
type client struct {
	httpClient *http.Client
	baseURL    string
	textModel  string
	imageModel string
	available  bool
	logger     *slog.Logger
}

// Params holds dependencies for the content generator, injected by Fx
type Params struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewContentGenerator builds the gateway. Without an API key it still returns
// a generator whose every call fails with ErrGenerationUnavailable.
func NewContentGenerator(params Params) (service.ContentGenerator, error) {
	cfg := params.Config.GenAI
	if cfg.APIKey == "" {
		params.Logger.Warn("Content generation disabled: no API key configured")

		return New(nil, cfg, params.Logger), nil
	}

	httpClient, _, err := htransport.NewClient(params.Ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "create generation http client")
	}

	return New(httpClient, cfg, params.Logger), nil
}

// New wraps an HTTP client that already carries the API credential. A nil
// client marks the generator unavailable.
func New(httpClient *http.Client, cfg *config.GenAIConfig, logger *slog.Logger) service.ContentGenerator {
	c := &client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		available:  httpClient != nil,
		logger:     logger,
	}

	if c.available && c.httpClient.Timeout == 0 {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		clone := *c.httpClient
		clone.Timeout = timeout
		c.httpClient = &clone
	}

	return c
}

// Available implements service.ContentGenerator.
func (c *client) Available() bool {
	return c.available
}

// call POSTs body to {baseURL}/v1beta/models/{model}:{method} and decodes the
// response into out.
func (c *client) call(ctx context.Context, model, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WithStack(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:%s", c.baseURL, model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", model, method)
	}
	defer resp.Body.Close()

	c.logger.Debug("[GenAI] Call finished",
		slog.String("model", model),
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err := googleapi.CheckResponse(resp); err != nil {
		return errors.WithStack(err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", method)
	}

	return nil
}

// classify turns a transport or API failure into the domain error for feature.
func (c *client) classify(err error, feature string) error {
	if err == nil {
		return nil
	}

	c.logger.Error("[GenAI] Generation failed",
		slog.String("feature", feature),
		slog.Any("error", err),
	)

	if isQuota(err) {
		return domainerrors.ErrGenerationQuotaExceeded
	}

	return domainerrors.GenerationFailed(feature)
}

var quotaMarkers = []string{"quota", "rate limit", "resource has been exhausted"}

func isQuota(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
