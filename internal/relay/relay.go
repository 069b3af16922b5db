// Package relay submits accepted generation requests to the external
// form-relay endpoint. The system has no visibility into fulfillment
// beyond the HTTP status code, and a failed submission never reverses an
// already-consumed credit.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"viralgen/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client posts generation requests to a fixed relay URL.
type Client struct {
	url    string
	http   *http.Client
	logger zerolog.Logger
}

// NewClient constructs a relay client for the given endpoint.
func NewClient(url string, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

type payload struct {
	Subject   string `json:"_subject"`
	User      string `json:"User"`
	Request   string `json:"Request"`
	Voice     string `json:"Voice"`
	Style     string `json:"Style"`
	Timestamp string `json:"Timestamp"`
	UserRole  string `json:"UserRole"`
}

// Submit sends the request to the relay. Any 2xx response is success;
// anything else surfaces as *domain.RelayError. There is no automatic
// retry: the caller reports the failure and the user may retry the
// action.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) error {
	body, err := json.Marshal(payload{
		Subject:   "New ViralGen Request",
		User:      req.Email,
		Request:   req.ComposedPrompt(),
		Voice:     req.Voice,
		Style:     req.Style,
		Timestamp: req.Timestamp.UTC().Format(time.RFC3339),
		UserRole:  string(req.Tier),
	})
	if err != nil {
		return &domain.RelayError{Err: fmt.Errorf("encode payload: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &domain.RelayError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Msg("relay submission failed")
		return &domain.RelayError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().Int("status", resp.StatusCode).Msg("relay rejected submission")
		return &domain.RelayError{Status: resp.StatusCode}
	}
	return nil
}
