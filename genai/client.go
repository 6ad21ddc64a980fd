// Package genai calls the remote generation service for raster images
// and creative text prompts. Every failure maps to one distinct error
// in the taxonomy below; nothing is retried.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pixelsmith/quant"
)

const (
	DefaultBaseURL    = "https://api.pixelsmith.dev"
	DefaultImageModel = "raster-2"
	DefaultTextModel  = "muse-1"

	maxResponseBytes = 32 << 20
)

var (
	// ErrAuth means the service rejected the API key.
	ErrAuth = errors.New("generation service rejected the API key")
	// ErrQuota means the account's generation quota is exhausted.
	ErrQuota = errors.New("generation quota exhausted")
	// ErrContentBlocked means the prompt tripped the content filter.
	ErrContentBlocked = errors.New("prompt was blocked by the content filter")
	// ErrEmptyResult means the service answered without image data.
	ErrEmptyResult = errors.New("generation returned no image")
	// ErrEmptyText means the returned prompt was blank after trimming.
	ErrEmptyText = errors.New("generation returned no text")
)

// TransportError wraps network and protocol faults from the remote
// call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the generation service.
type Client struct {
	BaseURL    string
	APIKey     string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
}

// New returns a client with the default endpoint and models.
func New(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		ImageModel: DefaultImageModel,
		TextModel:  DefaultTextModel,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type imageRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type imageResponse struct {
	Image       string `json:"image"`
	BlockReason string `json:"block_reason,omitempty"`
}

type promptRequest struct {
	Model string `json:"model"`
}

type promptResponse struct {
	Text string `json:"text"`
}

// GenerateImage asks the service for a raster image matching the prompt
// and aspect ratio and returns the encoded bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string, ar quant.AspectRatio) ([]byte, error) {
	if _, _, err := ar.Ratio(); err != nil {
		return nil, err
	}

	var resp imageResponse
	err := c.post(ctx, "/v1/images", imageRequest{
		Model:       c.ImageModel,
		Prompt:      prompt,
		AspectRatio: string(ar),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrContentBlocked, resp.BlockReason)
	}
	if resp.Image == "" {
		return nil, ErrEmptyResult
	}

	data, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed image payload: %w", err)}
	}
	return data, nil
}

// GeneratePrompt asks the service for a short creative prompt.
func (c *Client) GeneratePrompt(ctx context.Context) (string, error) {
	var resp promptResponse
	if err := c.post(ctx, "/v1/prompts", promptRequest{Model: c.TextModel}, &resp); err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("could not encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return ErrAuth
	case res.StatusCode == http.StatusTooManyRequests:
		return ErrQuota
	case res.StatusCode != http.StatusOK:
		return &TransportError{Err: fmt.Errorf("unexpected status %s", res.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Err: fmt.Errorf("could not read response: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Err: fmt.Errorf("could not decode response: %w", err)}
	}
	return nil
}
