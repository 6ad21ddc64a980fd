package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pixelsmith/quant"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestGenerateImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0xDE, 0xAD}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/images" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: have %q", got)
		}

		var req imageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("could not decode request: %v", err)
		}
		if req.Prompt != "a tiny dragon" || req.AspectRatio != "4:3" {
			t.Errorf("unexpected request body: %+v", req)
		}

		json.NewEncoder(w).Encode(imageResponse{
			Image: base64.StdEncoding.EncodeToString(payload),
		})
	})

	data, err := c.GenerateImage(context.Background(), "a tiny dragon", quant.AspectLandscape)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("payload length: have %d, want %d", len(data), len(payload))
	}
}

func TestGenerateImageFailureTaxonomy(t *testing.T) {
	for _, tc := range []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			"unauthorized",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			ErrAuth,
		},
		{
			"forbidden",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			ErrAuth,
		},
		{
			"quota",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			ErrQuota,
		},
		{
			"blocked",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(imageResponse{BlockReason: "safety"})
			},
			ErrContentBlocked,
		},
		{
			"empty result",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(imageResponse{})
			},
			ErrEmptyResult,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, tc.handler)
			_, err := c.GenerateImage(context.Background(), "p", quant.AspectSquare)
			if !errors.Is(err, tc.want) {
				t.Errorf("have %v, want %v", err, tc.want)
			}
		})
	}
}

func TestGenerateImageTransportErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			"malformed json",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{")) },
		},
		{
			"malformed base64",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(imageResponse{Image: "!!not-base64!!"})
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, tc.handler)
			_, err := c.GenerateImage(context.Background(), "p", quant.AspectSquare)
			var trErr *TransportError
			if !errors.As(err, &trErr) {
				t.Errorf("have %v, want TransportError", err)
			}
		})
	}
}

func TestGenerateImageRejectsBadAspect(t *testing.T) {
	c := New("k")
	if _, err := c.GenerateImage(context.Background(), "p", "nope"); err == nil {
		t.Error("invalid aspect ratio should fail before any request")
	}
}

func TestGeneratePrompt(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/prompts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(promptResponse{Text: "  a fox made of autumn leaves \n"})
	})

	text, err := c.GeneratePrompt(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a fox made of autumn leaves" {
		t.Errorf("prompt not trimmed: %q", text)
	}
}

func TestGeneratePromptEmptyText(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(promptResponse{Text: "   \n\t"})
	})

	_, err := c.GeneratePrompt(context.Background())
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("have %v, want %v", err, ErrEmptyText)
	}
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	c := New("k")
	c.BaseURL = "http://127.0.0.1:1"

	_, err := c.GeneratePrompt(context.Background())
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Errorf("have %v, want TransportError", err)
	}
}
