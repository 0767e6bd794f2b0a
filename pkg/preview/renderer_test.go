package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPRendererSendsRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(testSVG))
	}))
	defer srv.Close()

	r := NewHTTPRenderer(HTTPRendererOptions{BaseURL: srv.URL + "/", Path: "api/qr/preview", Token: "secret"})
	req, err := BuildRequest(map[string]any{"url": "https://example.com"}, "url", nil, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	body, err := r.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(body) != testSVG {
		t.Fatalf("body = %q", body)
	}
	if gotPath != "/api/qr/preview" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if h := gotQuery["h"]; len(h) != 1 || h[0] != req.Hash {
		t.Errorf("h = %v, want %s", h, req.Hash)
	}
	if rt := gotQuery["renderText"]; len(rt) != 1 || rt[0] != "false" {
		t.Errorf("renderText = %v", rt)
	}
}

func TestHTTPRendererNoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected authorization header")
		}
		w.Write([]byte(testSVG))
	}))
	defer srv.Close()

	r := NewHTTPRenderer(HTTPRendererOptions{BaseURL: srv.URL})
	req, _ := BuildRequest(map[string]any{"text": "x"}, "text", nil, Options{})
	if _, err := r.Render(context.Background(), req); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestHTTPRendererStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "renderer overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(HTTPRendererOptions{BaseURL: srv.URL})
	req, _ := BuildRequest(map[string]any{"text": "x"}, "text", nil, Options{})
	_, err := r.Render(context.Background(), req)

	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RenderError", err)
	}
	if rerr.StatusCode != http.StatusServiceUnavailable || rerr.Body != "renderer overloaded" {
		t.Fatalf("render error = %+v", rerr)
	}
}

func TestHTTPRendererHonorsCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	r := NewHTTPRenderer(HTTPRendererOptions{BaseURL: srv.URL})
	req, _ := BuildRequest(map[string]any{"text": "x"}, "text", nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, req); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
