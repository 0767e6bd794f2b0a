package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// maxArtifactBytes caps how much of a render response is read.
const maxArtifactBytes = 8 << 20

// Renderer turns a request into a raw response body.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

// RenderError is returned for non-2xx renderer responses.
type RenderError struct {
	StatusCode int
	Body       string
}

func (e *RenderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("renderer responded %d", e.StatusCode)
	}
	return fmt.Sprintf("renderer responded %d: %s", e.StatusCode, e.Body)
}

type HTTPRendererOptions struct {
	BaseURL string
	Path    string
	// Token, when set, is sent as a bearer token.
	Token  string
	Client *http.Client
}

// HTTPRenderer calls the external rendering service with a GET request. It
// sets no timeout of its own: requests end when the engine cancels them.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
}

func NewHTTPRenderer(opts HTTPRendererOptions) *HTTPRenderer {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, ts)
	}

	path := opts.Path
	if path == "" {
		path = "/preview"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &HTTPRenderer{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + path,
		client:   client,
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, req Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+req.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	httpReq.Header.Set("Accept", "image/svg+xml, application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &RenderError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
