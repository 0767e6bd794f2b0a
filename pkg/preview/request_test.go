package preview

import (
	"net/url"
	"testing"

	"github.com/zdunecki/qrwizard/pkg/design"
)

func TestBuildRequestIsCanonical(t *testing.T) {
	cfg := &design.Config{ForegroundFill: &design.Fill{Type: design.FillSolid, Color: "#112233"}}

	a, err := BuildRequest(map[string]any{"url": "https://example.com", "utm": "x"}, "url", cfg, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := BuildRequest(map[string]any{"utm": "x", "url": "https://example.com"}, "url", cfg.Clone(), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.Query != b.Query || a.Hash != b.Hash {
		t.Fatalf("equal inputs produced different requests:\n%s\n%s", a.Query, b.Query)
	}
	if len(a.Hash) != 16 {
		t.Fatalf("hash length = %d", len(a.Hash))
	}

	c, _ := BuildRequest(map[string]any{"url": "https://example.org"}, "url", cfg, Options{})
	if c.Hash == a.Hash {
		t.Fatal("different data produced the same hash")
	}
	d, _ := BuildRequest(map[string]any{"url": "https://example.com", "utm": "x"}, "url", cfg, Options{ID: "qr_1"})
	if d.Hash == a.Hash {
		t.Fatal("id is not part of the hash")
	}
}

func TestRequestEncodeParameters(t *testing.T) {
	req, err := BuildRequest(map[string]any{"text": "hi"}, "text", nil, Options{ID: "qr_9"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	q, err := url.ParseQuery(req.Encode())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{
		"data":       `{"text":"hi"}`,
		"type":       "text",
		"renderText": "false",
		"id":         "qr_9",
		"h":          req.Hash,
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Get("design") == "" {
		t.Error("design missing")
	}
}

func TestIsEmptyData(t *testing.T) {
	cases := []struct {
		name string
		data map[string]any
		want bool
	}{
		{"nil", nil, true},
		{"no keys", map[string]any{}, true},
		{"blank values", map[string]any{"url": "  ", "tags": []string{}, "x": nil}, true},
		{"text", map[string]any{"url": "https://example.com"}, false},
		{"false is a value", map[string]any{"hidden": false}, false},
		{"zero is a value", map[string]any{"n": 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsEmptyData(c.data); got != c.want {
				t.Fatalf("IsEmptyData = %v, want %v", got, c.want)
			}
		})
	}
}
