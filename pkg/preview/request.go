package preview

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/transform"
)

// Options carries per-request flags that are not part of the design.
type Options struct {
	// ID identifies an already saved QR code, if any.
	ID string
}

// Request is a fully serialized render request. Query is canonical: equal
// inputs always produce byte-identical queries and therefore equal hashes.
type Request struct {
	Type   string
	Data   map[string]any
	Design transform.BackendDesignConfig
	ID     string
	Query  string
	Hash   string
}

// BuildRequest transforms cfg for the renderer, serializes everything into
// the canonical query and hashes it.
func BuildRequest(rawData map[string]any, qrType string, cfg *design.Config, opts Options) (Request, error) {
	backend := transform.ToBackend(cfg)

	dataJSON, err := json.Marshal(rawData)
	if err != nil {
		return Request{}, fmt.Errorf("encode preview data: %w", err)
	}
	designJSON, err := json.Marshal(backend)
	if err != nil {
		return Request{}, fmt.Errorf("encode preview design: %w", err)
	}

	q := url.Values{}
	q.Set("data", string(dataJSON))
	q.Set("type", qrType)
	q.Set("design", string(designJSON))
	q.Set("renderText", "false")
	if opts.ID != "" {
		q.Set("id", opts.ID)
	}
	query := q.Encode()

	return Request{
		Type:   qrType,
		Data:   rawData,
		Design: backend,
		ID:     opts.ID,
		Query:  query,
		Hash:   hashQuery(query),
	}, nil
}

// hashQuery returns the first 16 hex characters of the BLAKE2b-256 digest.
func hashQuery(query string) string {
	sum := blake2b.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])[:16]
}

// Encode returns the query string sent to the renderer, including the hash.
func (r Request) Encode() string {
	return r.Query + "&h=" + url.QueryEscape(r.Hash)
}

// IsEmptyData reports whether there is nothing to render: no keys, or only
// blank values.
func IsEmptyData(data map[string]any) bool {
	for _, v := range data {
		if !isBlank(v) {
			return false
		}
	}
	return true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
