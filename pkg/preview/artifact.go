package preview

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrEmptyArtifact     = errors.New("renderer returned an empty preview")
	ErrMalformedArtifact = errors.New("renderer returned a malformed preview")
)

// rootMarker must appear in every accepted artifact.
const rootMarker = "<svg"

const svgDataURIPrefix = "data:image/svg+xml;base64,"

// envelope is the JSON form of a render response. Renderers have used each of
// these field names.
type envelope struct {
	SVG   string `json:"svg"`
	Data  string `json:"data"`
	Image string `json:"image"`
}

// ParseArtifact accepts either a JSON envelope carrying the (possibly base64
// encoded) markup or the raw markup itself, and validates the result.
func ParseArtifact(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", ErrEmptyArtifact
	}

	markup := string(trimmed)
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return "", ErrMalformedArtifact
		}
		encoded := firstNonEmpty(env.SVG, env.Data, env.Image)
		if encoded == "" {
			return "", ErrEmptyArtifact
		}
		markup = decodeMarkup(encoded)
	}

	if !strings.Contains(markup, rootMarker) {
		return "", ErrMalformedArtifact
	}
	return markup, nil
}

func decodeMarkup(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, svgDataURIPrefix)
	if strings.Contains(v, rootMarker) {
		return v
	}
	if raw, err := base64.StdEncoding.DecodeString(v); err == nil {
		return string(raw)
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DataURI encodes markup for direct embedding in an <img> tag.
func DataURI(markup string) string {
	if markup == "" {
		return ""
	}
	return svgDataURIPrefix + base64.StdEncoding.EncodeToString([]byte(markup))
}
