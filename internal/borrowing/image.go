package borrowing

import (
	"net/url"
	"regexp"
	"strings"
)

var base64Payload = regexp.MustCompile(`^[A-Za-z0-9+/\r\n]+={0,2}$`)

// minBase64Len keeps short relative paths like "cover" from being read as image data
const minBase64Len = 64

// NormalizeImageURL turns whatever the API stores for a cover image into
// something a browser can load. Relative paths are resolved against base
// when one is configured.
func NormalizeImageURL(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case len(raw) >= minBase64Len && base64Payload.MatchString(raw):
		return "data:image/jpeg;base64," + raw
	}

	if base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
