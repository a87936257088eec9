package githubsync

import (
	"encoding/base64"
	"strings"
)

const metaBase64Prefix = "base64:"

// encodeValue applies spec.md §4.6's value encoding: any value
// containing a newline, the sequence "-->", or already starting with
// the base64 marker is wrapped in base64 so it can live safely inside
// an HTML comment.
func encodeValue(v string) string {
	if strings.Contains(v, "\n") || strings.Contains(v, "-->") || strings.HasPrefix(v, metaBase64Prefix) {
		return metaBase64Prefix + base64.StdEncoding.EncodeToString([]byte(v))
	}
	return v
}

// decodeValue is the inverse of encodeValue.
func decodeValue(v string) string {
	if !strings.HasPrefix(v, metaBase64Prefix) {
		return v
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, metaBase64Prefix))
	if err != nil {
		return v
	}
	return string(decoded)
}
