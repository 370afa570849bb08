package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"

	"itemViewerBack/internal/models"
)

// IsDataURI reports whether ref is an inline image payload.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:image")
}

func ToDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI splits a base64 data URI into its MIME type and bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("%w: not a data URI", models.ErrUnsupportedImage)
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URI", models.ErrUnsupportedImage)
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, fmt.Errorf("%w: data URI is not base64 encoded", models.ErrUnsupportedImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrUnsupportedImage, err)
	}
	return mime, data, nil
}
