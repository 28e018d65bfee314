package extract

import (
	"study-byte/internal/domain"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractText decodes a plain text upload. Content is UTF-8 unless a UTF-16
// byte-order mark says otherwise; the mark itself is dropped.
func extractText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", domain.NewExtractionFailedError("txt", err)
	}
	return string(out), nil
}
