package assets

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const previewLength = 50

// Decode turns raw asset bytes into text. A UTF-16LE, UTF-16BE or UTF-8 byte
// order mark selects the encoding; without one the bytes are read as UTF-8.
// A leading U+FEFF, every NUL and surrounding whitespace are removed.
func Decode(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		out = data
	}
	text := string(out)
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}

// decodeJSON decodes data as text and unmarshals it into v. url is only used
// for error messages.
func decodeJSON(url string, data []byte, v any) error {
	text := Decode(data)
	if text == "" {
		return fmt.Errorf("%w from %s", ErrEmptyBody, url)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return &DecodeError{URL: url, Preview: preview(text), Err: err}
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes)
}
