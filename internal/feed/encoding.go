package feed

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names accepted in configuration
const (
	EncodingLatin1  = "iso-8859-1"
	EncodingWindows = "windows-1252"
	EncodingUTF8    = "utf-8"
)

// LookupEncoding resolves a configured encoding name
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingLatin1, "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case EncodingWindows, "cp1252":
		return charmap.Windows1252, nil
	case EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

// decodeBody reads r fully and transcodes it to UTF-8
func decodeBody(r io.Reader, enc encoding.Encoding) (string, error) {
	data, err := io.ReadAll(enc.NewDecoder().Reader(r))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(data), nil
}
