package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBytes decodes raw source bytes to text. A non-empty encoding name is
// tried exclusively; otherwise the fallback chain UTF-8, UTF-8 with BOM,
// Latin-1 applies, stopping at the first success. A decode failure is
// reported as ErrDecode rather than silently truncating.
//
// Known encoding names: "utf-8", "utf-8-sig", "iso-8859-1" (alias
// "latin-1").
func DecodeBytes(raw []byte, encoding string) (string, error) {
	if encoding != "" {
		text, ok := decodeNamed(raw, encoding)
		if !ok {
			return "", fmt.Errorf("%w: encoding %q failed", ErrDecode, encoding)
		}
		return text, nil
	}

	if utf8.Valid(raw) && !bytes.HasPrefix(raw, utf8BOM) {
		return string(raw), nil
	}
	if bytes.HasPrefix(raw, utf8BOM) && utf8.Valid(raw) {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}

	// Latin-1 accepts every byte sequence, so the chain always terminates.
	text, ok := decodeNamed(raw, "iso-8859-1")
	if !ok {
		return "", ErrDecode
	}
	return text, nil
}

func decodeNamed(raw []byte, encoding string) (string, bool) {
	switch encoding {
	case "utf-8", "utf8":
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	case "utf-8-sig":
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(bytes.TrimPrefix(raw, utf8BOM)), true
	case "iso-8859-1", "latin-1", "latin1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	default:
		return "", false
	}
}
