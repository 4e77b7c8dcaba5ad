package document

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Charset looks up a file encoding by its IANA name ("UTF-8", "EUC-KR", ...).
func Charset(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", name)
	}

	return enc, nil
}

// DecodeBytes converts raw file content into UTF-8 text.
func DecodeBytes(raw []byte, enc encoding.Encoding) ([]byte, error) {
	return decode(raw, enc)
}

func decode(raw []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return raw, nil
	}
	return enc.NewDecoder().Bytes(raw)
}

func encode(data []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return data, nil
	}
	return enc.NewEncoder().Bytes(data)
}
