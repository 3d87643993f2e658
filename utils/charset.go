package utils

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// lookupEncoding resolves a WHATWG encoding label. UTF-8 and the empty label
// return a nil encoding, meaning no transcoding is needed.
func lookupEncoding(charset string) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", charset, err)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// NewDecodingReader returns a reader that yields UTF-8 decoded from r in the
// named charset
func NewDecodingReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}

// NewEncodingWriter returns a writer that encodes UTF-8 written to it into the
// named charset. Characters the charset cannot represent are replaced.
// Close must be called to flush any pending bytes; it does not close w.
func NewEncodingWriter(w io.Writer, charset string) (io.WriteCloser, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nopWriteCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
