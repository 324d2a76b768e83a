package webs

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// Resp is a successful response whose body is only ever read through a
// bounded preview window.
type Resp struct {
	header http.Header
	body   io.Reader
	closer io.Closer

	// encoded is set when Content-Length counts encoded bytes
	encoded bool
}

// NewResp wraps a response body, undoing any gzip or brotli content encoding.
func NewResp(header http.Header, body io.ReadCloser) (*Resp, error) {
	if header == nil {
		header = http.Header{}
	}
	r := &Resp{header: header, body: body, closer: body}

	enc := strings.ToLower(strings.TrimSpace(header.Get("Content-Encoding")))
	r.encoded = enc != "" && enc != "identity"

	switch enc {
	case "", "identity":
	case "br":
		r.body = brotli.NewReader(body)
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("bad gzip body: %w", err)
		}
		r.body = zr
	}
	return r, nil
}

// ContentLength returns the declared Content-Length, if any. It is not
// reported for content-encoded bodies, where it would not match the
// decoded bytes ReadPreview returns.
func (r *Resp) ContentLength() (float64, bool) {
	if r.encoded {
		return 0, false
	}
	v := strings.TrimSpace(r.header.Get("Content-Length"))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return float64(n), true
}

// ContentType returns the Content-Type header, if any.
func (r *Resp) ContentType() (string, bool) {
	v := r.header.Get("Content-Type")
	return v, v != ""
}

// ReadPreview reads at most n bytes of the body. complete is true when the
// body ended inside the window, so len(buf) is the full body size. On a read
// error the bytes read so far are still returned.
func (r *Resp) ReadPreview(n int) (buf []byte, complete bool, err error) {
	buf = make([]byte, n)
	read, err := io.ReadFull(r.body, buf)
	switch {
	case err == nil:
		return buf, false, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:read], true, nil
	default:
		return buf[:read], false, err
	}
}

// Close releases the underlying connection.
func (r *Resp) Close() error {
	return r.closer.Close()
}
