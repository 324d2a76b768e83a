package extractor

import (
	"bytes"
	"context"
	"errors"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

// DefaultPreviewBytes is how much of a page is read when looking for a title.
const DefaultPreviewBytes = 64 * 4096

var (
	ErrNoTitleTag       = errors.New("no <title tag")
	ErrUnterminatedTag  = errors.New("title tag never terminated")
	ErrTitleAtWindowEnd = errors.New("title tag ends at the end of the preview window")
	ErrUnclosedTitle    = errors.New("title text never closed")
)

var titleOpen = []byte("<title")

// ParseTitle finds the first <title> element in a possibly truncated,
// possibly malformed HTML prefix. It never needs the full document.
func ParseTitle(buf []byte) (string, error) {
	title, _, err := parseTitle(buf, "")
	return title, err
}

// parseTitle also reports whether the escape decoding was abandoned.
func parseTitle(buf []byte, contentType string) (title string, badEscape bool, err error) {
	start := indexASCIIFold(buf, titleOpen)
	if start < 0 {
		return "", false, ErrNoTitleTag
	}
	gt := bytes.IndexByte(buf[start:], '>')
	if gt < 0 {
		return "", false, ErrUnterminatedTag
	}
	gt += start
	if gt == len(buf)-1 {
		return "", false, ErrTitleAtWindowEnd
	}
	lt := bytes.IndexByte(buf[gt+1:], '<')
	if lt < 0 {
		return "", false, ErrUnclosedTitle
	}

	raw := toUTF8(buf[gt+1:gt+1+lt], buf, contentType)
	decoded := html.UnescapeString(raw)
	if strings.Count(decoded, "�") > strings.Count(raw, "�") {
		return raw, true, nil
	}
	return decoded, false, nil
}

// toUTF8 converts the title bytes using the page's declared or sniffed
// encoding. Valid UTF-8 is left alone unless the encoding is certain.
func toUTF8(raw, page []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(page, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(raw)) {
		return strings.ToValidUTF8(string(raw), "�")
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}

func indexASCIIFold(s, lowerSep []byte) int {
	n := len(lowerSep)
	for i := 0; i+n <= len(s); i++ {
		j := 0
		for ; j < n; j++ {
			c := s[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != lowerSep[j] {
				break
			}
		}
		if j == n {
			return i
		}
	}
	return -1
}

// ogTitle looks for an og:title in the same preview window
func ogTitle(buf []byte) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(buf)); err != nil {
		return ""
	}
	return strings.ToValidUTF8(og.Title, "�")
}

// HTML resolves a generic page. Only window bytes of the body are read; a
// window of zero or less means DefaultPreviewBytes.
func HTML(ctx context.Context, w webs.Webs, rawURL string, window int) (TitleResult, error) {
	if window <= 0 {
		window = DefaultPreviewBytes
	}
	log := zerolog.Ctx(ctx)

	resp, err := w.RawGet(ctx, rawURL)
	if err != nil {
		return TitleResult{}, err
	}
	defer resp.Close()

	buf, complete, err := resp.ReadPreview(window)
	if err != nil {
		log.Debug().Err(err).Int("read", len(buf)).Msg("Preview read failed, using partial body")
	}
	contentType, _ := resp.ContentType()

	title, badEscape, err := parseTitle(buf, contentType)
	if badEscape {
		log.Info().Str("raw", title).Msg("Invalid html escape in title, keeping raw text")
	}
	if err == nil && textutil.StripWhitespace(title) != "" {
		return Title(title), nil
	}

	result := TitleResult{Kind: ResultNoTitle, ContentType: contentType}
	if err != nil {
		log.Info().Err(err).Msg("No title found")
		if og := ogTitle(buf); textutil.StripWhitespace(og) != "" {
			return Title(og), nil
		}
		result.Reason = "No title found."
	} else {
		if isHomePage(rawURL) {
			return Suppressed(), nil
		}
		result.Reason = "Empty title found."
	}

	if complete {
		size := float64(len(buf))
		result.Size = &size
	} else if n, ok := resp.ContentLength(); ok {
		result.Size = &n
	}
	return result, nil
}

func isHomePage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == "" || u.Path == "/"
}
