package extractor

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/guiyumin/linkbot/internal/core/webs"
)

type fakePage struct {
	status int
	header http.Header
	body   string
	delay  time.Duration
	panic  string
}

// fakeWebs serves canned API documents and pages. API documents are keyed
// by "<provider>:<sub>", youtube by "youtube:<id>".
type fakeWebs struct {
	docs  map[string]string
	pages map[string]fakePage

	mu    sync.Mutex
	calls []string
}

func newFakeWebs() *fakeWebs {
	return &fakeWebs{docs: map[string]string{}, pages: map[string]fakePage{}}
}

func (f *fakeWebs) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeWebs) doc(key string) (gjson.Result, error) {
	f.record(key)
	body, ok := f.docs[key]
	if !ok {
		return gjson.Result{}, &webs.StatusError{Code: http.StatusNotFound, URL: key}
	}
	return gjson.Parse(body), nil
}

func (f *fakeWebs) ImgurGet(ctx context.Context, sub string) (gjson.Result, error) {
	return f.doc("imgur:" + sub)
}

func (f *fakeWebs) TwitterGet(ctx context.Context, sub string) (gjson.Result, error) {
	return f.doc("twitter:" + sub)
}

func (f *fakeWebs) SpotifyGet(ctx context.Context, sub string) (gjson.Result, error) {
	return f.doc("spotify:" + sub)
}

func (f *fakeWebs) YouTubeGet(ctx context.Context, suffix string, params url.Values) (gjson.Result, error) {
	return f.doc("youtube:" + params.Get("id"))
}

func (f *fakeWebs) RawGet(ctx context.Context, rawURL string) (*webs.Resp, error) {
	f.record("raw:" + rawURL)
	page, ok := f.pages[rawURL]
	if !ok {
		return nil, &webs.StatusError{Code: http.StatusNotFound, URL: rawURL}
	}
	if page.delay > 0 {
		select {
		case <-time.After(page.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if page.panic != "" {
		panic(page.panic)
	}
	if page.status != 0 && (page.status < 200 || page.status >= 300) {
		return nil, &webs.StatusError{Code: page.status, URL: rawURL}
	}
	return webs.NewResp(page.header, io.NopCloser(strings.NewReader(page.body)))
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func htmlPage(body string) fakePage {
	return fakePage{header: http.Header{"Content-Type": {"text/html; charset=utf-8"}}, body: body}
}
