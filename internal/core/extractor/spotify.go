package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

// Music summarises a spotify object. kind is the URL path segment ("track",
// "album", ...) and is pluralised for the API.
func Music(ctx context.Context, w webs.Webs, kind, id string) (string, error) {
	resp, err := w.SpotifyGet(ctx, kind+"s/"+id)
	if err != nil {
		return "", err
	}
	return renderMusic(kind, resp)
}

func renderMusic(kind string, resp gjson.Result) (string, error) {
	name, err := requireString(resp, "name")
	if err != nil {
		return "", err
	}

	var artists []string
	for _, a := range resp.Get("artists").Array() {
		if n := a.Get("name"); n.Type == gjson.String && n.Str != "" {
			artists = append(artists, n.Str)
		}
	}

	var b strings.Builder
	b.WriteString(kind + ": ")
	if len(artists) > 0 {
		b.WriteString(strings.Join(artists, ", ") + " — ")
	}
	b.WriteString(name)
	if album := resp.Get("album.name"); album.Type == gjson.String && album.Str != "" {
		b.WriteString(Separator + album.Str)
	}
	if ms := resp.Get("duration_ms"); ms.Type == gjson.Number {
		b.WriteString(" " + textutil.MajorUnit(time.Duration(ms.Int())*time.Millisecond))
	}
	return b.String(), nil
}
