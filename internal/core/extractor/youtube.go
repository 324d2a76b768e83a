package extractor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sosodev/duration"
	"github.com/tidwall/gjson"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

// Video summarises a youtube video as
// "<duration> <published date> ፤ [<channel>] ፤ <title>"
func Video(ctx context.Context, w webs.Webs, id string) (string, error) {
	resp, err := w.YouTubeGet(ctx, "v3/videos", url.Values{
		"id":   {id},
		"part": {"snippet,contentDetails"},
	})
	if err != nil {
		return "", err
	}
	return renderVideo(resp)
}

func renderVideo(resp gjson.Result) (string, error) {
	items := resp.Get("items")
	if !items.Exists() {
		return "", missing("items")
	}
	if !items.IsArray() {
		return "", wrongType("items", "an array")
	}
	list := items.Array()
	if len(list) == 0 {
		return "", &FieldError{Field: "items", Problem: "unexpectedly empty"}
	}
	item := list[0]

	title, err := requireString(item, "snippet.title")
	if err != nil {
		return "", err
	}
	channel, err := requireString(item, "snippet.channelTitle")
	if err != nil {
		return "", err
	}
	published, err := requireString(item, "snippet.publishedAt")
	if err != nil {
		return "", err
	}
	rawDuration, err := requireString(item, "contentDetails.duration")
	if err != nil {
		return "", err
	}

	at, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return "", fmt.Errorf("invalid publishedAt %q: %w", published, err)
	}
	d, err := duration.Parse(rawDuration)
	if err != nil {
		return "", fmt.Errorf("invalid duration %q: %w", rawDuration, err)
	}

	return fmt.Sprintf("%s %s%s[%s]%s%s",
		textutil.MajorUnit(d.ToTimeDuration()), at.Format("2006-01-02"),
		Separator, channel, Separator, title), nil
}
