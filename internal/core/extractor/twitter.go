package extractor

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

// Tweet summarises a tweet as "<author> — <text>"
func Tweet(ctx context.Context, w webs.Webs, id string) (string, error) {
	resp, err := w.TwitterGet(ctx, "1.1/statuses/show.json?id="+id+"&tweet_mode=extended")
	if err != nil {
		return "", err
	}
	return renderTweet(resp)
}

func renderTweet(resp gjson.Result) (string, error) {
	text, err := requireString(resp, "full_text")
	if err != nil {
		return "", err
	}

	user := resp.Get("user")
	if !user.Exists() {
		return "", missing("user")
	}
	if !user.IsObject() {
		return "", wrongType("user", "an object")
	}
	name, err := requireString(user, "name")
	if err != nil {
		return "", err
	}

	return name + " — " + textutil.CleanupNewlines(text), nil
}

func requireString(parent gjson.Result, path string) (string, error) {
	v := parent.Get(path)
	if !v.Exists() {
		return "", missing(path)
	}
	if v.Type != gjson.String {
		return "", wrongType(path, "a string")
	}
	return v.Str, nil
}
