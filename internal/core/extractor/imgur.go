package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

// Separator joins the parts of a provider summary
const Separator = " ፤ "

// Image summarises a single imgur image
func Image(ctx context.Context, w webs.Webs, id string) (string, error) {
	resp, err := w.ImgurGet(ctx, "image/"+id)
	if err != nil {
		return "", err
	}
	return renderImage(resp)
}

// Gallery summarises an imgur album or gallery post
func Gallery(ctx context.Context, w webs.Webs, id string) (string, error) {
	resp, err := w.ImgurGet(ctx, "album/"+id)
	if err != nil {
		return "", err
	}
	return renderGallery(resp)
}

func renderImage(resp gjson.Result) (string, error) {
	data := resp.Get("data")
	if !data.Exists() {
		return "", missing("data")
	}
	return imageBody(data, "")
}

func imageBody(data gjson.Result, titleHint string) (string, error) {
	width, height := data.Get("width"), data.Get("height")
	if !present(width) {
		return "", missing("width")
	}
	if !present(height) {
		return "", missing("height")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s×%s", width.String(), height.String())

	if size, ok := preferredSize(data); ok {
		b.WriteString(" " + textutil.ShowSize(size))
	}
	if section := data.Get("section"); section.Type == gjson.String {
		b.WriteString(" /r/" + section.Str)
	}
	b.WriteString(" " + nsfwTag(data))

	if caption, ok := imageCaption(data, titleHint); ok {
		b.WriteString(strings.TrimRight(Separator+caption, " "))
	}
	return b.String(), nil
}

func renderGallery(resp gjson.Result) (string, error) {
	data := resp.Get("data")
	if !data.Exists() {
		return "", missing("data")
	}

	title := data.Get("title")
	if !title.Exists() {
		return "", missing("title")
	}
	if title.Type != gjson.String {
		return "", wrongType("title", "a string")
	}

	count := data.Get("images_count")
	if !count.Exists() {
		return "", missing("images_count")
	}
	if count.Type != gjson.Number {
		return "", wrongType("images_count", "a number")
	}

	images := data.Get("images")
	if !images.Exists() {
		return "", missing("images")
	}
	if !images.IsArray() {
		return "", wrongType("images", "an array")
	}
	entries := images.Array()

	if count.Int() == 1 && len(entries) == 1 {
		image := entries[0]
		link, err := preferredLink(image)
		if err != nil {
			return "", err
		}
		body, err := imageBody(image, title.Str)
		if err != nil {
			return "", err
		}
		return link + Separator + body, nil
	}

	animated := 0
	total := 0.0
	for _, image := range entries {
		size, ok := preferredSize(image)
		if !ok {
			return "", missing("images[].size")
		}
		total += size
		if image.Get("animated").Type == gjson.True {
			animated++
		}
	}

	s := fmt.Sprintf("%d/%d animated%s%s %s", animated, count.Int(), Separator, textutil.ShowSize(total), nsfwTag(data))
	if title.Str != "" {
		s += Separator + title.Str
	}
	return s, nil
}

// nsfwTag distinguishes true, false, present-but-unreadable and absent.
func nsfwTag(data gjson.Result) string {
	v := data.Get("nsfw")
	switch {
	case !v.Exists():
		return "¿fw"
	case v.Type == gjson.True:
		return "NSFW"
	case v.Type == gjson.False:
		return "sfw"
	default:
		return "?fw"
	}
}

func preferredSize(data gjson.Result) (float64, bool) {
	for _, key := range []string{"mp4_size", "webm_size", "size"} {
		if v := data.Get(key); v.Type == gjson.Number {
			return v.Float(), true
		}
	}
	return 0, false
}

func preferredLink(image gjson.Result) (string, error) {
	for _, key := range []string{"mp4", "link"} {
		if v := image.Get(key); v.Type == gjson.String {
			return v.Str, nil
		}
	}
	return "", missing("images[].link")
}

// imageCaption picks the post title, then the album title, then the
// description. A title that is a string wins even when empty.
func imageCaption(data gjson.Result, titleHint string) (string, bool) {
	if title := data.Get("title"); title.Type == gjson.String {
		return title.Str, true
	}
	if titleHint != "" {
		return titleHint, true
	}
	if desc := data.Get("description"); desc.Type == gjson.String {
		return desc.Str, true
	}
	return "", false
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}
