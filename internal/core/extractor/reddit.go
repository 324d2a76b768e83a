package extractor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guiyumin/linkbot/internal/core/dash"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

const manifestPreviewBytes = 32 * 1024

// StreamingVideo summarises a v.redd.it link from the page title and the
// best stream in its DASH manifest. Either half may fail.
func StreamingVideo(ctx context.Context, w webs.Webs, id string, window int) (string, error) {
	base := "https://v.redd.it/" + id + "/"

	var title string
	if res, err := HTML(ctx, w, base, window); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Video page title unavailable")
	} else {
		title = res.String()
	}

	stream, err := bestStream(ctx, w, base+"DASHPlaylist.mpd")
	switch {
	case err == nil && title != "":
		return base + stream + " - " + title, nil
	case err == nil:
		return "Reddit 'dash' link without title: " + base + stream, nil
	case title != "":
		return fmt.Sprintf("%s [video link failed: %s %v]", title, base, err), nil
	default:
		return fmt.Sprintf("Reddit 'dash' link mega-fail: %s [%v]", base, err), nil
	}
}

func bestStream(ctx context.Context, w webs.Webs, manifestURL string) (string, error) {
	resp, err := w.RawGet(ctx, manifestURL)
	if err != nil {
		return "", err
	}
	defer resp.Close()

	buf, _, err := resp.ReadPreview(manifestPreviewBytes)
	if err != nil && len(buf) == 0 {
		return "", err
	}
	return dash.HighestStream(bytes.NewReader(buf))
}
