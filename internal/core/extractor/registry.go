package extractor

import "regexp"

// urlRegex finds candidate URLs in chat text
var urlRegex = regexp.MustCompile(`https?://\S+`)

// provider is one row of the match table. Rows are tried in order and the
// first match wins, so overlapping patterns resolve the same way every time.
type provider struct {
	kind    Kind
	pattern *regexp.Regexp
}

var providers = []provider{
	{KindImageHost, regexp.MustCompile(`^https?://(?:i\.)?imgur\.com/([a-zA-Z0-9]{5,9})\.(?:jpg|mp4|webm|png|gif)`)},
	{KindGalleryHost, regexp.MustCompile(`^https?://(?:www\.)?imgur\.com/(?:a|gallery)/([a-zA-Z0-9]{5,7})`)},
	{KindStreamingVideo, regexp.MustCompile(`^https?://v\.redd\.it/(\w+)`)},
	{KindMusic, regexp.MustCompile(`^https?://open\.spotify\.com/(\w+)/([a-zA-Z0-9]{20,25})`)},
	{KindShortPost, regexp.MustCompile(`^https?://(?:www\.)?(?:twitter|x)\.com/[^/]+/status/(\d{16,25})`)},
	{KindVideoPlatform, regexp.MustCompile(`^https?://(?:(?:www\.)?youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)},
}

// Match finds the provider for a URL. Unknown URLs get KindGeneric.
func Match(rawURL string) ProviderMatch {
	for _, p := range providers {
		m := p.pattern.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		if p.kind == KindMusic {
			return ProviderMatch{Kind: p.kind, MusicKind: m[1], ID: m[2]}
		}
		return ProviderMatch{Kind: p.kind, ID: m[1]}
	}
	return ProviderMatch{Kind: KindGeneric}
}

// FindURLs returns the candidate URLs in text, left to right.
func FindURLs(text string) []string {
	return urlRegex.FindAllString(text, -1)
}
