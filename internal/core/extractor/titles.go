package extractor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/guiyumin/linkbot/internal/core/textutil"
	"github.com/guiyumin/linkbot/internal/core/webs"
)

const unknownHost = "???"

// Options tunes a Resolver. Zero values fall back to defaults.
type Options struct {
	PreviewBytes int
	FetchTimeout time.Duration
	MaxParallel  int
}

// Resolver turns chat text into reply lines. It logs through zerolog.Ctx,
// so callers attach their logger (and any per-message fields) to ctx.
type Resolver struct {
	webs webs.Webs
	opts Options
}

// NewResolver creates a Resolver backed by w
func NewResolver(w webs.Webs, opts Options) *Resolver {
	if opts.PreviewBytes <= 0 {
		opts.PreviewBytes = DefaultPreviewBytes
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}
	return &Resolver{webs: w, opts: opts}
}

// TitlesFor returns one reply line per URL in text that produced something
// worth showing, in the order the URLs appear. Failures, panics included,
// are logged and the URL is skipped; they never affect sibling URLs.
func (r *Resolver) TitlesFor(ctx context.Context, text string) []string {
	urls := FindURLs(text)
	if len(urls) == 0 {
		return nil
	}

	lines := make([]string, len(urls))
	var g errgroup.Group
	g.SetLimit(r.opts.MaxParallel)
	for i, u := range urls {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					zerolog.Ctx(ctx).Error().Str("url", u).Interface("panic", p).Msg("Title resolution panicked")
				}
			}()
			lines[i] = r.line(ctx, u)
			return nil
		})
	}
	g.Wait()

	out := lines[:0]
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// line resolves one URL into a finished reply line, or "" if there is none.
func (r *Resolver) line(ctx context.Context, rawURL string) string {
	log := zerolog.Ctx(ctx).With().Str("url", rawURL).Logger()
	ctx = log.WithContext(ctx)

	res, err := r.TitleFor(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to resolve title")
		return ""
	}

	title := textutil.StripWhitespace(res.String())
	if title == "" {
		return ""
	}

	line := textutil.Truncate(fmt.Sprintf("[ %s - %s ]", hostname(rawURL), title))
	if textutil.HasControl(line) {
		panic(fmt.Sprintf("reply line contains control characters: %q", line))
	}
	return line
}

// TitleFor resolves a single URL under the configured timeout. Provider
// summaries come back as Title results.
func (r *Resolver) TitleFor(ctx context.Context, rawURL string) (TitleResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()

	m := Match(rawURL)
	ctx, span := otel.Tracer("internal/core/extractor").Start(ctx, "extractor.title_for")
	defer span.End()
	span.SetAttributes(
		attribute.String("url.full", rawURL),
		attribute.String("linkbot.provider", m.Kind.String()),
	)

	zerolog.Ctx(ctx).Debug().Stringer("provider", m.Kind).Msg("Resolving title")

	res, err := r.dispatch(ctx, m, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TitleResult{}, fmt.Errorf("%s: %w", m.Kind, err)
	}
	return res, nil
}

func (r *Resolver) dispatch(ctx context.Context, m ProviderMatch, rawURL string) (TitleResult, error) {
	var (
		summary string
		err     error
	)
	switch m.Kind {
	case KindImageHost:
		summary, err = Image(ctx, r.webs, m.ID)
	case KindGalleryHost:
		summary, err = Gallery(ctx, r.webs, m.ID)
	case KindStreamingVideo:
		summary, err = StreamingVideo(ctx, r.webs, m.ID, r.opts.PreviewBytes)
	case KindMusic:
		summary, err = Music(ctx, r.webs, m.MusicKind, m.ID)
	case KindShortPost:
		summary, err = Tweet(ctx, r.webs, m.ID)
	case KindVideoPlatform:
		summary, err = Video(ctx, r.webs, m.ID)
	default:
		return HTML(ctx, r.webs, rawURL, r.opts.PreviewBytes)
	}
	if err != nil {
		return TitleResult{}, err
	}
	return Title(summary), nil
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" || textutil.HasControl(u.Hostname()) {
		return unknownHost
	}
	return u.Hostname()
}
