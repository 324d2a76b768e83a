// Package webs talks to the upstream APIs the title extractors depend on.
//
// Extractors only see the Webs interface, so tests can hand them canned
// responses. Client is the real implementation: one shared HTTP client,
// per-provider credentials and a bearer-token cache for the providers that
// use OAuth client credentials.
package webs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultUserAgent is sent with every upstream request.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxJSONBytes bounds how much of an API response is buffered.
const maxJSONBytes = 4 << 20

// Webs is the HTTP collaborator used by the title extractors.
type Webs interface {
	ImgurGet(ctx context.Context, sub string) (gjson.Result, error)
	TwitterGet(ctx context.Context, sub string) (gjson.Result, error)
	SpotifyGet(ctx context.Context, sub string) (gjson.Result, error)
	YouTubeGet(ctx context.Context, suffix string, params url.Values) (gjson.Result, error)
	RawGet(ctx context.Context, rawURL string) (*Resp, error)
}

// Keys are the per-provider credentials.
type Keys struct {
	ImgurClientID       string
	TwitterAppKey       string
	TwitterAppSecret    string
	SpotifyClientID     string
	SpotifyClientSecret string
	YouTubeDeveloperKey string
}

// Endpoints are the base URLs of each upstream. Tests override them.
type Endpoints struct {
	Imgur        string
	Twitter      string
	TwitterToken string
	Spotify      string
	SpotifyToken string
	YouTube      string
}

// DefaultEndpoints returns the production API locations.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Imgur:        "https://api.imgur.com",
		Twitter:      "https://api.twitter.com",
		TwitterToken: "https://api.twitter.com/oauth2/token",
		Spotify:      "https://api.spotify.com",
		SpotifyToken: "https://accounts.spotify.com/api/token",
		YouTube:      "https://www.googleapis.com",
	}
}

// StatusError is returned for any non-success upstream status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad response code %d from %s", e.Code, e.URL)
}

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// Options configures a Client.
type Options struct {
	Keys      Keys
	Endpoints Endpoints
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// Client is the production Webs.
type Client struct {
	http      *http.Client
	keys      Keys
	endpoints Endpoints
	ua        string

	twitter *bearerToken
	spotify *bearerToken
}

// New creates a Client. Zero-valued options fall back to defaults.
func New(opts Options) *Client {
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		keys:      opts.Keys,
		endpoints: opts.Endpoints,
		ua:        opts.UserAgent,
		twitter:   newBearerToken("twitter", opts.Keys.TwitterAppKey, opts.Keys.TwitterAppSecret, opts.Endpoints.TwitterToken),
		spotify:   newBearerToken("spotify", opts.Keys.SpotifyClientID, opts.Keys.SpotifyClientSecret, opts.Endpoints.SpotifyToken),
	}
}

// ImgurGet fetches /3/<sub> with the application's client id.
func (c *Client) ImgurGet(ctx context.Context, sub string) (gjson.Result, error) {
	if c.keys.ImgurClientID == "" {
		return gjson.Result{}, errors.New("imgur client id not configured")
	}
	req, err := c.newRequest(ctx, c.endpoints.Imgur+"/3/"+sub)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.keys.ImgurClientID)
	return c.doJSON(req, "imgur")
}

// TwitterGet fetches /<sub> with an app-only bearer token.
func (c *Client) TwitterGet(ctx context.Context, sub string) (gjson.Result, error) {
	return c.bearerGet(ctx, c.twitter, c.endpoints.Twitter+"/"+sub)
}

// SpotifyGet fetches /v1/<sub> with a client-credentials bearer token.
func (c *Client) SpotifyGet(ctx context.Context, sub string) (gjson.Result, error) {
	return c.bearerGet(ctx, c.spotify, c.endpoints.Spotify+"/v1/"+sub)
}

// YouTubeGet fetches /youtube/<suffix> with the developer key added to params.
func (c *Client) YouTubeGet(ctx context.Context, suffix string, params url.Values) (gjson.Result, error) {
	if c.keys.YouTubeDeveloperKey == "" {
		return gjson.Result{}, errors.New("youtube developer key not configured")
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("key", c.keys.YouTubeDeveloperKey)

	req, err := c.newRequest(ctx, c.endpoints.YouTube+"/youtube/"+suffix+"?"+q.Encode())
	if err != nil {
		return gjson.Result{}, err
	}
	return c.doJSON(req, "youtube")
}

// RawGet fetches an arbitrary URL. Only success statuses are returned; the
// caller must Close the Resp.
func (c *Client) RawGet(ctx context.Context, rawURL string) (*Resp, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	r, err := NewResp(resp.Header, resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return r, nil
}

func (c *Client) bearerGet(ctx context.Context, tok *bearerToken, rawURL string) (gjson.Result, error) {
	for attempt := 0; ; attempt++ {
		token, err := tok.get(ctx, c.http)
		if err != nil {
			return gjson.Result{}, err
		}

		req, err := c.newRequest(ctx, rawURL)
		if err != nil {
			return gjson.Result{}, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		result, err := c.doJSON(req, tok.name)
		if attempt == 0 && IsUnauthorized(err) {
			tok.invalidate(ctx, token)
			continue
		}
		return result, err
	}
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	return req, nil
}

func (c *Client) doJSON(req *http.Request, provider string) (gjson.Result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return gjson.Result{}, &StatusError{Code: resp.StatusCode, URL: withoutQuery(req.URL)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading %s response: %w", provider, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("bad json from %s", provider)
	}
	return gjson.ParseBytes(body), nil
}

// withoutQuery keeps API keys out of error messages.
func withoutQuery(u *url.URL) string {
	stripped := *u
	stripped.RawQuery = ""
	stripped.User = nil
	return stripped.String()
}

func success(code int) bool {
	return code >= 200 && code < 300
}
