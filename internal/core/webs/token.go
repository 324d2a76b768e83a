package webs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// bearerToken caches one provider's app-only token. The mutex is held across
// a refresh, so concurrent callers for the same provider wait for the single
// in-flight exchange instead of starting their own.
type bearerToken struct {
	name string
	conf clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

func newBearerToken(name, id, secret, tokenURL string) *bearerToken {
	return &bearerToken{
		name: name,
		conf: clientcredentials.Config{
			ClientID:     id,
			ClientSecret: secret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

// get returns a cached token or exchanges the client credentials for a new one.
func (b *bearerToken) get(ctx context.Context, client *http.Client) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.token.Valid() {
		return b.token.AccessToken, nil
	}
	if b.conf.ClientID == "" || b.conf.ClientSecret == "" {
		return "", fmt.Errorf("%s credentials not configured", b.name)
	}

	zerolog.Ctx(ctx).Debug().Str("provider", b.name).Msg("Fetching bearer token")

	tok, err := b.conf.Token(context.WithValue(ctx, oauth2.HTTPClient, client))
	if err != nil {
		return "", fmt.Errorf("%s token exchange: %w", b.name, err)
	}
	if !strings.EqualFold(tok.TokenType, "bearer") {
		return "", fmt.Errorf("%s token exchange: invalid token_type %q", b.name, tok.TokenType)
	}

	b.token = tok
	return tok.AccessToken, nil
}

// invalidate drops the cached token if it is still the one that was rejected.
func (b *bearerToken) invalidate(ctx context.Context, stale string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.token != nil && b.token.AccessToken == stale {
		zerolog.Ctx(ctx).Debug().Str("provider", b.name).Msg("Bearer token rejected, invalidating")
		b.token = nil
	}
}
