// Package bot runs the chat session: registration, keep-alive, and replying
// to messages that carry links.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guiyumin/linkbot/internal/irc"
)

// LineConn is a framed chat connection
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// Resolver turns message text into reply lines
type Resolver interface {
	TitlesFor(ctx context.Context, text string) []string
}

// Identity is who the bot registers as, and where it sits
type Identity struct {
	Nick     string
	User     string
	RealName string
	Channels []string
}

// Bot drives one connection until it ends
type Bot struct {
	conn     LineConn
	resolver Resolver
	id       Identity
	log      zerolog.Logger

	registered atomic.Bool
	inflight   sync.WaitGroup
}

// New creates a bot. Empty User and RealName fall back to Nick.
func New(conn LineConn, resolver Resolver, id Identity, log zerolog.Logger) *Bot {
	if id.User == "" {
		id.User = id.Nick
	}
	if id.RealName == "" {
		id.RealName = id.Nick
	}
	return &Bot{
		conn:     conn,
		resolver: resolver,
		id:       id,
		log:      log.With().Str("component", "bot").Logger(),
	}
}

// Registered reports whether the server has welcomed us
func (b *Bot) Registered() bool {
	return b.registered.Load()
}

// Run registers and then serves the connection. It returns when the
// connection fails or ctx is done; replies still in flight are waited for.
// The connection is closed on return.
func (b *Bot) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer func() {
		close(stop)
		b.inflight.Wait()
		b.conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			b.conn.Close()
		case <-stop:
		}
	}()

	if err := b.send(irc.User(b.id.User, b.id.RealName)); err != nil {
		return err
	}
	if err := b.send(irc.Nick(b.id.Nick)); err != nil {
		return err
	}

	for {
		line, err := b.conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		if err := b.handle(ctx, line); err != nil {
			return err
		}
	}
}

func (b *Bot) handle(ctx context.Context, line string) error {
	msg, err := irc.Parse(line)
	if err != nil {
		if !errors.Is(err, irc.ErrEmptyLine) {
			b.log.Debug().Err(err).Msg("Ignoring line")
		}
		return nil
	}

	switch msg.Command {
	case "PING":
		return b.send(irc.Pong(msg.Param(0)))

	case "001":
		b.registered.Store(true)
		b.log.Info().Str("nick", b.id.Nick).Msg("Registered")
		if err := b.send(irc.CapLS()); err != nil {
			return err
		}
		for _, ch := range b.id.Channels {
			if err := b.send(irc.Join(ch)); err != nil {
				return err
			}
		}

	case "PRIVMSG":
		b.reply(ctx, msg)
	}
	return nil
}

// reply answers one message in its own goroutine
func (b *Bot) reply(ctx context.Context, msg irc.Message) {
	whom := msg.Nick()
	dest := msg.Target()
	if whom == "" || dest == "" {
		return
	}
	if strings.EqualFold(dest, b.id.Nick) {
		dest = whom
	}

	log := b.log.With().
		Str("msg_id", uuid.NewString()).
		Str("from", whom).
		Str("dest", dest).
		Logger()
	text := msg.Text()

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Reply failed")
			}
		}()

		for _, title := range b.resolver.TitlesFor(log.WithContext(ctx), text) {
			if err := b.send(irc.Notice(dest, whom+": "+title)); err != nil {
				log.Warn().Err(err).Msg("Reply not sent")
				return
			}
		}
	}()
}

func (b *Bot) send(line string, err error) error {
	if err != nil {
		return err
	}
	return b.conn.WriteLine(line)
}
