package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxLineBytes covers an 8191-byte tag section plus a 512-byte body
const MaxLineBytes = 8191 + 512

// ErrBadLine is returned by WriteLine for lines that would split on the wire
var ErrBadLine = errors.New("line contains CR, LF or NUL")

// Conn is a CRLF-framed connection. ReadLine must be called from a single
// goroutine; WriteLine may be called from any number.
type Conn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	log     zerolog.Logger

	mu sync.Mutex
}

// Dial connects to host:port, over TLS when useTLS is set
func Dial(ctx context.Context, host string, port int, useTLS bool, log zerolog.Logger) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 60 * time.Second}

	var (
		c   net.Conn
		err error
	)
	if useTLS {
		td := &tls.Dialer{
			NetDialer: dialer,
			Config: &tls.Config{
				ServerName: host,
				MinVersion: tls.VersionTLS12,
			},
		}
		c, err = td.DialContext(ctx, "tcp", addr)
	} else {
		c, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	log.Info().Str("addr", addr).Bool("tls", useTLS).Msg("Connected")
	return NewConn(c, log), nil
}

// NewConn frames an already established connection
func NewConn(c net.Conn, log zerolog.Logger) *Conn {
	scanner := bufio.NewScanner(c)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineBytes)
	return &Conn{
		conn:    c,
		scanner: scanner,
		log:     log,
	}
}

// ReadLine returns the next non-blank line without its CRLF. Invalid UTF-8 is
// replaced, not rejected.
func (c *Conn) ReadLine() (string, error) {
	for c.scanner.Scan() {
		line := strings.ToValidUTF8(strings.TrimSpace(c.scanner.Text()), "�")
		if line == "" {
			continue
		}
		c.log.Debug().Str("line", line).Msg("<-")
		return line, nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	return "", io.EOF
}

// WriteLine sends line followed by CRLF
func (c *Conn) WriteLine(line string) error {
	if strings.ContainsAny(line, "\r\n\x00") {
		return fmt.Errorf("%w: %q", ErrBadLine, line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug().Str("line", line).Msg("->")
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
