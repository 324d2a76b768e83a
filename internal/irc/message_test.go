package irc

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line     string
		expected Message
		nick     string
		target   string
		text     string
	}{
		{
			line:     ":alice!a@example.org PRIVMSG #chan :see https://example.com now\r\n",
			expected: Message{Source: "alice!a@example.org", Command: "PRIVMSG", Params: []string{"#chan", "see https://example.com now"}},
			nick:     "alice",
			target:   "#chan",
			text:     "see https://example.com now",
		},
		{
			line:     "PING :irc.example.net",
			expected: Message{Command: "PING", Params: []string{"irc.example.net"}},
			target:   "irc.example.net",
		},
		{
			line:     ":irc.example.net 001 linkbot :Welcome to the network",
			expected: Message{Source: "irc.example.net", Command: "001", Params: []string{"linkbot", "Welcome to the network"}},
			nick:     "irc.example.net",
			target:   "linkbot",
			text:     "Welcome to the network",
		},
		{
			line:     "@time=2024-01-01T00:00:00Z :bob@host privmsg linkbot hi",
			expected: Message{Source: "bob@host", Command: "PRIVMSG", Params: []string{"linkbot", "hi"}},
			nick:     "bob",
			target:   "linkbot",
			text:     "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse() = %+v; want %+v", got, tt.expected)
			}
			if got.Nick() != tt.nick || got.Target() != tt.target || got.Text() != tt.text {
				t.Errorf("Nick/Target/Text = %q %q %q; want %q %q %q",
					got.Nick(), got.Target(), got.Text(), tt.nick, tt.target, tt.text)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, line := range []string{"", "\r\n", "   "} {
		if _, err := Parse(line); !errors.Is(err, ErrEmptyLine) {
			t.Errorf("Parse(%q) error = %v; want ErrEmptyLine", line, err)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, error)
		expected string
	}{
		{"User", func() (string, error) { return User("bot", "Link Bot") }, "USER bot * * :Link Bot"},
		{"User one word", func() (string, error) { return User("bot", "bot") }, "USER bot * * :bot"},
		{"Nick", func() (string, error) { return Nick("linkbot") }, "NICK linkbot"},
		{"Pong", func() (string, error) { return Pong("irc.example.net") }, "PONG irc.example.net"},
		{"Join", func() (string, error) { return Join("#chan") }, "JOIN #chan"},
		{"CapLS", CapLS, "CAP LS 302"},
		{"Notice", func() (string, error) { return Notice("#chan", "alice: [ example.com - Example ]") }, "NOTICE #chan :alice: [ example.com - Example ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q; want %q", got, tt.expected)
			}
		})
	}
}
