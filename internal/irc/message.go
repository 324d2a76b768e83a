// Package irc speaks the line-oriented chat protocol the bot lives on.
package irc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// ErrEmptyLine is returned by Parse for blank input
var ErrEmptyLine = errors.New("empty line")

// Message is one parsed protocol line
type Message struct {
	// Source is the prefix without its colon, e.g. "nick!user@host"
	Source string
	// Command is upper-cased; numerics stay as their three digits
	Command string
	Params  []string
}

// Parse reads a single line, with or without its CRLF
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Message{}, ErrEmptyLine
	}

	m, err := ircmsg.ParseLine(line)
	if err != nil {
		return Message{}, fmt.Errorf("malformed line %q: %w", line, err)
	}

	return Message{
		Source:  m.Source,
		Command: strings.ToUpper(m.Command),
		Params:  m.Params,
	}, nil
}

// Nick is the part of Source before the first '!' or '@'
func (m Message) Nick() string {
	if i := strings.IndexAny(m.Source, "!@"); i >= 0 {
		return m.Source[:i]
	}
	return m.Source
}

// Param returns the i-th parameter, or "" when there are fewer
func (m Message) Param(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

// Target is the first parameter. For PRIVMSG and NOTICE that is the
// recipient; for PING it is the token.
func (m Message) Target() string {
	return m.Param(0)
}

// Text is the final parameter when there are at least two, as in PRIVMSG
// and NOTICE
func (m Message) Text() string {
	if len(m.Params) < 2 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// Format serialises a command without its CRLF. With trailing set, the last
// parameter always goes after a colon.
func Format(trailing bool, command string, params ...string) (string, error) {
	msg := ircmsg.MakeMessage(nil, "", command, params...)
	if trailing {
		msg.ForceTrailing()
	}
	line, err := msg.Line()
	if err != nil {
		return "", fmt.Errorf("cannot send %s: %w", command, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// User is the registration line, "USER <user> * * :<real name>"
func User(user, realName string) (string, error) {
	return Format(true, "USER", user, "*", "*", realName)
}

func Nick(nick string) (string, error) {
	return Format(false, "NICK", nick)
}

func Pong(token string) (string, error) {
	return Format(false, "PONG", token)
}

func Join(channel string) (string, error) {
	return Format(false, "JOIN", channel)
}

// CapLS asks for the server's capabilities at protocol version 302
func CapLS() (string, error) {
	return Format(false, "CAP", "LS", "302")
}

func Notice(target, text string) (string, error) {
	return Format(true, "NOTICE", target, text)
}
