// Package dash picks the best stream out of an MPEG-DASH manifest.
package dash

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrNoRepresentation is returned when no Representation carried both a
// bandwidth and a BaseURL.
var ErrNoRepresentation = errors.New("no matching representation found")

// stream is one Representation worth keeping.
type stream struct {
	url       string
	bandwidth uint64
}

// HighestStream returns the BaseURL of the Representation with the highest
// bandwidth. Ties keep the first Representation seen.
//
// The manifest is read in one forward pass. If the document turns out to be
// malformed (typically because the caller only read a prefix of it), the best
// stream seen before the error is still returned.
func HighestStream(r io.Reader) (string, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var (
		current    *uint64
		best       *stream
		text       strings.Builder
		collecting bool
	)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if best != nil {
				return best.url, nil
			}
			return "", fmt.Errorf("failed to parse manifest: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Representation":
				current = bandwidth(t.Attr)
			case "BaseURL":
				if current != nil && *current > best.bandwidthOrZero() {
					collecting = true
					text.Reset()
				}
			}
		case xml.CharData:
			if collecting {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Representation":
				current = nil
			case "BaseURL":
				if collecting {
					collecting = false
					if current != nil {
						best = &stream{url: strings.TrimSpace(text.String()), bandwidth: *current}
					}
					text.Reset()
				}
			}
		}
	}

	if best == nil {
		return "", ErrNoRepresentation
	}
	return best.url, nil
}

// bandwidthOrZero lets a zero-bandwidth Representation never win.
func (s *stream) bandwidthOrZero() uint64 {
	if s == nil {
		return 0
	}
	return s.bandwidth
}

func bandwidth(attrs []xml.Attr) *uint64 {
	for _, a := range attrs {
		if a.Name.Local != "bandwidth" {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(a.Value), 10, 64)
		if err != nil {
			return nil
		}
		return &v
	}
	return nil
}
