package extractor

import (
	"fmt"

	"github.com/guiyumin/linkbot/internal/core/textutil"
)

// Kind identifies which extractor handles a URL
type Kind int

const (
	KindGeneric Kind = iota
	KindImageHost
	KindGalleryHost
	KindStreamingVideo
	KindMusic
	KindShortPost
	KindVideoPlatform
)

var kindNames = map[Kind]string{
	KindGeneric:        "generic",
	KindImageHost:      "imgur-image",
	KindGalleryHost:    "imgur-gallery",
	KindStreamingVideo: "reddit-video",
	KindMusic:          "spotify",
	KindShortPost:      "twitter",
	KindVideoPlatform:  "youtube",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ProviderMatch is the outcome of matching a URL against the provider table.
// MusicKind is only set for KindMusic.
type ProviderMatch struct {
	Kind      Kind
	ID        string
	MusicKind string
}

// ResultKind classifies a TitleResult
type ResultKind string

const (
	ResultTitle      ResultKind = "title"
	ResultNoTitle    ResultKind = "no_title"
	ResultSuppressed ResultKind = "suppressed"
)

// TitleResult is the per-URL outcome of the generic page path
type TitleResult struct {
	Kind        ResultKind `json:"kind"`
	Title       string     `json:"title,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Size        *float64   `json:"size,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
}

// Title wraps a found title
func Title(s string) TitleResult {
	return TitleResult{Kind: ResultTitle, Title: s}
}

// Suppressed is a result that is never shown
func Suppressed() TitleResult {
	return TitleResult{Kind: ResultSuppressed}
}

// String renders the result as it is shown to users. Suppressed renders empty.
func (r TitleResult) String() string {
	switch r.Kind {
	case ResultTitle:
		return r.Title
	case ResultNoTitle:
		s := r.Reason
		if r.ContentType != "" {
			s += fmt.Sprintf(" Content-type: %s.", r.ContentType)
		}
		if r.Size != nil {
			s += fmt.Sprintf(" Size: %s.", textutil.ShowSize(*r.Size))
		}
		return s
	default:
		return ""
	}
}

// FieldError reports an upstream JSON document that lacks a field or has it
// with the wrong type.
type FieldError struct {
	Field   string
	Problem string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Problem)
}

func missing(field string) error {
	return &FieldError{Field: field, Problem: "missing"}
}

func wrongType(field, want string) error {
	return &FieldError{Field: field, Problem: "not " + want}
}
