package memeapi

import (
	"fmt"
	"net/http"
)

// CatalogLoadError reports a failure to list templates. It is never fatal to
// the client: the image URL path keeps working.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return "load templates: " + e.Err.Error()
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the catalog notice.
func (e *CatalogLoadError) UserMessage() string {
	return "Failed to load templates: " + e.Err.Error()
}

// RenderErrorKind classifies render failures.
type RenderErrorKind string

const (
	// KindTransport means the request never produced a response.
	KindTransport RenderErrorKind = "transport"
	// KindStatus means the backend answered with a non-success status.
	KindStatus RenderErrorKind = "status"
	// KindPayload means the response body was not a usable image.
	KindPayload RenderErrorKind = "payload"
)

// RenderError reports a failed meme generation.
type RenderError struct {
	Kind   RenderErrorKind
	Status int
	// Detail is the backend's own error text, when it sent one.
	Detail string
	Err    error
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Detail != "" {
			return fmt.Sprintf("render meme: status %d: %s", e.Status, e.Detail)
		}
		return fmt.Sprintf("render meme: status %d", e.Status)
	default:
		if e.Err != nil {
			return fmt.Sprintf("render meme: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("render meme: %s", e.Kind)
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the Failed submission state.
func (e *RenderError) UserMessage() string {
	switch e.Kind {
	case KindTransport:
		if e.Err != nil {
			return "Network error: " + e.Err.Error()
		}
		return "Network error"
	case KindStatus:
		if e.Detail != "" {
			return "Failed to generate meme: " + e.Detail
		}
		if text := http.StatusText(e.Status); text != "" {
			return "Failed to generate meme: " + text
		}
		return "Failed to generate meme"
	default:
		return "Failed to process meme image"
	}
}
