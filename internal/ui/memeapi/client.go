// Package memeapi talks to the template catalog and meme rendering services.
package memeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mumugogoing/meme-bot/internal/ui/model"
)

const (
	templatesPath = "/api/templates"
	memePath      = "/api/meme"
	healthPath    = "/api/health"

	// DefaultCatalogTimeout bounds the startup template fetch.
	DefaultCatalogTimeout = 8 * time.Second
	// DefaultRenderTimeout bounds a single render request.
	DefaultRenderTimeout = 30 * time.Second

	maxImageBytes = 20 << 20
	maxErrorBytes = 64 << 10
)

// Image is a rendered meme.
type Image struct {
	Data        []byte
	ContentType string
}

// Client calls the backend. A zero base URL issues same-origin relative
// requests, which is what the browser host wants.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	catalogTimeout time.Duration
	renderTimeout  time.Duration
	tracer         trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeouts overrides the per-call deadlines. Non-positive values keep the defaults.
func WithTimeouts(catalog, render time.Duration) Option {
	return func(c *Client) {
		if catalog > 0 {
			c.catalogTimeout = catalog
		}
		if render > 0 {
			c.renderTimeout = render
		}
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient:     &http.Client{},
		catalogTimeout: DefaultCatalogTimeout,
		renderTimeout:  DefaultRenderTimeout,
		tracer:         otel.Tracer("github.com/mumugogoing/meme-bot/internal/ui/memeapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Templates lists the template identifiers offered by the catalog service.
// Every failure is a *CatalogLoadError.
func (c *Client) Templates(ctx context.Context) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "memeapi.Templates")
	defer span.End()

	templates, err := c.templates(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &CatalogLoadError{Err: err}
	}
	span.SetAttributes(attribute.Int("meme.templates", len(templates)))
	return templates, nil
}

func (c *Client) templates(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.catalogTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+templatesPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s failed: %s", templatesPath, resp.Status)
	}

	var payload struct {
		Templates *[]string `json:"templates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if payload.Templates == nil {
		return nil, errors.New("decode templates: missing templates field")
	}
	return append([]string{}, (*payload.Templates)...), nil
}

// Render posts req to the rendering service and returns the image. Every
// failure is a *RenderError.
func (c *Client) Render(ctx context.Context, req model.RenderRequest) (Image, error) {
	ctx, span := c.tracer.Start(ctx, "memeapi.Render", trace.WithAttributes(
		attribute.String("meme.template", req.Template),
		attribute.Bool("meme.image_url", req.ImageURL != ""),
	))
	defer span.End()

	img, err := c.render(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Image{}, err
	}
	span.SetAttributes(attribute.Int("meme.bytes", len(img.Data)))
	return img, nil
}

func (c *Client) render(ctx context.Context, payload model.RenderRequest) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.renderTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return Image{}, &RenderError{Kind: KindTransport, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+memePath, bytes.NewReader(body))
	if err != nil {
		return Image{}, &RenderError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Image{}, &RenderError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Image{}, &RenderError{
			Kind:   KindStatus,
			Status: resp.StatusCode,
			Detail: readErrorDetail(resp.Body),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return Image{}, &RenderError{Kind: KindPayload, Status: resp.StatusCode, Err: err}
	}
	if len(data) > maxImageBytes {
		return Image{}, &RenderError{Kind: KindPayload, Status: resp.StatusCode, Err: errors.New("image too large")}
	}
	contentType, ok := imageContentType(resp.Header.Get("Content-Type"), data)
	if !ok {
		return Image{}, &RenderError{
			Kind:   KindPayload,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected content type %q", contentType),
		}
	}
	return Image{Data: data, ContentType: contentType}, nil
}

// Health checks the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.catalogTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}

// imageContentType trusts the declared type when it is an image and falls
// back to sniffing the payload.
func imageContentType(declared string, data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return sniffed, false
	}
	declared = strings.TrimSpace(strings.SplitN(declared, ";", 2)[0])
	if strings.HasPrefix(declared, "image/") {
		return declared, true
	}
	return sniffed, true
}

func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload model.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		return strings.TrimSpace(payload.Error)
	}
	return ""
}
