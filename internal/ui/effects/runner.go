// Package effects turns effect data requested by the view state machine into
// collaborator calls, and every outcome of those calls into a terminal event.
package effects

import (
	"context"
	"errors"
	"fmt"

	"github.com/mumugogoing/meme-bot/internal/ui/handles"
	"github.com/mumugogoing/meme-bot/internal/ui/memeapi"
	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/logging"
)

// API is the subset of *memeapi.Client the runner needs.
type API interface {
	Templates(ctx context.Context) ([]string, error)
	Render(ctx context.Context, req model.RenderRequest) (memeapi.Image, error)
}

// Runner implements state.Runner.
type Runner struct {
	api    API
	store  handles.Store
	logger *logging.Logger
}

// NewRunner wires api and store. store receives rendered images and must be
// the same store the controller releases handles into.
func NewRunner(api API, store handles.Store, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{api: api, store: store, logger: logger}
}

// Run executes eff. It never returns nil for a known effect.
func (r *Runner) Run(ctx context.Context, eff model.Effect) model.Event {
	switch eff := eff.(type) {
	case model.FetchCatalog:
		return r.fetchCatalog(ctx)
	case model.RenderMeme:
		return r.render(ctx, eff.Request)
	default:
		return model.RenderFailed{Message: fmt.Sprintf("unsupported effect %s", model.EffectName(eff))}
	}
}

func (r *Runner) fetchCatalog(ctx context.Context) model.Event {
	templates, err := r.api.Templates(ctx)
	if err != nil {
		r.logger.Error("effects", "template catalog unavailable", err, nil)
		var catalogErr *memeapi.CatalogLoadError
		if errors.As(err, &catalogErr) {
			return model.CatalogLoadFailed{Message: catalogErr.UserMessage()}
		}
		return model.CatalogLoadFailed{Message: "Failed to load templates: " + err.Error()}
	}
	r.logger.Info("effects", "template catalog loaded", map[string]any{"count": len(templates)})
	return model.CatalogLoaded{Templates: templates}
}

func (r *Runner) render(ctx context.Context, req model.RenderRequest) model.Event {
	img, err := r.api.Render(ctx, req)
	if err != nil {
		r.logger.Error("effects", "meme render failed", err, map[string]any{
			"template": req.Template,
			"imageUrl": req.ImageURL,
		})
		var renderErr *memeapi.RenderError
		if errors.As(err, &renderErr) {
			return model.RenderFailed{Message: renderErr.UserMessage()}
		}
		return model.RenderFailed{Message: "Network error: " + err.Error()}
	}

	handle, err := r.store.Create(img.Data, img.ContentType)
	if err != nil {
		r.logger.Error("effects", "store rendered meme", err, nil)
		return model.RenderFailed{Message: "Failed to process meme image"}
	}
	r.logger.Info("effects", "meme rendered", map[string]any{
		"bytes":       len(img.Data),
		"contentType": img.ContentType,
	})
	return model.RenderSucceeded{Handle: handle}
}
