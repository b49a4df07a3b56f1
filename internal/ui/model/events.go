package model

// Event is one input to the view state machine. The set is closed: only the
// types in this file implement it.
type Event interface {
	eventName() string
}

// EventName returns a stable label for ev, used in logs and metrics.
func EventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}

type (
	// EditTopText replaces the top overlay text.
	EditTopText struct{ Text string }
	// EditBottomText replaces the bottom overlay text.
	EditBottomText struct{ Text string }
	// EditImageURL replaces the image URL and clears the selected template.
	EditImageURL struct{ Text string }
	// SelectTemplate replaces the selected template and clears the image URL.
	// An empty ID means no template is chosen.
	SelectTemplate struct{ ID string }
	// SubmitRequested asks for the current form to be rendered.
	SubmitRequested struct{}
	// CatalogLoaded delivers the template catalog.
	CatalogLoaded struct{ Templates []string }
	// CatalogLoadFailed reports a catalog fetch failure.
	CatalogLoadFailed struct{ Message string }
	// RenderSucceeded delivers the handle of a rendered image.
	RenderSucceeded struct{ Handle string }
	// RenderFailed reports a render failure.
	RenderFailed struct{ Message string }
	// DismissNotice hides the catalog notice.
	DismissNotice struct{}
)

func (EditTopText) eventName() string       { return "edit_top_text" }
func (EditBottomText) eventName() string    { return "edit_bottom_text" }
func (EditImageURL) eventName() string      { return "edit_image_url" }
func (SelectTemplate) eventName() string    { return "select_template" }
func (SubmitRequested) eventName() string   { return "submit_requested" }
func (CatalogLoaded) eventName() string     { return "catalog_loaded" }
func (CatalogLoadFailed) eventName() string { return "catalog_load_failed" }
func (RenderSucceeded) eventName() string   { return "render_succeeded" }
func (RenderFailed) eventName() string      { return "render_failed" }
func (DismissNotice) eventName() string     { return "dismiss_notice" }

// Effect is an asynchronous side effect requested by a transition. Effects
// are plain data; hosts hand them to a runner.
type Effect interface {
	effectName() string
}

// EffectName returns a stable label for eff.
func EffectName(eff Effect) string {
	if eff == nil {
		return "none"
	}
	return eff.effectName()
}

// FetchCatalog loads the template list.
type FetchCatalog struct{}

// RenderMeme posts Request to the rendering service.
type RenderMeme struct {
	Request RenderRequest
}

func (FetchCatalog) effectName() string { return "fetch_catalog" }
func (RenderMeme) effectName() string   { return "render_meme" }
