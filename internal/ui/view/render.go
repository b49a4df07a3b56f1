// Package view renders the meme builder markup from a view state snapshot.
// It has no browser dependencies so the markup can be tested natively.
package view

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/internal/ui/state"
)

// Element IDs the browser host binds listeners to.
const (
	TemplateSelectID  = "meme-template"
	ImageURLInputID   = "meme-image-url"
	TopTextInputID    = "meme-top-text"
	BottomTextInputID = "meme-bottom-text"
	GenerateButtonID  = "meme-generate"
	DismissNoticeID   = "meme-notice-dismiss"
	ResultImageID     = "meme-result"
	DownloadLinkID    = "meme-download"
)

// DownloadName is the file name offered for a generated meme.
const DownloadName = "meme.png"

// messages from the backend are shown as plain text only.
var messagePolicy = bluemonday.StrictPolicy()

// Render returns the builder markup for s.
func Render(s model.ViewState) string {
	var b strings.Builder

	b.WriteString(`<div class="form-section">`)
	b.WriteString("<h2>Choose Template or Image URL</h2>")
	writeNotice(&b, s.Notice)
	writeTemplateSelect(&b, s)
	b.WriteString(`<div class="separator">OR</div>`)
	writeInput(&b, ImageURLInputID, "Image URL:", s.Form.ImageURL, "https://example.com/image.jpg")

	b.WriteString("<h2>Add Text</h2>")
	writeInput(&b, TopTextInputID, "Top Text:", s.Form.TopText, "Enter top text")
	writeInput(&b, BottomTextInputID, "Bottom Text:", s.Form.BottomText, "Enter bottom text")
	writeGenerateButton(&b, s)
	b.WriteString("</div>")

	switch s.Submission.Status {
	case model.Failed:
		b.WriteString(`<div class="error-message" role="alert"><p>❌ `)
		b.WriteString(Message(s.Submission.Message))
		b.WriteString("</p></div>")
	case model.Succeeded:
		handle := html.EscapeString(s.Submission.Handle)
		b.WriteString(`<div class="result-section">`)
		b.WriteString("<h2>Your Meme:</h2>")
		b.WriteString(`<img id="` + ResultImageID + `" src="` + handle + `" alt="Generated Meme" />`)
		b.WriteString(`<a id="` + DownloadLinkID + `" href="` + handle + `" download="` + DownloadName + `" class="download-btn">Download Meme</a>`)
		b.WriteString("</div>")
	}
	return b.String()
}

// Message returns msg as escaped plain text with any markup removed.
func Message(msg string) string {
	return messagePolicy.Sanitize(strings.TrimSpace(msg))
}

// GenerateLabel is the generate button caption for s.
func GenerateLabel(s model.ViewState) string {
	if s.Submission.Status == model.Loading {
		return "Generating..."
	}
	return "Generate Meme"
}

func writeNotice(b *strings.Builder, notice string) {
	if notice == "" {
		return
	}
	b.WriteString(`<div class="notice" role="status"><p>`)
	b.WriteString(Message(notice))
	b.WriteString(`</p><button type="button" id="` + DismissNoticeID + `" class="notice-dismiss" aria-label="Dismiss">×</button></div>`)
}

func writeTemplateSelect(b *strings.Builder, s model.ViewState) {
	b.WriteString(`<div class="input-group">`)
	b.WriteString(`<label for="` + TemplateSelectID + `">Select Template:</label>`)
	b.WriteString(`<select id="` + TemplateSelectID + `">`)
	b.WriteString(`<option value="">-- Select a template --</option>`)
	for _, id := range s.Templates {
		escaped := html.EscapeString(id)
		b.WriteString(`<option value="` + escaped + `"`)
		if id == s.Form.SelectedTemplate {
			b.WriteString(" selected")
		}
		b.WriteString(">" + escaped + "</option>")
	}
	b.WriteString("</select></div>")
}

func writeInput(b *strings.Builder, id, label, value, placeholder string) {
	b.WriteString(`<div class="input-group">`)
	b.WriteString(`<label for="` + id + `">` + label + `</label>`)
	b.WriteString(`<input type="text" id="` + id + `" placeholder="` + html.EscapeString(placeholder) + `" value="` + html.EscapeString(value) + `" />`)
	b.WriteString("</div>")
}

func writeGenerateButton(b *strings.Builder, s model.ViewState) {
	b.WriteString(`<button type="button" id="` + GenerateButtonID + `" class="generate-btn"`)
	if !state.CanSubmit(s) {
		b.WriteString(" disabled")
	}
	if s.Submission.Status == model.Loading {
		b.WriteString(` aria-busy="true"`)
	}
	b.WriteString(">" + GenerateLabel(s) + "</button>")
}
