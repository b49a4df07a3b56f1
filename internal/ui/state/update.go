// Package state holds the meme builder's view state machine and the
// controller that feeds it events one at a time.
package state

import "github.com/mumugogoing/meme-bot/internal/ui/model"

// Initial returns the state a host starts from: empty form, empty catalog,
// nothing submitted.
func Initial() model.ViewState {
	return model.ViewState{
		Templates:  []string{},
		Submission: model.IdleSubmission(),
	}
}

// CanSubmit reports whether the generate action is enabled.
func CanSubmit(s model.ViewState) bool {
	return s.Submission.Status != model.Loading && s.Form.HasSource()
}

// Update applies ev to s and returns the next state together with the side
// effect the host must run, if any. s is never modified. An event that does
// not apply returns s unchanged, Revision included.
func Update(s model.ViewState, ev model.Event) (model.ViewState, model.Effect) {
	next := s.Clone()
	var effect model.Effect

	switch ev := ev.(type) {
	case model.EditTopText:
		next.Form.TopText = ev.Text
	case model.EditBottomText:
		next.Form.BottomText = ev.Text
	case model.EditImageURL:
		next.Form.ImageURL = ev.Text
		next.Form.SelectedTemplate = ""
	case model.SelectTemplate:
		next.Form.SelectedTemplate = ev.ID
		next.Form.ImageURL = ""
	case model.SubmitRequested:
		if !CanSubmit(s) {
			return s, nil
		}
		next.Submission = model.LoadingSubmission()
		effect = model.RenderMeme{Request: model.RequestFromForm(s.Form)}
	case model.CatalogLoaded:
		next.Templates = append([]string{}, ev.Templates...)
		next.Notice = ""
	case model.CatalogLoadFailed:
		next.Notice = ev.Message
	case model.RenderSucceeded:
		if s.Submission.Status != model.Loading {
			return s, nil
		}
		next.Submission = model.SucceededSubmission(ev.Handle)
	case model.RenderFailed:
		if s.Submission.Status != model.Loading {
			return s, nil
		}
		next.Submission = model.FailedSubmission(ev.Message)
	case model.DismissNotice:
		if s.Notice == "" {
			return s, nil
		}
		next.Notice = ""
	default:
		return s, nil
	}

	next.Revision = s.Revision + 1
	return next, effect
}

// Released lists the handles nobody owns once prev has moved to next because
// of ev: the previous result when it was superseded, and the handle carried by
// a RenderSucceeded that was discarded.
func Released(prev, next model.ViewState, ev model.Event) []string {
	var out []string
	if h := prev.Submission.Handle; h != "" && h != next.Submission.Handle {
		out = append(out, h)
	}
	if rs, ok := ev.(model.RenderSucceeded); ok && rs.Handle != "" {
		if rs.Handle != next.Submission.Handle && rs.Handle != prev.Submission.Handle {
			out = append(out, rs.Handle)
		}
	}
	return out
}
