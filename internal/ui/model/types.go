package model

// FormState holds the user's current meme inputs. ImageURL and SelectedTemplate
// are mutually exclusive: writing one clears the other.
type FormState struct {
	TopText          string
	BottomText       string
	ImageURL         string
	SelectedTemplate string
}

// HasSource reports whether the form names something to render.
func (f FormState) HasSource() bool {
	return f.ImageURL != "" || f.SelectedTemplate != ""
}

// SubmissionStatus enumerates the variants of Submission.
type SubmissionStatus int

const (
	Idle SubmissionStatus = iota
	Loading
	Succeeded
	Failed
)

func (s SubmissionStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Submission is the state of the generate workflow. Handle is only set when
// Status is Succeeded and Message only when Status is Failed; use the
// constructors below rather than building the struct by hand.
type Submission struct {
	Status  SubmissionStatus
	Handle  string
	Message string
}

// IdleSubmission is the state before anything has been submitted.
func IdleSubmission() Submission { return Submission{Status: Idle} }

// LoadingSubmission marks a render request as in flight.
func LoadingSubmission() Submission { return Submission{Status: Loading} }

// SucceededSubmission carries the locally resolvable handle of the rendered image.
func SucceededSubmission(handle string) Submission {
	return Submission{Status: Succeeded, Handle: handle}
}

// FailedSubmission carries the message shown to the user.
func FailedSubmission(message string) Submission {
	return Submission{Status: Failed, Message: message}
}

// ViewState is the full client state rendered by a host.
type ViewState struct {
	Form       FormState
	Templates  []string
	Submission Submission
	// Notice is the non-fatal catalog error shown above the form.
	Notice string
	// Revision increases on every applied transition.
	Revision uint64
}

// Clone returns a copy that shares no slices with s.
func (s ViewState) Clone() ViewState {
	out := s
	out.Templates = append([]string{}, s.Templates...)
	return out
}

// RenderRequest is the payload posted to the rendering service. Both source
// fields are always transmitted; the unused one is empty.
type RenderRequest struct {
	Template   string `json:"template"`
	ImageURL   string `json:"image_url"`
	TopText    string `json:"top_text"`
	BottomText string `json:"bottom_text"`
}

// RequestFromForm snapshots the form into a RenderRequest.
func RequestFromForm(f FormState) RenderRequest {
	return RenderRequest{
		Template:   f.SelectedTemplate,
		ImageURL:   f.ImageURL,
		TopText:    f.TopText,
		BottomText: f.BottomText,
	}
}

// TemplatesResponse matches the JSON envelope served by the catalog endpoint.
type TemplatesResponse struct {
	Templates []string `json:"templates"`
}

// ErrorResponse is the JSON error body returned by the backend.
type ErrorResponse struct {
	Error string `json:"error"`
}
