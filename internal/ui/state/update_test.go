package state

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mumugogoing/meme-bot/internal/ui/model"
)

func apply(t *testing.T, s model.ViewState, events ...model.Event) model.ViewState {
	t.Helper()
	for _, ev := range events {
		s, _ = Update(s, ev)
	}
	return s
}

func loadingState(t *testing.T) model.ViewState {
	t.Helper()
	s := apply(t, Initial(), model.SelectTemplate{ID: "doge"})
	s, eff := Update(s, model.SubmitRequested{})
	require.Equal(t, model.Loading, s.Submission.Status)
	require.NotNil(t, eff)
	return s
}

func TestInitialState(t *testing.T) {
	s := Initial()
	assert.Equal(t, []string{}, s.Templates)
	assert.Equal(t, model.IdleSubmission(), s.Submission)
	assert.False(t, CanSubmit(s))
}

func TestImageURLAndTemplateStayMutuallyExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := []string{"", "doge", "success-kid", "http://x/y.png"}
	s := Initial()
	for i := 0; i < 500; i++ {
		value := values[rng.Intn(len(values))]
		var ev model.Event = model.EditImageURL{Text: value}
		if rng.Intn(2) == 0 {
			ev = model.SelectTemplate{ID: value}
		}
		s, _ = Update(s, ev)
		if s.Form.ImageURL != "" && s.Form.SelectedTemplate != "" {
			t.Fatalf("step %d (%#v): both sources set: %+v", i, ev, s.Form)
		}
	}
}

func TestEmptyEditsStillClearTheOtherSource(t *testing.T) {
	s := apply(t, Initial(), model.SelectTemplate{ID: "doge"}, model.EditImageURL{Text: ""})
	assert.Equal(t, "", s.Form.SelectedTemplate)

	s = apply(t, Initial(), model.EditImageURL{Text: "http://x/y.png"}, model.SelectTemplate{ID: ""})
	assert.Equal(t, "", s.Form.ImageURL)
}

func TestTextEditsReplaceFieldsAndBumpRevision(t *testing.T) {
	s := Initial()
	s, eff := Update(s, model.EditTopText{Text: "WOW"})
	assert.Nil(t, eff)
	s, _ = Update(s, model.EditBottomText{Text: "MUCH"})
	s, _ = Update(s, model.EditBottomText{Text: "MUCH"})

	assert.Equal(t, "WOW", s.Form.TopText)
	assert.Equal(t, "MUCH", s.Form.BottomText)
	assert.Equal(t, uint64(3), s.Revision)
}

func TestSubmitWhileLoadingIsNoOp(t *testing.T) {
	s := loadingState(t)
	for i := 0; i < 3; i++ {
		next, eff := Update(s, model.SubmitRequested{})
		if diff := cmp.Diff(s, next); diff != "" {
			t.Fatalf("state changed on repeated submit (-want +got):\n%s", diff)
		}
		assert.Nil(t, eff)
	}
}

func TestSubmitWithoutSourceIsNoOp(t *testing.T) {
	s := apply(t, Initial(), model.EditTopText{Text: "top"}, model.EditBottomText{Text: "bottom"})
	next, eff := Update(s, model.SubmitRequested{})
	if diff := cmp.Diff(s, next); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
	assert.Nil(t, eff)
}

func TestRenderResultsOutsideLoadingAreDiscarded(t *testing.T) {
	idle := Initial()
	succeeded := apply(t, loadingState(t), model.RenderSucceeded{Handle: "blob:1"})
	failed := apply(t, loadingState(t), model.RenderFailed{Message: "boom"})

	for name, s := range map[string]model.ViewState{"idle": idle, "succeeded": succeeded, "failed": failed} {
		for _, ev := range []model.Event{model.RenderSucceeded{Handle: "blob:stale"}, model.RenderFailed{Message: "stale"}} {
			next, eff := Update(s, ev)
			if diff := cmp.Diff(s, next); diff != "" {
				t.Fatalf("%s: %#v changed state (-want +got):\n%s", name, ev, diff)
			}
			assert.Nil(t, eff)
		}
	}
}

func TestSubmitRoundTrip(t *testing.T) {
	s := apply(t, Initial(),
		model.SelectTemplate{ID: "doge"},
		model.EditTopText{Text: "WOW"},
		model.EditBottomText{Text: "MUCH"},
	)
	require.True(t, CanSubmit(s))

	s, eff := Update(s, model.SubmitRequested{})
	assert.Equal(t, model.LoadingSubmission(), s.Submission)
	assert.False(t, CanSubmit(s))
	assert.Equal(t, model.RenderMeme{Request: model.RenderRequest{
		Template:   "doge",
		ImageURL:   "",
		TopText:    "WOW",
		BottomText: "MUCH",
	}}, eff)

	s, eff = Update(s, model.RenderSucceeded{Handle: "blob:1"})
	assert.Nil(t, eff)
	assert.Equal(t, model.SucceededSubmission("blob:1"), s.Submission)
	assert.True(t, CanSubmit(s))
}

func TestRenderRequestIsASnapshot(t *testing.T) {
	s := apply(t, Initial(), model.EditImageURL{Text: "http://x/y.png"}, model.EditTopText{Text: "before"})
	s, eff := Update(s, model.SubmitRequested{})
	s = apply(t, s, model.EditTopText{Text: "after"}, model.EditImageURL{Text: "http://other"})

	render, ok := eff.(model.RenderMeme)
	require.True(t, ok)
	assert.Equal(t, "before", render.Request.TopText)
	assert.Equal(t, "http://x/y.png", render.Request.ImageURL)
	assert.Equal(t, "after", s.Form.TopText)
}

func TestRenderFailureReenablesSubmit(t *testing.T) {
	s := apply(t, loadingState(t), model.RenderFailed{Message: "Failed to generate meme"})
	assert.Equal(t, model.FailedSubmission("Failed to generate meme"), s.Submission)
	assert.True(t, CanSubmit(s))

	s, eff := Update(s, model.SubmitRequested{})
	assert.NotNil(t, eff)
	assert.Equal(t, model.LoadingSubmission(), s.Submission, "a new submission clears the prior error")
}

func TestCatalogThenSelectThenImageURL(t *testing.T) {
	s := apply(t, Initial(),
		model.CatalogLoaded{Templates: []string{"doge", "success-kid"}},
		model.SelectTemplate{ID: "doge"},
		model.EditImageURL{Text: "http://x/y.png"},
	)
	assert.Equal(t, "", s.Form.SelectedTemplate)
	assert.Equal(t, "http://x/y.png", s.Form.ImageURL)
	assert.Equal(t, []string{"doge", "success-kid"}, s.Templates)
}

func TestCatalogLoadFailureIsANotice(t *testing.T) {
	before := loadingState(t)
	s := apply(t, before, model.CatalogLoadFailed{Message: "network down"})

	assert.Equal(t, []string{}, s.Templates)
	assert.Equal(t, before.Submission, s.Submission)
	assert.Equal(t, "network down", s.Notice)

	s, eff := Update(s, model.DismissNotice{})
	assert.Nil(t, eff)
	assert.Equal(t, "", s.Notice)

	again, _ := Update(s, model.DismissNotice{})
	assert.Equal(t, s.Revision, again.Revision, "dismissing nothing is ignored")
}

func TestCatalogLoadedCopiesTheList(t *testing.T) {
	list := []string{"doge"}
	s := apply(t, Initial(), model.CatalogLoadFailed{Message: "first try failed"}, model.CatalogLoaded{Templates: list})
	list[0] = "mutated"

	assert.Equal(t, []string{"doge"}, s.Templates)
	assert.Equal(t, "", s.Notice)

	s = apply(t, s, model.CatalogLoaded{Templates: []string{"a", "b"}})
	assert.Equal(t, []string{"a", "b"}, s.Templates, "latest completion wins")
}

func TestUpdateNeverMutatesInput(t *testing.T) {
	s := apply(t, Initial(), model.CatalogLoaded{Templates: []string{"doge"}})
	snapshot := s.Clone()
	_, _ = Update(s, model.CatalogLoaded{Templates: []string{"other"}})
	_, _ = Update(s, model.SelectTemplate{ID: "doge"})
	if diff := cmp.Diff(snapshot, s); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestReleasedHandles(t *testing.T) {
	succeeded := apply(t, loadingState(t), model.RenderSucceeded{Handle: "blob:1"})

	next, _ := Update(succeeded, model.SubmitRequested{})
	assert.Equal(t, []string{"blob:1"}, Released(succeeded, next, model.SubmitRequested{}))

	edited, _ := Update(succeeded, model.EditTopText{Text: "x"})
	assert.Empty(t, Released(succeeded, edited, model.EditTopText{Text: "x"}))

	stale := model.RenderSucceeded{Handle: "blob:2"}
	same, _ := Update(succeeded, stale)
	assert.Equal(t, []string{"blob:2"}, Released(succeeded, same, stale))

	loading := loadingState(t)
	adopted, _ := Update(loading, model.RenderSucceeded{Handle: "blob:3"})
	assert.Empty(t, Released(loading, adopted, model.RenderSucceeded{Handle: "blob:3"}))
}
