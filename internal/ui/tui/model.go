// Package tui is a terminal host for the meme builder controller.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mumugogoing/meme-bot/internal/ui/handles"
	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/internal/ui/state"
	"github.com/mumugogoing/meme-bot/internal/ui/view"
)

// Controller is the part of *state.Controller the terminal host drives.
type Controller interface {
	Dispatch(model.Event)
	State() model.ViewState
}

// Opener resolves result handles to image bytes.
type Opener interface {
	Open(handle string) (handles.Blob, bool)
}

// SnapshotMsg carries a controller snapshot into the bubbletea loop.
type SnapshotMsg model.ViewState

type field int

const (
	fieldTemplate field = iota
	fieldImageURL
	fieldTopText
	fieldBottomText
	fieldCount
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	focusStyle   = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("205")).Bold(true)
	buttonStyle  = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("230"))
	disabledBtn  = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// Model is the bubbletea model. The controller owns all view state; the model
// only keeps terminal concerns such as focus and the text input widgets.
type Model struct {
	ctrl    Controller
	images  Opener
	saveDir string

	state   model.ViewState
	focus   field
	inputs  map[field]*textinput.Model
	spinner spinner.Model
	status  string
}

// New builds a Model. Saved memes are written to saveDir.
func New(ctrl Controller, images Opener, saveDir string) Model {
	newInput := func(placeholder string) *textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 512
		ti.Width = 48
		return &ti
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		ctrl:    ctrl,
		images:  images,
		saveDir: saveDir,
		state:   ctrl.State(),
		inputs: map[field]*textinput.Model{
			fieldImageURL:   newInput("https://example.com/image.jpg"),
			fieldTopText:    newInput("Enter top text"),
			fieldBottomText: newInput("Enter bottom text"),
		},
		spinner: s,
	}
}

func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	refresh := func() tea.Msg { return SnapshotMsg(ctrl.State()) }
	return tea.Batch(textinput.Blink, m.spinner.Tick, refresh)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		// Snapshots may arrive out of order with the Init refresh.
		if msg.Revision < m.state.Revision {
			return m, nil
		}
		m.state = model.ViewState(msg)
		m.syncInputs()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter", "ctrl+g":
		m.status = ""
		m.ctrl.Dispatch(model.SubmitRequested{})
		return m, nil
	case "esc":
		m.ctrl.Dispatch(model.DismissNotice{})
		return m, nil
	case "ctrl+s":
		m.status = m.save()
		return m, nil
	}

	if m.focus == fieldTemplate {
		switch msg.String() {
		case "left", "h":
			m.cycleTemplate(-1)
		case "right", "l", " ":
			m.cycleTemplate(1)
		}
		return m, nil
	}

	input := m.inputs[m.focus]
	before := input.Value()
	updated, cmd := input.Update(msg)
	*input = updated
	if after := input.Value(); after != before {
		m.ctrl.Dispatch(editEvent(m.focus, after))
	}
	return m, cmd
}

func editEvent(f field, text string) model.Event {
	switch f {
	case fieldImageURL:
		return model.EditImageURL{Text: text}
	case fieldTopText:
		return model.EditTopText{Text: text}
	default:
		return model.EditBottomText{Text: text}
	}
}

func (m *Model) setFocus(f field) {
	m.focus = f
	for key, input := range m.inputs {
		if key == f {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

// cycleTemplate moves the selection through "none" followed by the catalog.
// With no catalog there is nothing to select, and the image URL must survive.
func (m *Model) cycleTemplate(step int) {
	if len(m.state.Templates) == 0 {
		return
	}
	options := append([]string{""}, m.state.Templates...)
	current := 0
	for i, id := range options {
		if id == m.state.Form.SelectedTemplate {
			current = i
			break
		}
	}
	next := (current + step + len(options)) % len(options)
	if options[next] == m.state.Form.SelectedTemplate {
		return
	}
	m.ctrl.Dispatch(model.SelectTemplate{ID: options[next]})
}

// syncInputs copies controller values into unfocused inputs. The focused
// input is what the user is typing into and is ahead of the controller.
func (m *Model) syncInputs() {
	values := map[field]string{
		fieldImageURL:   m.state.Form.ImageURL,
		fieldTopText:    m.state.Form.TopText,
		fieldBottomText: m.state.Form.BottomText,
	}
	for key, input := range m.inputs {
		if key != m.focus && input.Value() != values[key] {
			input.SetValue(values[key])
		}
	}
}

func (m Model) save() string {
	if m.state.Submission.Status != model.Succeeded {
		return "Nothing to save yet"
	}
	blob, ok := m.images.Open(m.state.Submission.Handle)
	if !ok {
		return "Meme is no longer available"
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return "Save failed: " + err.Error()
	}
	path := filepath.Join(m.saveDir, view.DownloadName)
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return "Save failed: " + err.Error()
	}
	return "Saved " + path
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🎭 Meme Generator"))
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(noticeStyle.Render("! "+m.state.Notice+"  (esc to dismiss)") + "\n\n")
	}

	b.WriteString(m.label(fieldTemplate, "Template") + m.templateValue() + "\n")
	b.WriteString(m.label(fieldImageURL, "Image URL") + m.inputs[fieldImageURL].View() + "\n")
	b.WriteString(m.label(fieldTopText, "Top text") + m.inputs[fieldTopText].View() + "\n")
	b.WriteString(m.label(fieldBottomText, "Bottom text") + m.inputs[fieldBottomText].View() + "\n\n")

	label := view.GenerateLabel(m.state)
	switch {
	case m.state.Submission.Status == model.Loading:
		b.WriteString(disabledBtn.Render(m.spinner.View() + " " + label))
	case state.CanSubmit(m.state):
		b.WriteString(buttonStyle.Render(label))
	default:
		b.WriteString(disabledBtn.Render(label))
	}
	b.WriteString("\n\n")

	switch m.state.Submission.Status {
	case model.Failed:
		b.WriteString(errorStyle.Render("❌ "+m.state.Submission.Message) + "\n")
	case model.Succeeded:
		detail := ""
		if blob, ok := m.images.Open(m.state.Submission.Handle); ok {
			detail = fmt.Sprintf(" (%d bytes, %s)", len(blob.Data), blob.ContentType)
		}
		b.WriteString(successStyle.Render("Your meme is ready"+detail+". Press ctrl+s to save it.") + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • ←/→: template • enter: generate • ctrl+s: save • ctrl+c: quit"))
	return b.String()
}

func (m Model) label(f field, text string) string {
	if m.focus == f {
		return focusStyle.Render("› " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m Model) templateValue() string {
	if len(m.state.Templates) == 0 {
		return labelStyle.UnsetWidth().Render("(no templates)")
	}
	selected := m.state.Form.SelectedTemplate
	if selected == "" {
		selected = "-- Select a template --"
	}
	return "‹ " + selected + " ›"
}
