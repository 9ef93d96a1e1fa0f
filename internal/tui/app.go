package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/atscan/internal/model"
	"github.com/amishk599/atscan/internal/session"
)

type viewState int

const (
	viewMain viewState = iota
	viewPicker
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(1, 0, 0, 2)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 0, 1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")). // bright blue
			Padding(0, 2).
			MarginLeft(2)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("238")).
			Padding(0, 2)

	fileNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Padding(0, 0, 0, 2)

	resultHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	skillStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
)

// stateChangedMsg is sent whenever the controller reports a change, including
// changes made off the event loop (dismiss timer, finished requests).
type stateChangedMsg struct{}

// submitDoneMsg is sent when an async Submit returns.
type submitDoneMsg struct {
	err error
}

type appModel struct {
	ctrl       *session.Controller
	state      session.State
	picker     filepicker.Model
	spinner    spinner.Model
	view       viewState
	width      int
	serviceURL string
	busy       bool // a submit command is running; drives the spinner
}

func newAppModel(ctrl *session.Controller, startDir, serviceURL string) appModel {
	fp := filepicker.New()
	fp.CurrentDirectory = startDir
	fp.AllowedTypes = nil // any file type is forwarded unvalidated

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	return appModel{
		ctrl:       ctrl,
		state:      ctrl.State(),
		picker:     fp,
		spinner:    sp,
		serviceURL: serviceURL,
	}
}

func (m appModel) Init() tea.Cmd {
	return waitForChange(m.ctrl.Changes())
}

// waitForChange blocks until the controller signals a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return stateChangedMsg{}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case stateChangedMsg:
		m.state = m.ctrl.State()
		return m, waitForChange(m.ctrl.Changes())

	case submitDoneMsg:
		m.busy = false
		m.state = m.ctrl.State()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.view == viewPicker {
			return m.updatePicker(msg)
		}
		return m.updateMain(msg)
	}

	if m.view == viewPicker {
		return m.updatePicker(msg)
	}
	return m, nil
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.ctrl.Close()
		return m, tea.Quit
	case "f":
		m.view = viewPicker
		return m, m.picker.Init()
	case "x":
		if m.state.HasFile {
			m.ctrl.RemoveFile()
			m.state = m.ctrl.State()
		}
		return m, nil
	case "enter", "a":
		if m.busy || m.state.Submitting {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.submitCmd(), m.spinner.Tick)
	}
	return m, nil
}

func (m appModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
		m.view = viewMain
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.ctrl.SelectFile(model.FileFromPath(path))
		m.state = m.ctrl.State()
		m.view = viewMain
	}
	return m, cmd
}

func (m appModel) submitCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(context.Background())}
	}
}

func (m appModel) View() string {
	if m.view == viewPicker {
		return m.viewPicker()
	}
	return m.viewMain()
}

func (m appModel) viewPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose a résumé"))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar(" ↑/↓ move  enter/→ open/select  ← up  q cancel"))
	return b.String()
}

func (m appModel) viewMain() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resume Analyzer"))
	b.WriteByte('\n')
	b.WriteString(subtitleStyle.Render("Upload your resume to predict the Category"))
	b.WriteByte('\n')

	var upload strings.Builder
	upload.WriteString(buttonStyle.Render("f  Choose File"))
	if m.state.HasFile {
		upload.WriteString("\n\n")
		upload.WriteString("Selected file: " + fileNameStyle.Render(m.state.FileName))
		upload.WriteString("  " + hintStyle.Render("(x remove)"))
	}
	upload.WriteString("\n\n")
	if m.busy || m.state.Submitting {
		upload.WriteString(m.spinner.View() + " Analyzing...")
	} else {
		upload.WriteString(buttonStyle.Render("enter  Analyze Resume"))
	}
	b.WriteString(panelStyle.Render(upload.String()))
	b.WriteByte('\n')

	if m.state.Error.Shown() {
		b.WriteString(errorStyle.Render(m.state.Error.Message))
	}
	b.WriteByte('\n')

	if m.state.Result != nil {
		b.WriteString(panelStyle.Render(renderResult(*m.state.Result)))
		b.WriteByte('\n')
	}

	b.WriteString(m.statusBar(" f choose file  x remove  enter analyze  q quit    service: " + m.serviceURL))
	return b.String()
}

func (m appModel) statusBar(text string) string {
	if m.width > 0 {
		return statusBarStyle.Width(m.width).Render(text)
	}
	return statusBarStyle.Render(text)
}

func renderResult(r model.PredictionResult) string {
	var b strings.Builder
	b.WriteString(resultHeadingStyle.Render("Category : "+r.Category) + "\n")
	b.WriteString(resultHeadingStyle.Render("ATS Score : "+session.FormatScore(r.ATSScore)) + "\n\n")
	b.WriteString(resultHeadingStyle.Render("Highlighted Skills :") + "\n")
	for _, skill := range session.DisplaySkills(r.HighlightedSkills) {
		b.WriteString(skillStyle.Render("• "+skill) + "\n")
	}
	b.WriteByte('\n')
	b.WriteString(resultHeadingStyle.Render("Suggested Role : " + r.SuggestedRole))
	return b.String()
}

// Run launches the interactive client. It closes ctrl on exit so no dismiss
// timer outlives the UI.
func Run(ctrl *session.Controller, startDir, serviceURL string) error {
	defer ctrl.Close()

	p := tea.NewProgram(newAppModel(ctrl, startDir, serviceURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
