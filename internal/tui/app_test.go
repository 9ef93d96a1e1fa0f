package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/atscan/internal/model"
	"github.com/amishk599/atscan/internal/session"
)

type stubPredictor struct {
	result model.PredictionResult
	err    error
	calls  int
}

func (s *stubPredictor) Predict(_ context.Context, _ model.SelectedFile) (model.PredictionResult, error) {
	s.calls++
	return s.result, s.err
}

func newTestModel(p model.Predictor) (appModel, *session.Controller) {
	// Long dismiss so the banner stays visible for the duration of a test.
	return newTestModelDismiss(p, time.Hour)
}

func newTestModelDismiss(p model.Predictor, dismiss time.Duration) (appModel, *session.Controller) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := session.NewController(p, dismiss, logger)
	return newAppModel(ctrl, ".", "http://127.0.0.1:3000"), ctrl
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// update feeds msg to m and returns the resulting appModel.
func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", next)
	}
	return am, cmd
}

// run executes cmd synchronously and feeds its messages back into m.
// Batches are unpacked in order; follow-up commands are dropped.
func run(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(t, m, c)
		}
		return m
	}
	m, _ = update(t, m, msg)
	return m
}

// submit presses enter and runs the resulting command synchronously.
func submit(t *testing.T, m appModel) appModel {
	t.Helper()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	return run(t, m, cmd)
}

func score(v float64) *float64 { return &v }

func TestSubmitWithoutFile_ShowsError(t *testing.T) {
	p := &stubPredictor{}
	m, ctrl := newTestModel(p)
	defer ctrl.Close()

	m = submit(t, m)

	if p.calls != 0 {
		t.Errorf("expected no predictor calls, got %d", p.calls)
	}
	if !strings.Contains(m.View(), "Please upload a PDF file.") {
		t.Errorf("expected missing-file error in view:\n%s", m.View())
	}
	if strings.Contains(m.View(), "Category :") {
		t.Error("results panel must not appear without a successful response")
	}
}

func TestSuccessfulSubmit_RendersResults(t *testing.T) {
	p := &stubPredictor{result: model.PredictionResult{
		Category:          "Engineering",
		ATSScore:          score(0.873),
		HighlightedSkills: []string{"python", "sql"},
		SuggestedRole:     "Data Analyst",
	}}
	m, ctrl := newTestModel(p)
	defer ctrl.Close()

	ctrl.SelectFile(model.FileFromBytes("resume.pdf", []byte("x")))
	m, _ = update(t, m, stateChangedMsg{})
	m = submit(t, m)

	view := m.View()
	for _, want := range []string{
		"Category : Engineering",
		"ATS Score : 87.30%",
		"PYTHON",
		"SQL",
		"Suggested Role : Data Analyst",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFailedSubmit_KeepsResults(t *testing.T) {
	p := &stubPredictor{result: model.PredictionResult{Category: "Engineering", SuggestedRole: "software_developer"}}
	m, ctrl := newTestModel(p)
	defer ctrl.Close()

	ctrl.SelectFile(model.FileFromBytes("resume.pdf", []byte("x")))
	m = submit(t, m)

	p.err = errors.New("connection refused")
	m = submit(t, m)

	view := m.View()
	if !strings.Contains(view, "Error processing request.") {
		t.Errorf("expected request error in view:\n%s", view)
	}
	if !strings.Contains(view, "Category : Engineering") || !strings.Contains(view, "ATS Score : N/A") {
		t.Errorf("expected previous results in view:\n%s", view)
	}
}

func TestRemoveKey_ShownOnlyWithFile(t *testing.T) {
	m, ctrl := newTestModel(&stubPredictor{})
	defer ctrl.Close()

	if strings.Contains(m.View(), "Selected file:") || strings.Contains(m.View(), "(x remove)") {
		t.Fatal("remove control shown without a file")
	}

	ctrl.SelectFile(model.FileFromBytes("resume.pdf", []byte("x")))
	m, _ = update(t, m, stateChangedMsg{})
	if !strings.Contains(m.View(), "resume.pdf") || !strings.Contains(m.View(), "(x remove)") {
		t.Fatalf("expected selected file and remove control:\n%s", m.View())
	}

	m, _ = update(t, m, keyRune('x'))
	if m.state.HasFile {
		t.Error("expected file removed")
	}
	if strings.Contains(m.View(), "resume.pdf") {
		t.Errorf("file name still shown after removal:\n%s", m.View())
	}
}

func TestDismissedError_HiddenFromView(t *testing.T) {
	m, ctrl := newTestModelDismiss(&stubPredictor{}, 20*time.Millisecond)
	defer ctrl.Close()

	m = submit(t, m)
	if !strings.Contains(m.View(), "Please upload a PDF file.") {
		t.Fatal("expected visible error")
	}

	deadline := time.After(2 * time.Second)
	for m.state.Error.Visible {
		select {
		case <-ctrl.Changes():
			m, _ = update(t, m, stateChangedMsg{})
		case <-deadline:
			t.Fatal("error was not dismissed")
		}
	}

	if m.state.Error.Message != "Please upload a PDF file." {
		t.Errorf("Message = %q, want it kept after dismiss", m.state.Error.Message)
	}
	if strings.Contains(m.View(), "Please upload a PDF file.") {
		t.Errorf("dismissed error still rendered:\n%s", m.View())
	}
}

func TestFileSelection_ClearsErrorFromView(t *testing.T) {
	m, ctrl := newTestModel(&stubPredictor{})
	defer ctrl.Close()

	m = submit(t, m)
	if !strings.Contains(m.View(), "Please upload a PDF file.") {
		t.Fatal("expected visible error")
	}

	// Selecting a file clears the error right away.
	ctrl.SelectFile(model.FileFromBytes("resume.pdf", []byte("x")))
	m, _ = update(t, m, stateChangedMsg{})
	if strings.Contains(m.View(), "Please upload a PDF file.") {
		t.Errorf("error still visible after file selection:\n%s", m.View())
	}
}

func TestSpinner_TicksOnlyWhileSubmitting(t *testing.T) {
	m, ctrl := newTestModel(&stubPredictor{})
	defer ctrl.Close()

	if _, cmd := update(t, m, m.spinner.Tick()); cmd != nil {
		t.Error("idle model should not keep the spinner ticking")
	}

	ctrl.SelectFile(model.FileFromBytes("resume.pdf", []byte("x")))
	m, _ = update(t, m, stateChangedMsg{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.busy {
		t.Fatal("expected submit to start")
	}
	if !strings.Contains(m.View(), "Analyzing...") {
		t.Errorf("expected spinner while submitting:\n%s", m.View())
	}
	if _, next := update(t, m, m.spinner.Tick()); next == nil {
		t.Error("expected spinner to keep ticking while submitting")
	}

	m = run(t, m, cmd)
	if m.busy {
		t.Error("expected busy cleared after submit finished")
	}
	if _, next := update(t, m, m.spinner.Tick()); next != nil {
		t.Error("spinner kept ticking after submit finished")
	}
}

func TestPickerOpensAndCancels(t *testing.T) {
	m, ctrl := newTestModel(&stubPredictor{})
	defer ctrl.Close()

	m, cmd := update(t, m, keyRune('f'))
	if m.view != viewPicker {
		t.Fatal("expected picker view after f")
	}
	if cmd == nil {
		t.Error("expected directory read command")
	}
	if !strings.Contains(m.View(), "Choose a résumé") {
		t.Errorf("unexpected picker view:\n%s", m.View())
	}

	m, _ = update(t, m, keyRune('q'))
	if m.view != viewMain {
		t.Error("expected q to return to the main view")
	}
}

func TestQuit_ClosesController(t *testing.T) {
	m, ctrl := newTestModel(&stubPredictor{})

	_, cmd := update(t, m, keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	ctrl.Close() // idempotent
}
