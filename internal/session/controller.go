package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/atscan/internal/model"
)

// User-facing error messages. Details never reach the banner.
const (
	MsgMissingInput  = "Please upload a PDF file."
	MsgRequestFailed = "Error processing request."
)

// DefaultDismissAfter is how long the error banner stays visible.
const DefaultDismissAfter = time.Second

// stopper is the part of *time.Timer the controller needs.
type stopper interface {
	Stop() bool
}

// State is an immutable snapshot of the client state for rendering.
type State struct {
	FileName   string
	HasFile    bool
	Result     *model.PredictionResult // nil until the first successful submit
	Error      model.ErrorState
	Submitting bool
}

// Controller owns the upload-and-predict workflow: the selected file, the last
// prediction, and the transient error banner with its auto-dismiss timer.
// It is safe for concurrent use; the dismiss timer and in-flight requests run
// on their own goroutines.
type Controller struct {
	predictor    model.Predictor
	dismissAfter time.Duration
	logger       *slog.Logger

	// afterFunc schedules the dismiss callback. Replaced in tests.
	afterFunc func(d time.Duration, f func()) stopper

	mu         sync.Mutex
	file       *model.SelectedFile
	result     *model.PredictionResult
	errState   model.ErrorState
	submitting bool
	timer      stopper
	timerGen   uint64 // bumped whenever the pending timer is superseded
	closed     bool

	changes chan struct{}
}

// NewController creates a controller that submits through predictor and hides
// errors dismissAfter after they are shown (DefaultDismissAfter if <= 0).
func NewController(predictor model.Predictor, dismissAfter time.Duration, logger *slog.Logger) *Controller {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Controller{
		predictor:    predictor,
		dismissAfter: dismissAfter,
		logger:       logger,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		changes: make(chan struct{}, 1),
	}
}

// Changes delivers a signal after every state change. Signals coalesce: a
// reader should re-read State rather than count signals.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Error:      c.errState,
		Submitting: c.submitting,
	}
	if c.file != nil {
		s.HasFile = true
		s.FileName = c.file.Name
	}
	if c.result != nil {
		r := copyResult(*c.result)
		s.Result = &r
	}
	return s
}

// SelectFile stores f as the selected file and clears any error immediately.
// Any file type is accepted.
func (c *Controller) SelectFile(f model.SelectedFile) {
	c.mu.Lock()
	c.file = &f
	c.clearErrorLocked()
	c.mu.Unlock()

	c.logger.Debug("file selected", "file", f.Name)
	c.notify()
}

// RemoveFile clears the selected file and any error. Idempotent.
func (c *Controller) RemoveFile() {
	c.mu.Lock()
	c.file = nil
	c.clearErrorLocked()
	c.mu.Unlock()

	c.notify()
}

// Submit sends the selected file to the prediction service. It returns
// model.ErrMissingInput without touching the network when no file is selected,
// model.ErrSubmitInFlight if a previous Submit has not returned, and an error
// wrapping the predictor's failure otherwise. On failure the previous result
// is left untouched. Blocks until the request resolves.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return model.ErrSubmitInFlight
	}
	c.clearErrorLocked()
	if c.file == nil {
		c.showErrorLocked(MsgMissingInput)
		c.mu.Unlock()
		c.notify()
		return model.ErrMissingInput
	}
	file := *c.file
	c.submitting = true
	c.mu.Unlock()
	c.notify()

	result, err := c.predictor.Predict(ctx, file)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.showErrorLocked(MsgRequestFailed)
	} else {
		r := copyResult(result)
		c.result = &r
		c.clearErrorLocked()
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Debug("submit failed", "file", file.Name, "error", err)
		return fmt.Errorf("submit %s: %w", file.Name, err)
	}
	c.logger.Debug("submit succeeded", "file", file.Name, "category", result.Category)
	return nil
}

// Close stops the pending dismiss timer. Timer callbacks that race with Close
// do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelTimerLocked()
}

// showErrorLocked makes msg visible and arms a fresh dismiss timer, replacing
// any pending one.
func (c *Controller) showErrorLocked(msg string) {
	c.errState = model.ErrorState{Message: msg, Visible: true}
	c.cancelTimerLocked()
	if c.closed {
		return
	}
	gen := c.timerGen
	c.timer = c.afterFunc(c.dismissAfter, func() { c.dismiss(gen) })
}

func (c *Controller) clearErrorLocked() {
	c.errState = model.ErrorState{}
	c.cancelTimerLocked()
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

// dismiss hides the banner but keeps the message text. gen guards against a
// callback that fired after its timer was superseded.
func (c *Controller) dismiss(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.errState.Visible = false
	c.timer = nil
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func copyResult(r model.PredictionResult) model.PredictionResult {
	if r.HighlightedSkills != nil {
		skills := make([]string, len(r.HighlightedSkills))
		copy(skills, r.HighlightedSkills)
		r.HighlightedSkills = skills
	}
	if r.ATSScore != nil {
		score := *r.ATSScore
		r.ATSScore = &score
	}
	return r
}
