package model

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
)

// SelectedFile is the user's chosen résumé prior to submission: an opaque
// content source plus the name shown in the UI and sent as the upload filename.
type SelectedFile struct {
	Name string
	open func() (io.ReadCloser, error)
}

// FileFromPath returns a SelectedFile backed by a file on disk. The file is
// opened lazily on each Open call, so a file removed after selection surfaces
// as a request failure at submit time.
func FileFromPath(path string) SelectedFile {
	return SelectedFile{
		Name: filepath.Base(path),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FileFromBytes returns a SelectedFile backed by an in-memory blob.
func FileFromBytes(name string, data []byte) SelectedFile {
	return SelectedFile{
		Name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns a reader over the file content.
func (f SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, os.ErrInvalid
	}
	return f.open()
}

// PredictionResult is the classification returned by the prediction service.
type PredictionResult struct {
	Category          string
	ATSScore          *float64 // nil when the service returned null or omitted it
	HighlightedSkills []string // in service order, as returned
	SuggestedRole     string
}

// ErrorState is the transient error banner.
type ErrorState struct {
	Message string
	Visible bool
}

// Shown reports whether the banner should be displayed. Both a message and
// visibility are required; auto-dismiss hides the banner but keeps the text.
func (e ErrorState) Shown() bool {
	return e.Message != "" && e.Visible
}

// Predictor submits a résumé to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, file SelectedFile) (PredictionResult, error)
}
