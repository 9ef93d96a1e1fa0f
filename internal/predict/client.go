package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/atscan/internal/model"
)

// Ensure Client implements model.Predictor.
var _ model.Predictor = (*Client)(nil)

const (
	predictPath   = "/predict"
	fileFieldName = "file"
)

// predictResponse is the JSON body returned on success. Pointer fields let us
// tell a missing key from a zero value.
type predictResponse struct {
	Category          *string   `json:"category"`
	ATSScore          *float64  `json:"ats_score"`
	HighlightedSkills []*string `json:"highlighted_skills"`
	SuggestedRole     *string   `json:"suggested_role"`
}

// errorResponse is the body the service sends with 4xx/5xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// Client uploads résumés to the prediction service's /predict endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the prediction service at baseURL
// (e.g. "http://127.0.0.1:3000").
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Predict posts file as multipart/form-data under the "file" field and decodes
// the classification. Every error wraps model.ErrRequestFailed.
func (c *Client) Predict(ctx context.Context, file model.SelectedFile) (model.PredictionResult, error) {
	body, contentType, err := encodeUpload(file)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %w", model.ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, body)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: create request: %w", model.ErrRequestFailed, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("submitting file", "file", file.Name, "bytes", body.Len(), "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: post %s: %w", model.ErrRequestFailed, predictPath, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: read response: %w", model.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &model.HTTPError{StatusCode: resp.StatusCode, Err: serviceError(respBytes)}
		c.logger.Debug("prediction service rejected request", "status", resp.StatusCode, "request_id", requestID, "error", httpErr.Err)
		return model.PredictionResult{}, fmt.Errorf("%w: %w", model.ErrRequestFailed, httpErr)
	}

	result, err := decodePrediction(respBytes)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %w", model.ErrRequestFailed, err)
	}

	c.logger.Debug("prediction received", "category", result.Category, "skills", len(result.HighlightedSkills), "request_id", requestID)
	return result, nil
}

// encodeUpload buffers the multipart body so the request carries a Content-Length.
func encodeUpload(file model.SelectedFile) (*bytes.Buffer, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fileFieldName, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// decodePrediction maps the response body 1:1 onto a PredictionResult.
// category and suggested_role are required; ats_score and highlighted_skills
// may be null or absent, but a null skill inside the array is rejected.
func decodePrediction(data []byte) (model.PredictionResult, error) {
	var raw predictResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %w", model.ErrMalformedResponse, err)
	}
	if raw.Category == nil {
		return model.PredictionResult{}, fmt.Errorf("%w: missing category", model.ErrMalformedResponse)
	}
	if raw.SuggestedRole == nil {
		return model.PredictionResult{}, fmt.Errorf("%w: missing suggested_role", model.ErrMalformedResponse)
	}

	skills := make([]string, 0, len(raw.HighlightedSkills))
	for i, s := range raw.HighlightedSkills {
		if s == nil {
			return model.PredictionResult{}, fmt.Errorf("%w: highlighted_skills[%d] is null", model.ErrMalformedResponse, i)
		}
		skills = append(skills, *s)
	}

	return model.PredictionResult{
		Category:          *raw.Category,
		ATSScore:          raw.ATSScore,
		HighlightedSkills: skills,
		SuggestedRole:     *raw.SuggestedRole,
	}, nil
}

// serviceError extracts the service's {"error": "..."} message, if any.
func serviceError(data []byte) error {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		return errors.New(er.Error)
	}
	return errors.New("unexpected status")
}
