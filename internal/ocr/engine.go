package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Engine is the extraction boundary. Implementations turn a document
// image into the OCR block stored on a submission; everything behind
// this interface is a black box to the rest of the system.
type Engine interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*submission.OCR, error)
}

// HTTPEngine delegates extraction to an external OCR service that
// accepts the raw image bytes via POST and answers {"text": "..."}.
type HTTPEngine struct {
	url    string
	name   string
	client *http.Client
}

func NewHTTPEngine(url, name string, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		url:    url,
		name:   name,
		client: &http.Client{Timeout: timeout},
	}
}

type extractResponse struct {
	Text string `json:"text"`
}

func (e *HTTPEngine) Extract(ctx context.Context, image []byte, mimeType string) (*submission.OCR, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", mimeType)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding ocr response: %w", err)
	}

	return &submission.OCR{
		RawText: out.Text,
		Engine:  e.name,
		Scope:   "key_fields",
	}, nil
}

// Noop is used when no OCR service is configured: submissions are
// stored with an empty extraction and reviewed entirely by hand.
type Noop struct{}

func (Noop) Extract(context.Context, []byte, string) (*submission.OCR, error) {
	return &submission.OCR{RawText: "", Engine: "none", Scope: "key_fields"}, nil
}
