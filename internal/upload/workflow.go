package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Uploader is the slice of the repository client the workflow needs.
type Uploader interface {
	Upload(ctx context.Context, filename, mimeType string, data io.Reader) (*submission.Submission, error)
}

// Accepted upload media types. HEIC/HEIF acceptance is advertised but
// relies on server-side conversion; the client does not convert.
var acceptedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".heif": "image/heif",
}

// MimeTypeFor maps a file name to its accepted upload media type. It
// fails with a ValidationError for anything outside the accepted set.
func MimeTypeFor(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	mimeType, ok := acceptedTypes[ext]
	if !ok {
		return "", &api.ValidationError{Body: fmt.Sprintf("unsupported file type %q (accepted: jpeg, png, heic, heif)", ext)}
	}

	return mimeType, nil
}

// Workflow drives the single-submission creation process: choose a
// file, submit it, receive the server-assigned identity and preliminary
// extraction.
type Workflow struct {
	client Uploader

	path     string
	mimeType string
}

func NewWorkflow(client Uploader) *Workflow {
	return &Workflow{client: client}
}

// SetFile records the chosen file after validating its media type.
func (w *Workflow) SetFile(path string) error {
	mimeType, err := MimeTypeFor(path)
	if err != nil {
		return err
	}

	w.path = path
	w.mimeType = mimeType

	return nil
}

// File returns the currently chosen file path, or "".
func (w *Workflow) File() string { return w.path }

// Submit uploads the chosen file. It fails fast, without a network
// call, when no file has been chosen. On failure the chosen file is
// kept so the human can retry.
func (w *Workflow) Submit(ctx context.Context) (*submission.Submission, error) {
	if w.path == "" {
		return nil, &api.ValidationError{Body: "no file selected"}
	}

	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sub, err := w.client.Upload(ctx, filepath.Base(w.path), w.mimeType, f)
	if err != nil {
		return nil, err
	}

	// Chosen file is consumed by a successful submit.
	w.path = ""
	w.mimeType = ""

	return sub, nil
}
