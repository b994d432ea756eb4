package upload_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/upload"
)

type fakeUploader struct {
	filename string
	mimeType string
	data     []byte

	sub *submission.Submission
	err error
}

func (f *fakeUploader) Upload(_ context.Context, filename, mimeType string, data io.Reader) (*submission.Submission, error) {
	f.filename = filename
	f.mimeType = mimeType
	f.data, _ = io.ReadAll(data)

	return f.sub, f.err
}

func TestMimeTypeFor(t *testing.T) {
	type testCase struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}

	tests := []testCase{
		{name: "JPG", filename: "scan.jpg", want: "image/jpeg"},
		{name: "JPEGUppercase", filename: "SCAN.JPEG", want: "image/jpeg"},
		{name: "PNG", filename: "receipt.png", want: "image/png"},
		{name: "HEIC", filename: "photo.heic", want: "image/heic"},
		{name: "HEIF", filename: "photo.heif", want: "image/heif"},
		{name: "PDFRejected", filename: "invoice.pdf", wantErr: true},
		{name: "NoExtension", filename: "invoice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := upload.MimeTypeFor(tt.filename)

			if tt.wantErr {
				var verr *api.ValidationError
				require.ErrorAs(t, err, &verr)
				// Client-side rejection, no HTTP status involved.
				assert.Zero(t, verr.Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkflow_SubmitWithoutFileFailsFast(t *testing.T) {
	client := &fakeUploader{}
	w := upload.NewWorkflow(client)

	_, err := w.Submit(context.Background())

	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, client.filename, "no network call may happen without a file")
}

func TestWorkflow_SetFileRejectsUnsupportedType(t *testing.T) {
	w := upload.NewWorkflow(&fakeUploader{})

	err := w.SetFile("notes.txt")
	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Empty(t, w.File(), "a rejected file must not stick")
}

func TestWorkflow_Submit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-image-bytes"), 0o644))

	client := &fakeUploader{
		sub: &submission.Submission{ID: "s1", Status: submission.StatusPendingReview},
	}
	w := upload.NewWorkflow(client)

	require.NoError(t, w.SetFile(path))
	assert.Equal(t, path, w.File())

	sub, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", sub.ID)

	assert.Equal(t, "invoice.jpg", client.filename)
	assert.Equal(t, "image/jpeg", client.mimeType)
	assert.Equal(t, []byte("fake-image-bytes"), client.data)

	// A successful submit consumes the chosen file.
	assert.Empty(t, w.File())
}

func TestWorkflow_SubmitFailureKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	client := &fakeUploader{err: errors.New("connection refused")}
	w := upload.NewWorkflow(client)

	require.NoError(t, w.SetFile(path))

	_, err := w.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, path, w.File(), "the human retries without re-picking")
}
