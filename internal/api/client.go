package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Client is a typed wrapper over the backend's submission endpoints.
// Operations are single-shot: no retries happen at this layer.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListPending fetches the submissions awaiting review. An empty queue is
// an empty slice, not an error. Order is server-defined.
func (c *Client) ListPending(ctx context.Context) ([]submission.Submission, error) {
	endpoint := c.baseURL + "/submissions?" + url.Values{"status": {string(submission.StatusPendingReview)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req, "")
	if err != nil {
		return nil, err
	}

	var subs []submission.Submission
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("decoding queue: %w", err)
	}

	return subs, nil
}

// Get fetches one submission with its full extracted_data. A missing id
// yields a NotFoundError: the caller's selection went stale.
func (c *Client) Get(ctx context.Context, id string) (*submission.Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/submissions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req, id)
	if err != nil {
		return nil, err
	}

	var sub submission.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("decoding submission: %w", err)
	}

	return &sub, nil
}

// Upload submits a document image as a multipart payload and returns the
// created submission, including its preliminary extraction. The caller
// must have validated mimeType against the accepted image types; the
// client only forwards what was chosen.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, data io.Reader) (*submission.Submission, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("creating form part: %w", err)
	}

	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req, "")
	if err != nil {
		return nil, err
	}

	var sub submission.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("decoding created submission: %w", err)
	}

	return &sub, nil
}

type approveRequest struct {
	Items []submission.LineItem `json:"items"`
}

// Approve submits the corrected line items for a submission. Approval
// always carries at least one item: an empty list is replaced by a
// single default item rather than sent as-is. A submission that is no
// longer approvable (approved elsewhere, or gone) yields a ConflictError
// so callers discard the stale selection instead of retrying.
func (c *Client) Approve(ctx context.Context, id string, items []submission.LineItem) (*submission.Submission, error) {
	if len(items) == 0 {
		items = []submission.LineItem{{Description: "item", Quantity: 1, Amount: 0, Confidence: 0}}
	}

	payload, err := json.Marshal(approveRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/submissions/"+url.PathEscape(id)+"/approve", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, id)
	if err != nil {
		// An approval target that vanished is a conflict, not a crash:
		// the item left the reviewer's purview.
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, &ConflictError{ID: id, Status: http.StatusNotFound, Body: nf.Error()}
		}

		return nil, err
	}

	var sub submission.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("decoding approved submission: %w", err)
	}

	return &sub, nil
}

// do executes the request and maps the outcome onto the error taxonomy.
// id is used in NotFound/Conflict errors; "" when the call has no single
// target.
func (c *Client) do(req *http.Request, id string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	text := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, &NotFoundError{ID: id}
	case http.StatusConflict:
		return nil, &ConflictError{ID: id, Status: resp.StatusCode, Body: text}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, &ValidationError{Status: resp.StatusCode, Body: text}
	default:
		return nil, &ServerError{Status: resp.StatusCode, Body: text}
	}
}
