package submission

import (
	"time"
)

// Status represents the review lifecycle state of a submission.
// The set is extensible server-side; clients treat unknown values
// as non-actionable.
type Status string

const (
	StatusUploaded      Status = "uploaded"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
)

// Actionable reports whether a submission in this status can be
// picked up for review.
func (s Status) Actionable() bool {
	return s == StatusPendingReview
}

// OCR is the output of the extraction engine. The review client treats
// it as read-only.
type OCR struct {
	RawText string `json:"raw_text"`
	Engine  string `json:"engine,omitempty"`
	Scope   string `json:"scope,omitempty"`
}

// ExtractedData wraps the machine-extracted interpretation of an
// uploaded document. Fields are optional: a submission may exist before
// any extraction ran.
type ExtractedData struct {
	OCR *OCR `json:"ocr,omitempty"`
}

// Submission is one uploaded invoice document and its server-tracked
// review state. ID and CreatedAt are server-assigned and immutable.
type Submission struct {
	ID        string        `json:"id"`
	ImageURL  string        `json:"image_url,omitempty"`
	Status    Status        `json:"status"`
	Extracted ExtractedData `json:"extracted_data"`
	CreatedAt time.Time     `json:"created_at"`
}

// RawText returns the OCR raw text, or "" when no extraction is present.
func (s *Submission) RawText() string {
	if s == nil || s.Extracted.OCR == nil {
		return ""
	}

	return s.Extracted.OCR.RawText
}

// LineItem is one human-corrected invoice line submitted on approval.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
	Confidence  float64 `json:"confidence"`
}
