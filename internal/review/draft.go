package review

import (
	"strconv"
	"unicode/utf8"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Draft defaults. DescriptionSeedLen bounds the prefix of OCR raw text
// used to pre-fill the description.
const (
	DefaultQuantity    = 1
	DefaultAmount      = 0
	DefaultConfidence  = 0.8
	DescriptionSeedLen = 80
)

// Draft is the single human-editable line item prepared for approval.
// It is never persisted until approval succeeds. Numeric setters take
// the raw input string and coerce invalid values instead of failing,
// so a half-typed form never crashes the session.
type Draft struct {
	Description string
	Quantity    int
	Amount      float64
	Confidence  float64

	// descTouched blocks OCR re-seeding once the human edited the
	// description.
	descTouched bool
}

func NewDraft() Draft {
	return Draft{
		Quantity:   DefaultQuantity,
		Amount:     DefaultAmount,
		Confidence: DefaultConfidence,
	}
}

// Seed pre-fills the description with a bounded prefix of the OCR raw
// text. It is a no-op once the description has been touched.
func (d *Draft) Seed(rawText string) {
	if d.descTouched || rawText == "" {
		return
	}

	d.Description = truncate(rawText, DescriptionSeedLen)
}

func (d *Draft) SetDescription(v string) {
	d.Description = v
	d.descTouched = true
}

// SetQuantity parses the raw input as a positive integer. Anything
// unparseable or non-positive coerces to 1.
func (d *Draft) SetQuantity(raw string) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = DefaultQuantity
	}

	d.Quantity = n
}

// SetAmount parses the raw input as a decimal. Unparseable input
// coerces to 0. Out-of-range values (e.g. negative amounts) are kept
// as-is; business validation belongs to the server.
func (d *Draft) SetAmount(raw string) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f = DefaultAmount
	}

	d.Amount = f
}

// SetConfidence parses the raw input as a decimal. Unparseable input
// coerces to 0; parseable values outside [0,1] are kept as-is.
func (d *Draft) SetConfidence(raw string) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f = 0
	}

	d.Confidence = f
}

// Item converts the draft into the approval payload line item.
func (d *Draft) Item() submission.LineItem {
	desc := d.Description
	if desc == "" {
		desc = "item"
	}

	return submission.LineItem{
		Description: desc,
		Quantity:    d.Quantity,
		Amount:      d.Amount,
		Confidence:  d.Confidence,
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return string(runes[:limit])
}
