package view

import (
	"context"
	"time"
)

const apiTimeout = 30 * time.Second

// FormatDate formats a time.Time into YYYY-MM-DD HH:MM.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// Preview bounds a piece of OCR text for one-line display.
func Preview(text string, limit int) string {
	if text == "" {
		return "(no OCR yet)"
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit]) + "…"
}

// ApiCtx returns a context with the standard timeout for API calls.
func ApiCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}
