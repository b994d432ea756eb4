package review_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/review"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// fakeBackend is an in-memory stand-in for the API server, enough
// surface for a whole upload-review-approve round trip.
type fakeBackend struct {
	subs  map[string]*submission.Submission
	items map[string][]submission.LineItem
	next  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		subs:  make(map[string]*submission.Submission),
		items: make(map[string][]submission.LineItem),
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /submissions/upload", func(w http.ResponseWriter, r *http.Request) {
		b.next++
		id := fmt.Sprintf("s%d", b.next)

		sub := &submission.Submission{
			ID:     id,
			Status: submission.StatusPendingReview,
			Extracted: submission.ExtractedData{
				OCR: &submission.OCR{RawText: "INV-001 Widget x3"},
			},
			CreatedAt: time.Now().UTC(),
		}
		b.subs[id] = sub

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sub)
	})

	mux.HandleFunc("GET /submissions", func(w http.ResponseWriter, r *http.Request) {
		pending := []*submission.Submission{}

		for _, sub := range b.subs {
			if sub.Status == submission.StatusPendingReview {
				pending = append(pending, sub)
			}
		}

		_ = json.NewEncoder(w).Encode(pending)
	})

	mux.HandleFunc("GET /submissions/{id}", func(w http.ResponseWriter, r *http.Request) {
		sub, ok := b.subs[r.PathValue("id")]
		if !ok {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}

		_ = json.NewEncoder(w).Encode(sub)
	})

	mux.HandleFunc("POST /submissions/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		sub, ok := b.subs[id]
		if !ok {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}

		if sub.Status == submission.StatusApproved {
			http.Error(w, "submission already approved", http.StatusConflict)
			return
		}

		var req struct {
			Items []submission.LineItem `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		sub.Status = submission.StatusApproved
		b.items[id] = req.Items

		_ = json.NewEncoder(w).Encode(sub)
	})

	return mux
}

// refresh drives one full Begin/Apply queue round trip through the real
// client, the way the event loop would.
func refresh(t *testing.T, q *review.Queue, client *api.Client) {
	t.Helper()

	token := q.Begin()
	items, err := client.ListPending(context.Background())
	_, applyErr := q.Apply(token, items, err)
	require.NoError(t, applyErr)
}

func TestReviewFlow_EndToEnd(t *testing.T) {
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	queue := new(review.Queue)
	session := review.NewSession()

	// Upload a document; the response already carries the preliminary
	// extraction.
	created, err := client.Upload(ctx, "invoice.jpg", "image/jpeg", strings.NewReader("fake-image"))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusPendingReview, created.Status)
	assert.Equal(t, "INV-001 Widget x3", created.RawText())

	// The refresh triggered by the upload makes it discoverable.
	refresh(t, queue, client)
	require.Len(t, queue.Items(), 1)
	assert.Equal(t, created.ID, queue.Items()[0].ID)
	assert.True(t, strings.HasPrefix(queue.Items()[0].RawText(), "INV-001"))

	// Select it; the draft description auto-fills from the raw text.
	token, err := session.Select(created.ID)
	require.NoError(t, err)

	sub, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, session.ApplyLoad(token, sub, nil))
	assert.Equal(t, "INV-001 Widget x3", session.Draft().Description)

	// Correct the line item and approve.
	require.NoError(t, session.EditQuantity("3"))
	require.NoError(t, session.EditAmount("19.99"))

	id, items, err := session.BeginApprove()
	require.NoError(t, err)

	_, approveErr := client.Approve(ctx, id, items)
	cleared, err := session.ApplyApprove(approveErr)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, review.StateEmpty, session.State())

	// The server stored the corrected items.
	require.Len(t, backend.items[id], 1)
	assert.Equal(t, 3, backend.items[id][0].Quantity)
	assert.Equal(t, 19.99, backend.items[id][0].Amount)

	// Post-approval refresh: the queue no longer contains it.
	refresh(t, queue, client)
	assert.Empty(t, queue.Items())
}

func TestReviewFlow_ApproveLostRace(t *testing.T) {
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	created, err := client.Upload(ctx, "invoice.jpg", "image/jpeg", strings.NewReader("fake-image"))
	require.NoError(t, err)

	session := review.NewSession()

	token, err := session.Select(created.ID)
	require.NoError(t, err)

	sub, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, session.ApplyLoad(token, sub, nil))

	// Another actor approves it behind this session's back.
	_, err = client.Approve(ctx, created.ID, []submission.LineItem{{Description: "other", Quantity: 1}})
	require.NoError(t, err)

	id, items, err := session.BeginApprove()
	require.NoError(t, err)

	_, approveErr := client.Approve(ctx, id, items)
	require.Error(t, approveErr)

	cleared, err := session.ApplyApprove(approveErr)
	require.Error(t, err)
	assert.True(t, cleared, "stale selection must be discarded, not retried")
	assert.Equal(t, review.StateEmpty, session.State())
}
