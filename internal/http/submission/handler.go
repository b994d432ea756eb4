package submission

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/ocr"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// maxUploadBytes caps the multipart form size for document uploads.
const maxUploadBytes = 20 << 20

var acceptedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
}

type Handler struct {
	svc    *submission.Service
	engine ocr.Engine
}

func NewHandler(svc *submission.Service, engine ocr.Engine) *Handler {
	return &Handler{svc: svc, engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/upload", h.upload)
	r.Get("/{id}", h.get)
	r.Post("/{id}/approve", h.approve)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	// The review queue is the default view.
	status := submission.StatusPendingReview
	if s := r.URL.Query().Get("status"); s != "" {
		status = submission.Status(s)
	}

	subs, err := h.svc.List(r.Context(), submission.ListFilter{Status: &status})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if subs == nil {
		subs = []*submission.Submission{}
	}

	writeJSON(w, http.StatusOK, subs)
}

type createRequest struct {
	ImageURL  string                   `json:"image_url"`
	Extracted submission.ExtractedData `json:"extracted_data"`
}

// create registers a submission whose extraction already happened
// elsewhere. Uploads of raw images go through upload instead.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Create(r.Context(), submission.CreateParams{
		ImageURL:  req.ImageURL,
		Extracted: req.Extracted,
		Status:    submission.StatusPendingReview,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !acceptedUploadTypes[mimeType] {
		http.Error(w, "unsupported media type: "+mimeType, http.StatusUnprocessableEntity)
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	extraction, err := h.engine.Extract(r.Context(), image, mimeType)
	if err != nil {
		slog.Error("extraction failed", "file", header.Filename, "error", err)
		http.Error(w, "extraction failed: "+err.Error(), http.StatusBadGateway)

		return
	}

	sub, err := h.svc.Create(r.Context(), submission.CreateParams{
		ImageURL:  "uploaded_file",
		Extracted: submission.ExtractedData{OCR: extraction},
		Status:    submission.StatusPendingReview,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

type approveRequest struct {
	Items []submission.LineItem `json:"items"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Items) == 0 {
		http.Error(w, "items must not be empty", http.StatusUnprocessableEntity)
		return
	}

	sub, err := h.svc.Approve(r.Context(), id, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrNotFound):
			http.Error(w, "submission not found", http.StatusNotFound)
		case errors.Is(err, submission.ErrAlreadyApproved):
			// 409, not 400: an approval that lost the race is a state
			// conflict the client handles differently from bad input.
			http.Error(w, "submission already approved", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
