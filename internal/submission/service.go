package submission

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no submission exists for the given id.
	ErrNotFound = errors.New("submission not found")
	// ErrAlreadyApproved is returned when an approval targets a submission
	// that is no longer in a reviewable state.
	ErrAlreadyApproved = errors.New("submission already approved")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=submission
type Repository interface {
	CreateSubmission(ctx context.Context, sub *Submission) error
	GetSubmission(ctx context.Context, id string) (*Submission, error)
	ListSubmissions(ctx context.Context, filter ListFilter) ([]*Submission, error)
	ApproveSubmission(ctx context.Context, id string, items []LineItem) (*Submission, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Status *Status
}

type CreateParams struct {
	ImageURL  string
	Extracted ExtractedData
	Status    Status
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Submission, error) {
	status := params.Status
	if status == "" {
		status = StatusPendingReview
	}

	sub := &Submission{
		ImageURL:  params.ImageURL,
		Status:    status,
		Extracted: params.Extracted,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("creating submission: %w", err)
	}

	return sub, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	return s.repo.ListSubmissions(ctx, filter)
}

// Approve stores the corrected line items and marks the submission
// approved. It fails with ErrAlreadyApproved when the submission left
// the pending state since the reviewer last fetched it, and with
// ErrNotFound when it no longer exists.
func (s *Service) Approve(ctx context.Context, id string, items []LineItem) (*Submission, error) {
	if len(items) == 0 {
		return nil, errors.New("approval requires at least one line item")
	}

	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.Status == StatusApproved {
		return nil, ErrAlreadyApproved
	}

	return s.repo.ApproveSubmission(ctx, id, items)
}
