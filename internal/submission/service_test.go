package submission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    submission.CreateParams
		setupMock func(m *submission.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: submission.CreateParams{
				ImageURL: "uploaded_file",
				Extracted: submission.ExtractedData{
					OCR: &submission.OCR{RawText: "INV-001"},
				},
			},
			setupMock: func(m *submission.MockRepository) {
				m.EXPECT().
					CreateSubmission(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sub *submission.Submission) error {
						sub.ID = "s1"
						return nil
					})
			},
		},
		{
			name:   "DefaultsToPendingReview",
			params: submission.CreateParams{},
			setupMock: func(m *submission.MockRepository) {
				m.EXPECT().
					CreateSubmission(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sub *submission.Submission) error {
						assert.Equal(t, submission.StatusPendingReview, sub.Status)
						return nil
					})
			},
		},
		{
			name:   "RepoError",
			params: submission.CreateParams{},
			setupMock: func(m *submission.MockRepository) {
				m.EXPECT().
					CreateSubmission(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := submission.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := submission.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestService_Approve(t *testing.T) {
	items := []submission.LineItem{{Description: "Widget", Quantity: 3, Amount: 19.99, Confidence: 0.8}}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := submission.NewMockRepository(ctrl)
		repo.EXPECT().
			GetSubmission(gomock.Any(), "s1").
			Return(&submission.Submission{ID: "s1", Status: submission.StatusPendingReview}, nil)
		repo.EXPECT().
			ApproveSubmission(gomock.Any(), "s1", items).
			Return(&submission.Submission{ID: "s1", Status: submission.StatusApproved}, nil)

		svc := submission.NewService(repo)
		got, err := svc.Approve(context.Background(), "s1", items)
		require.NoError(t, err)
		assert.Equal(t, submission.StatusApproved, got.Status)
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := submission.NewMockRepository(ctrl)
		repo.EXPECT().
			GetSubmission(gomock.Any(), "s1").
			Return(&submission.Submission{ID: "s1", Status: submission.StatusApproved}, nil)

		svc := submission.NewService(repo)
		_, err := svc.Approve(context.Background(), "s1", items)
		assert.ErrorIs(t, err, submission.ErrAlreadyApproved)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := submission.NewMockRepository(ctrl)
		repo.EXPECT().
			GetSubmission(gomock.Any(), "gone").
			Return(nil, submission.ErrNotFound)

		svc := submission.NewService(repo)
		_, err := svc.Approve(context.Background(), "gone", items)
		assert.ErrorIs(t, err, submission.ErrNotFound)
	})

	t.Run("EmptyItemsRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := submission.NewMockRepository(ctrl)

		svc := submission.NewService(repo)
		_, err := svc.Approve(context.Background(), "s1", nil)
		assert.Error(t, err)
	})
}

func TestStatus_Actionable(t *testing.T) {
	assert.True(t, submission.StatusPendingReview.Actionable())
	assert.False(t, submission.StatusApproved.Actionable())
	assert.False(t, submission.StatusUploaded.Actionable())
	// Unknown statuses are tolerated and treated as non-actionable.
	assert.False(t, submission.Status("quarantined").Actionable())
}
