package review

import (
	"errors"
	"fmt"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// SessionState is the review session's lifecycle state.
type SessionState int

const (
	StateEmpty SessionState = iota
	StateLoading
	StateLoaded
	StateApproving
)

func (s SessionState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateApproving:
		return "approving"
	}

	return "unknown"
}

var (
	// ErrApprovalInFlight rejects a select while an approval is running.
	// The two must never interleave against the same session.
	ErrApprovalInFlight = errors.New("approval in flight")
	// ErrNoSelection rejects edits and approvals outside the Loaded state.
	ErrNoSelection = errors.New("no submission selected")
)

// Session holds at most one selected submission and the draft being
// prepared for its approval. Like Queue, network round-trips are split
// into Begin/Apply pairs driven from a single event loop; Session is
// not safe for concurrent use.
type Session struct {
	state     SessionState
	selected  *submission.Submission
	draft     Draft
	pendingID string
	token     uint64
}

func NewSession() *Session {
	return &Session{draft: NewDraft()}
}

func (s *Session) State() SessionState { return s.state }

// Selected returns the loaded submission, or nil outside Loaded/Approving.
func (s *Session) Selected() *submission.Submission { return s.selected }

// Draft returns the session's line item draft for editing and display.
func (s *Session) Draft() *Draft { return &s.draft }

// Select starts loading the given submission into the session and
// returns the load token to pass to ApplyLoad. Selecting is allowed
// from any state except Approving: swapping the selection out from
// under an in-flight approval would corrupt its target.
func (s *Session) Select(id string) (uint64, error) {
	if s.state == StateApproving {
		return 0, ErrApprovalInFlight
	}

	s.state = StateLoading
	s.pendingID = id
	s.token++

	return s.token, nil
}

// ApplyLoad installs the result of the fetch started by Select. Stale
// tokens are discarded. On failure the session falls back to Empty and
// the error is returned for the caller to surface.
//
// The draft only survives a reselect of the same submission id; loading
// a different id resets it to defaults before seeding the description
// from the OCR raw text.
func (s *Session) ApplyLoad(token uint64, sub *submission.Submission, err error) error {
	if token != s.token || s.state != StateLoading {
		return nil
	}

	if err != nil {
		s.state = StateEmpty
		s.selected = nil
		s.pendingID = ""

		return fmt.Errorf("loading submission: %w", err)
	}

	if s.selected == nil || s.selected.ID != sub.ID {
		s.draft = NewDraft()
	}

	s.selected = sub
	s.pendingID = ""
	s.draft.Seed(sub.RawText())
	s.state = StateLoaded

	return nil
}

// EditDescription and friends gate draft mutation on the Loaded state;
// in any other state they report ErrNoSelection and leave the session
// untouched.

func (s *Session) EditDescription(v string) error {
	if s.state != StateLoaded {
		return ErrNoSelection
	}

	s.draft.SetDescription(v)

	return nil
}

func (s *Session) EditQuantity(raw string) error {
	if s.state != StateLoaded {
		return ErrNoSelection
	}

	s.draft.SetQuantity(raw)

	return nil
}

func (s *Session) EditAmount(raw string) error {
	if s.state != StateLoaded {
		return ErrNoSelection
	}

	s.draft.SetAmount(raw)

	return nil
}

func (s *Session) EditConfidence(raw string) error {
	if s.state != StateLoaded {
		return ErrNoSelection
	}

	s.draft.SetConfidence(raw)

	return nil
}

// BeginApprove transitions to Approving and returns the target id and
// the approval payload. Only valid in Loaded.
func (s *Session) BeginApprove() (string, []submission.LineItem, error) {
	if s.state != StateLoaded {
		return "", nil, ErrNoSelection
	}

	s.state = StateApproving

	return s.selected.ID, []submission.LineItem{s.draft.Item()}, nil
}

// ApplyApprove installs the approval outcome.
//
//   - success: session empties, draft resets to defaults.
//   - ConflictError: the submission left the reviewer's purview; the
//     session empties and the draft is discarded. Cleared reports true
//     so the caller knows to refresh the queue rather than retry.
//   - anything else: back to Loaded with the draft intact. The human's
//     edits are never lost to a transient failure.
func (s *Session) ApplyApprove(err error) (cleared bool, outErr error) {
	if s.state != StateApproving {
		return false, nil
	}

	if err == nil {
		s.reset()
		return true, nil
	}

	var conflict *api.ConflictError
	if errors.As(err, &conflict) {
		s.reset()
		return true, fmt.Errorf("approving submission: %w", err)
	}

	s.state = StateLoaded

	return false, fmt.Errorf("approving submission: %w", err)
}

func (s *Session) reset() {
	s.state = StateEmpty
	s.selected = nil
	s.pendingID = ""
	s.draft = NewDraft()
}
