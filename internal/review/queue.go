package review

import (
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Queue caches the last successfully fetched pending-review snapshot.
//
// Refreshes are split into Begin/Apply so the network round-trip can
// happen elsewhere (a bubbletea command, a test): Begin issues a
// monotonically increasing request token, Apply hands back the response
// together with that token. Only the most recently issued token is
// applied, so when two refreshes overlap the cache ends up holding the
// later request's result no matter which response lands first
// (last-request-wins). Callers are expected to not start a new refresh
// while Loading reports true; the token check keeps an overlap harmless
// regardless.
//
// Queue is not safe for concurrent use. All mutation is expected to
// happen on a single event loop.
type Queue struct {
	items   []submission.Submission
	loading bool
	token   uint64
}

// Begin starts a refresh and returns its request token.
func (q *Queue) Begin() uint64 {
	q.token++
	q.loading = true

	return q.token
}

// Apply installs a refresh response. The snapshot replaces the cache
// wholesale on success; on failure the previous snapshot is retained
// (stale-but-available beats empty-on-error) and the error is returned
// for the caller to surface. Responses for superseded tokens are
// discarded and report applied=false.
func (q *Queue) Apply(token uint64, items []submission.Submission, err error) (applied bool, outErr error) {
	if token != q.token {
		return false, nil
	}

	q.loading = false

	if err != nil {
		return true, err
	}

	q.items = items

	return true, nil
}

// Items returns the current snapshot. The slice is owned by the cache;
// callers must not mutate it.
func (q *Queue) Items() []submission.Submission {
	return q.items
}

func (q *Queue) Loading() bool {
	return q.loading
}
