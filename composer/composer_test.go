package composer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validTitle   = "How do I compare IDFC vs Auxilo for MS in USA?"
	validContent = "I got admits from two universities and need to pick a lender. Budget is 40 lakhs."
)

type fakeSearcher struct {
	matches []SimilarPost
	err     error
	calls   int
}

func (s *fakeSearcher) SearchSimilar(_ context.Context, _ string, _ int) ([]SimilarPost, error) {
	s.calls++
	return s.matches, s.err
}

type fakeChecker struct {
	verdict Verdict
	err     error
	calls   int
}

func (c *fakeChecker) CheckDuplicate(_ context.Context, _, _, _ string) (Verdict, error) {
	c.calls++
	return c.verdict, c.err
}

type fakeCreator struct {
	id    string
	err   error
	calls int
	draft Draft
}

func (c *fakeCreator) CreatePost(_ context.Context, d Draft) (string, error) {
	c.calls++
	c.draft = d
	if c.err != nil {
		return "", c.err
	}
	return c.id, nil
}

func similar(n int) []SimilarPost {
	out := make([]SimilarPost, n)
	for i := range out {
		out[i] = SimilarPost{ID: fmt.Sprintf("p%d", i+1), Title: fmt.Sprintf("Existing question %d", i+1)}
	}
	return out
}

func newTestFlow(s Searcher, c Checker, cr Creator) *Flow {
	return NewFlow(Config{}, s, c, cr)
}

func TestSubmitTitleValidation(t *testing.T) {
	flow := newTestFlow(&fakeSearcher{}, &fakeChecker{}, &fakeCreator{})

	err := flow.SubmitTitle("short")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateTitle, flow.State())
	assert.NotEmpty(t, flow.Message())

	err = flow.SubmitTitle("Has a link http://example.com in it")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateTitle, flow.State())

	require.NoError(t, flow.SubmitTitle(validTitle))
	assert.Equal(t, StateDescription, flow.State())
}

func TestSubmitDescriptionValidationMakesNoSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	flow := newTestFlow(searcher, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle(validTitle))

	err := flow.SubmitDescription(context.Background(), "too short")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StateDescription, flow.State())
	assert.Zero(t, searcher.calls, "validation failures must not reach the searcher")
}

func TestDuplicateThreshold(t *testing.T) {
	tests := []struct {
		name    string
		matches int
		want    State
	}{
		{"zero matches", 0, StateAppreciate},
		{"one match below threshold", 1, StateAppreciate},
		{"exactly threshold", 2, StateDuplicate},
		{"above threshold", 3, StateDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := newTestFlow(&fakeSearcher{matches: similar(tt.matches)}, &fakeChecker{}, &fakeCreator{})
			require.NoError(t, flow.SubmitTitle(validTitle))

			err := flow.SubmitDescription(context.Background(), validContent)
			assert.Equal(t, tt.want, flow.State())
			if tt.want == StateDuplicate {
				require.ErrorIs(t, err, ErrDuplicate)
				assert.Len(t, flow.SimilarPosts(), tt.matches)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCustomThreshold(t *testing.T) {
	flow := NewFlow(Config{DuplicateThreshold: 4}, &fakeSearcher{matches: similar(3)}, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle(validTitle))
	require.NoError(t, flow.SubmitDescription(context.Background(), validContent))
	assert.Equal(t, StateAppreciate, flow.State())
}

func TestSearchFailureFailsOpen(t *testing.T) {
	flow := newTestFlow(&fakeSearcher{err: errors.New("connection refused")}, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle(validTitle))

	err := flow.SubmitDescription(context.Background(), validContent)
	require.NoError(t, err)
	assert.Equal(t, StateAppreciate, flow.State())
}

func TestBlockedSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	flow := newTestFlow(searcher, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle("Education loan fraud techniques"))

	err := flow.SubmitDescription(context.Background(), "Explain fraud methods used against education loan banks.")
	require.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, StateBlocked, flow.State())
	assert.Equal(t, "prohibited_content", flow.Reason())
	assert.Zero(t, searcher.calls, "blocked drafts must never reach the searcher")
}

func TestOffTopicBlocked(t *testing.T) {
	flow := newTestFlow(&fakeSearcher{}, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle("Best biryani recipe for hostels"))

	err := flow.SubmitDescription(context.Background(), "Looking for an easy biryani recipe to cook in a hostel kitchen.")
	require.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, StateBlocked, flow.State())
	assert.Equal(t, "off_topic", flow.Reason())
}

func TestEndToEndHappyPath(t *testing.T) {
	creator := &fakeCreator{id: "post-1"}
	flow := newTestFlow(&fakeSearcher{}, &fakeChecker{}, creator)

	require.NoError(t, flow.SubmitTitle(validTitle))
	flow.SetCategory("Education Loans")
	flow.SetTags([]string{"loan", "usa"})
	require.NoError(t, flow.SubmitDescription(context.Background(), validContent))
	assert.Equal(t, StateAppreciate, flow.State())

	require.NoError(t, flow.Confirm(context.Background(), false))
	assert.Equal(t, StateDone, flow.State())
	assert.Equal(t, "post-1", flow.PostID())
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, validTitle, creator.draft.Title)
	assert.Equal(t, "eligibility", creator.draft.Category)
	assert.Equal(t, []string{"loan", "usa"}, creator.draft.Tags)
}

func TestConfirmCheckerOverride(t *testing.T) {
	checker := &fakeChecker{verdict: Verdict{
		IsDuplicate:      true,
		SimilarQuestions: similar(2),
		Message:          "already asked",
	}}
	creator := &fakeCreator{id: "post-1"}
	flow := newTestFlow(&fakeSearcher{}, checker, creator)

	require.NoError(t, flow.SubmitTitle(validTitle))
	require.NoError(t, flow.SubmitDescription(context.Background(), validContent))

	err := flow.Confirm(context.Background(), false)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, StateDuplicate, flow.State())
	assert.Equal(t, "already asked", flow.Message())
	assert.Len(t, flow.SimilarPosts(), 2)
	assert.Zero(t, creator.calls, "creator must not run when the checker rejects")
}

func TestConfirmForceSkipsChecker(t *testing.T) {
	checker := &fakeChecker{verdict: Verdict{IsDuplicate: true, SimilarQuestions: similar(2)}}
	creator := &fakeCreator{id: "post-1"}
	flow := newTestFlow(&fakeSearcher{matches: similar(2)}, checker, creator)

	require.NoError(t, flow.SubmitTitle(validTitle))
	err := flow.SubmitDescription(context.Background(), validContent)
	require.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, flow.Confirm(context.Background(), true))
	assert.Equal(t, StateDone, flow.State())
	assert.Zero(t, checker.calls)
	assert.Equal(t, 1, creator.calls)
}

func TestForcedCreateStillHandlesServerDuplicate(t *testing.T) {
	creator := &fakeCreator{err: &DuplicateError{Verdict: Verdict{
		IsDuplicate:      true,
		SimilarQuestions: similar(3),
		Message:          "identical question exists",
	}}}
	flow := newTestFlow(&fakeSearcher{matches: similar(2)}, &fakeChecker{}, creator)

	require.NoError(t, flow.SubmitTitle(validTitle))
	require.ErrorIs(t, flow.SubmitDescription(context.Background(), validContent), ErrDuplicate)

	err := flow.Confirm(context.Background(), true)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, StateDuplicate, flow.State())
	assert.Equal(t, "identical question exists", flow.Message())
	assert.Len(t, flow.SimilarPosts(), 3)
}

func TestCreateFailureReturnsToAppreciate(t *testing.T) {
	creator := &fakeCreator{err: errors.New("db down")}
	flow := newTestFlow(&fakeSearcher{}, &fakeChecker{}, creator)

	require.NoError(t, flow.SubmitTitle(validTitle))
	require.NoError(t, flow.SubmitDescription(context.Background(), validContent))

	err := flow.Confirm(context.Background(), false)
	require.ErrorIs(t, err, ErrCreate)
	assert.Equal(t, StateAppreciate, flow.State())
}

func TestEditDescriptionLeavesDuplicate(t *testing.T) {
	flow := newTestFlow(&fakeSearcher{matches: similar(2)}, &fakeChecker{}, &fakeCreator{})
	require.NoError(t, flow.SubmitTitle(validTitle))
	require.ErrorIs(t, flow.SubmitDescription(context.Background(), validContent), ErrDuplicate)

	require.NoError(t, flow.EditDescription())
	assert.Equal(t, StateDescription, flow.State())
	assert.Empty(t, flow.SimilarPosts())

	// Rephrased draft with no matches goes through.
	flow.searcher.(*fakeSearcher).matches = nil
	require.NoError(t, flow.SubmitDescription(context.Background(), validContent))
	assert.Equal(t, StateAppreciate, flow.State())
}

func TestConfirmRequiresReadyState(t *testing.T) {
	flow := newTestFlow(&fakeSearcher{}, &fakeChecker{}, &fakeCreator{})
	err := flow.Confirm(context.Background(), false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}
