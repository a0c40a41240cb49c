// Package composer drives the guarded question-composition flow: draft
// validation, local keyword moderation, similarity search against existing
// posts, and the final gated create. The flow is an explicit state machine so
// impossible combinations (blocked while posting, etc.) cannot be represented.
package composer

import (
	"context"
	"errors"
	"time"

	"github.com/vidhyaloan/vidhyaloan/moderation"
)

// State is the current position of a composition flow.
type State string

const (
	StateTitle       State = "title"
	StateDescription State = "description"
	StateChecking    State = "checking"
	StateDuplicate   State = "duplicate"
	StateAppreciate  State = "appreciate"
	StatePosting     State = "posting"
	StateDone        State = "done"
	StateBlocked     State = "blocked"
)

// SimilarPost is a candidate match surfaced by the similarity search.
type SimilarPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category,omitempty"`
	CommentCount int64     `json:"commentCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Verdict is the authoritative server-side duplicate decision returned by a
// Checker.
type Verdict struct {
	IsDuplicate      bool          `json:"isDuplicate"`
	SimilarQuestions []SimilarPost `json:"similarQuestions,omitempty"`
	Message          string        `json:"message,omitempty"`
}

// Searcher finds posts with titles similar to the draft's.
type Searcher interface {
	SearchSimilar(ctx context.Context, title string, limit int) ([]SimilarPost, error)
}

// Checker runs the authoritative duplicate check at submission time.
type Checker interface {
	CheckDuplicate(ctx context.Context, title, content, category string) (Verdict, error)
}

// Creator persists the finished draft and returns the new post id.
type Creator interface {
	CreatePost(ctx context.Context, d Draft) (string, error)
}

// Draft carries the data collected by the flow.
type Draft struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// Config tunes the gate. Zero values fall back to the historical constants.
type Config struct {
	DuplicateThreshold int
	SearchLimit        int
}

// WithDefaults fills unset fields with the historical constants.
func (c Config) WithDefaults() Config {
	if c.DuplicateThreshold <= 0 {
		c.DuplicateThreshold = 2
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 5
	}
	return c
}

// Validation and gate errors surfaced to the caller. The flow state already
// reflects where the user ended up; the error says why.
var (
	ErrValidation = errors.New("draft failed validation")
	ErrBlocked    = errors.New("draft blocked by moderation")
	ErrDuplicate  = errors.New("similar questions already exist")
	ErrCreate     = errors.New("failed to create post")
)

// DuplicateError is returned by a Creator whose own authoritative check
// rejects the draft, even on a forced submission.
type DuplicateError struct {
	Verdict Verdict
}

func (e *DuplicateError) Error() string {
	if e.Verdict.Message != "" {
		return e.Verdict.Message
	}
	return "similar questions already exist"
}

// Flow is one user's pass through the composer. Not safe for concurrent use;
// each draft owns its own Flow.
type Flow struct {
	cfg      Config
	searcher Searcher
	checker  Checker
	creator  Creator

	state   State
	draft   Draft
	reason  string
	message string
	similar []SimilarPost
	postID  string
}

// NewFlow starts a flow at the title step.
func NewFlow(cfg Config, searcher Searcher, checker Checker, creator Creator) *Flow {
	return &Flow{
		cfg:      cfg.WithDefaults(),
		searcher: searcher,
		checker:  checker,
		creator:  creator,
		state:    StateTitle,
	}
}

// State returns the flow's current state.
func (f *Flow) State() State { return f.state }

// Reason returns the moderation reason when the flow is blocked.
func (f *Flow) Reason() string { return f.reason }

// Message returns the latest user-facing message (duplicate or create error).
func (f *Flow) Message() string { return f.message }

// SimilarPosts returns the candidate matches when the flow is in the
// duplicate state.
func (f *Flow) SimilarPosts() []SimilarPost { return f.similar }

// Draft returns a copy of the collected draft.
func (f *Flow) Draft() Draft { return f.draft }

// PostID returns the created post id once the flow is done.
func (f *Flow) PostID() string { return f.postID }

// SubmitTitle validates the title and advances to the description step. A
// validation failure keeps the flow on the title step.
func (f *Flow) SubmitTitle(title string) error {
	if f.state != StateTitle && f.state != StateDescription {
		return errors.New("title can only be edited before the duplicate check")
	}
	if ok, msg := moderation.ValidateTitle(title); !ok {
		f.message = msg
		return ErrValidation
	}
	f.draft.Title = title
	f.state = StateDescription
	return nil
}

// SetCategory records the chosen category, normalized to its hub slug.
func (f *Flow) SetCategory(category string) {
	f.draft.Category = moderation.CategorySlug(category)
}

// SetTags records the chosen tags.
func (f *Flow) SetTags(tags []string) {
	f.draft.Tags = tags
}

// SubmitDescription validates the content, runs the local keyword moderation
// over title+content, then the similarity search. It lands in the blocked,
// duplicate, or appreciate state. A searcher failure is treated as "no
// duplicates found": posting stays available when the search backend is down.
func (f *Flow) SubmitDescription(ctx context.Context, content string) error {
	if f.state != StateDescription {
		return errors.New("description step not active")
	}
	if ok, msg := moderation.ValidateContent(content); !ok {
		f.message = msg
		return ErrValidation
	}
	f.draft.Content = content

	combined := f.draft.Title + " " + f.draft.Content
	if res := moderation.ModerateContent(combined); !res.Allowed {
		f.state = StateBlocked
		f.reason = res.Reason
		return ErrBlocked
	}

	f.state = StateChecking
	matches, err := f.searcher.SearchSimilar(ctx, f.draft.Title, f.cfg.SearchLimit)
	if err != nil {
		// fail open
		f.state = StateAppreciate
		return nil
	}
	if len(matches) > f.cfg.SearchLimit {
		matches = matches[:f.cfg.SearchLimit]
	}
	f.similar = matches
	if len(matches) >= f.cfg.DuplicateThreshold {
		f.state = StateDuplicate
		return ErrDuplicate
	}
	f.state = StateAppreciate
	return nil
}

// EditDescription returns from the duplicate screen to the description step
// so the user can rephrase.
func (f *Flow) EditDescription() error {
	if f.state != StateDuplicate {
		return errors.New("nothing to edit")
	}
	f.state = StateDescription
	f.similar = nil
	f.message = ""
	return nil
}

// Confirm submits the draft. Unless force is set, the authoritative duplicate
// check runs first and can push the flow back to the duplicate state with the
// server's candidate list. Even a forced submission must be prepared for the
// creator to reject. A create failure returns to the appreciate state.
func (f *Flow) Confirm(ctx context.Context, force bool) error {
	if f.state != StateAppreciate && f.state != StateDuplicate {
		return errors.New("draft is not ready to submit")
	}

	if !force && f.checker != nil {
		f.state = StateChecking
		verdict, err := f.checker.CheckDuplicate(ctx, f.draft.Title, f.draft.Content, f.draft.Category)
		if err == nil && verdict.IsDuplicate {
			f.similar = verdict.SimilarQuestions
			f.message = verdict.Message
			if f.message == "" {
				f.message = "Similar questions found"
			}
			f.state = StateDuplicate
			return ErrDuplicate
		}
		// check failures fall through to posting
	}

	f.state = StatePosting
	id, err := f.creator.CreatePost(ctx, f.draft)
	if err != nil {
		// The store runs its own duplicate check and may reject even a
		// forced submission.
		var dup *DuplicateError
		if errors.As(err, &dup) {
			f.similar = dup.Verdict.SimilarQuestions
			f.message = dup.Error()
			f.state = StateDuplicate
			return ErrDuplicate
		}
		f.message = err.Error()
		f.state = StateAppreciate
		return ErrCreate
	}
	f.postID = id
	f.state = StateDone
	return nil
}
