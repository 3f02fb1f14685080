// Package session drives a taker through a test under a countdown. The
// controller owns all in-flight state (current index, draft answers,
// flags, remaining time) until submission; after that the persisted
// submission is owned by the store and the controller is terminal.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"testshare/internal/model"
	"testshare/internal/scoring"
	"testshare/internal/submission"
)

type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotInProgress      = errors.New("session is not in progress")
	ErrAnswerTypeMismatch = errors.New("answer does not match question type")
	ErrChoiceOutOfRange   = errors.New("choice index out of range")
)

// TestSource resolves a share code to a test definition. Read-only.
type TestSource interface {
	GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error)
}

// Recorder persists a scored answer set exactly once.
type Recorder interface {
	Record(ctx context.Context, in submission.RecordInput) (model.Submission, error)
}

// AnswerPatch carries at most one response field, matching the current
// question's type. Nil fields are left untouched on merge.
type AnswerPatch struct {
	ChoiceIndex   *int
	BooleanAnswer *bool
	EssayText     *string
}

// Snapshot is a read-only view for progress display.
type Snapshot struct {
	ID               string `json:"id"`
	State            State  `json:"state"`
	CurrentIndex     int    `json:"current_index"`
	RemainingSeconds int    `json:"remaining_seconds"`
	TotalQuestions   int    `json:"total_questions"`
	Answered         []bool `json:"answered"`
	Flagged          []int  `json:"flagged"`
	SubmissionID     int64  `json:"submission_id,omitempty"`
}

// Controller is the per-taker session state machine:
// Loading -> InProgress -> Submitting -> Completed, with Error reachable
// from Loading and Submitting. All mutating operations run to completion
// under one mutex; there is no concurrent mutation of session state.
type Controller struct {
	mu sync.Mutex

	id  string
	src TestSource
	rec Recorder
	now func() time.Time

	state State
	err   error

	test      model.Test
	takerID   int64
	answers   []model.Answer
	current   int
	flagged   map[int]struct{}
	remaining int
	startTime time.Time

	submission model.Submission
	cancel     context.CancelFunc
}

func New(src TestSource, rec Recorder) *Controller {
	return &Controller{
		src:     src,
		rec:     rec,
		now:     time.Now,
		state:   StateLoading,
		flagged: make(map[int]struct{}),
	}
}

// Load resolves the share code and opens the session: one answer
// placeholder per question in test order, remaining time set from the
// test duration, start time recorded. An unresolved code moves the
// session to Error.
func (c *Controller) Load(ctx context.Context, shareCode string, takerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoading {
		return fmt.Errorf("load from state %s", c.state)
	}

	test, err := c.src.GetTestByShareCode(ctx, shareCode)
	if err != nil {
		c.state = StateError
		c.err = err
		return fmt.Errorf("resolve share code: %w", err)
	}

	c.test = test
	c.takerID = takerID
	c.answers = make([]model.Answer, len(test.Questions))
	for i, q := range test.Questions {
		c.answers[i] = model.Answer{QuestionID: q.ID}
	}
	c.current = 0
	c.remaining = test.DurationMinutes * 60
	c.startTime = c.now()
	c.state = StateInProgress
	return nil
}

func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err reports the failure cause when the session is in the Error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Test() model.Test {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.test
}

func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Submission returns the persisted record after completion.
func (c *Controller) Submission() (model.Submission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submission, c.state == StateCompleted
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	answered := make([]bool, len(c.answers))
	for i, a := range c.answers {
		answered[i] = a.Answered(c.test.Questions[i].Type)
	}
	flagged := make([]int, 0, len(c.flagged))
	for i := range c.flagged {
		flagged = append(flagged, i)
	}
	sort.Ints(flagged)

	return Snapshot{
		ID:               c.id,
		State:            c.state,
		CurrentIndex:     c.current,
		RemainingSeconds: c.remaining,
		TotalQuestions:   len(c.test.Questions),
		Answered:         answered,
		Flagged:          flagged,
		SubmissionID:     c.submission.ID,
	}
}

// SelectQuestion moves the cursor. Out-of-range indices are no-ops.
func (c *Controller) SelectQuestion(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	if index < 0 || index >= len(c.test.Questions) {
		return nil
	}
	c.current = index
	return nil
}

// UpdateAnswer merges the patch into the answer at the current index
// only; it can never touch another question's record. No updates are
// accepted once Submitting begins.
func (c *Controller) UpdateAnswer(patch AnswerPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return ErrNotInProgress
	}

	q := c.test.Questions[c.current]
	if err := checkPatch(q, patch); err != nil {
		return err
	}

	a := &c.answers[c.current]
	if patch.ChoiceIndex != nil {
		v := *patch.ChoiceIndex
		a.ChoiceIndex = &v
	}
	if patch.BooleanAnswer != nil {
		v := *patch.BooleanAnswer
		a.BooleanAnswer = &v
	}
	if patch.EssayText != nil {
		v := *patch.EssayText
		a.EssayText = &v
	}
	return nil
}

func checkPatch(q model.Question, patch AnswerPatch) error {
	switch q.Type {
	case model.QuestionMCQ:
		if patch.BooleanAnswer != nil || patch.EssayText != nil {
			return ErrAnswerTypeMismatch
		}
		if patch.ChoiceIndex != nil && (*patch.ChoiceIndex < 0 || *patch.ChoiceIndex >= len(q.Choices)) {
			return ErrChoiceOutOfRange
		}
	case model.QuestionTF:
		if patch.ChoiceIndex != nil || patch.EssayText != nil {
			return ErrAnswerTypeMismatch
		}
	case model.QuestionEssay:
		if patch.ChoiceIndex != nil || patch.BooleanAnswer != nil {
			return ErrAnswerTypeMismatch
		}
	}
	return nil
}

// ToggleFlag toggles membership of the index in the flagged set.
// Advisory only: it affects the progress display, never scoring.
func (c *Controller) ToggleFlag(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	if index < 0 || index >= len(c.test.Questions) {
		return nil
	}
	if _, ok := c.flagged[index]; ok {
		delete(c.flagged, index)
	} else {
		c.flagged[index] = struct{}{}
	}
	return nil
}

// Tick decrements remaining time by one second. Reaching zero forces a
// submit; that transition is the only state-machine edge that fires
// without explicit user action. Returns true once the session has left
// InProgress, telling the timer loop to stop.
func (c *Controller) Tick(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInProgress {
		return true
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	_ = c.submitLocked(ctx)
	return true
}

// Submit finalizes the session. Re-entrant calls while Submitting (and
// calls after Completed) are ignored. A submit that failed leaves the
// session in Error; the caller may retry explicitly, the timer never
// does.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateInProgress:
		return c.submitLocked(ctx)
	case StateError:
		// Explicit retry after a failed submit. A session that never
		// loaded has nothing to submit.
		if len(c.test.Questions) == 0 {
			return ErrNotInProgress
		}
		return c.submitLocked(ctx)
	case StateSubmitting, StateCompleted:
		return nil
	default:
		return ErrNotInProgress
	}
}

func (c *Controller) submitLocked(ctx context.Context) error {
	c.state = StateSubmitting

	result, err := scoring.Score(c.test, c.answers)
	if err != nil {
		c.fail(err)
		return err
	}

	sub, err := c.rec.Record(ctx, submission.RecordInput{
		TestID:      c.test.ID,
		TakerID:     c.takerID,
		Answers:     result.Answers,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		StartTime:   c.startTime,
	})
	if err != nil {
		c.fail(fmt.Errorf("record submission: %w", err))
		return c.err
	}

	c.submission = sub
	c.state = StateCompleted
	c.stopTimerLocked()
	return nil
}

func (c *Controller) fail(err error) {
	c.state = StateError
	c.err = err
	c.stopTimerLocked()
}

// Close releases the timer. Mandatory on teardown: a dangling tick must
// never mutate state after the session is gone.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) runTimer(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if done := c.Tick(ctx); done {
				return
			}
		}
	}
}
