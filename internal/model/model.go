// Package model holds the shared data model: tests with their ordered
// questions, per-question answers, submissions, and review requests.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionMCQ   QuestionType = "mcq"
	QuestionTF    QuestionType = "tf"
	QuestionEssay QuestionType = "essay"
)

// Question is a tagged union over the three supported types. Only the
// fields belonging to Type are populated.
type Question struct {
	ID     string       `json:"id"`
	Type   QuestionType `json:"type"`
	Text   string       `json:"text"`
	Points int          `json:"points"`

	// mcq
	Choices       []string `json:"choices,omitempty"`
	CorrectChoice *int     `json:"correct_choice,omitempty"`

	// tf
	CorrectAnswer *bool `json:"correct_answer,omitempty"`

	// essay
	ModelAnswers []string `json:"model_answers,omitempty"`
}

func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("question id is required")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: text is required", q.ID)
	}
	if q.Points < 1 {
		return fmt.Errorf("question %s: points must be at least 1", q.ID)
	}
	switch q.Type {
	case QuestionMCQ:
		if len(q.Choices) < 2 {
			return fmt.Errorf("question %s: mcq needs at least 2 choices", q.ID)
		}
		if q.CorrectChoice == nil {
			return fmt.Errorf("question %s: mcq needs a correct choice", q.ID)
		}
		if *q.CorrectChoice < 0 || *q.CorrectChoice >= len(q.Choices) {
			return fmt.Errorf("question %s: correct choice out of range", q.ID)
		}
	case QuestionTF:
		if q.CorrectAnswer == nil {
			return fmt.Errorf("question %s: tf needs a correct answer", q.ID)
		}
	case QuestionEssay:
		if len(q.ModelAnswers) < 1 {
			return fmt.Errorf("question %s: essay needs at least 1 model answer", q.ID)
		}
		for _, m := range q.ModelAnswers {
			if strings.TrimSpace(m) == "" {
				return fmt.Errorf("question %s: model answers must not be blank", q.ID)
			}
		}
	default:
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// Test is immutable once a submission references it.
type Test struct {
	ID              int64      `json:"id"`
	CreatorID       int64      `json:"creator_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	ShareCode       string     `json:"share_code"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (t Test) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	if t.CreatorID <= 0 {
		return errors.New("creator_id is required")
	}
	if t.DurationMinutes < 1 {
		return errors.New("duration_minutes must be at least 1")
	}
	if len(t.Questions) < 1 {
		return errors.New("at least one question is required")
	}
	seen := make(map[string]struct{}, len(t.Questions))
	for _, q := range t.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// TotalPoints sums question points; it never depends on answers, so an
// unanswered test still reports a meaningful denominator.
func (t Test) TotalPoints() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

func (t Test) QuestionByID(id string) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Answer holds at most one taker response, matching the question's type.
// Unset pointer fields mean "never answered"; an unanswered mcq is
// distinguishable from one answered with choice 0.
type Answer struct {
	QuestionID      string  `json:"question_id"`
	ChoiceIndex     *int    `json:"choice_index,omitempty"`
	BooleanAnswer   *bool   `json:"boolean_answer,omitempty"`
	EssayText       *string `json:"essay_text,omitempty"`
	IsCorrect       *bool   `json:"is_correct,omitempty"`
	PointsAwarded   int     `json:"points_awarded"`
	ReviewRequested bool    `json:"review_requested"`
}

// Answered reports whether the answer carries a usable response for the
// given question type. Whitespace-only essay text does not count.
func (a Answer) Answered(qt QuestionType) bool {
	switch qt {
	case QuestionMCQ:
		return a.ChoiceIndex != nil
	case QuestionTF:
		return a.BooleanAnswer != nil
	case QuestionEssay:
		return a.EssayText != nil && strings.TrimSpace(*a.EssayText) != ""
	default:
		return false
	}
}

// Submission is immutable after creation except for HasReviewRequest and
// adjudication-revised answer points.
type Submission struct {
	ID               int64     `json:"id"`
	TestID           int64     `json:"test_id"`
	TakerID          int64     `json:"taker_id"`
	Answers          []Answer  `json:"answers"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"total_points"`
	HasReviewRequest bool      `json:"has_review_request"`
}

func (s Submission) AnswerByQuestionID(id string) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == id {
			return a, true
		}
	}
	return Answer{}, false
}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewRequest is a taker-initiated dispute against the automated score
// of a single essay answer within an already persisted submission.
type ReviewRequest struct {
	ID             int64        `json:"id"`
	SubmissionID   int64        `json:"submission_id"`
	QuestionID     string       `json:"question_id"`
	RequestMessage string       `json:"request_message,omitempty"`
	Status         ReviewStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

type Creator struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type Taker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
