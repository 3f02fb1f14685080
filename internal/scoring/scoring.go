// Package scoring computes correctness and points for a completed answer
// set. It is a pure function over the test definition and the answers:
// no I/O, no clock, no store.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"testshare/internal/model"
)

// ErrUnknownQuestionType signals a test/answer desynchronization. It is a
// contract violation, never scored as incorrect.
var ErrUnknownQuestionType = errors.New("unknown question type")

type Result struct {
	Answers     []model.Answer `json:"answers"`
	Score       int            `json:"score"`
	TotalPoints int            `json:"total_points"`
}

// Score grades every question of the test. Answers are matched by
// question id; a question with no matching answer is scored as
// unanswered, never skipped. The returned answers are in test order,
// exactly one per question.
func Score(test model.Test, answers []model.Answer) (Result, error) {
	byQuestion := make(map[string]model.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	out := Result{
		Answers:     make([]model.Answer, 0, len(test.Questions)),
		TotalPoints: test.TotalPoints(),
	}

	for _, q := range test.Questions {
		a := byQuestion[q.ID]
		a.QuestionID = q.ID

		correct, err := isCorrect(q, a)
		if err != nil {
			return Result{}, err
		}

		a.IsCorrect = &correct
		if correct {
			a.PointsAwarded = q.Points
		} else {
			a.PointsAwarded = 0
		}
		out.Score += a.PointsAwarded
		out.Answers = append(out.Answers, a)
	}

	return out, nil
}

func isCorrect(q model.Question, a model.Answer) (bool, error) {
	switch q.Type {
	case model.QuestionMCQ:
		if a.ChoiceIndex == nil || q.CorrectChoice == nil {
			return false, nil
		}
		return *a.ChoiceIndex == *q.CorrectChoice, nil
	case model.QuestionTF:
		if a.BooleanAnswer == nil || q.CorrectAnswer == nil {
			return false, nil
		}
		return *a.BooleanAnswer == *q.CorrectAnswer, nil
	case model.QuestionEssay:
		if a.EssayText == nil {
			return false, nil
		}
		return matchesAnyModelAnswer(*a.EssayText, q.ModelAnswers), nil
	default:
		return false, fmt.Errorf("%w: question %s has type %q", ErrUnknownQuestionType, q.ID, q.Type)
	}
}

// matchesAnyModelAnswer is a deliberately coarse heuristic: the taker's
// text matches if it contains any model answer as a case-insensitive
// substring. Its unreliability is why the review workflow exists;
// keep the behavior, do not upgrade it.
func matchesAnyModelAnswer(text string, modelAnswers []string) bool {
	lowered := strings.ToLower(text)
	for _, m := range modelAnswers {
		if m == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
