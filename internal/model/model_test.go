package model

import (
	"strings"
	"testing"
)

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name    string
		q       Question
		wantErr string
	}{
		{
			name: "valid mcq",
			q:    Question{ID: "q1", Type: QuestionMCQ, Text: "Pick one", Points: 2, Choices: []string{"a", "b"}, CorrectChoice: intPtr(1)},
		},
		{
			name:    "mcq with one choice",
			q:       Question{ID: "q1", Type: QuestionMCQ, Text: "Pick one", Points: 2, Choices: []string{"a"}, CorrectChoice: intPtr(0)},
			wantErr: "at least 2 choices",
		},
		{
			name:    "mcq correct choice out of range",
			q:       Question{ID: "q1", Type: QuestionMCQ, Text: "Pick one", Points: 2, Choices: []string{"a", "b"}, CorrectChoice: intPtr(2)},
			wantErr: "out of range",
		},
		{
			name:    "mcq without correct choice",
			q:       Question{ID: "q1", Type: QuestionMCQ, Text: "Pick one", Points: 2, Choices: []string{"a", "b"}},
			wantErr: "correct choice",
		},
		{
			name: "valid tf",
			q:    Question{ID: "q2", Type: QuestionTF, Text: "True?", Points: 1, CorrectAnswer: boolPtr(true)},
		},
		{
			name:    "tf without answer",
			q:       Question{ID: "q2", Type: QuestionTF, Text: "True?", Points: 1},
			wantErr: "correct answer",
		},
		{
			name: "valid essay",
			q:    Question{ID: "q3", Type: QuestionEssay, Text: "Explain", Points: 5, ModelAnswers: []string{"gravity"}},
		},
		{
			name:    "essay without model answers",
			q:       Question{ID: "q3", Type: QuestionEssay, Text: "Explain", Points: 5},
			wantErr: "at least 1 model answer",
		},
		{
			name:    "essay with blank model answer",
			q:       Question{ID: "q3", Type: QuestionEssay, Text: "Explain", Points: 5, ModelAnswers: []string{"  "}},
			wantErr: "must not be blank",
		},
		{
			name:    "zero points",
			q:       Question{ID: "q4", Type: QuestionTF, Text: "True?", Points: 0, CorrectAnswer: boolPtr(false)},
			wantErr: "points",
		},
		{
			name:    "unknown type",
			q:       Question{ID: "q5", Type: "matching", Text: "Match", Points: 1},
			wantErr: "unknown type",
		},
		{
			name:    "missing id",
			q:       Question{Type: QuestionTF, Text: "True?", Points: 1, CorrectAnswer: boolPtr(true)},
			wantErr: "id is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTestValidateRejectsDuplicateQuestionIDs(t *testing.T) {
	tt := Test{
		CreatorID:       1,
		Title:           "Dup",
		DurationMinutes: 10,
		Questions: []Question{
			{ID: "q1", Type: QuestionTF, Text: "a", Points: 1, CorrectAnswer: boolPtr(true)},
			{ID: "q1", Type: QuestionTF, Text: "b", Points: 1, CorrectAnswer: boolPtr(false)},
		},
	}
	err := tt.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate question id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestTestValidateRequiresQuestions(t *testing.T) {
	tt := Test{CreatorID: 1, Title: "Empty", DurationMinutes: 10}
	if err := tt.Validate(); err == nil {
		t.Fatalf("expected error for empty question list")
	}
}

func TestTotalPoints(t *testing.T) {
	tt := Test{Questions: []Question{
		{ID: "q1", Points: 2},
		{ID: "q2", Points: 3},
		{ID: "q3", Points: 5},
	}}
	if got := tt.TotalPoints(); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestAnswered(t *testing.T) {
	cases := []struct {
		name string
		a    Answer
		qt   QuestionType
		want bool
	}{
		{"mcq unanswered", Answer{}, QuestionMCQ, false},
		{"mcq choice zero counts", Answer{ChoiceIndex: intPtr(0)}, QuestionMCQ, true},
		{"tf false counts", Answer{BooleanAnswer: boolPtr(false)}, QuestionTF, true},
		{"essay nil", Answer{}, QuestionEssay, false},
		{"essay whitespace only", Answer{EssayText: strPtr("   \t")}, QuestionEssay, false},
		{"essay text", Answer{EssayText: strPtr("Newton")}, QuestionEssay, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Answered(tc.qt); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestQuestionByID(t *testing.T) {
	tt := Test{Questions: []Question{{ID: "q1"}, {ID: "q2"}}}
	if _, ok := tt.QuestionByID("q2"); !ok {
		t.Fatalf("expected q2 to be found")
	}
	if _, ok := tt.QuestionByID("q9"); ok {
		t.Fatalf("expected q9 to be missing")
	}
}
