package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"testshare/internal/model"
	"testshare/internal/store"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func seedTest(t *testing.T, st *store.Memory) model.Test {
	t.Helper()
	tt, err := st.CreateTest(context.Background(), model.Test{
		CreatorID:       1,
		Title:           "Quiz",
		DurationMinutes: 30,
		Questions: []model.Question{
			{ID: "q1", Type: model.QuestionMCQ, Text: "Pick", Points: 5, Choices: []string{"a", "b"}, CorrectChoice: intPtr(1)},
			{ID: "q2", Type: model.QuestionTF, Text: "True?", Points: 5, CorrectAnswer: boolPtr(true)},
		},
		ShareCode: "CODE1234",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed test: %v", err)
	}
	return tt
}

func validRecordInput(testID int64, start time.Time) RecordInput {
	correct := true
	wrong := false
	return RecordInput{
		TestID:  testID,
		TakerID: 1,
		Answers: []model.Answer{
			{QuestionID: "q1", ChoiceIndex: intPtr(1), IsCorrect: &correct, PointsAwarded: 5},
			{QuestionID: "q2", BooleanAnswer: boolPtr(false), IsCorrect: &wrong, PointsAwarded: 0},
		},
		Score:       5,
		TotalPoints: 10,
		StartTime:   start,
	}
}

func TestRecordStampsEndTime(t *testing.T) {
	st := store.NewMemory()
	tt := seedTest(t, st)

	svc := NewService(st)
	recordedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return recordedAt }

	start := recordedAt.Add(-20 * time.Minute)
	sub, err := svc.Record(context.Background(), validRecordInput(tt.ID, start))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if !sub.EndTime.Equal(recordedAt) {
		t.Fatalf("end time must be stamped at record time, got %v", sub.EndTime)
	}
	if !sub.StartTime.Equal(start) {
		t.Fatalf("start time must come from the input, got %v", sub.StartTime)
	}
	if sub.HasReviewRequest {
		t.Fatalf("a new submission never carries a review request")
	}
	for _, a := range sub.Answers {
		if a.ReviewRequested {
			t.Fatalf("answers must start without review markers: %+v", a)
		}
	}
	if sub.ID != 1 {
		t.Fatalf("expected submission id 1, got %d", sub.ID)
	}
}

func TestRecordValidation(t *testing.T) {
	st := store.NewMemory()
	tt := seedTest(t, st)
	svc := NewService(st)
	ctx := context.Background()
	start := time.Now().Add(-10 * time.Minute)

	cases := []struct {
		name    string
		mutate  func(*RecordInput)
		wantErr error
	}{
		{"unknown test", func(in *RecordInput) { in.TestID = 99 }, ErrTestNotFound},
		{"missing taker", func(in *RecordInput) { in.TakerID = 0 }, ErrInvalidInput},
		{"zero start time", func(in *RecordInput) { in.StartTime = time.Time{} }, ErrInvalidInput},
		{"answer count mismatch", func(in *RecordInput) { in.Answers = in.Answers[:1] }, ErrInvalidInput},
		{"answer order mismatch", func(in *RecordInput) {
			in.Answers[0], in.Answers[1] = in.Answers[1], in.Answers[0]
		}, ErrInvalidInput},
		{"score does not match awarded points", func(in *RecordInput) { in.Score = 7 }, ErrInvalidInput},
		{"total points mismatch", func(in *RecordInput) { in.TotalPoints = 12 }, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRecordInput(tt.ID, start)
			tc.mutate(&in)
			if _, err := svc.Record(ctx, in); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGetAndListByTest(t *testing.T) {
	st := store.NewMemory()
	tt := seedTest(t, st)
	svc := NewService(st)
	ctx := context.Background()

	created, err := svc.Record(ctx, validRecordInput(tt.ID, time.Now().Add(-time.Minute)))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil || got.ID != created.ID {
		t.Fatalf("get: %v (got %+v)", err, got)
	}
	if _, err := svc.Get(ctx, 99); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}

	subs, err := svc.ListByTest(ctx, tt.ID)
	if err != nil || len(subs) != 1 {
		t.Fatalf("list: expected 1 submission, got %d (err %v)", len(subs), err)
	}
	if _, err := svc.ListByTest(ctx, 99); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound for unknown test, got %v", err)
	}
}
