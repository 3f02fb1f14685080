package store

import (
	"context"
	"testing"
	"time"

	"testshare/internal/model"
)

func seedTest(t *testing.T, m *Memory, shareCode string) model.Test {
	t.Helper()
	tt, err := m.CreateTest(context.Background(), model.Test{
		CreatorID:       1,
		Title:           "Sample",
		DurationMinutes: 30,
		Questions: []model.Question{
			{ID: "q1", Type: model.QuestionEssay, Text: "Explain", Points: 5, ModelAnswers: []string{"gravity"}},
		},
		ShareCode: shareCode,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	return tt
}

func seedSubmission(t *testing.T, m *Memory, testID int64) model.Submission {
	t.Helper()
	essay := "gravity did it"
	sub, err := m.CreateSubmission(context.Background(), model.Submission{
		TestID:    testID,
		TakerID:   1,
		Answers:   []model.Answer{{QuestionID: "q1", EssayText: &essay, PointsAwarded: 5}},
		StartTime: time.Now().Add(-time.Minute),
		EndTime:   time.Now(),
		Score:     5, TotalPoints: 5,
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func TestMemoryIDsStartAtOne(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	c, err := m.CreateCreator(ctx, model.Creator{Name: "Ana", Username: "ana"})
	if err != nil || c.ID != 1 {
		t.Fatalf("expected creator id 1, got %d (err %v)", c.ID, err)
	}
	tk, err := m.CreateTaker(ctx, model.Taker{Name: "Ben"})
	if err != nil || tk.ID != 1 {
		t.Fatalf("expected taker id 1, got %d (err %v)", tk.ID, err)
	}
	tt := seedTest(t, m, "CODE0001")
	if tt.ID != 1 {
		t.Fatalf("expected test id 1, got %d", tt.ID)
	}
	tt2 := seedTest(t, m, "CODE0002")
	if tt2.ID != 2 {
		t.Fatalf("expected test id 2, got %d", tt2.ID)
	}
}

func TestMemoryDuplicateUsername(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCreator(ctx, model.Creator{Name: "Ana", Username: "ana"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.CreateCreator(ctx, model.Creator{Name: "Other", Username: "ana"}); err != ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestMemoryDuplicateShareCode(t *testing.T) {
	m := NewMemory()
	seedTest(t, m, "SAMECODE")

	_, err := m.CreateTest(context.Background(), model.Test{
		CreatorID: 1, Title: "Other", DurationMinutes: 5,
		Questions: []model.Question{{ID: "q1", Type: model.QuestionTF, Text: "t", Points: 1}},
		ShareCode: "SAMECODE",
	})
	if err != ErrDuplicateShareCode {
		t.Fatalf("expected ErrDuplicateShareCode, got %v", err)
	}
}

func TestMemoryTestHasSubmissions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTest(t, m, "CODE0001")

	has, err := m.TestHasSubmissions(ctx, tt.ID)
	if err != nil || has {
		t.Fatalf("expected no submissions yet (err %v)", err)
	}

	seedSubmission(t, m, tt.ID)

	has, err = m.TestHasSubmissions(ctx, tt.ID)
	if err != nil || !has {
		t.Fatalf("expected submissions to be detected (err %v)", err)
	}
}

func TestMemoryCreateReviewRequestFlipsFlagAtomically(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTest(t, m, "CODE0001")
	sub := seedSubmission(t, m, tt.ID)

	req, err := m.CreateReviewRequest(ctx, model.ReviewRequest{
		SubmissionID: sub.ID,
		QuestionID:   "q1",
		Status:       model.ReviewPending,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create review request: %v", err)
	}
	if req.ID != 1 {
		t.Fatalf("expected review request id 1, got %d", req.ID)
	}

	got, err := m.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if !got.HasReviewRequest {
		t.Fatalf("submission flag must flip with the request")
	}
	if !got.Answers[0].ReviewRequested {
		t.Fatalf("contested answer must be marked")
	}

	// A second request leaves the flag set.
	if _, err := m.CreateReviewRequest(ctx, model.ReviewRequest{
		SubmissionID: sub.ID, QuestionID: "q1", Status: model.ReviewPending, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("second request: %v", err)
	}
	got, _ = m.GetSubmission(ctx, sub.ID)
	if !got.HasReviewRequest {
		t.Fatalf("flag must stay set after a second request")
	}

	reqs, err := m.ListReviewRequestsBySubmission(ctx, sub.ID)
	if err != nil || len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d (err %v)", len(reqs), err)
	}
}

func TestMemoryCreateReviewRequestMissingSubmission(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateReviewRequest(context.Background(), model.ReviewRequest{SubmissionID: 42, QuestionID: "q1"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTest(t, m, "CODE0001")

	got, _ := m.GetTest(ctx, tt.ID)
	got.Questions[0].Text = "mutated"

	again, _ := m.GetTest(ctx, tt.ID)
	if again.Questions[0].Text != "Explain" {
		t.Fatalf("store must hand out copies, stored value was mutated")
	}
}
