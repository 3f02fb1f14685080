package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"testshare/internal/model"
)

// SQL implements Store over database/sql. Question and answer lists are
// stored as JSON text columns; timestamps as unix seconds, which both
// drivers handle identically.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) CreateCreator(ctx context.Context, c model.Creator) (model.Creator, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO creators (name, username)
		VALUES ($1, $2)
		RETURNING id
	`, c.Name, c.Username).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Creator{}, ErrDuplicateUsername
		}
		return model.Creator{}, fmt.Errorf("insert creator: %w", err)
	}
	return c, nil
}

func (s *SQL) GetCreator(ctx context.Context, id int64) (model.Creator, error) {
	var c model.Creator
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, username FROM creators WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Creator{}, ErrNotFound
		}
		return model.Creator{}, fmt.Errorf("load creator: %w", err)
	}
	return c, nil
}

func (s *SQL) GetCreatorByUsername(ctx context.Context, username string) (model.Creator, error) {
	var c model.Creator
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, username FROM creators WHERE username = $1
	`, username).Scan(&c.ID, &c.Name, &c.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Creator{}, ErrNotFound
		}
		return model.Creator{}, fmt.Errorf("load creator by username: %w", err)
	}
	return c, nil
}

func (s *SQL) CreateTaker(ctx context.Context, t model.Taker) (model.Taker, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO takers (name) VALUES ($1) RETURNING id
	`, t.Name).Scan(&t.ID)
	if err != nil {
		return model.Taker{}, fmt.Errorf("insert taker: %w", err)
	}
	return t, nil
}

func (s *SQL) GetTaker(ctx context.Context, id int64) (model.Taker, error) {
	var t model.Taker
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM takers WHERE id = $1
	`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Taker{}, ErrNotFound
		}
		return model.Taker{}, fmt.Errorf("load taker: %w", err)
	}
	return t, nil
}

func (s *SQL) CreateTest(ctx context.Context, t model.Test) (model.Test, error) {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return model.Test{}, fmt.Errorf("encode questions: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO tests (creator_id, title, description, duration_minutes, questions_json, share_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, t.CreatorID, t.Title, t.Description, t.DurationMinutes, string(qj), t.ShareCode, t.CreatedAt.Unix()).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Test{}, ErrDuplicateShareCode
		}
		return model.Test{}, fmt.Errorf("insert test: %w", err)
	}
	return t, nil
}

func (s *SQL) GetTest(ctx context.Context, id int64) (model.Test, error) {
	return s.getTestWhere(ctx, `id = $1`, id)
}

func (s *SQL) GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error) {
	return s.getTestWhere(ctx, `share_code = $1`, shareCode)
}

func (s *SQL) getTestWhere(ctx context.Context, where string, arg interface{}) (model.Test, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, creator_id, title, description, duration_minutes, questions_json, share_code, created_at
		FROM tests
		WHERE `+where, arg)
	t, err := scanTest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Test{}, ErrNotFound
		}
		return model.Test{}, fmt.Errorf("load test: %w", err)
	}
	return t, nil
}

func (s *SQL) ListTestsByCreator(ctx context.Context, creatorID int64) ([]model.Test, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creator_id, title, description, duration_minutes, questions_json, share_code, created_at
		FROM tests
		WHERE creator_id = $1
		ORDER BY id
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("query tests by creator: %w", err)
	}
	defer rows.Close()

	out := make([]model.Test, 0)
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tests: %w", err)
	}
	return out, nil
}

func (s *SQL) UpdateTest(ctx context.Context, t model.Test) (model.Test, error) {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return model.Test{}, fmt.Errorf("encode questions: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tests
		SET title = $2,
			description = $3,
			duration_minutes = $4,
			questions_json = $5
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.DurationMinutes, string(qj))
	if err != nil {
		return model.Test{}, fmt.Errorf("update test: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Test{}, fmt.Errorf("update test rows affected: %w", err)
	}
	if n == 0 {
		return model.Test{}, ErrNotFound
	}
	return s.GetTest(ctx, t.ID)
}

func (s *SQL) DeleteTest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete test rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) TestHasSubmissions(ctx context.Context, testID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM submissions WHERE test_id = $1)
	`, testID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check submissions for test: %w", err)
	}
	return exists, nil
}

func (s *SQL) CreateSubmission(ctx context.Context, sub model.Submission) (model.Submission, error) {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return model.Submission{}, fmt.Errorf("encode answers: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO submissions (test_id, taker_id, answers_json, start_time, end_time, score, total_points, has_review_request)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, sub.TestID, sub.TakerID, string(aj), sub.StartTime.Unix(), sub.EndTime.Unix(), sub.Score, sub.TotalPoints, sub.HasReviewRequest).Scan(&sub.ID)
	if err != nil {
		return model.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

func (s *SQL) GetSubmission(ctx context.Context, id int64) (model.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, test_id, taker_id, answers_json, start_time, end_time, score, total_points, has_review_request
		FROM submissions
		WHERE id = $1
	`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Submission{}, ErrNotFound
		}
		return model.Submission{}, fmt.Errorf("load submission: %w", err)
	}
	return sub, nil
}

func (s *SQL) ListSubmissionsByTest(ctx context.Context, testID int64) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, test_id, taker_id, answers_json, start_time, end_time, score, total_points, has_review_request
		FROM submissions
		WHERE test_id = $1
		ORDER BY id
	`, testID)
	if err != nil {
		return nil, fmt.Errorf("query submissions by test: %w", err)
	}
	defer rows.Close()

	out := make([]model.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func (s *SQL) UpdateSubmission(ctx context.Context, sub model.Submission) (model.Submission, error) {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return model.Submission{}, fmt.Errorf("encode answers: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET answers_json = $2,
			score = $3,
			has_review_request = $4
		WHERE id = $1
	`, sub.ID, string(aj), sub.Score, sub.HasReviewRequest)
	if err != nil {
		return model.Submission{}, fmt.Errorf("update submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Submission{}, fmt.Errorf("update submission rows affected: %w", err)
	}
	if n == 0 {
		return model.Submission{}, ErrNotFound
	}
	return sub, nil
}

func (s *SQL) CreateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("begin review request tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var answersJSON string
	if err := tx.QueryRowContext(ctx, `
		SELECT answers_json FROM submissions WHERE id = $1
	`, r.SubmissionID).Scan(&answersJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ReviewRequest{}, ErrNotFound
		}
		return model.ReviewRequest{}, fmt.Errorf("load submission answers: %w", err)
	}

	var answers []model.Answer
	if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
		return model.ReviewRequest{}, fmt.Errorf("decode submission answers: %w", err)
	}
	for i := range answers {
		if answers[i].QuestionID == r.QuestionID {
			answers[i].ReviewRequested = true
		}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("encode submission answers: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO review_requests (submission_id, question_id, request_message, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.SubmissionID, r.QuestionID, r.RequestMessage, string(r.Status), r.CreatedAt.Unix()).Scan(&r.ID); err != nil {
		return model.ReviewRequest{}, fmt.Errorf("insert review request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE submissions
		SET has_review_request = $2,
			answers_json = $3
		WHERE id = $1
	`, r.SubmissionID, true, string(aj)); err != nil {
		return model.ReviewRequest{}, fmt.Errorf("flag submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.ReviewRequest{}, fmt.Errorf("commit review request: %w", err)
	}
	return r, nil
}

func (s *SQL) GetReviewRequest(ctx context.Context, id int64) (model.ReviewRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, submission_id, question_id, request_message, status, created_at
		FROM review_requests
		WHERE id = $1
	`, id)
	r, err := scanReviewRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ReviewRequest{}, ErrNotFound
		}
		return model.ReviewRequest{}, fmt.Errorf("load review request: %w", err)
	}
	return r, nil
}

func (s *SQL) ListReviewRequestsBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submission_id, question_id, request_message, status, created_at
		FROM review_requests
		WHERE submission_id = $1
		ORDER BY id
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("query review requests: %w", err)
	}
	defer rows.Close()

	out := make([]model.ReviewRequest, 0)
	for rows.Next() {
		r, err := scanReviewRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review requests: %w", err)
	}
	return out, nil
}

func (s *SQL) UpdateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE review_requests
		SET request_message = $2,
			status = $3
		WHERE id = $1
	`, r.ID, r.RequestMessage, string(r.Status))
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("update review request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("update review request rows affected: %w", err)
	}
	if n == 0 {
		return model.ReviewRequest{}, ErrNotFound
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTest(row rowScanner) (model.Test, error) {
	var (
		t         model.Test
		qjson     string
		createdAt int64
	)
	if err := row.Scan(&t.ID, &t.CreatorID, &t.Title, &t.Description, &t.DurationMinutes, &qjson, &t.ShareCode, &createdAt); err != nil {
		return model.Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return model.Test{}, fmt.Errorf("decode questions json: %w", err)
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var (
		sub        model.Submission
		ajson      string
		start, end int64
	)
	if err := row.Scan(&sub.ID, &sub.TestID, &sub.TakerID, &ajson, &start, &end, &sub.Score, &sub.TotalPoints, &sub.HasReviewRequest); err != nil {
		return model.Submission{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &sub.Answers); err != nil {
		return model.Submission{}, fmt.Errorf("decode answers json: %w", err)
	}
	sub.StartTime = time.Unix(start, 0).UTC()
	sub.EndTime = time.Unix(end, 0).UTC()
	return sub, nil
}

func scanReviewRequest(row rowScanner) (model.ReviewRequest, error) {
	var (
		r         model.ReviewRequest
		status    string
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.SubmissionID, &r.QuestionID, &r.RequestMessage, &status, &createdAt); err != nil {
		return model.ReviewRequest{}, err
	}
	r.Status = model.ReviewStatus(status)
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	return r, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique")
}
