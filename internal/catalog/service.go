// Package catalog owns test definitions: authoring, lookup by id, and
// resolution of the taker-facing share code.
package catalog

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"testshare/internal/model"
	"testshare/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid test input")
	ErrTestNotFound = errors.New("test not found")
	// ErrTestLocked is returned when a test already has submissions;
	// a test is immutable once a session ran against it.
	ErrTestLocked = errors.New("test has submissions and can no longer be changed")
)

const (
	shareCodeLength   = 8
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	shareCodeRetries  = 5
)

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

type TestInput struct {
	CreatorID       int64
	Title           string
	Description     string
	DurationMinutes int
	Questions       []model.Question
}

func (s *Service) CreateTest(ctx context.Context, in TestInput) (model.Test, error) {
	test := model.Test{
		CreatorID:       in.CreatorID,
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Questions:       in.Questions,
		CreatedAt:       s.now(),
	}
	if err := test.Validate(); err != nil {
		return model.Test{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.store.GetCreator(ctx, in.CreatorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Test{}, fmt.Errorf("%w: creator %d not found", ErrInvalidInput, in.CreatorID)
		}
		return model.Test{}, fmt.Errorf("load creator: %w", err)
	}

	for attempt := 0; attempt < shareCodeRetries; attempt++ {
		code, err := generateShareCode(shareCodeLength)
		if err != nil {
			return model.Test{}, fmt.Errorf("generate share code: %w", err)
		}
		test.ShareCode = code

		created, err := s.store.CreateTest(ctx, test)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, store.ErrDuplicateShareCode) {
			continue
		}
		return model.Test{}, fmt.Errorf("create test: %w", err)
	}
	return model.Test{}, errors.New("could not allocate a unique share code")
}

func (s *Service) GetTest(ctx context.Context, id int64) (model.Test, error) {
	test, err := s.store.GetTest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Test{}, ErrTestNotFound
		}
		return model.Test{}, fmt.Errorf("load test: %w", err)
	}
	return test, nil
}

// GetTestByShareCode resolves the opaque taker-facing code.
func (s *Service) GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error) {
	test, err := s.store.GetTestByShareCode(ctx, shareCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Test{}, ErrTestNotFound
		}
		return model.Test{}, fmt.Errorf("load test by share code: %w", err)
	}
	return test, nil
}

func (s *Service) ListTestsByCreator(ctx context.Context, creatorID int64) ([]model.Test, error) {
	tests, err := s.store.ListTestsByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list tests by creator: %w", err)
	}
	return tests, nil
}

// UpdateTest replaces the editable fields. The share code, creator and
// creation time never change, and a test with submissions is locked.
func (s *Service) UpdateTest(ctx context.Context, id int64, in TestInput) (model.Test, error) {
	existing, err := s.GetTest(ctx, id)
	if err != nil {
		return model.Test{}, err
	}

	locked, err := s.store.TestHasSubmissions(ctx, id)
	if err != nil {
		return model.Test{}, fmt.Errorf("check test submissions: %w", err)
	}
	if locked {
		return model.Test{}, ErrTestLocked
	}

	updated := model.Test{
		ID:              existing.ID,
		CreatorID:       existing.CreatorID,
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Questions:       in.Questions,
		ShareCode:       existing.ShareCode,
		CreatedAt:       existing.CreatedAt,
	}
	if err := updated.Validate(); err != nil {
		return model.Test{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.store.UpdateTest(ctx, updated)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Test{}, ErrTestNotFound
		}
		return model.Test{}, fmt.Errorf("update test: %w", err)
	}
	return saved, nil
}

func (s *Service) DeleteTest(ctx context.Context, id int64) error {
	locked, err := s.store.TestHasSubmissions(ctx, id)
	if err != nil {
		return fmt.Errorf("check test submissions: %w", err)
	}
	if locked {
		return ErrTestLocked
	}

	if err := s.store.DeleteTest(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTestNotFound
		}
		return fmt.Errorf("delete test: %w", err)
	}
	return nil
}

func generateShareCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = shareCodeAlphabet[int(v)%len(shareCodeAlphabet)]
	}
	return string(out), nil
}
