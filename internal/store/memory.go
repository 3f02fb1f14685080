package store

import (
	"context"
	"sort"
	"sync"

	"testshare/internal/model"
)

// Memory is the default in-process backend. Identifier counters are
// seeded at 1 and scoped to a single run; deployments that need ids to
// survive restarts use the SQL backend instead.
type Memory struct {
	mu sync.RWMutex

	creators       map[int64]model.Creator
	takers         map[int64]model.Taker
	tests          map[int64]model.Test
	submissions    map[int64]model.Submission
	reviewRequests map[int64]model.ReviewRequest

	creatorID       int64
	takerID         int64
	testID          int64
	submissionID    int64
	reviewRequestID int64
}

func NewMemory() *Memory {
	return &Memory{
		creators:        make(map[int64]model.Creator),
		takers:          make(map[int64]model.Taker),
		tests:           make(map[int64]model.Test),
		submissions:     make(map[int64]model.Submission),
		reviewRequests:  make(map[int64]model.ReviewRequest),
		creatorID:       1,
		takerID:         1,
		testID:          1,
		submissionID:    1,
		reviewRequestID: 1,
	}
}

func (m *Memory) CreateCreator(ctx context.Context, c model.Creator) (model.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.creators {
		if existing.Username == c.Username {
			return model.Creator{}, ErrDuplicateUsername
		}
	}
	c.ID = m.creatorID
	m.creatorID++
	m.creators[c.ID] = c
	return c, nil
}

func (m *Memory) GetCreator(ctx context.Context, id int64) (model.Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creators[id]
	if !ok {
		return model.Creator{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) GetCreatorByUsername(ctx context.Context, username string) (model.Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.creators {
		if c.Username == username {
			return c, nil
		}
	}
	return model.Creator{}, ErrNotFound
}

func (m *Memory) CreateTaker(ctx context.Context, t model.Taker) (model.Taker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.takerID
	m.takerID++
	m.takers[t.ID] = t
	return t, nil
}

func (m *Memory) GetTaker(ctx context.Context, id int64) (model.Taker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.takers[id]
	if !ok {
		return model.Taker{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) CreateTest(ctx context.Context, t model.Test) (model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tests {
		if existing.ShareCode == t.ShareCode {
			return model.Test{}, ErrDuplicateShareCode
		}
	}
	t.ID = m.testID
	m.testID++
	m.tests[t.ID] = cloneTest(t)
	return t, nil
}

func (m *Memory) GetTest(ctx context.Context, id int64) (model.Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return model.Test{}, ErrNotFound
	}
	return cloneTest(t), nil
}

func (m *Memory) GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tests {
		if t.ShareCode == shareCode {
			return cloneTest(t), nil
		}
	}
	return model.Test{}, ErrNotFound
}

func (m *Memory) ListTestsByCreator(ctx context.Context, creatorID int64) ([]model.Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Test, 0)
	for _, t := range m.tests {
		if t.CreatorID == creatorID {
			out = append(out, cloneTest(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateTest(ctx context.Context, t model.Test) (model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[t.ID]; !ok {
		return model.Test{}, ErrNotFound
	}
	for _, existing := range m.tests {
		if existing.ID != t.ID && existing.ShareCode == t.ShareCode {
			return model.Test{}, ErrDuplicateShareCode
		}
	}
	m.tests[t.ID] = cloneTest(t)
	return t, nil
}

func (m *Memory) DeleteTest(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return ErrNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *Memory) TestHasSubmissions(ctx context.Context, testID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.submissions {
		if s.TestID == testID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreateSubmission(ctx context.Context, s model.Submission) (model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.submissionID
	m.submissionID++
	m.submissions[s.ID] = cloneSubmission(s)
	return s, nil
}

func (m *Memory) GetSubmission(ctx context.Context, id int64) (model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return cloneSubmission(s), nil
}

func (m *Memory) ListSubmissionsByTest(ctx context.Context, testID int64) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Submission, 0)
	for _, s := range m.submissions {
		if s.TestID == testID {
			out = append(out, cloneSubmission(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateSubmission(ctx context.Context, s model.Submission) (model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[s.ID]; !ok {
		return model.Submission{}, ErrNotFound
	}
	m.submissions[s.ID] = cloneSubmission(s)
	return s, nil
}

func (m *Memory) CreateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.submissions[r.SubmissionID]
	if !ok {
		return model.ReviewRequest{}, ErrNotFound
	}

	r.ID = m.reviewRequestID
	m.reviewRequestID++
	m.reviewRequests[r.ID] = r

	// Same lock, same step: the request exists iff the flag is set.
	sub = cloneSubmission(sub)
	sub.HasReviewRequest = true
	for i := range sub.Answers {
		if sub.Answers[i].QuestionID == r.QuestionID {
			sub.Answers[i].ReviewRequested = true
		}
	}
	m.submissions[sub.ID] = sub

	return r, nil
}

func (m *Memory) GetReviewRequest(ctx context.Context, id int64) (model.ReviewRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviewRequests[id]
	if !ok {
		return model.ReviewRequest{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) ListReviewRequestsBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ReviewRequest, 0)
	for _, r := range m.reviewRequests {
		if r.SubmissionID == submissionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviewRequests[r.ID]; !ok {
		return model.ReviewRequest{}, ErrNotFound
	}
	m.reviewRequests[r.ID] = r
	return r, nil
}

func cloneTest(t model.Test) model.Test {
	t.Questions = append([]model.Question(nil), t.Questions...)
	for i := range t.Questions {
		t.Questions[i].Choices = append([]string(nil), t.Questions[i].Choices...)
		t.Questions[i].ModelAnswers = append([]string(nil), t.Questions[i].ModelAnswers...)
	}
	return t
}

func cloneSubmission(s model.Submission) model.Submission {
	s.Answers = append([]model.Answer(nil), s.Answers...)
	return s
}
