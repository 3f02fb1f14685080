// Package roster registers the people around a test: creators who
// author them and takers who attempt them. No authentication; a taker
// is just a name exchanged for an id.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"testshare/internal/model"
	"testshare/internal/store"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrCreatorNotFound = errors.New("creator not found")
	ErrTakerNotFound   = errors.New("taker not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) CreateCreator(ctx context.Context, name, username string) (model.Creator, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	if name == "" || username == "" {
		return model.Creator{}, fmt.Errorf("%w: name and username are required", ErrInvalidInput)
	}

	creator, err := s.store.CreateCreator(ctx, model.Creator{Name: name, Username: username})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return model.Creator{}, ErrUsernameTaken
		}
		return model.Creator{}, fmt.Errorf("create creator: %w", err)
	}
	return creator, nil
}

func (s *Service) GetCreatorByUsername(ctx context.Context, username string) (model.Creator, error) {
	creator, err := s.store.GetCreatorByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Creator{}, ErrCreatorNotFound
		}
		return model.Creator{}, fmt.Errorf("load creator: %w", err)
	}
	return creator, nil
}

func (s *Service) CreateTaker(ctx context.Context, name string) (model.Taker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Taker{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	taker, err := s.store.CreateTaker(ctx, model.Taker{Name: name})
	if err != nil {
		return model.Taker{}, fmt.Errorf("create taker: %w", err)
	}
	return taker, nil
}

func (s *Service) GetTaker(ctx context.Context, id int64) (model.Taker, error) {
	taker, err := s.store.GetTaker(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Taker{}, ErrTakerNotFound
		}
		return model.Taker{}, fmt.Errorf("load taker: %w", err)
	}
	return taker, nil
}
