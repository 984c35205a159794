package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Tag service errors.
var (
	ErrTagNotFound  = errors.New("tag not found")
	ErrNameRequired = errors.New("name is required")
)

// TagService handles tag business logic. Tags are created implicitly
// through recipe writes; this service covers list, rename, and delete.
type TagService struct {
	repo *repository.Repository
}

// NewTagService creates a new TagService.
func NewTagService(repo *repository.Repository) *TagService {
	return &TagService{repo: repo}
}

// ListTags retrieves the caller's tags ordered by name descending. With
// assignedOnly, only tags attached to at least one recipe are included.
func (s *TagService) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	tags, err := s.repo.ListTags(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// UpdateTag renames one of the caller's tags.
func (s *TagService) UpdateTag(ctx context.Context, userID string, id int64, name string) (*model.Tag, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	tag, err := s.repo.UpdateTag(ctx, userID, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes one of the caller's tags.
func (s *TagService) DeleteTag(ctx context.Context, userID string, id int64) error {
	if err := s.repo.DeleteTag(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}
