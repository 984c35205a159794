package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipebox/recipebox/internal/model"
)

// ErrTagNotFound indicates the tag does not exist within the caller's
// owned scope.
var ErrTagNotFound = errors.New("tag not found")

// ListTags retrieves all tags owned by userID, ordered by name descending.
// When assignedOnly is true, only tags attached to at least one recipe are
// returned; the EXISTS predicate joins through any recipe association, and
// each tag appears exactly once regardless of how many recipes reference it.
func (r *Repository) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name
		FROM tags t
		WHERE t.user_id = $1
	`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.tag_id = t.id)`
	}
	query += ` ORDER BY t.name DESC, t.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// GetTag retrieves a tag by ID within the owner's scope.
func (r *Repository) GetTag(ctx context.Context, userID string, id int64) (*model.Tag, error) {
	var t model.Tag
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name FROM tags WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &t, nil
}

// UpdateTag renames a tag within the owner's scope.
func (r *Repository) UpdateTag(ctx context.Context, userID string, id int64, name string) (*model.Tag, error) {
	var t model.Tag
	err := r.pool.QueryRow(ctx,
		`UPDATE tags SET name = $3 WHERE user_id = $1 AND id = $2 RETURNING id, user_id, name`,
		userID, id, name,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return &t, nil
}

// DeleteTag removes a tag within the owner's scope. Join rows cascade.
func (r *Repository) DeleteTag(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}
