package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// InsertTag creates a tag for a user. Name uniqueness per user is enforced
// by the schema; a duplicate surfaces as a constraint failure.
func (s *Store) InsertTag(ctx context.Context, userID int64, name, color, category string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tag name is required")
	}
	if color == "" {
		color = "#808080"
	}
	if category == "" {
		category = "general"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (user_id, name, color, category, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, name, color, category, nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTagByID(ctx, id)
}

// GetTagByID fetches a tag by identifier. Returns nil, nil when absent.
func (s *Store) GetTagByID(ctx context.Context, id int64) (*Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// ListTags returns the user's tags ordered by name.
func (s *Store) ListTags(ctx context.Context, userID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag; association rows cascade away with it. Returns
// false when the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddImageTag associates a tag with an image. Adding an existing
// association is a no-op.
func (s *Store) AddImageTag(ctx context.Context, imageID, tagID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO image_tags (image_id, tag_id, added_at) VALUES (?, ?, ?)`,
		imageID, tagID, nowString(),
	)
	if err != nil {
		return fmt.Errorf("add image tag: %w", err)
	}
	return nil
}

// RemoveImageTag removes a tag-to-image association. Returns false when
// the association does not exist.
func (s *Store) RemoveImageTag(ctx context.Context, imageID, tagID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM image_tags WHERE image_id = ? AND tag_id = ?`, imageID, tagID)
	if err != nil {
		return false, fmt.Errorf("remove image tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListImageTags returns the tags attached to an image, ordered by name.
func (s *Store) ListImageTags(ctx context.Context, imageID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumnsPrefixed+` FROM tags t
         JOIN image_tags it ON it.tag_id = t.id
         WHERE it.image_id = ?
         ORDER BY t.name`,
		imageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list image tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

const tagColumns = "id, user_id, name, color, category, created_at"

const tagColumnsPrefixed = "t.id, t.user_id, t.name, t.color, t.category, t.created_at"

func scanTag(scanner interface{ Scan(dest ...any) error }) (*Tag, error) {
	var (
		tag        Tag
		createdRaw string
	)
	if err := scanner.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.Category, &createdRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		tag.CreatedAt = created
	}
	return &tag, nil
}
