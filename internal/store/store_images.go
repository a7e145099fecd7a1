package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ImageParams describes a new image row.
type ImageParams struct {
	UserID       int64
	Filename     string
	OriginalName string
	SessionID    string
	Ready        bool
}

// InsertImage records an uploaded image.
func (s *Store) InsertImage(ctx context.Context, params ImageParams) (*Image, error) {
	if params.Filename == "" {
		return nil, errors.New("image filename is required")
	}
	if params.SessionID == "" {
		return nil, errors.New("session id is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO images (user_id, filename, original_name, session_id, uploaded_at, ready)
         VALUES (?, ?, ?, ?, ?, ?)`,
		params.UserID,
		params.Filename,
		params.OriginalName,
		params.SessionID,
		nowString(),
		boolToInt(params.Ready),
	)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetImageByID(ctx, id)
}

// GetImageByID fetches an image by identifier. Returns nil, nil when absent.
func (s *Store) GetImageByID(ctx context.Context, id int64) (*Image, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// GetImageByFilename fetches an image by its stored filename. Returns
// nil, nil when absent.
func (s *Store) GetImageByFilename(ctx context.Context, userID int64, filename string) (*Image, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM images WHERE user_id = ? AND filename = ?`,
		userID, filename,
	)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get image by filename: %w", err)
	}
	return img, nil
}

// ListImages returns the user's images newest-first, filtered by the
// provided constraints. Soft-deleted images are always excluded.
func (s *Store) ListImages(ctx context.Context, userID int64, filter ImageFilter) ([]*Image, error) {
	query := `SELECT ` + imageColumnsPrefixed + ` FROM images i`
	args := []any{}

	if filter.TagID != 0 {
		query += ` JOIN image_tags it ON it.image_id = i.id AND it.tag_id = ?`
		args = append(args, filter.TagID)
	}

	query += ` WHERE i.user_id = ? AND i.is_deleted = 0`
	args = append(args, userID)

	if filter.SessionID != "" {
		query += ` AND i.session_id = ?`
		args = append(args, filter.SessionID)
	}
	if filter.Favorite != nil {
		query += ` AND i.is_favorite = ?`
		args = append(args, boolToInt(*filter.Favorite))
	}
	if filter.Ready != nil {
		query += ` AND i.ready = ?`
		args = append(args, boolToInt(*filter.Ready))
	}

	query += ` ORDER BY i.uploaded_at DESC, i.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ListSessions returns the derived session grouping for a user, newest
// session first. Soft-deleted images do not contribute.
func (s *Store) ListSessions(ctx context.Context, userID int64) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), SUM(ready), MIN(uploaded_at), MAX(uploaded_at)
         FROM images
         WHERE user_id = ? AND is_deleted = 0
         GROUP BY session_id
         ORDER BY MAX(uploaded_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var (
			summary  SessionSummary
			firstRaw string
			lastRaw  string
		)
		if err := rows.Scan(&summary.SessionID, &summary.ImageCount, &summary.ReadyCount, &firstRaw, &lastRaw); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if first, err := parseTimeString(firstRaw); err == nil {
			summary.FirstUpload = first
		}
		if last, err := parseTimeString(lastRaw); err == nil {
			summary.LastUpload = last
		}
		sessions = append(sessions, summary)
	}
	return sessions, rows.Err()
}

// CurrentSessionID returns the newest session id for a user, or "" when
// the user has no images.
func (s *Store) CurrentSessionID(ctx context.Context, userID int64) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM images
         WHERE user_id = ? AND is_deleted = 0
         ORDER BY uploaded_at DESC, id DESC LIMIT 1`,
		userID,
	)
	var sessionID string
	if err := row.Scan(&sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("current session: %w", err)
	}
	return sessionID, nil
}

// ToggleFavorite flips the favorite flag and returns the updated image.
// Returns nil, nil when the image does not exist or is deleted.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) (*Image, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE images SET is_favorite = 1 - is_favorite WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetImageByID(ctx, id)
}

// SetRotation stores a rotation value for an image. Returns false when the
// image does not exist or is deleted.
func (s *Store) SetRotation(ctx context.Context, id int64, degrees int) (bool, error) {
	if !ValidRotation(degrees) {
		return false, fmt.Errorf("rotation %d is not a multiple of 90 within [0, 270]", degrees)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE images SET rotation = ? WHERE id = ? AND is_deleted = 0`, degrees, id)
	if err != nil {
		return false, fmt.Errorf("set rotation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetReady updates the ready flag on a batch of image ids and returns the
// number of rows changed.
func (s *Store) SetReady(ctx context.Context, ids []int64, ready bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, boolToInt(ready))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE images SET ready = ? WHERE id IN (` + makePlaceholders(len(ids)) + `) AND is_deleted = 0`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set ready: %w", err)
	}
	return res.RowsAffected()
}

// SoftDeleteImage flags an image as deleted, retaining the row. Returns
// false when the image does not exist or was already deleted.
func (s *Store) SoftDeleteImage(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE images SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const imageColumns = "id, user_id, filename, original_name, session_id, uploaded_at, is_favorite, tag, is_deleted, rotation, ready"

const imageColumnsPrefixed = "i.id, i.user_id, i.filename, i.original_name, i.session_id, i.uploaded_at, i.is_favorite, i.tag, i.is_deleted, i.rotation, i.ready"

func scanImage(scanner interface{ Scan(dest ...any) error }) (*Image, error) {
	var (
		img         Image
		uploadedRaw string
		favorite    int
		deleted     int
		ready       int
	)
	if err := scanner.Scan(
		&img.ID,
		&img.UserID,
		&img.Filename,
		&img.OriginalName,
		&img.SessionID,
		&uploadedRaw,
		&favorite,
		&img.Tag,
		&deleted,
		&img.Rotation,
		&ready,
	); err != nil {
		return nil, err
	}
	img.Favorite = favorite != 0
	img.Deleted = deleted != 0
	img.Ready = ready != 0
	if uploaded, err := parseTimeString(uploadedRaw); err == nil {
		img.UploadedAt = uploaded
	}
	return &img, nil
}
