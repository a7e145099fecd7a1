package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AnnotationParams describes a new annotation row.
type AnnotationParams struct {
	UserID        int64
	ImageID       *int64
	ImageFilename string
	AudioFilename string
	Name          string
	SessionID     string
}

// InsertAnnotation records a completed audio annotation. Callers invoke
// this only after the encoder reported success.
func (s *Store) InsertAnnotation(ctx context.Context, params AnnotationParams) (*Annotation, error) {
	if params.ImageFilename == "" {
		return nil, errors.New("image filename is required")
	}
	if params.AudioFilename == "" {
		return nil, errors.New("audio filename is required")
	}
	if params.Name == "" {
		params.Name = DefaultAnnotationName
	}

	var imageID any
	if params.ImageID != nil {
		imageID = *params.ImageID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO annotations (user_id, image_id, image_filename, audio_filename, annotation_name, session_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.UserID,
		imageID,
		params.ImageFilename,
		params.AudioFilename,
		params.Name,
		params.SessionID,
		nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert annotation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAnnotationByID(ctx, id)
}

// GetAnnotationByID fetches an annotation by identifier. Returns nil, nil
// when absent.
func (s *Store) GetAnnotationByID(ctx context.Context, id int64) (*Annotation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+annotationColumns+` FROM annotations WHERE id = ?`, id)
	ann, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return ann, nil
}

// ListAnnotations returns every annotation for a user, newest first.
func (s *Store) ListAnnotations(ctx context.Context, userID int64) ([]*Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations
         WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

// ListImageAnnotations returns the annotations for one image, newest first.
func (s *Store) ListImageAnnotations(ctx context.Context, userID int64, imageFilename string) ([]*Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations
         WHERE user_id = ? AND image_filename = ?
         ORDER BY created_at DESC, id DESC`,
		userID, imageFilename,
	)
	if err != nil {
		return nil, fmt.Errorf("list image annotations: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

// ListAnnotationsByImageID returns the annotations linked to an image row,
// oldest first. Used by the image-delete cascade.
func (s *Store) ListAnnotationsByImageID(ctx context.Context, imageID int64) ([]*Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE image_id = ? ORDER BY id`,
		imageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list annotations by image: %w", err)
	}
	defer rows.Close()
	return collectAnnotations(rows)
}

// AnnotationSummary groups annotation counts per image for grid display,
// most recently annotated image first.
func (s *Store) AnnotationSummary(ctx context.Context, userID int64) ([]AnnotationGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_filename, COUNT(*), MAX(created_at)
         FROM annotations
         WHERE user_id = ?
         GROUP BY image_filename
         ORDER BY MAX(created_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("annotation summary: %w", err)
	}
	defer rows.Close()

	var groups []AnnotationGroup
	for rows.Next() {
		var (
			group     AnnotationGroup
			latestRaw string
		)
		if err := rows.Scan(&group.ImageFilename, &group.Count, &latestRaw); err != nil {
			return nil, fmt.Errorf("scan annotation group: %w", err)
		}
		if latest, err := parseTimeString(latestRaw); err == nil {
			group.Latest = latest
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// DeleteAnnotation removes an annotation row. Returns false when no row
// was affected, which callers treat as not-found.
func (s *Store) DeleteAnnotation(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete annotation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const annotationColumns = "id, user_id, image_id, image_filename, audio_filename, annotation_name, session_id, created_at"

func scanAnnotation(scanner interface{ Scan(dest ...any) error }) (*Annotation, error) {
	var (
		ann        Annotation
		imageID    sql.NullInt64
		createdRaw string
	)
	if err := scanner.Scan(
		&ann.ID,
		&ann.UserID,
		&imageID,
		&ann.ImageFilename,
		&ann.AudioFilename,
		&ann.Name,
		&ann.SessionID,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if imageID.Valid {
		value := imageID.Int64
		ann.ImageID = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		ann.CreatedAt = created
	}
	return &ann, nil
}

func collectAnnotations(rows *sql.Rows) ([]*Annotation, error) {
	var annotations []*Annotation
	for rows.Next() {
		ann, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, ann)
	}
	return annotations, rows.Err()
}
