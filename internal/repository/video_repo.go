package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"videovoyage/internal/model"
)

const videoColumns = `v.id, v.title, v.description, v.filename, v.filepath, v.mime_type,
	        v.size, v.duration, v.thumbnail_path, v.uploaded_by, u.username,
	        v.is_public, v.views, v.created_at, v.updated_at`

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, title, description, filename, filepath, mime_type, size,
		                     duration, thumbnail_path, uploaded_by, is_public, views,
		                     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		v.ID, v.Title, v.Description, v.Filename, v.Filepath, v.MimeType, v.Size,
		v.Duration, v.ThumbnailPath, v.Uploader.ID, v.IsPublic, v.Views,
		v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+`
		 FROM videos v JOIN users u ON u.id = v.uploaded_by
		 WHERE v.id = $1`, id)

	v, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) ListPublic(ctx context.Context) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		 FROM videos v JOIN users u ON u.id = v.uploaded_by
		 WHERE v.is_public
		 ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list public videos: %w", err)
	}
	return collectVideos(rows)
}

// ListVisibleTo returns public videos plus everything owned by ownerID.
func (r *VideoRepository) ListVisibleTo(ctx context.Context, ownerID string) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		 FROM videos v JOIN users u ON u.id = v.uploaded_by
		 WHERE v.is_public OR v.uploaded_by = $1
		 ORDER BY v.created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list visible videos: %w", err)
	}
	return collectVideos(rows)
}

func (r *VideoRepository) ListAll(ctx context.Context) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		 FROM videos v JOIN users u ON u.id = v.uploaded_by
		 ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all videos: %w", err)
	}
	return collectVideos(rows)
}

func (r *VideoRepository) Update(ctx context.Context, v model.Video) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET title = $2, description = $3, is_public = $4, updated_at = $5
		 WHERE id = $1`,
		v.ID, v.Title, v.Description, v.IsPublic, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

// IncrementViews deliberately leaves updated_at untouched: a view is a read
// side effect, not a metadata mutation.
func (r *VideoRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func scanVideo(row pgx.Row) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Filename, &v.Filepath,
		&v.MimeType, &v.Size, &v.Duration, &v.ThumbnailPath,
		&v.Uploader.ID, &v.Uploader.Username,
		&v.IsPublic, &v.Views, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
