package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"videovoyage/internal/model"
	"videovoyage/internal/policy"
	"videovoyage/internal/storage"
	"videovoyage/pkg/apierror"
)

const defaultTitle = "Untitled Video"

// VideoRepository is the metadata store for video records.
type VideoRepository interface {
	Create(ctx context.Context, v model.Video) error
	FindByID(ctx context.Context, id string) (model.Video, error)
	ListPublic(ctx context.Context) ([]model.Video, error)
	ListVisibleTo(ctx context.Context, ownerID string) ([]model.Video, error)
	ListAll(ctx context.Context) ([]model.Video, error)
	Update(ctx context.Context, v model.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// BlobStore persists and serves the binary payloads.
type BlobStore interface {
	Stage(reader io.Reader, originalName string) (storage.StagedBlob, error)
	Promote(blob storage.StagedBlob) error
	Discard(blob storage.StagedBlob) error
	Open(filename string) (*os.File, error)
	Remove(filename string) error
}

type VideoService struct {
	videos VideoRepository
	store  BlobStore
}

func NewVideoService(videos VideoRepository, store BlobStore) *VideoService {
	return &VideoService{videos: videos, store: store}
}

// StagedUpload is a binary payload already written to staging but not yet
// committed as a video record.
type StagedUpload struct {
	Blob     storage.StagedBlob
	MimeType string
}

// StageUpload streams the payload to staging storage. The declared MIME type
// is kept when present; otherwise the first bytes are sniffed.
func (s *VideoService) StageUpload(_ context.Context, reader io.Reader, originalName string, declaredMime string) (StagedUpload, error) {
	declaredMime = strings.TrimSpace(declaredMime)

	if declaredMime == "" || strings.EqualFold(declaredMime, "application/octet-stream") {
		sniffBuffer := make([]byte, 512)
		n, readErr := io.ReadFull(reader, sniffBuffer)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			return StagedUpload{}, readErr
		}

		declaredMime = http.DetectContentType(sniffBuffer[:n])
		reader = io.MultiReader(bytes.NewReader(sniffBuffer[:n]), reader)
	}

	blob, err := s.store.Stage(reader, originalName)
	if err != nil {
		return StagedUpload{}, err
	}

	return StagedUpload{Blob: blob, MimeType: declaredMime}, nil
}

// CommitUpload registers the metadata record for a staged payload and then
// promotes the binary to its final name. The staging artifact is cleaned up
// on any failure so a half-committed upload never leaves an orphan.
func (s *VideoService) CommitUpload(ctx context.Context, requester model.Identity, staged StagedUpload, title string, description string, isPublic bool) (model.Video, error) {
	if requester.IsAnonymous() {
		s.DiscardUpload(staged)
		return model.Video{}, model.ErrUnauthorized
	}

	if staged.Blob.Size == 0 {
		s.DiscardUpload(staged)
		return model.Video{}, model.ErrNoVideoFile
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	now := time.Now().UTC()
	video := model.Video{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Filename:    staged.Blob.Filename,
		Filepath:    staged.Blob.Path,
		MimeType:    staged.MimeType,
		Size:        staged.Blob.Size,
		Uploader:    model.Uploader{ID: requester.ID, Username: requester.Username},
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		s.DiscardUpload(staged)
		return model.Video{}, err
	}

	if err := s.store.Promote(staged.Blob); err != nil {
		// Roll back the record so metadata never points at a missing binary.
		if delErr := s.videos.Delete(ctx, video.ID); delErr != nil {
			slog.Error("rollback of video record failed", "video_id", video.ID, "error", delErr)
		}
		s.DiscardUpload(staged)
		return model.Video{}, err
	}

	return video, nil
}

// DiscardUpload drops a staged payload that will not be committed.
func (s *VideoService) DiscardUpload(staged StagedUpload) {
	if err := s.store.Discard(staged.Blob); err != nil {
		slog.Warn("discard staged upload failed", "filename", staged.Blob.Filename, "error", err)
	}
}

// Get returns the video detail and counts the view. The increment does not
// touch updated_at and happens only after the policy check passes.
func (s *VideoService) Get(ctx context.Context, requester model.Identity, id string) (model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, err
	}

	if !policy.CanView(requester, video) {
		return model.Video{}, apierror.New("FORBIDDEN", "Not authorized to access this video", http.StatusForbidden)
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return model.Video{}, err
	}
	video.Views++

	return video, nil
}

// List returns the catalog slice the requester may see, newest first.
func (s *VideoService) List(ctx context.Context, requester model.Identity) ([]model.Video, error) {
	switch policy.ListScope(requester) {
	case policy.ScopeAll:
		return s.videos.ListAll(ctx)
	case policy.ScopePublicOrOwn:
		return s.videos.ListVisibleTo(ctx, requester.ID)
	default:
		return s.videos.ListPublic(ctx)
	}
}

// Update applies a partial patch. An absent field keeps its prior value, as
// does an empty title; updated_at is always refreshed.
func (s *VideoService) Update(ctx context.Context, requester model.Identity, id string, patch model.UpdateVideoRequest) (model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, err
	}

	if !policy.CanModify(requester, video) {
		return model.Video{}, apierror.New("FORBIDDEN", "Not authorized to update this video", http.StatusForbidden)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		video.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		video.Description = *patch.Description
	}
	if patch.IsPublic != nil {
		video.IsPublic = *patch.IsPublic
	}
	video.UpdatedAt = time.Now().UTC()

	if err := s.videos.Update(ctx, video); err != nil {
		return model.Video{}, err
	}

	return video, nil
}

// Delete removes the metadata record and then attempts to unlink the binary.
// Binary removal is best effort: a missing or stubborn file is logged and
// the delete still succeeds, since the record is the source of truth.
func (s *VideoService) Delete(ctx context.Context, requester model.Identity, id string) error {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !policy.CanModify(requester, video) {
		return apierror.New("FORBIDDEN", "Not authorized to delete this video", http.StatusForbidden)
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Remove(video.Filename); err != nil {
		slog.Warn("binary removal failed after delete", "video_id", id, "filename", video.Filename, "error", err)
	}

	return nil
}

// OpenStream resolves the video, authorizes the read, and opens the binary
// for streaming. The size comes from a stat of the open file, not from the
// recorded metadata, so it is accurate at request time.
func (s *VideoService) OpenStream(ctx context.Context, requester model.Identity, id string) (model.Video, *os.File, int64, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, nil, 0, err
	}

	if !policy.CanView(requester, video) {
		return model.Video{}, nil, 0, apierror.New("FORBIDDEN", "Not authorized to access this video", http.StatusForbidden)
	}

	file, err := s.store.Open(video.Filename)
	if err != nil {
		return model.Video{}, nil, 0, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return model.Video{}, nil, 0, err
	}

	return video, file, info.Size(), nil
}
