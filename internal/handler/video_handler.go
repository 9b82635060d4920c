package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"videovoyage/internal/middleware"
	"videovoyage/internal/model"
	"videovoyage/internal/service"
	"videovoyage/pkg/apierror"
)

type videoService interface {
	StageUpload(ctx context.Context, reader io.Reader, originalName string, declaredMime string) (service.StagedUpload, error)
	CommitUpload(ctx context.Context, requester model.Identity, staged service.StagedUpload, title string, description string, isPublic bool) (model.Video, error)
	DiscardUpload(staged service.StagedUpload)
	Get(ctx context.Context, requester model.Identity, id string) (model.Video, error)
	List(ctx context.Context, requester model.Identity) ([]model.Video, error)
	Update(ctx context.Context, requester model.Identity, id string, patch model.UpdateVideoRequest) (model.Video, error)
	Delete(ctx context.Context, requester model.Identity, id string) error
	OpenStream(ctx context.Context, requester model.Identity, id string) (model.Video, *os.File, int64, error)
}

type VideoHandler struct {
	service       videoService
	maxUploadSize int64
}

func NewVideoHandler(service videoService, maxUploadSize int64) *VideoHandler {
	return &VideoHandler{service: service, maxUploadSize: maxUploadSize}
}

// Upload accepts a multipart form with a "video" file field plus optional
// title, description and isPublic text fields. The file part is staged as
// soon as it appears so field order in the form does not matter; the record
// is committed once the whole form has been read.
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid multipart body", http.StatusBadRequest))
		return
	}

	var (
		staged      service.StagedUpload
		hasFile     bool
		title       string
		description string
		isPublic    = true
	)

	discard := func() {
		if hasFile {
			h.service.DiscardUpload(staged)
		}
	}

	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			discard()
			if isPayloadTooLarge(nextErr) {
				writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "video exceeds the maximum upload size", http.StatusRequestEntityTooLarge))
				return
			}
			writeError(w, apierror.New("BAD_REQUEST", "invalid multipart stream", http.StatusBadRequest))
			return
		}

		switch part.FormName() {
		case "title":
			title = readFormValue(part)
		case "description":
			description = readFormValue(part)
		case "isPublic":
			isPublic = readFormValue(part) == "true"
		case "video":
			if hasFile || strings.TrimSpace(part.FileName()) == "" {
				_ = part.Close()
				continue
			}

			staged, err = h.service.StageUpload(r.Context(), part, part.FileName(), part.Header.Get("Content-Type"))
			if err != nil {
				_ = part.Close()
				if isPayloadTooLarge(err) {
					writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "video exceeds the maximum upload size", http.StatusRequestEntityTooLarge))
					return
				}
				writeError(w, err)
				return
			}
			hasFile = true
		}
		_ = part.Close()
	}

	if !hasFile {
		writeError(w, model.ErrNoVideoFile)
		return
	}

	video, err := h.service.CommitUpload(r.Context(), identity, staged, title, description, isPublic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.VideoResponse{Success: true, Video: video})
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	videos, err := h.service.List(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VideoListResponse{Success: true, Count: len(videos), Videos: videos})
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	video, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VideoResponse{Success: true, Video: video})
}

func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var patch model.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest))
		return
	}

	video, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VideoResponse{Success: true, Video: video})
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Video removed"})
}

// Stream serves the video bytes, honoring a single byte-range request. The
// total size comes from a stat of the open file at request time. Without a
// Range header the full payload is sent as 200; with one, the exact window
// is sent as 206 with Content-Range/Accept-Ranges headers. Multi-range and
// unsatisfiable requests get 416.
func (h *VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	video, file, size, err := h.service.OpenStream(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	rangeHeader := strings.TrimSpace(r.Header.Get("Range"))
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.Header().Set("Content-Type", video.MimeType)
		w.WriteHeader(http.StatusOK)
		// A failed copy means the client went away or the file vanished
		// mid-read; the status line is already out, nothing to report.
		_, _ = io.Copy(w, file)
		return
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		writeError(w, apierror.New("RANGE_NOT_SATISFIABLE", "Requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable))
		return
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		writeError(w, err)
		return
	}

	chunk := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(chunk, 10))
	w.Header().Set("Content-Type", video.MimeType)
	w.WriteHeader(http.StatusPartialContent)
	_, _ = io.CopyN(w, file, chunk)
}

// parseRange parses "bytes=<start>-[<end>]". The start is required and the
// end defaults to the final byte; an end past the payload is clamped. Only
// single ranges are supported — "bytes=0-10,20-30" is rejected outright
// rather than silently mishandled.
func parseRange(header string, size int64) (int64, int64, bool) {
	if size <= 0 {
		return 0, 0, false
	}

	window, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(window, ",") {
		return 0, 0, false
	}

	startStr, endStr, found := strings.Cut(window, "-")
	if !found {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}

	end := size - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}

	return start, end, true
}

func readFormValue(part io.Reader) string {
	// Form values are tiny; cap the read so a mislabeled part cannot balloon.
	value, _ := io.ReadAll(io.LimitReader(part, 4096))
	return strings.TrimSpace(string(value))
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
