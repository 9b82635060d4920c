package model

import "time"

// Uploader is the owner reference embedded in video responses. Only the
// username is exposed alongside the id, never the full user record.
type Uploader struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Filename      string    `json:"filename"`
	Filepath      string    `json:"filepath"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	Duration      float64   `json:"duration"`
	ThumbnailPath string    `json:"thumbnail_path"`
	Uploader      Uploader  `json:"uploaded_by"`
	IsPublic      bool      `json:"is_public"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
