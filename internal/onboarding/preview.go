package onboarding

import (
	"context"
	"io"
	"time"
)

// Preview is an ephemeral handle to a selected cover image. It is only
// for display and is never used as the book's cover reference.
type Preview struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageUpload is a user-selected image.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PreviewStore creates and releases previews.
type PreviewStore interface {
	Create(ctx context.Context, wizardID string, img ImageUpload) (Preview, error)
	Release(ctx context.Context, p Preview) error
}
