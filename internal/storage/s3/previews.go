package s3

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/5w1tchy/books-admin/internal/onboarding"
	"github.com/google/uuid"
)

const (
	PreviewPrefix     = "previews/"
	DefaultPreviewTTL = 15 * time.Minute
)

var previewExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AllowedPreviewType reports whether ct can be shown as a cover preview.
func AllowedPreviewType(ct string) bool {
	_, ok := previewExt[ct]
	return ok
}

// PreviewStore keeps temporary cover previews under previews/<wizard>/.
// Objects are never referenced by a book; they live until released or
// swept.
type PreviewStore struct {
	S3  *S3Client
	TTL time.Duration
	now func() time.Time
}

func NewPreviewStore(c *S3Client, ttl time.Duration) *PreviewStore {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewStore{S3: c, TTL: ttl, now: time.Now}
}

func (p *PreviewStore) Create(ctx context.Context, wizardID string, img onboarding.ImageUpload) (onboarding.Preview, error) {
	ext, ok := previewExt[img.ContentType]
	if !ok {
		return onboarding.Preview{}, fmt.Errorf("unsupported preview type %q", img.ContentType)
	}
	if img.Body == nil || img.Size <= 0 {
		return onboarding.Preview{}, fmt.Errorf("empty preview image")
	}

	key := PreviewPrefix + wizardID + "/" + uuid.NewString() + ext
	if err := p.S3.Upload(ctx, key, img.Body, img.ContentType, img.Size); err != nil {
		return onboarding.Preview{}, err
	}
	url, err := p.S3.DownloadURL(ctx, key, p.TTL)
	if err != nil {
		_ = p.S3.DeleteObject(context.WithoutCancel(ctx), key)
		return onboarding.Preview{}, err
	}
	return onboarding.Preview{Key: key, URL: url, ExpiresAt: p.now().Add(p.TTL).UTC()}, nil
}

func (p *PreviewStore) Release(ctx context.Context, pv onboarding.Preview) error {
	if !strings.HasPrefix(pv.Key, PreviewPrefix) {
		return fmt.Errorf("refusing to release non-preview key %q", pv.Key)
	}
	return p.S3.DeleteObject(ctx, pv.Key)
}

// Sweep deletes previews last modified before now-maxAge and returns how
// many were removed. Individual delete failures are logged and skipped.
func (p *PreviewStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	objs, err := p.S3.List(ctx, PreviewPrefix)
	if err != nil {
		return 0, err
	}
	cutoff := p.now().Add(-maxAge)
	n := 0
	for _, o := range objs {
		if !o.LastModified.Before(cutoff) {
			continue
		}
		if err := p.S3.DeleteObject(ctx, o.Key); err != nil {
			log.Printf("[sweep] %v", err)
			continue
		}
		n++
	}
	return n, nil
}
