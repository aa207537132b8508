package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmadash/internal/model"
	"pharmadash/internal/storage"
)

// Published describes an uploaded export.
type Published struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Publisher uploads exports and hands out presigned download links.
type Publisher struct {
	store  storage.Storage
	expiry time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewPublisher(store storage.Storage, expiry time.Duration, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, expiry: expiry, now: time.Now, logger: logger}
}

// Key builds the object key of an export: exports/<kind>/<kind>-<timestamp>-<random>.xlsx.
func Key(kind model.Kind, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("exports/%s/%s-%s-%s.xlsx", kind, kind, at.UTC().Format("20060102-150405"), suffix)
}

// Publish uploads data and returns a link valid for the configured expiry.
func (p *Publisher) Publish(ctx context.Context, kind model.Kind, data []byte) (*Published, error) {
	now := p.now()
	key := Key(kind, now)

	info, err := p.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: ContentType,
		Metadata:    map[string]string{"kind": string(kind)},
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := p.store.PresignGet(ctx, key, p.expiry)
	if err != nil {
		if derr := p.store.Delete(ctx, key); derr != nil {
			p.logger.Warn("export cleanup failed", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}

	p.logger.Info("export published", zap.String("key", key), zap.Int64("size", info.Size))
	return &Published{
		Key:       key,
		URL:       url,
		Size:      info.Size,
		ExpiresAt: now.Add(p.expiry).UTC(),
	}, nil
}
