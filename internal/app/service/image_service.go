package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sticctape/barkeep-backend/internal/app/model"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/pkg/logger"
)

// MaxImageBytes caps image uploads at 5 MiB.
const MaxImageBytes = 5 << 20

var (
	ErrInvalidImageType = errors.New("content type must be an image")
	ErrImageTooLarge    = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
)

// ObjectStore is the object storage surface the image service needs,
// implemented by storage.S3Storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	ImageURL string
	Filename string
}

type ImageService interface {
	Upload(ctx context.Context, ownerID, bottleID string, body []byte, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, ownerID, bottleID string) error
}

type imageService struct {
	bottleRepo repository.BottleRepository
	store      ObjectStore
}

func NewImageService(bottleRepo repository.BottleRepository, store ObjectStore) ImageService {
	return &imageService{
		bottleRepo: bottleRepo,
		store:      store,
	}
}

func (s *imageService) Upload(ctx context.Context, ownerID, bottleID string, body []byte, contentType string) (*UploadResult, error) {
	bottle, err := s.findOwned(ownerID, bottleID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImageType
	}
	if len(body) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	key := fmt.Sprintf("bottles/%s/%d.%s", bottle.ID, time.Now().UnixMilli(), extensionFor(contentType))

	if err := s.store.Put(ctx, key, body, contentType); err != nil {
		logger.Error("Failed to store image", err, map[string]interface{}{
			"bottle_id": bottleID,
			"key":       key,
		})
		return nil, err
	}

	url := s.store.PublicURL(key)
	if err := s.bottleRepo.UpdateFields(bottleID, map[string]interface{}{"image_url": url}); err != nil {
		return nil, err
	}

	logger.Info("Bottle image uploaded", map[string]interface{}{
		"bottle_id": bottleID,
		"key":       key,
		"size":      len(body),
	})

	return &UploadResult{ImageURL: url, Filename: key}, nil
}

// Delete removes the bottle's stored image. The object delete is
// best-effort: a store failure is logged and the image_url clear still
// proceeds.
func (s *imageService) Delete(ctx context.Context, ownerID, bottleID string) error {
	bottle, err := s.findOwned(ownerID, bottleID)
	if err != nil {
		return err
	}

	if bottle.ImageURL != "" {
		if key := keyFromURL(bottle.ImageURL); key != "" {
			if err := s.store.Delete(ctx, key); err != nil {
				logger.Warn("Failed to delete stored image, clearing URL anyway", map[string]interface{}{
					"bottle_id": bottleID,
					"key":       key,
					"error":     err.Error(),
				})
			}
		}
	}

	return s.bottleRepo.UpdateFields(bottleID, map[string]interface{}{"image_url": ""})
}

func (s *imageService) findOwned(ownerID, bottleID string) (*model.Bottle, error) {
	svc := bottleService{bottleRepo: s.bottleRepo}
	return svc.findOwned(ownerID, bottleID)
}

// extensionFor maps a content type to a file extension, normalizing the
// canonical JPEG subtype to "jpg".
func extensionFor(contentType string) string {
	sub := strings.TrimPrefix(contentType, "image/")
	if sub == "jpeg" {
		sub = "jpg"
	}
	if i := strings.IndexAny(sub, "+;"); i >= 0 {
		sub = sub[:i]
	}
	return sub
}

// keyFromURL recovers the object key from a stored public URL.
func keyFromURL(url string) string {
	if i := strings.Index(url, "/bottles/"); i >= 0 {
		return url[i+1:]
	}
	return ""
}
