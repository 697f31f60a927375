package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/internal/media"
)

// MaxBatchPhotos caps how many photos one extraction batch may contain.
const MaxBatchPhotos = 50

// PhotoUpload is one photo submitted for extraction.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// UploadProgress carries running counts for one progress tick.
type UploadProgress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// UploadProgressFunc receives progress ticks during a batch upload.
type UploadProgressFunc func(UploadProgress)

// UploadStore is the slice of storage the uploader needs.
type UploadStore interface {
	Upload(key string, data []byte, contentType string) (string, error)
	KeyFromURL(url string) (string, bool)
	Remove(keys []string) error
}

// PhotoUploader stores extraction photos sequentially and reports
// incremental progress.
type PhotoUploader struct {
	storage UploadStore
}

// NewPhotoUploader creates a new photo uploader
func NewPhotoUploader(storage UploadStore) *PhotoUploader {
	return &PhotoUploader{storage: storage}
}

// UploadBatch uploads up to MaxBatchPhotos photos for a user and returns
// the public URLs of the ones that succeeded, in input order. A single
// photo failing is logged and skipped; only an empty or oversized batch
// is an error. The progress callback fires before each photo and once
// more when the batch finishes.
func (u *PhotoUploader) UploadBatch(userID uuid.UUID, photos []PhotoUpload, progress UploadProgressFunc) ([]string, error) {
	if len(photos) == 0 {
		return nil, fmt.Errorf("photo batch is empty")
	}
	if len(photos) > MaxBatchPhotos {
		return nil, fmt.Errorf("photo batch exceeds the maximum of %d photos", MaxBatchPhotos)
	}

	urls := make([]string, 0, len(photos))
	succeeded := 0
	failed := 0

	for i, photo := range photos {
		if progress != nil {
			progress(UploadProgress{
				Total:     len(photos),
				Processed: i,
				Succeeded: succeeded,
				Failed:    failed,
			})
		}

		url, err := u.uploadOne(userID, photo)
		if err != nil {
			log.Warn().
				Str("filename", photo.Filename).
				Int("index", i).
				Err(err).
				Msg("Photo upload failed, skipping")
			failed++
			continue
		}
		urls = append(urls, url)
		succeeded++
	}

	if progress != nil {
		progress(UploadProgress{
			Total:     len(photos),
			Processed: len(photos),
			Succeeded: succeeded,
			Failed:    failed,
		})
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("total", len(photos)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("Photo batch uploaded")

	return urls, nil
}

func (u *PhotoUploader) uploadOne(userID uuid.UUID, photo PhotoUpload) (string, error) {
	if len(photo.Data) == 0 {
		return "", fmt.Errorf("empty photo data")
	}
	if !strings.HasPrefix(http.DetectContentType(photo.Data), "image/") {
		return "", fmt.Errorf("file is not an image")
	}

	optimized, contentType := media.OptimizeForAI(photo.Data)

	key := fmt.Sprintf("wardrobe/%s/extractions/%s%s", userID, uuid.New(), extensionFor(contentType))
	return u.storage.Upload(key, optimized, contentType)
}

// Cleanup deletes uploaded photos once downstream processing no longer
// needs them. Failures are logged only; cleanup never affects the
// pipeline outcome.
func (u *PhotoUploader) Cleanup(urls []string) {
	keys := make([]string, 0, len(urls))
	for _, url := range urls {
		if key, ok := u.storage.KeyFromURL(url); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := u.storage.Remove(keys); err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("Photo cleanup incomplete")
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
