package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// ItemDetector finds clothing items in one photo. Available reports
// whether the backing model is configured; detection is never attempted
// through an unavailable detector.
type ItemDetector interface {
	Available() bool
	DetectItems(ctx context.Context, photoURL string, photoIndex int) ([]models.DetectedItem, error)
}

// ExtractionJobStore is the job persistence surface the extraction
// pipeline needs. *repo.ExtractionJobRepository satisfies it.
type ExtractionJobStore interface {
	Create(job *models.ExtractionJob) error
	GetByID(id uuid.UUID) (*models.ExtractionJob, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	MarkProcessing(id uuid.UUID) error
	MarkCompleted(id uuid.UUID, result *models.DetectionResult, processedPhotos int) error
	MarkFailed(id uuid.UUID, message string) error
}

// DetectionProgress carries running counts for one detection tick.
type DetectionProgress struct {
	Total         int `json:"total"`
	Processed     int `json:"processed"`
	ItemsDetected int `json:"items_detected"`
	FailedPhotos  int `json:"failed_photos"`
}

// DetectionProgressFunc receives progress ticks during detection.
type DetectionProgressFunc func(DetectionProgress)

// ExtractionService runs the per-photo detection stage of an extraction
// job. Photos are processed strictly in order, one at a time, and the job
// row is updated after every photo so partial progress survives a crash.
type ExtractionService struct {
	jobs     ExtractionJobStore
	detector ItemDetector
}

// NewExtractionService creates a new extraction service
func NewExtractionService(jobs ExtractionJobStore, detector ItemDetector) *ExtractionService {
	return &ExtractionService{jobs: jobs, detector: detector}
}

// CreateJob creates a pending extraction job for an uploaded photo batch
func (s *ExtractionService) CreateJob(userID uuid.UUID, photoURLs []string) (*models.ExtractionJob, error) {
	if len(photoURLs) == 0 {
		return nil, fmt.Errorf("no photos to process")
	}
	if len(photoURLs) > MaxBatchPhotos {
		return nil, fmt.Errorf("photo batch exceeds the maximum of %d photos", MaxBatchPhotos)
	}

	job := &models.ExtractionJob{
		UserID:      userID,
		Status:      models.ExtractionJobStatusPending,
		PhotoURLs:   photoURLs,
		TotalPhotos: len(photoURLs),
	}
	if err := s.jobs.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create extraction job: %w", err)
	}
	return job, nil
}

// RunDetection processes every photo of a job through the vision model.
// One photo failing records an error on that photo's result and
// continues; the job still completes with the aggregate. Only bootstrap
// failures, a missing job or an unconfigured detector, fail the job as a
// whole.
func (s *ExtractionService) RunDetection(ctx context.Context, jobID uuid.UUID, progress DetectionProgressFunc) (*models.DetectionResult, error) {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if !s.detector.Available() {
		msg := "vision service not configured"
		if err := s.jobs.MarkFailed(job.ID, msg); err != nil {
			log.Error().Str("job_id", job.ID.String()).Err(err).Msg("Failed to mark job failed")
		}
		return nil, fmt.Errorf("%s", msg)
	}

	if err := s.jobs.MarkProcessing(job.ID); err != nil {
		return nil, fmt.Errorf("failed to start job: %w", err)
	}

	result := &models.DetectionResult{
		Photos: make([]models.PhotoDetectionResult, 0, len(job.PhotoURLs)),
	}

	for i, photoURL := range job.PhotoURLs {
		if progress != nil {
			progress(DetectionProgress{
				Total:         len(job.PhotoURLs),
				Processed:     i,
				ItemsDetected: result.TotalItemsDetected,
				FailedPhotos:  result.FailedPhotos,
			})
		}

		result.Photos = append(result.Photos, s.detectOnePhoto(ctx, photoURL, i))
		recountDetection(result)
		s.saveProgress(job.ID, result, i+1)
	}

	if progress != nil {
		progress(DetectionProgress{
			Total:         len(job.PhotoURLs),
			Processed:     len(job.PhotoURLs),
			ItemsDetected: result.TotalItemsDetected,
			FailedPhotos:  result.FailedPhotos,
		})
	}

	if err := s.jobs.MarkCompleted(job.ID, result, len(job.PhotoURLs)); err != nil {
		return nil, fmt.Errorf("failed to complete job: %w", err)
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Int("photos", len(job.PhotoURLs)).
		Int("items_detected", result.TotalItemsDetected).
		Int("failed_photos", result.FailedPhotos).
		Msg("Detection completed")

	return result, nil
}

// RetryFailedPhotos re-runs detection for only the photos that errored in
// a previous run, leaving successful photo results untouched. A job with
// no failed photos is a no-op returning the existing result.
func (s *ExtractionService) RetryFailedPhotos(ctx context.Context, jobID uuid.UUID, progress DetectionProgressFunc) (*models.DetectionResult, error) {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if job.DetectedItems == nil {
		return nil, fmt.Errorf("job has no detection result to retry")
	}
	if !s.detector.Available() {
		return nil, fmt.Errorf("vision service not configured")
	}

	result := job.DetectedItems
	failedIndexes := make([]int, 0)
	for i, photo := range result.Photos {
		if photo.Error != nil {
			failedIndexes = append(failedIndexes, i)
		}
	}
	if len(failedIndexes) == 0 {
		return result, nil
	}

	if err := s.jobs.UpdateFields(job.ID, map[string]interface{}{
		"status": models.ExtractionJobStatusProcessing,
	}); err != nil {
		return nil, fmt.Errorf("failed to restart job: %w", err)
	}

	for n, index := range failedIndexes {
		if progress != nil {
			progress(DetectionProgress{
				Total:         len(failedIndexes),
				Processed:     n,
				ItemsDetected: result.TotalItemsDetected,
				FailedPhotos:  result.FailedPhotos,
			})
		}

		result.Photos[index] = s.detectOnePhoto(ctx, result.Photos[index].PhotoURL, index)
		recountDetection(result)
		s.saveProgress(job.ID, result, job.TotalPhotos)
	}

	if progress != nil {
		progress(DetectionProgress{
			Total:         len(failedIndexes),
			Processed:     len(failedIndexes),
			ItemsDetected: result.TotalItemsDetected,
			FailedPhotos:  result.FailedPhotos,
		})
	}

	if err := s.jobs.MarkCompleted(job.ID, result, job.TotalPhotos); err != nil {
		return nil, fmt.Errorf("failed to complete job: %w", err)
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Int("retried", len(failedIndexes)).
		Int("still_failed", result.FailedPhotos).
		Msg("Failed photo retry completed")

	return result, nil
}

// detectOnePhoto runs detection for a single photo, converting any error
// into the photo result's error field
func (s *ExtractionService) detectOnePhoto(ctx context.Context, photoURL string, index int) models.PhotoDetectionResult {
	photoResult := models.PhotoDetectionResult{
		PhotoURL:      photoURL,
		PhotoIndex:    index,
		DetectedItems: []models.DetectedItem{},
	}

	items, err := s.detector.DetectItems(ctx, photoURL, index)
	if err != nil {
		msg := err.Error()
		photoResult.Error = &msg
		log.Warn().
			Int("photo_index", index).
			Err(err).
			Msg("Photo detection failed")
		return photoResult
	}

	photoResult.DetectedItems = items
	return photoResult
}

func (s *ExtractionService) saveProgress(jobID uuid.UUID, result *models.DetectionResult, processed int) {
	err := s.jobs.UpdateFields(jobID, map[string]interface{}{
		"processed_photos": processed,
		"detected_items":   result,
	})
	if err != nil {
		log.Warn().Str("job_id", jobID.String()).Err(err).Msg("Failed to save detection progress")
	}
}

func recountDetection(result *models.DetectionResult) {
	total := 0
	failed := 0
	for _, photo := range result.Photos {
		total += len(photo.DetectedItems)
		if photo.Error != nil {
			failed++
		}
	}
	result.TotalItemsDetected = total
	result.FailedPhotos = failed
}
