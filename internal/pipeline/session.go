package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/internal/services"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// State is a pipeline session's current phase.
type State string

const (
	StateSelection          State = "selection"
	StateUploading          State = "uploading"
	StateDetecting          State = "detecting"
	StateRemovingBackground State = "removing_backgrounds"
	StateReviewing          State = "reviewing"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// MaxDetectionRetries caps how many times failed photos may be retried
// within one pipeline run.
const MaxDetectionRetries = 2

var (
	// ErrPipelineActive is returned when a batch is started while an
	// earlier one is still running or awaiting review.
	ErrPipelineActive = errors.New("a photo batch is already being processed")

	// ErrRetryLimit is returned when the retry cap is exhausted. The
	// session state is left unchanged and no model calls are made.
	ErrRetryLimit = errors.New("retry limit reached")

	// ErrNoRetryableFailure is returned for retry or skip requests when
	// the session is not holding on a partial detection failure.
	ErrNoRetryableFailure = errors.New("no failed photos to retry")

	// ErrNotReviewing is returned for review actions outside the
	// reviewing state.
	ErrNotReviewing = errors.New("no review in progress")
)

// BatchUploader uploads a photo batch to storage and disposes of
// uploads nothing ended up referencing.
type BatchUploader interface {
	UploadBatch(userID uuid.UUID, photos []services.PhotoUpload, progress services.UploadProgressFunc) ([]string, error)
	Cleanup(urls []string)
}

// DetectionRunner creates extraction jobs and runs the detection stage
// over them.
type DetectionRunner interface {
	CreateJob(userID uuid.UUID, photoURLs []string) (*models.ExtractionJob, error)
	RunDetection(ctx context.Context, jobID uuid.UUID, progress services.DetectionProgressFunc) (*models.DetectionResult, error)
	RetryFailedPhotos(ctx context.Context, jobID uuid.UUID, progress services.DetectionProgressFunc) (*models.DetectionResult, error)
}

// RemovalRunner runs detected items through background removal.
type RemovalRunner interface {
	ProcessItems(ctx context.Context, userID uuid.UUID, items []models.DetectedItem, progress services.RemovalProgressFunc) []models.ProcessedDetectedItem
}

// ReviewImporter commits a review set's selected items to the wardrobe.
type ReviewImporter interface {
	ImportSelected(userID uuid.UUID, jobID *uuid.UUID, items []models.ReviewableItem) int
}

// WardrobeLister supplies the existing inventory for duplicate matching.
type WardrobeLister interface {
	GetAllForUser(userID uuid.UUID) ([]models.WardrobeItem, error)
}

// CompletionNotifier records pipeline outcome notifications.
type CompletionNotifier interface {
	ExtractionCompleted(userID, jobID uuid.UUID, itemsDetected int)
	ExtractionFailed(userID, jobID uuid.UUID, reason string)
	ImportCompleted(userID, jobID uuid.UUID, added int)
}

// Deps bundles the collaborators a pipeline session drives. Wardrobe
// and Notifier may be nil; duplicate enrichment and notifications are
// then skipped.
type Deps struct {
	Uploader   BatchUploader
	Extraction DetectionRunner
	Removal    RemovalRunner
	Importer   ReviewImporter
	Wardrobe   WardrobeLister
	Notifier   CompletionNotifier
}

// Progress aggregates the per-stage running counts for the snapshot.
type Progress struct {
	Upload    services.UploadProgress    `json:"upload"`
	Detection services.DetectionProgress `json:"detection"`
	Removal   services.RemovalProgress   `json:"removal"`
}

// Snapshot is a point-in-time view of a session, safe to serialize.
type Snapshot struct {
	State             State      `json:"state"`
	JobID             *uuid.UUID `json:"job_id,omitempty"`
	Progress          Progress   `json:"progress"`
	ItemsDetected     int        `json:"items_detected"`
	FailedPhotos      int        `json:"failed_photos"`
	AwaitingRetry     bool       `json:"awaiting_retry"`
	RetryCount        int        `json:"retry_count"`
	RetriesRemaining  int        `json:"retries_remaining"`
	Backgrounded      bool       `json:"backgrounded"`
	CompletionPending bool       `json:"completion_pending"`
	ReviewTotal       int        `json:"review_total"`
	ReviewSelected    int        `json:"review_selected"`
	ItemsAdded        int        `json:"items_added"`
	Error             string     `json:"error,omitempty"`
}

// Session drives one user's extraction pipeline from photo selection
// through review to import. Stages run sequentially in a background
// goroutine; the session itself only ever holds its lock for in-memory
// mutation, never across a network call.
//
// Every session carries an epoch, bumped by Reset. Background work
// captures the epoch it was started under and re-checks it before each
// state write, so a stage that resolves after a reset cannot write into
// the next run's state.
type Session struct {
	mu   sync.Mutex
	deps Deps

	userID uuid.UUID
	epoch  int

	state         State
	jobID         *uuid.UUID
	photoURLs     []string
	result        *models.DetectionResult
	review        *reviewSet
	progress      Progress
	retryCount    int
	awaitingRetry bool

	backgrounded      bool
	completionPending bool

	itemsAdded   int
	errorMessage string
}

// NewSession creates an idle session for one user.
func NewSession(userID uuid.UUID, deps Deps) *Session {
	return &Session{
		userID: userID,
		deps:   deps,
		state:  StateSelection,
	}
}

// Start begins processing a photo batch. It validates the selection,
// moves the session to uploading and returns immediately; the pipeline
// continues in the background. Starting while a run is active is
// rejected without touching the active run, and a finished run must be
// Reset before a new batch starts.
func (s *Session) Start(photos []services.PhotoUpload) error {
	if len(photos) == 0 {
		return fmt.Errorf("no photos selected")
	}
	if len(photos) > services.MaxBatchPhotos {
		return fmt.Errorf("photo batch exceeds the maximum of %d photos", services.MaxBatchPhotos)
	}

	s.mu.Lock()
	if s.state != StateSelection {
		s.mu.Unlock()
		return ErrPipelineActive
	}
	s.state = StateUploading
	epoch := s.epoch
	s.mu.Unlock()

	go s.run(context.Background(), epoch, photos)

	log.Info().
		Str("user_id", s.userID.String()).
		Int("photos", len(photos)).
		Msg("Extraction pipeline started")
	return nil
}

// run carries one batch from upload through detection and hands off to
// the post-detection continuation.
func (s *Session) run(ctx context.Context, epoch int, photos []services.PhotoUpload) {
	urls, err := s.deps.Uploader.UploadBatch(s.userID, photos, func(p services.UploadProgress) {
		s.guarded(epoch, func() { s.progress.Upload = p })
	})
	if err != nil {
		s.fail(epoch, fmt.Sprintf("photo upload failed: %v", err))
		return
	}
	if len(urls) == 0 {
		s.fail(epoch, "none of the photos could be uploaded")
		return
	}
	if !s.stillCurrent(epoch) {
		// The session was reset mid-upload. Nothing references these
		// objects, so release them.
		s.deps.Uploader.Cleanup(urls)
		return
	}

	job, err := s.deps.Extraction.CreateJob(s.userID, urls)
	if err != nil {
		s.deps.Uploader.Cleanup(urls)
		s.fail(epoch, fmt.Sprintf("could not create extraction job: %v", err))
		return
	}

	jobID := job.ID
	ok := s.guarded(epoch, func() {
		s.jobID = &jobID
		s.photoURLs = urls
		s.state = StateDetecting
	})
	if !ok {
		return
	}

	result, err := s.deps.Extraction.RunDetection(ctx, jobID, func(p services.DetectionProgress) {
		s.guarded(epoch, func() { s.progress.Detection = p })
	})
	if err != nil {
		s.fail(epoch, fmt.Sprintf("item detection failed: %v", err))
		return
	}

	s.afterDetection(ctx, epoch, result)
}

// afterDetection records a detection result and either holds for a
// retry decision or continues the pipeline. Detection ending with
// failed photos pauses the run so the user can retry the failures or
// skip them; a clean result advances automatically.
func (s *Session) afterDetection(ctx context.Context, epoch int, result *models.DetectionResult) {
	hold := false
	ok := s.guarded(epoch, func() {
		s.result = result
		if result.FailedPhotos > 0 {
			s.awaitingRetry = true
			hold = true
		}
	})
	if !ok {
		return
	}
	if hold {
		log.Info().
			Str("user_id", s.userID.String()).
			Int("failed_photos", result.FailedPhotos).
			Int("items_detected", result.TotalItemsDetected).
			Msg("Detection finished with failures, awaiting retry decision")
		return
	}
	s.continueAfterDetection(ctx, epoch, result)
}

// continueAfterDetection runs the stages that follow a detection result
// the user is not retrying: background removal and review
// materialization, or straight to completed when nothing was detected.
func (s *Session) continueAfterDetection(ctx context.Context, epoch int, result *models.DetectionResult) {
	items := flattenDetectedItems(result)
	if len(items) == 0 {
		s.cleanupUploads(epoch)
		s.finishProcessing(epoch, StateCompleted, 0)
		return
	}

	if !s.guarded(epoch, func() { s.state = StateRemovingBackground }) {
		return
	}

	processed := s.deps.Removal.ProcessItems(ctx, s.userID, items, func(p services.RemovalProgress) {
		s.guarded(epoch, func() { s.progress.Removal = p })
	})
	if !s.stillCurrent(epoch) {
		return
	}

	review := newReviewSet(processed, s.loadWardrobe())
	if !s.guarded(epoch, func() { s.review = review }) {
		return
	}
	s.finishProcessing(epoch, StateReviewing, result.TotalItemsDetected)
}

// Retry re-runs detection for the photos that failed. Only valid while
// the session is holding on a partial failure, and capped at
// MaxDetectionRetries per run; a request beyond the cap changes nothing
// and triggers no model calls.
func (s *Session) Retry() error {
	s.mu.Lock()
	if s.state != StateDetecting || !s.awaitingRetry {
		s.mu.Unlock()
		return ErrNoRetryableFailure
	}
	if s.retryCount >= MaxDetectionRetries {
		s.mu.Unlock()
		return ErrRetryLimit
	}
	s.retryCount++
	s.awaitingRetry = false
	epoch := s.epoch
	jobID := *s.jobID
	attempt := s.retryCount
	s.mu.Unlock()

	log.Info().
		Str("user_id", s.userID.String()).
		Str("job_id", jobID.String()).
		Int("attempt", attempt).
		Msg("Retrying failed photos")

	go func() {
		ctx := context.Background()
		result, err := s.deps.Extraction.RetryFailedPhotos(ctx, jobID, func(p services.DetectionProgress) {
			s.guarded(epoch, func() { s.progress.Detection = p })
		})
		if err != nil {
			s.fail(epoch, fmt.Sprintf("retry failed: %v", err))
			return
		}
		s.afterDetection(ctx, epoch, result)
	}()
	return nil
}

// SkipFailed abandons the failed photos and continues the pipeline with
// whatever detection succeeded.
func (s *Session) SkipFailed() error {
	s.mu.Lock()
	if s.state != StateDetecting || !s.awaitingRetry {
		s.mu.Unlock()
		return ErrNoRetryableFailure
	}
	s.awaitingRetry = false
	epoch := s.epoch
	result := s.result
	s.mu.Unlock()

	log.Info().
		Str("user_id", s.userID.String()).
		Int("failed_photos", result.FailedPhotos).
		Msg("Skipping failed photos")

	go s.continueAfterDetection(context.Background(), epoch, result)
	return nil
}

// Review returns a copy of the current review set.
func (s *Session) Review() ([]models.ReviewableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.review == nil {
		return nil, ErrNotReviewing
	}
	return s.review.Items(), nil
}

// ToggleItem flips one reviewable item's selection.
func (s *Session) ToggleItem(index int) (models.ReviewableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.review == nil {
		return models.ReviewableItem{}, ErrNotReviewing
	}
	return s.review.Toggle(index)
}

// SelectAll sets every reviewable item's selection flag.
func (s *Session) SelectAll(selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.review == nil {
		return ErrNotReviewing
	}
	s.review.SelectAll(selected)
	return nil
}

// EditItem applies field overrides to one reviewable item.
func (s *Session) EditItem(index int, edits ReviewEdits) (models.ReviewableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.review == nil {
		return models.ReviewableItem{}, ErrNotReviewing
	}
	return s.review.Edit(index, edits)
}

// Import commits the selected review items to the wardrobe and moves
// the session to completed. The returned count is the number of items
// actually created.
func (s *Session) Import() (int, error) {
	s.mu.Lock()
	if s.state != StateReviewing || s.review == nil {
		s.mu.Unlock()
		return 0, ErrNotReviewing
	}
	epoch := s.epoch
	items := s.review.Items()
	jobID := s.jobID
	s.mu.Unlock()

	added := s.deps.Importer.ImportSelected(s.userID, jobID, items)

	ok := s.guarded(epoch, func() {
		s.itemsAdded = added
		s.state = StateCompleted
	})
	if ok && added > 0 && s.deps.Notifier != nil && jobID != nil {
		s.deps.Notifier.ImportCompleted(s.userID, *jobID, added)
	}
	return added, nil
}

// Background marks the session as running without the user watching.
func (s *Session) Background() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounded = true
}

// Foreground clears the backgrounded flag and reports whether a
// completion fired while the user was away. The pending flag is
// consumed, so the completion is surfaced at most once.
func (s *Session) Foreground() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounded = false
	pending := s.completionPending
	s.completionPending = false
	return pending
}

// Reset returns the session to its initial state so a new batch can
// start. This is the only way out of completed and failed. The epoch
// bump makes any still-running background work from the old run a
// no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.state = StateSelection
	s.jobID = nil
	s.photoURLs = nil
	s.result = nil
	s.review = nil
	s.progress = Progress{}
	s.retryCount = 0
	s.awaitingRetry = false
	s.backgrounded = false
	s.completionPending = false
	s.itemsAdded = 0
	s.errorMessage = ""
}

// Snapshot returns a serializable view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		State:             s.state,
		JobID:             s.jobID,
		Progress:          s.progress,
		AwaitingRetry:     s.awaitingRetry,
		RetryCount:        s.retryCount,
		RetriesRemaining:  MaxDetectionRetries - s.retryCount,
		Backgrounded:      s.backgrounded,
		CompletionPending: s.completionPending,
		ItemsAdded:        s.itemsAdded,
		Error:             s.errorMessage,
	}
	if s.result != nil {
		snapshot.ItemsDetected = s.result.TotalItemsDetected
		snapshot.FailedPhotos = s.result.FailedPhotos
	}
	if s.review != nil {
		snapshot.ReviewTotal = s.review.Len()
		snapshot.ReviewSelected = s.review.SelectedCount()
	}
	return snapshot
}

// guarded runs fn under the lock only when the session is still on the
// given epoch. Stale background work from before a Reset is dropped
// here.
func (s *Session) guarded(epoch int, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	fn()
	return true
}

func (s *Session) stillCurrent(epoch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// fail moves the session to failed and records the message. If the run
// fails while backgrounded, a failure notification is recorded once.
func (s *Session) fail(epoch int, message string) {
	notify := false
	var jobID *uuid.UUID
	ok := s.guarded(epoch, func() {
		s.state = StateFailed
		s.errorMessage = message
		s.awaitingRetry = false
		if s.backgrounded && !s.completionPending {
			s.completionPending = true
			notify = true
		}
		jobID = s.jobID
	})
	if !ok {
		return
	}

	log.Error().
		Str("user_id", s.userID.String()).
		Str("error", message).
		Msg("Extraction pipeline failed")

	if notify && s.deps.Notifier != nil && jobID != nil {
		s.deps.Notifier.ExtractionFailed(s.userID, *jobID, message)
	}
}

// finishProcessing moves the session to its post-processing state and
// records the completion notification when the user is away. The
// completionPending flag keeps the notification to exactly one per run.
func (s *Session) finishProcessing(epoch int, state State, itemsDetected int) {
	notify := false
	var jobID *uuid.UUID
	ok := s.guarded(epoch, func() {
		s.state = state
		if s.backgrounded && !s.completionPending {
			s.completionPending = true
			notify = true
		}
		jobID = s.jobID
	})
	if !ok {
		return
	}

	log.Info().
		Str("user_id", s.userID.String()).
		Str("state", string(state)).
		Int("items_detected", itemsDetected).
		Msg("Extraction pipeline processing finished")

	if notify && s.deps.Notifier != nil && jobID != nil {
		s.deps.Notifier.ExtractionCompleted(s.userID, *jobID, itemsDetected)
	}
}

// cleanupUploads releases the batch's uploaded photos. Used only when
// the run ends with nothing referencing them.
func (s *Session) cleanupUploads(epoch int) {
	var urls []string
	s.guarded(epoch, func() {
		urls = s.photoURLs
	})
	if len(urls) > 0 {
		s.deps.Uploader.Cleanup(urls)
	}
}

// loadWardrobe fetches the user's inventory for duplicate matching.
// Failures only cost the duplicate badges, never the pipeline.
func (s *Session) loadWardrobe() []models.WardrobeItem {
	if s.deps.Wardrobe == nil {
		return nil
	}
	wardrobe, err := s.deps.Wardrobe.GetAllForUser(s.userID)
	if err != nil {
		log.Warn().
			Str("user_id", s.userID.String()).
			Err(err).
			Msg("Could not load wardrobe for duplicate matching")
		return nil
	}
	return wardrobe
}

// flattenDetectedItems collects every photo's items in photo-index
// order, preserving detection order within a photo.
func flattenDetectedItems(result *models.DetectionResult) []models.DetectedItem {
	items := make([]models.DetectedItem, 0, result.TotalItemsDetected)
	for _, photo := range result.Photos {
		items = append(items, photo.DetectedItems...)
	}
	return items
}

// Manager hands out one pipeline session per user.
type Manager struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Session returns the user's pipeline session, creating an idle one on
// first use.
func (m *Manager) Session(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		session = NewSession(userID, m.deps)
		m.sessions[userID] = session
	}
	return session
}
