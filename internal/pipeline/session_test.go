package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yassinema02/vestiaire-sub000/internal/services"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

type fakeUploader struct {
	mu      sync.Mutex
	failAll bool
	cleaned [][]string
}

func (f *fakeUploader) UploadBatch(userID uuid.UUID, photos []services.PhotoUpload, progress services.UploadProgressFunc) ([]string, error) {
	if f.failAll {
		return nil, fmt.Errorf("storage unavailable")
	}
	urls := make([]string, len(photos))
	for i := range photos {
		urls[i] = fmt.Sprintf("https://cdn.test/wardrobe/%s/extractions/%d.jpg", userID, i)
	}
	if progress != nil {
		progress(services.UploadProgress{Total: len(photos), Processed: len(photos), Succeeded: len(photos)})
	}
	return urls, nil
}

func (f *fakeUploader) Cleanup(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, urls)
}

func (f *fakeUploader) cleanups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cleaned)
}

// fakeExtraction builds one detected item per photo unless configured
// otherwise. Photos listed in failPhotos come back with an error until
// healFailuresOnRetry clears them.
type fakeExtraction struct {
	mu                  sync.Mutex
	zeroItems           bool
	confidences         map[int]int
	failPhotos          map[int]bool
	healFailuresOnRetry bool
	lastURLs            []string
	jobs                []*models.ExtractionJob
	runCalls            int
	retryCalls          int
	blockDetection      chan struct{}
	detectionReturned   chan struct{}
}

func (f *fakeExtraction) CreateJob(userID uuid.UUID, photoURLs []string) (*models.ExtractionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &models.ExtractionJob{
		UserID:      userID,
		Status:      models.ExtractionJobStatusPending,
		PhotoURLs:   photoURLs,
		TotalPhotos: len(photoURLs),
	}
	job.ID = uuid.New()
	f.jobs = append(f.jobs, job)
	f.lastURLs = photoURLs
	return job, nil
}

func (f *fakeExtraction) RunDetection(ctx context.Context, jobID uuid.UUID, progress services.DetectionProgressFunc) (*models.DetectionResult, error) {
	f.mu.Lock()
	f.runCalls++
	block := f.blockDetection
	returned := f.detectionReturned
	urls := f.lastURLs
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	result := f.buildResult(urls)
	if progress != nil {
		progress(services.DetectionProgress{
			Total:         len(urls),
			Processed:     len(urls),
			ItemsDetected: result.TotalItemsDetected,
			FailedPhotos:  result.FailedPhotos,
		})
	}
	if returned != nil {
		defer close(returned)
	}
	return result, nil
}

func (f *fakeExtraction) RetryFailedPhotos(ctx context.Context, jobID uuid.UUID, progress services.DetectionProgressFunc) (*models.DetectionResult, error) {
	f.mu.Lock()
	f.retryCalls++
	if f.healFailuresOnRetry {
		f.failPhotos = nil
	}
	urls := f.lastURLs
	f.mu.Unlock()
	return f.buildResult(urls), nil
}

func (f *fakeExtraction) buildResult(urls []string) *models.DetectionResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := &models.DetectionResult{Photos: make([]models.PhotoDetectionResult, 0, len(urls))}
	for i, url := range urls {
		photo := models.PhotoDetectionResult{
			PhotoURL:      url,
			PhotoIndex:    i,
			DetectedItems: []models.DetectedItem{},
		}
		switch {
		case f.failPhotos[i]:
			msg := "model timeout"
			photo.Error = &msg
			result.FailedPhotos++
		case !f.zeroItems:
			confidence := 90
			if c, ok := f.confidences[i]; ok {
				confidence = c
			}
			photo.DetectedItems = append(photo.DetectedItems, models.DetectedItem{
				Category:    "Tops",
				SubCategory: "T-Shirt",
				Colors:      []string{"Black"},
				Style:       "Casual",
				Material:    "Cotton",
				Position:    "Center",
				Confidence:  confidence,
				PhotoIndex:  i,
				PhotoURL:    url,
			})
			result.TotalItemsDetected++
		}
		result.Photos = append(result.Photos, photo)
	}
	return result
}

func (f *fakeExtraction) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runCalls
}

func (f *fakeExtraction) retryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.retryCalls
}

func (f *fakeExtraction) jobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

type fakeRemoval struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRemoval) ProcessItems(ctx context.Context, userID uuid.UUID, items []models.DetectedItem, progress services.RemovalProgressFunc) []models.ProcessedDetectedItem {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	processed := make([]models.ProcessedDetectedItem, 0, len(items))
	succeeded := 0
	skipped := 0
	for _, item := range items {
		result := models.ProcessedDetectedItem{DetectedItem: item}
		if item.Confidence < services.RemovalConfidenceThreshold {
			result.BGRemovalStatus = models.BGRemovalSkipped
			skipped++
		} else {
			url := fmt.Sprintf("https://cdn.test/wardrobe/%s/processed/%d.png", userID, item.PhotoIndex)
			result.BGRemovalStatus = models.BGRemovalSuccess
			result.ProcessedImageURL = &url
			succeeded++
		}
		processed = append(processed, result)
	}
	if progress != nil {
		progress(services.RemovalProgress{Total: len(items), Processed: len(items), Succeeded: succeeded, Skipped: skipped})
	}
	return processed
}

func (f *fakeRemoval) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeImporter struct {
	mu        sync.Mutex
	calls     int
	lastItems []models.ReviewableItem
}

func (f *fakeImporter) ImportSelected(userID uuid.UUID, jobID *uuid.UUID, items []models.ReviewableItem) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastItems = items
	added := 0
	for _, item := range items {
		if item.IsSelected {
			added++
		}
	}
	return added
}

type fakeWardrobeLister struct {
	items []models.WardrobeItem
}

func (f *fakeWardrobeLister) GetAllForUser(userID uuid.UUID) ([]models.WardrobeItem, error) {
	return f.items, nil
}

type fakePipelineNotifier struct {
	mu        sync.Mutex
	completed int
	failed    int
	imported  int
}

func (f *fakePipelineNotifier) ExtractionCompleted(userID, jobID uuid.UUID, itemsDetected int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed++
}

func (f *fakePipelineNotifier) ExtractionFailed(userID, jobID uuid.UUID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
}

func (f *fakePipelineNotifier) ImportCompleted(userID, jobID uuid.UUID, added int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported++
}

func (f *fakePipelineNotifier) counts() (completed, failed, imported int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed, f.failed, f.imported
}

type sessionFixture struct {
	uploader   *fakeUploader
	extraction *fakeExtraction
	removal    *fakeRemoval
	importer   *fakeImporter
	wardrobe   *fakeWardrobeLister
	notifier   *fakePipelineNotifier
}

func newTestSession() (*Session, *sessionFixture) {
	f := &sessionFixture{
		uploader:   &fakeUploader{},
		extraction: &fakeExtraction{},
		removal:    &fakeRemoval{},
		importer:   &fakeImporter{},
		wardrobe:   &fakeWardrobeLister{},
		notifier:   &fakePipelineNotifier{},
	}
	session := NewSession(uuid.New(), Deps{
		Uploader:   f.uploader,
		Extraction: f.extraction,
		Removal:    f.removal,
		Importer:   f.importer,
		Wardrobe:   f.wardrobe,
		Notifier:   f.notifier,
	})
	return session, f
}

func testPhotos(n int) []services.PhotoUpload {
	photos := make([]services.PhotoUpload, n)
	for i := range photos {
		photos[i] = services.PhotoUpload{Filename: fmt.Sprintf("%d.jpg", i), Data: []byte("jpeg bytes")}
	}
	return photos
}

func waitFor(t *testing.T, s *Session, describe string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snapshot := s.Snapshot()
		if cond(snapshot) {
			return snapshot
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("session never reached %s, stuck in %q", describe, s.Snapshot().State)
	return Snapshot{}
}

func waitForState(t *testing.T, s *Session, want State) Snapshot {
	t.Helper()
	return waitFor(t, s, string(want), func(snap Snapshot) bool { return snap.State == want })
}

func waitForRetryHold(t *testing.T, s *Session) Snapshot {
	t.Helper()
	return waitFor(t, s, "retry hold", func(snap Snapshot) bool { return snap.AwaitingRetry })
}

func TestStartValidation(t *testing.T) {
	session, _ := newTestSession()

	if err := session.Start(nil); err == nil {
		t.Error("empty selection accepted")
	}
	if err := session.Start(testPhotos(services.MaxBatchPhotos + 1)); err == nil {
		t.Error("oversized selection accepted")
	}
	if got := session.Snapshot().State; got != StateSelection {
		t.Errorf("state = %q after rejected starts, expected selection", got)
	}
}

func TestPipelineHappyPath(t *testing.T) {
	session, f := newTestSession()

	if err := session.Start(testPhotos(10)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForState(t, session, StateReviewing)

	if snapshot.ItemsDetected != 10 {
		t.Errorf("items detected = %d, expected 10", snapshot.ItemsDetected)
	}
	if snapshot.FailedPhotos != 0 {
		t.Errorf("failed photos = %d, expected 0", snapshot.FailedPhotos)
	}
	if snapshot.ReviewTotal != 10 || snapshot.ReviewSelected != 10 {
		t.Errorf("review = %d selected of %d, expected all 10 selected", snapshot.ReviewSelected, snapshot.ReviewTotal)
	}
	if snapshot.Progress.Detection.Processed != 10 {
		t.Errorf("detection progress processed = %d", snapshot.Progress.Detection.Processed)
	}
	if snapshot.Progress.Removal.Succeeded != 10 {
		t.Errorf("removal progress succeeded = %d", snapshot.Progress.Removal.Succeeded)
	}
	if f.extraction.jobCount() != 1 {
		t.Errorf("created %d jobs, expected 1", f.extraction.jobCount())
	}

	items, err := session.Review()
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	for i, item := range items {
		if item.Index != i {
			t.Errorf("item %d has index %d", i, item.Index)
		}
		if !item.IsSelected {
			t.Errorf("item %d not selected despite confidence 90", i)
		}
	}
}

func TestStartReentrancyGuard(t *testing.T) {
	session, f := newTestSession()
	f.extraction.blockDetection = make(chan struct{})

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateDetecting)

	if err := session.Start(testPhotos(2)); !errors.Is(err, ErrPipelineActive) {
		t.Errorf("second Start returned %v, expected ErrPipelineActive", err)
	}
	if f.extraction.jobCount() != 1 {
		t.Errorf("second Start created a job")
	}

	close(f.extraction.blockDetection)
	waitForState(t, session, StateReviewing)

	if err := session.Start(testPhotos(2)); !errors.Is(err, ErrPipelineActive) {
		t.Errorf("Start during review returned %v, expected ErrPipelineActive", err)
	}

	session.Reset()
	if err := session.Start(testPhotos(2)); err != nil {
		t.Errorf("Start after Reset failed: %v", err)
	}
}

func TestUploadFailureFailsBeforeAnyJob(t *testing.T) {
	session, f := newTestSession()
	f.uploader.failAll = true

	if err := session.Start(testPhotos(3)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForState(t, session, StateFailed)

	if snapshot.JobID != nil {
		t.Error("failed upload still produced a job reference")
	}
	if f.extraction.jobCount() != 0 {
		t.Errorf("job store received %d creates, expected 0", f.extraction.jobCount())
	}
	if snapshot.Error == "" {
		t.Error("failed state carries no error message")
	}
}

func TestZeroItemsCompletesWithoutRemoval(t *testing.T) {
	session, f := newTestSession()
	f.extraction.zeroItems = true

	if err := session.Start(testPhotos(4)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForState(t, session, StateCompleted)

	if snapshot.ItemsDetected != 0 {
		t.Errorf("items detected = %d, expected 0", snapshot.ItemsDetected)
	}
	if f.removal.callCount() != 0 {
		t.Errorf("background removal ran %d times for an empty result", f.removal.callCount())
	}
	if f.uploader.cleanups() != 1 {
		t.Errorf("uploads cleaned %d times, expected 1", f.uploader.cleanups())
	}
}

func TestPartialFailureHoldsForRetryDecision(t *testing.T) {
	session, f := newTestSession()
	f.extraction.failPhotos = map[int]bool{1: true}

	if err := session.Start(testPhotos(3)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForRetryHold(t, session)

	if snapshot.State != StateDetecting {
		t.Errorf("hold state = %q, expected detecting", snapshot.State)
	}
	if snapshot.FailedPhotos != 1 || snapshot.ItemsDetected != 2 {
		t.Errorf("hold counts = %d failed / %d items, expected 1 / 2", snapshot.FailedPhotos, snapshot.ItemsDetected)
	}
	if f.removal.callCount() != 0 {
		t.Error("background removal started before the retry decision")
	}
}

func TestRetryHealsFailuresAndProceeds(t *testing.T) {
	session, f := newTestSession()
	f.extraction.failPhotos = map[int]bool{0: true, 2: true}
	f.extraction.healFailuresOnRetry = true

	if err := session.Start(testPhotos(3)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForRetryHold(t, session)

	if err := session.Retry(); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	snapshot := waitForState(t, session, StateReviewing)

	if snapshot.FailedPhotos != 0 {
		t.Errorf("failed photos = %d after healing retry", snapshot.FailedPhotos)
	}
	if snapshot.ItemsDetected != 3 {
		t.Errorf("items detected = %d, expected 3", snapshot.ItemsDetected)
	}
	if snapshot.RetryCount != 1 {
		t.Errorf("retry count = %d, expected 1", snapshot.RetryCount)
	}
	if f.extraction.retryCount() != 1 {
		t.Errorf("retry invoked %d times, expected 1", f.extraction.retryCount())
	}
}

func TestRetryCapThirdAttemptIsNoOp(t *testing.T) {
	session, f := newTestSession()
	f.extraction.failPhotos = map[int]bool{1: true} // never heals

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForRetryHold(t, session)

	for attempt := 1; attempt <= MaxDetectionRetries; attempt++ {
		if err := session.Retry(); err != nil {
			t.Fatalf("retry %d failed: %v", attempt, err)
		}
		snapshot := waitForRetryHold(t, session)
		if snapshot.RetryCount != attempt {
			t.Errorf("retry count = %d after attempt %d", snapshot.RetryCount, attempt)
		}
	}

	before := session.Snapshot()
	if err := session.Retry(); !errors.Is(err, ErrRetryLimit) {
		t.Fatalf("third retry returned %v, expected ErrRetryLimit", err)
	}
	after := session.Snapshot()

	if f.extraction.retryCount() != MaxDetectionRetries {
		t.Errorf("detection retried %d times, expected %d", f.extraction.retryCount(), MaxDetectionRetries)
	}
	if after.State != before.State || after.RetryCount != before.RetryCount || !after.AwaitingRetry {
		t.Errorf("third retry changed state: before %+v, after %+v", before, after)
	}
}

func TestSkipFailedProceedsWithSuccesses(t *testing.T) {
	session, f := newTestSession()
	f.extraction.failPhotos = map[int]bool{0: true}

	if err := session.Start(testPhotos(3)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForRetryHold(t, session)

	if err := session.SkipFailed(); err != nil {
		t.Fatalf("SkipFailed failed: %v", err)
	}
	snapshot := waitForState(t, session, StateReviewing)

	if snapshot.ReviewTotal != 2 {
		t.Errorf("review total = %d, expected the 2 successful photos' items", snapshot.ReviewTotal)
	}
	if snapshot.FailedPhotos != 1 {
		t.Errorf("failed photos = %d, count should survive the skip", snapshot.FailedPhotos)
	}
	if f.extraction.retryCount() != 0 {
		t.Error("skip triggered a detection retry")
	}
}

func TestSkipWithAllPhotosFailedCompletesEmpty(t *testing.T) {
	session, f := newTestSession()
	f.extraction.failPhotos = map[int]bool{0: true, 1: true}

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForRetryHold(t, session)

	if err := session.SkipFailed(); err != nil {
		t.Fatalf("SkipFailed failed: %v", err)
	}
	snapshot := waitForState(t, session, StateCompleted)

	if snapshot.ReviewTotal != 0 {
		t.Errorf("review total = %d, expected 0", snapshot.ReviewTotal)
	}
	if f.removal.callCount() != 0 {
		t.Error("background removal ran with nothing detected")
	}
}

func TestRetryAndSkipRequireAHold(t *testing.T) {
	session, _ := newTestSession()

	if err := session.Retry(); !errors.Is(err, ErrNoRetryableFailure) {
		t.Errorf("Retry in selection returned %v", err)
	}
	if err := session.SkipFailed(); !errors.Is(err, ErrNoRetryableFailure) {
		t.Errorf("SkipFailed in selection returned %v", err)
	}
}

func TestLowConfidenceItemDeselectedAndSkipped(t *testing.T) {
	session, f := newTestSession()
	f.extraction.confidences = map[int]int{0: 40}

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateReviewing)

	items, err := session.Review()
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	low := items[0]
	if low.IsSelected {
		t.Error("confidence 40 item is selected")
	}
	if !low.NeedsReview {
		t.Error("confidence 40 item not flagged for review")
	}
	if low.BGRemovalStatus != models.BGRemovalSkipped {
		t.Errorf("confidence 40 item removal status = %q, expected skipped", low.BGRemovalStatus)
	}
	high := items[1]
	if !high.IsSelected || high.BGRemovalStatus != models.BGRemovalSuccess {
		t.Errorf("confidence 90 item = selected %v, status %q", high.IsSelected, high.BGRemovalStatus)
	}
}

func TestResetDropsStaleCompletion(t *testing.T) {
	session, f := newTestSession()
	f.extraction.blockDetection = make(chan struct{})
	f.extraction.detectionReturned = make(chan struct{})

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateDetecting)

	session.Reset()
	close(f.extraction.blockDetection)
	<-f.extraction.detectionReturned
	time.Sleep(30 * time.Millisecond)

	snapshot := session.Snapshot()
	if snapshot.State != StateSelection {
		t.Errorf("stale detection moved session to %q", snapshot.State)
	}
	if snapshot.ReviewTotal != 0 || snapshot.ItemsDetected != 0 {
		t.Errorf("stale result leaked into the new session: %+v", snapshot)
	}
	if f.removal.callCount() != 0 {
		t.Error("stale run continued into background removal after reset")
	}
}

func TestBackgroundedCompletionNotifiesOnce(t *testing.T) {
	session, f := newTestSession()

	session.Background()
	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForState(t, session, StateReviewing)

	if !snapshot.CompletionPending {
		t.Error("completion pending flag not set")
	}
	completed, _, _ := f.notifier.counts()
	if completed != 1 {
		t.Errorf("completion notified %d times, expected 1", completed)
	}

	if !session.Foreground() {
		t.Error("Foreground did not report the pending completion")
	}
	if session.Foreground() {
		t.Error("second Foreground still reported a pending completion")
	}
	completed, _, _ = f.notifier.counts()
	if completed != 1 {
		t.Errorf("completion notified %d times after foreground, expected 1", completed)
	}
}

func TestForegroundCompletionDoesNotNotify(t *testing.T) {
	session, f := newTestSession()

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snapshot := waitForState(t, session, StateReviewing)

	if snapshot.CompletionPending {
		t.Error("completion pending set while foregrounded")
	}
	completed, failed, _ := f.notifier.counts()
	if completed != 0 || failed != 0 {
		t.Errorf("foreground completion notified: %d completed, %d failed", completed, failed)
	}
}

func TestImportCommitsSelectedAndCompletes(t *testing.T) {
	session, f := newTestSession()
	f.extraction.confidences = map[int]int{2: 40} // third item auto-deselected

	if err := session.Start(testPhotos(3)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateReviewing)

	added, err := session.Import()
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if added != 2 {
		t.Errorf("imported %d items, expected 2", added)
	}

	snapshot := session.Snapshot()
	if snapshot.State != StateCompleted {
		t.Errorf("state = %q after import, expected completed", snapshot.State)
	}
	if snapshot.ItemsAdded != 2 {
		t.Errorf("items added = %d", snapshot.ItemsAdded)
	}
	_, _, imported := f.notifier.counts()
	if imported != 1 {
		t.Errorf("import notified %d times, expected 1", imported)
	}
	if len(f.importer.lastItems) != 3 {
		t.Errorf("importer received %d items, expected the full review set of 3", len(f.importer.lastItems))
	}
}

func TestReviewEditsReachTheImporter(t *testing.T) {
	session, f := newTestSession()

	if err := session.Start(testPhotos(2)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateReviewing)

	name := "Favorite Tee"
	category := "Outerwear"
	if _, err := session.EditItem(0, ReviewEdits{Name: &name, Category: &category}); err != nil {
		t.Fatalf("EditItem failed: %v", err)
	}
	if _, err := session.ToggleItem(1); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	added, err := session.Import()
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if added != 1 {
		t.Errorf("imported %d items, expected 1 after deselecting the second", added)
	}

	got := f.importer.lastItems[0]
	if got.EditedName == nil || *got.EditedName != name {
		t.Error("edited name did not reach the importer")
	}
	if got.EditedCategory == nil || *got.EditedCategory != category {
		t.Error("edited category did not reach the importer")
	}
	if got.EditedSubCategory != nil {
		t.Error("unedited sub-category arrived as an edit")
	}
	if f.importer.lastItems[1].IsSelected {
		t.Error("toggled item still selected at import")
	}
}

func TestReviewActionsOutsideReviewing(t *testing.T) {
	session, _ := newTestSession()

	if _, err := session.Review(); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("Review returned %v", err)
	}
	if _, err := session.ToggleItem(0); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("ToggleItem returned %v", err)
	}
	if _, err := session.EditItem(0, ReviewEdits{}); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("EditItem returned %v", err)
	}
	if err := session.SelectAll(true); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("SelectAll returned %v", err)
	}
	if _, err := session.Import(); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("Import returned %v", err)
	}
}

func TestDuplicateEnrichmentFromWardrobe(t *testing.T) {
	session, f := newTestSession()
	existing := models.WardrobeItem{
		UserID:      uuid.New(),
		Name:        "Black tee",
		Category:    "tops",
		SubCategory: "T-Shirt",
		Colors:      []string{"Black"},
	}
	existing.ID = uuid.New()
	f.wardrobe.items = []models.WardrobeItem{existing}

	if err := session.Start(testPhotos(1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, session, StateReviewing)

	items, err := session.Review()
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	dup := items[0].DuplicateOf
	if dup == nil {
		t.Fatal("no duplicate match against an identical wardrobe item")
	}
	if dup.ItemID != existing.ID || dup.Name != "Black tee" {
		t.Errorf("duplicate match = %+v", dup)
	}
	if dup.Score != 100 {
		t.Errorf("duplicate score = %d, expected 100 for category+color+sub-category", dup.Score)
	}
}
