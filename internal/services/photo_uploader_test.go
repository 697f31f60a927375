package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// fakeUploadStore records uploads and can refuse every Nth photo.
type fakeUploadStore struct {
	uploads  []string
	removed  []string
	failKeys int
	uploaded int
}

func (f *fakeUploadStore) Upload(key string, data []byte, contentType string) (string, error) {
	f.uploaded++
	if f.failKeys > 0 && f.uploaded%f.failKeys == 0 {
		return "", fmt.Errorf("upload refused")
	}
	f.uploads = append(f.uploads, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeUploadStore) KeyFromURL(url string) (string, bool) {
	const prefix = "https://cdn.test/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (f *fakeUploadStore) Remove(keys []string) error {
	f.removed = append(f.removed, keys...)
	return nil
}

func photoBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode test photo: %v", err)
	}
	return buf.Bytes()
}

func TestUploadBatchValidation(t *testing.T) {
	uploader := NewPhotoUploader(&fakeUploadStore{})

	if _, err := uploader.UploadBatch(uuid.New(), nil, nil); err == nil {
		t.Error("empty batch succeeded, expected error")
	}

	oversized := make([]PhotoUpload, MaxBatchPhotos+1)
	data := photoBytes(t)
	for i := range oversized {
		oversized[i] = PhotoUpload{Filename: fmt.Sprintf("%d.png", i), Data: data}
	}
	if _, err := uploader.UploadBatch(uuid.New(), oversized, nil); err == nil {
		t.Error("oversized batch succeeded, expected error")
	}
}

func TestUploadBatchHappyPath(t *testing.T) {
	store := &fakeUploadStore{}
	uploader := NewPhotoUploader(store)
	userID := uuid.New()
	data := photoBytes(t)

	photos := []PhotoUpload{
		{Filename: "a.png", Data: data},
		{Filename: "b.png", Data: data},
		{Filename: "c.png", Data: data},
	}

	var ticks []UploadProgress
	urls, err := uploader.UploadBatch(userID, photos, func(p UploadProgress) {
		ticks = append(ticks, p)
	})
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}

	if len(urls) != 3 {
		t.Fatalf("got %d urls, expected 3", len(urls))
	}
	for _, key := range store.uploads {
		if !strings.HasPrefix(key, "wardrobe/"+userID.String()+"/extractions/") {
			t.Errorf("upload key %q not under the user's extraction prefix", key)
		}
	}

	if len(ticks) != len(photos)+1 {
		t.Fatalf("progress fired %d times, expected %d", len(ticks), len(photos)+1)
	}
	for i, tick := range ticks {
		if tick.Processed != i {
			t.Errorf("tick %d has processed = %d", i, tick.Processed)
		}
	}
	final := ticks[len(ticks)-1]
	if final.Succeeded != 3 || final.Failed != 0 {
		t.Errorf("final counts = %+v", final)
	}
}

func TestUploadBatchSkipsFailedPhotos(t *testing.T) {
	store := &fakeUploadStore{failKeys: 2} // every 2nd upload fails
	uploader := NewPhotoUploader(store)
	data := photoBytes(t)

	photos := []PhotoUpload{
		{Filename: "a.png", Data: data},
		{Filename: "b.png", Data: data},
		{Filename: "c.png", Data: data},
	}
	urls, err := uploader.UploadBatch(uuid.New(), photos, nil)
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("got %d urls, expected 2 after one failure", len(urls))
	}
}

func TestUploadBatchRejectsNonImages(t *testing.T) {
	store := &fakeUploadStore{}
	uploader := NewPhotoUploader(store)

	photos := []PhotoUpload{
		{Filename: "notes.txt", Data: []byte("plain text, not a photo")},
		{Filename: "real.png", Data: photoBytes(t)},
	}
	urls, err := uploader.UploadBatch(uuid.New(), photos, nil)
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("got %d urls, expected 1 (text file skipped)", len(urls))
	}
	if len(store.uploads) != 1 {
		t.Errorf("store received %d uploads, expected 1", len(store.uploads))
	}
}

func TestCleanupDerivesKeys(t *testing.T) {
	store := &fakeUploadStore{}
	uploader := NewPhotoUploader(store)

	uploader.Cleanup([]string{
		"https://cdn.test/wardrobe/u/extractions/a.jpg",
		"https://elsewhere.example/other.jpg",
		"https://cdn.test/wardrobe/u/extractions/b.jpg",
	})

	if len(store.removed) != 2 {
		t.Fatalf("removed %d keys, expected 2", len(store.removed))
	}
	for _, key := range store.removed {
		if strings.HasPrefix(key, "https://") {
			t.Errorf("cleanup passed a URL %q instead of a key", key)
		}
	}
}
