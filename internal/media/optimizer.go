// Package media prepares uploaded photos for AI processing.
package media

import (
	"bytes"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const (
	// AITargetWidth is the width photos are downsized to before any
	// vision-model call. Larger images cost more tokens without
	// improving detection.
	AITargetWidth = 1024
	AIJpegQuality = 80

	OptimizedMimeType = "image/jpeg"
)

// OptimizeForAI downsizes a photo to the AI target width and re-encodes
// it as JPEG. Any decode or encode failure degrades gracefully to the
// original bytes with a sniffed mime type, never an error: a too-large
// photo is still usable, just more expensive.
func OptimizeForAI(data []byte) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(data)).Msg("Photo decode failed, using original")
		return data, http.DetectContentType(data)
	}

	if img.Bounds().Dx() > AITargetWidth {
		img = imaging.Resize(img, AITargetWidth, 0, imaging.Lanczos)
	}

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(AIJpegQuality)); err != nil {
		log.Warn().Err(err).Msg("Photo re-encode failed, using original")
		return data, http.DetectContentType(data)
	}
	return buf.Bytes(), OptimizedMimeType
}
