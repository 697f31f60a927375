package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// StorageService provides object storage for photos and processed images
type StorageService struct {
	s3Client   *s3.S3
	bucket     string
	baseURL    string
	httpClient *http.Client
}

// NewStorageService creates a new storage service from environment
// configuration
func NewStorageService() (*StorageService, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")

	if accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("S3 configuration missing")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("us-east-1"),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey,
			secretKey,
			"",
		),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	baseURL := os.Getenv("S3_PUBLIC_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s", bucket)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   bucket,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Upload stores raw bytes under the given key with public read access and
// returns the public URL
func (s *StorageService) Upload(key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to upload empty object: %s", key)
	}

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s", s.baseURL, key)
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Object uploaded")
	return publicURL, nil
}

// PublicURL returns the public URL for a storage key
func (s *StorageService) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

// KeyFromURL derives the storage key from one of our public URLs. The
// second return is false for URLs outside this bucket.
func (s *StorageService) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Remove deletes the given keys. Individual failures are logged and do
// not stop the remaining deletes; the first error is returned.
func (s *StorageService) Remove(keys []string) error {
	var firstErr error
	for _, key := range keys {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Warn().Str("key", key).Err(err).Msg("Failed to delete object")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete %s: %w", key, err)
			}
			continue
		}
		log.Debug().Str("key", key).Msg("Object deleted")
	}
	return firstErr
}

// Download fetches a photo over HTTP and returns its bytes and content
// type. Used to feed stored photos back into AI calls.
func (s *StorageService) Download(url string) ([]byte, string, error) {
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
