// Package storage provides S3 storage integration.
package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	backgroundPrefix = "backgrounds/"
	collagePrefix    = "collages/"
	listingCacheKey  = "backgrounds"
)

// ErrNoBackgrounds is returned when the bucket holds no background images.
var ErrNoBackgrounds = errors.New("no background images available")

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// S3Client wraps S3 operations for collage backgrounds and outputs.
type S3Client struct {
	client        S3ClientInterface
	bucket        string
	cloudfrontURL string
	listings      *cache.Cache
}

// NewS3Client creates a new S3Client. Background listings are cached for listingTTL.
func NewS3Client(client S3ClientInterface, bucket string, cloudfrontURL string, listingTTL time.Duration) *S3Client {
	return &S3Client{
		client:        client,
		bucket:        bucket,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
		listings:      cache.New(listingTTL, 2*listingTTL),
	}
}

// ListBackgrounds returns the background image keys, sorted.
func (c *S3Client) ListBackgrounds() ([]string, error) {
	if cached, ok := c.listings.Get(listingCacheKey); ok {
		return cached.([]string), nil
	}

	keys, err := c.client.ListObjects(backgroundPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list background images: %w", err)
	}

	images := make([]string, 0, len(keys))
	for _, key := range keys {
		if isImageKey(key) {
			images = append(images, key)
		}
	}
	sort.Strings(images)

	c.listings.SetDefault(listingCacheKey, images)
	return images, nil
}

// GetBackground returns the raw bytes of one background image.
func (c *S3Client) GetBackground(key string) ([]byte, error) {
	if !strings.HasPrefix(key, backgroundPrefix) {
		key = backgroundPrefix + key
	}

	data, err := c.client.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get background image: %w", err)
	}
	return data, nil
}

// GetRandomBackground returns the raw bytes of a randomly chosen background image.
func (c *S3Client) GetRandomBackground() ([]byte, error) {
	keys, err := c.ListBackgrounds()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return nil, ErrNoBackgrounds
	}

	return c.GetBackground(keys[rand.Intn(len(keys))])
}

// UploadCollage uploads an encoded PNG collage and returns its CloudFront URL.
func (c *S3Client) UploadCollage(data []byte) (string, error) {
	key := collagePrefix + uuid.New().String() + ".png"

	if err := c.client.PutObject(key, data); err != nil {
		return "", fmt.Errorf("failed to upload collage: %w", err)
	}

	return fmt.Sprintf("%s/%s", c.cloudfrontURL, key), nil
}

// isImageKey skips folder markers and non-image objects.
func isImageKey(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
