package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrImageNotFound is returned by an ImageRepository when no image matches a lookup.
	ErrImageNotFound = errors.New("image not found")
)

// ImageRecord represents one uploaded image and its editorial metadata.
// ID is the only stable cross-reference key; URL may change on re-upload.
type ImageRecord struct {
	ID               string
	URL              string
	StoragePath      string
	FileName         string
	Caption          string
	Credit           string
	AltText          string
	LinkedArticleIDs []string
	UploadedBy       string
	UploadedByName   string
	CreatedAt        time.Time
	LastUsedAt       time.Time
}

// HasURL reports whether the record points at fetchable image bytes.
func (r *ImageRecord) HasURL() bool {
	return r != nil && strings.TrimSpace(r.URL) != ""
}

// Project returns the render-safe subset of the record.
func (r *ImageRecord) Project() *ImageProjection {
	if r == nil {
		return nil
	}
	return &ImageProjection{
		ID:          r.ID,
		URL:         r.URL,
		Caption:     r.Caption,
		Credit:      r.Credit,
		AltText:     r.AltText,
		StoragePath: r.StoragePath,
	}
}

// ImageProjection is the subset of an ImageRecord that may reach markup or API output.
type ImageProjection struct {
	ID          string
	URL         string
	Caption     string
	Credit      string
	AltText     string
	StoragePath string
}

// ImageLookup is the memoized outcome of an image lookup.
// The zero value is NotFound.
type ImageLookup struct {
	record *ImageRecord
}

// Found wraps a located record.
func Found(record *ImageRecord) ImageLookup {
	return ImageLookup{record: record}
}

// NotFound marks a lookup confirmed to have no matching image.
func NotFound() ImageLookup {
	return ImageLookup{}
}

// IsFound reports whether the lookup located a record.
func (l ImageLookup) IsFound() bool {
	return l.record != nil
}

// Record returns the located record, or nil for NotFound.
func (l ImageLookup) Record() *ImageRecord {
	return l.record
}

type ImageRepository interface {
	// GetImage retrieves an image by id, returning ErrImageNotFound when absent
	GetImage(ctx context.Context, id string) (*ImageRecord, error)

	// FindImageByURL returns the first image whose url equals url
	FindImageByURL(ctx context.Context, url string) (*ImageRecord, error)

	// FindImageLinkedToArticle returns one image linked to the article
	FindImageLinkedToArticle(ctx context.Context, articleID string) (*ImageRecord, error)

	// ListImagesLinkedToArticle returns every image linked to the article
	ListImagesLinkedToArticle(ctx context.Context, articleID string) ([]*ImageRecord, error)

	// SaveImage upserts an image record and replaces its article links
	SaveImage(ctx context.Context, img *ImageRecord) error
}
