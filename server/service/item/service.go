// Package item handles lost and found report submissions: image intake,
// persistence, and triggering the matching pipeline.
package item

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lithammer/shortuuid/v4"

	matcherrors "github.com/SurinderTech/findify-finder/internal/errors"
	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/store"
)

// MaxImageDimension bounds stored images; larger uploads are downscaled
// preserving aspect ratio.
const MaxImageDimension = 1024

// jpegQuality is the re-encode quality for stored images.
const jpegQuality = 85

// PlaceholderImageURL is the legacy marker clients render when a report
// has no image. Submissions never write it; a failed upload fails the
// submission instead.
const PlaceholderImageURL = "/placeholder.svg"

// ItemStore is the subset of the entity store the service uses.
type ItemStore interface {
	CreateItem(ctx context.Context, create *store.Item) (*store.Item, error)
	GetItem(ctx context.Context, find *store.FindItem) (*store.Item, error)
	ListItems(ctx context.Context, find *store.FindItem) ([]*store.Item, error)
}

// Matcher runs the matching pipeline for a freshly created item.
type Matcher interface {
	RunForItem(ctx context.Context, itemID int32) ([]matching.ScoredCandidate, error)
}

// SubmitRequest is a new lost or found report.
type SubmitRequest struct {
	OwnerID      int32
	Title        string
	Description  string
	Category     string
	Status       store.ItemStatus
	Location     string
	DateReported int64

	// Image is the optional photo of the item. ImageFilename names it.
	Image         io.Reader
	ImageFilename string
}

// Service manages item reports.
type Service struct {
	store   ItemStore
	blobs   BlobStorage
	matcher Matcher
	logger  *slog.Logger
}

// NewService creates an item service. matcher may be nil when matching
// is handled elsewhere (e.g. by the feature runner only).
func NewService(s ItemStore, blobs BlobStorage, matcher Matcher) *Service {
	return &Service{
		store:   s,
		blobs:   blobs,
		matcher: matcher,
		logger:  slog.Default(),
	}
}

// Submit validates and persists a report, then runs matching for it.
// A failed image upload fails the whole submission. A failed matching
// run does not: matching is a background enhancement and its errors are
// only logged.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*store.Item, error) {
	if req.Title == "" {
		return nil, matcherrors.InvalidArgument("title is required")
	}
	if req.Status != store.ItemStatusLost && req.Status != store.ItemStatusFound {
		return nil, matcherrors.InvalidArgument(
			fmt.Sprintf("status must be %s or %s", store.ItemStatusLost, store.ItemStatusFound))
	}

	imageURL := ""
	if req.Image != nil {
		url, err := s.storeImage(ctx, req)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	dateReported := req.DateReported
	if dateReported == 0 {
		dateReported = time.Now().Unix()
	}

	item, err := s.store.CreateItem(ctx, &store.Item{
		UID:          shortuuid.New(),
		OwnerID:      req.OwnerID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       req.Status,
		Location:     req.Location,
		DateReported: dateReported,
		ImageURL:     imageURL,
	})
	if err != nil {
		return nil, matcherrors.PersistenceFailed("failed to create item", err)
	}

	if s.matcher != nil {
		if _, err := s.matcher.RunForItem(ctx, item.ID); err != nil {
			s.logger.Error("matching run failed after submission",
				"item_id", item.ID, "error", err)
		}
	}
	return item, nil
}

// GetItem returns a single item by id, or nil when it does not exist.
func (s *Service) GetItem(ctx context.Context, id int32) (*store.Item, error) {
	return s.store.GetItem(ctx, &store.FindItem{ID: &id})
}

// ListByStatus lists items with the given status.
func (s *Service) ListByStatus(ctx context.Context, status store.ItemStatus) ([]*store.Item, error) {
	return s.store.ListItems(ctx, &store.FindItem{Status: &status})
}

// ListByOwner lists a user's items.
func (s *Service) ListByOwner(ctx context.Context, ownerID int32) ([]*store.Item, error) {
	return s.store.ListItems(ctx, &store.FindItem{OwnerID: &ownerID})
}

// storeImage decodes, downscales, and stores the submitted photo.
func (s *Service) storeImage(ctx context.Context, req *SubmitRequest) (string, error) {
	img, err := imaging.Decode(req.Image, imaging.AutoOrientation(true))
	if err != nil {
		return "", matcherrors.UploadFailed("failed to decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxImageDimension || bounds.Dy() > MaxImageDimension {
		img = imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", matcherrors.UploadFailed("failed to encode image", err)
	}

	filename := fmt.Sprintf("%s.jpg", shortuuid.New())
	if req.ImageFilename != "" {
		filename = fmt.Sprintf("%s_%s.jpg", shortuuid.New(), sanitizeFilename(req.ImageFilename))
	}

	url, err := s.blobs.Store(ctx, filename, buf.Bytes())
	if err != nil {
		return "", matcherrors.UploadFailed("failed to store image", err)
	}
	return url, nil
}

// sanitizeFilename keeps only characters safe for every filesystem.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
