package application

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dfryer1193/newsroom/article/domain"
)

var errStoreUnavailable = errors.New("store unavailable")

// stubImageRepository is an in-memory ImageRepository that counts calls and can
// be told to fail individual ids or urls.
type stubImageRepository struct {
	mu        sync.Mutex
	images    []*domain.ImageRecord
	failIDs   map[string]error
	failURLs  map[string]error
	failLinks error
	failList  error
	calls     map[string]int
}

func newStubImageRepository(images ...*domain.ImageRecord) *stubImageRepository {
	return &stubImageRepository{
		images:   images,
		failIDs:  map[string]error{},
		failURLs: map[string]error{},
		calls:    map[string]int{},
	}
}

func (s *stubImageRepository) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *stubImageRepository) record(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
}

func (s *stubImageRepository) GetImage(ctx context.Context, id string) (*domain.ImageRecord, error) {
	s.record("id:" + id)
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	for _, img := range s.images {
		if img.ID == id {
			copied := *img
			return &copied, nil
		}
	}
	return nil, domain.ErrImageNotFound
}

func (s *stubImageRepository) FindImageByURL(ctx context.Context, url string) (*domain.ImageRecord, error) {
	s.record("url:" + url)
	if err := s.failURLs[url]; err != nil {
		return nil, err
	}
	for _, img := range s.images {
		if img.URL == url {
			copied := *img
			return &copied, nil
		}
	}
	return nil, domain.ErrImageNotFound
}

func (s *stubImageRepository) FindImageLinkedToArticle(ctx context.Context, articleID string) (*domain.ImageRecord, error) {
	s.record("article:" + articleID)
	if s.failLinks != nil {
		return nil, s.failLinks
	}
	for _, img := range s.images {
		if slices.Contains(img.LinkedArticleIDs, articleID) {
			copied := *img
			return &copied, nil
		}
	}
	return nil, domain.ErrImageNotFound
}

func (s *stubImageRepository) ListImagesLinkedToArticle(ctx context.Context, articleID string) ([]*domain.ImageRecord, error) {
	s.record("list:" + articleID)
	if s.failList != nil {
		return nil, s.failList
	}
	var linked []*domain.ImageRecord
	for _, img := range s.images {
		if slices.Contains(img.LinkedArticleIDs, articleID) {
			copied := *img
			linked = append(linked, &copied)
		}
	}
	return linked, nil
}

func (s *stubImageRepository) SaveImage(ctx context.Context, img *domain.ImageRecord) error {
	return errors.New("read-only stub")
}

type stubArticleRepository struct {
	articles map[string]*domain.Article
	listErr  error
}

func (s *stubArticleRepository) SaveArticle(ctx context.Context, a *domain.Article) error {
	s.articles[a.ID] = a
	return nil
}

func (s *stubArticleRepository) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	a, ok := s.articles[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return a, nil
}

func (s *stubArticleRepository) ListPublishedArticles(ctx context.Context, limit int, offset int) ([]*domain.Article, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*domain.Article
	for _, a := range s.articles {
		if !a.PublishedAt.IsZero() {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubBlobStore map[string][]byte

func (s stubBlobStore) GetBytes(ctx context.Context, path string) ([]byte, error) {
	b, ok := s[path]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return b, nil
}
