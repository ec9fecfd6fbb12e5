package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

const DefaultPageSize = 20

// Service serves catalog reads through the cache and keeps per-session
// browse state so a filter-term change always lands on page 1.
type Service struct {
	repo   RepoInterface
	cache  ProductCache
	logger *zap.Logger
	sfg    singleflight.Group // prevents cache stampede

	mu       sync.Mutex
	browsing map[string]*browseState
}

type browseState struct {
	term string
	page int
}

func NewService(repo RepoInterface, cache ProductCache, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		browsing: make(map[string]*browseState),
	}
}

// Products returns the full catalog, cache first. Cache failures degrade
// to the repository and are only logged.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(catalogKey, func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("catalog cache get failed", zap.Error(err))
		}

		products, err = s.repo.ListProducts(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), products); errSet != nil {
				s.logger.Warn("catalog cache set failed", zap.Error(errSet))
			}
		}()

		return products, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}

func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

// Browse filters and paginates the catalog for one session. When the
// search term differs from the session's previous term the page resets to
// 1, regardless of the requested page: a page number kept from an older,
// larger result set must never survive a filter change.
func (s *Service) Browse(ctx context.Context, sessionID, term string, page, size int) (Page, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return Page{}, err
	}

	s.mu.Lock()
	state, ok := s.browsing[sessionID]
	if !ok {
		state = &browseState{page: 1}
		s.browsing[sessionID] = state
	}
	if term != state.term {
		state.term = term
		state.page = 1
	} else if page > 0 {
		state.page = page
	}
	current := state.page
	s.mu.Unlock()

	result := Paginate(Filter(products, term), current, size)

	// Paginate clamps out-of-range pages; keep the session in step.
	s.mu.Lock()
	state.page = result.Number
	s.mu.Unlock()

	return result, nil
}

// EndSession drops the browse state for a session.
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.browsing, sessionID)
	s.mu.Unlock()
}
