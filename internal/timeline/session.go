package timeline

import (
	"context"
	"sync"

	"github.com/TNTKien/repo-timeline/internal/models"
)

// PageResult is the merged view after one load, plus the number of ids the
// load added to it. Added can be zero on a page past the end of one or more
// collections.
type PageResult struct {
	Timeline *models.Snapshot `json:"timeline"`
	Added    int              `json:"added"`
}

// Session browses one repository. Loads are serialized: a fetch and its
// merge complete before the next load starts. A failed load leaves the
// accumulated view untouched.
type Session struct {
	mu      sync.Mutex
	fetcher Fetcher
	repo    models.Repository
	perPage int
	loaded  bool
	acc     *Accumulator
}

func NewSession(fetcher Fetcher, repo models.Repository, perPage int) *Session {
	if perPage == 0 {
		perPage = models.DefaultPerPage
	}
	return &Session{
		fetcher: fetcher,
		repo:    repo,
		perPage: perPage,
		acc:     NewAccumulator(),
	}
}

func (s *Session) Repository() models.Repository {
	return s.repo
}

// Load fetches page 1 for filter and replaces the view. Changing the
// filter always goes through Load.
func (s *Session) Load(ctx context.Context, filter models.Filter) (*PageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, 1, filter)
}

// LoadMore fetches the page after the latest one for the current filter
// and merges it into the view. Before any Load it behaves like
// Load(ctx, FilterAll).
func (s *Session) LoadMore(ctx context.Context) (*PageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return s.load(ctx, 1, models.FilterAll)
	}
	return s.load(ctx, s.acc.Pagination().Page+1, s.acc.Filter())
}

// View returns the current merged view.
func (s *Session) View() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.acc.View()
	if !s.loaded {
		view.Repository = s.repo
		view.Pagination = models.Pagination{PerPage: s.perPage}
	}
	return view
}

func (s *Session) Filter() models.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Filter()
}

func (s *Session) load(ctx context.Context, page int, filter models.Filter) (*PageResult, error) {
	snapshot, err := s.fetcher.FetchPage(ctx, models.PageRequest{
		Repository: s.repo,
		Page:       page,
		PerPage:    s.perPage,
		Filter:     filter,
	})
	if err != nil {
		return nil, err
	}

	var before map[string]struct{}
	if page != 1 {
		before = s.acc.ids()
	}

	view := s.acc.ApplyPage(snapshot, page, filter)
	s.loaded = true

	added := 0
	for _, item := range view.Items {
		if _, ok := before[item.ID]; !ok {
			added++
		}
	}
	return &PageResult{Timeline: view, Added: added}, nil
}
