// Package timeline merges a repository's commits, pull requests and issues
// into one time-ordered sequence and accumulates it across pages.
package timeline

import (
	"context"

	"github.com/google/go-github/v75/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TNTKien/repo-timeline/internal/models"
)

// Upstream lists one page of each collection. The bool result reports
// whether the collection has a further page.
type Upstream interface {
	ListCommits(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.RepositoryCommit, bool, error)
	ListPullRequests(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.PullRequest, bool, error)
	ListIssues(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.Issue, bool, error)
}

// Fetcher produces one timeline snapshot per request.
type Fetcher interface {
	FetchPage(ctx context.Context, req models.PageRequest) (*models.Snapshot, error)
}

// Service is the stateless aggregation service.
type Service struct {
	upstream Upstream
	log      *zap.SugaredLogger
}

func NewService(upstream Upstream, log *zap.SugaredLogger) *Service {
	return &Service{upstream: upstream, log: log}
}

// FetchPage fetches the collections selected by req.Filter concurrently and
// merges them. Any upstream failure fails the whole page.
func (s *Service) FetchPage(ctx context.Context, req models.PageRequest) (*models.Snapshot, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		commits []*github.RepositoryCommit
		pulls   []*github.PullRequest
		issues  []*github.Issue

		commitsNext, pullsNext, issuesNext bool
	)

	g, gctx := errgroup.WithContext(ctx)
	if req.Filter.Includes(models.KindCommit) {
		g.Go(func() error {
			var err error
			commits, commitsNext, err = s.upstream.ListCommits(gctx, req.Repository, req.Page, req.PerPage)
			return err
		})
	}
	if req.Filter.Includes(models.KindPullRequest) {
		g.Go(func() error {
			var err error
			pulls, pullsNext, err = s.upstream.ListPullRequests(gctx, req.Repository, req.Page, req.PerPage)
			return err
		})
	}
	if req.Filter.Includes(models.KindIssue) {
		g.Go(func() error {
			var err error
			issues, issuesNext, err = s.upstream.ListIssues(gctx, req.Repository, req.Page, req.PerPage)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if !models.IsUpstream(err) {
			err = &models.UpstreamError{Detail: err.Error(), Err: err}
		}
		return nil, err
	}

	items := normalize(commits, pulls, issues)
	SortByCreatedDesc(items)

	snapshot := &models.Snapshot{
		Repository: req.Repository,
		Items:      items,
		Pagination: models.Pagination{
			Page:        req.Page,
			PerPage:     req.PerPage,
			HasNextPage: commitsNext || pullsNext || issuesNext,
		},
	}

	s.log.Debugw("timeline page fetched",
		"owner", req.Repository.Owner,
		"repo", req.Repository.Name,
		"page", req.Page,
		"filter", req.Filter,
		"items", len(items),
		"has_next_page", snapshot.Pagination.HasNextPage,
	)

	return snapshot, nil
}
