package timeline

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/mock"

	"github.com/TNTKien/repo-timeline/internal/models"
)

type upstreamMock struct{ mock.Mock }

var _ Upstream = (*upstreamMock)(nil)

func (m *upstreamMock) ListCommits(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.RepositoryCommit, bool, error) {
	args := m.Called(ctx, repo, page, perPage)
	var commits []*github.RepositoryCommit
	if args.Get(0) != nil {
		commits = args.Get(0).([]*github.RepositoryCommit)
	}
	return commits, args.Bool(1), args.Error(2)
}

func (m *upstreamMock) ListPullRequests(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.PullRequest, bool, error) {
	args := m.Called(ctx, repo, page, perPage)
	var pulls []*github.PullRequest
	if args.Get(0) != nil {
		pulls = args.Get(0).([]*github.PullRequest)
	}
	return pulls, args.Bool(1), args.Error(2)
}

func (m *upstreamMock) ListIssues(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.Issue, bool, error) {
	args := m.Called(ctx, repo, page, perPage)
	var issues []*github.Issue
	if args.Get(0) != nil {
		issues = args.Get(0).([]*github.Issue)
	}
	return issues, args.Bool(1), args.Error(2)
}

var (
	testRepo = models.Repository{Owner: "octo", Name: "hello"}
	baseTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
)

func at(hours int) time.Time {
	return baseTime.Add(time.Duration(hours) * time.Hour)
}

func ghTime(t time.Time) *github.Timestamp {
	return &github.Timestamp{Time: t}
}

func commit(sha string, t time.Time) *github.RepositoryCommit {
	return &github.RepositoryCommit{
		SHA:     github.Ptr(sha),
		HTMLURL: github.Ptr("https://github.com/octo/hello/commit/" + sha),
		Commit: &github.Commit{
			Message: github.Ptr("commit " + sha + "\n\nlonger body"),
			Author:  &github.CommitAuthor{Date: ghTime(t), Name: github.Ptr("Octo Cat")},
		},
		Author: &github.User{Login: github.Ptr("octocat"), AvatarURL: github.Ptr("https://avatars/octocat")},
	}
}

func pull(id int64, number int, t time.Time) *github.PullRequest {
	return &github.PullRequest{
		ID:        github.Ptr(id),
		Number:    github.Ptr(number),
		Title:     github.Ptr("pull request"),
		HTMLURL:   github.Ptr("https://github.com/octo/hello/pull/1"),
		State:     github.Ptr("closed"),
		CreatedAt: ghTime(t),
		User:      &github.User{Login: github.Ptr("hubot")},
	}
}

func issue(id int64, number int, t time.Time) *github.Issue {
	return &github.Issue{
		ID:        github.Ptr(id),
		Number:    github.Ptr(number),
		Title:     github.Ptr("issue"),
		HTMLURL:   github.Ptr("https://github.com/octo/hello/issues/1"),
		State:     github.Ptr("open"),
		CreatedAt: ghTime(t),
		User:      &github.User{Login: github.Ptr("monalisa")},
	}
}

func prIssue(id int64, number int, t time.Time) *github.Issue {
	i := issue(id, number, t)
	i.PullRequestLinks = &github.PullRequestLinks{URL: github.Ptr("https://api.github.com/repos/octo/hello/pulls/1")}
	return i
}

func item(id string, t time.Time) models.TimelineItem {
	return models.TimelineItem{ID: id, Kind: models.KindCommit, Title: id, CreatedAt: models.NewTimestamp(t)}
}

func itemIDs(items []models.TimelineItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// stubFetcher returns queued snapshots or errors in order.
type stubFetcher struct {
	requests []models.PageRequest
	results  []stubResult
}

type stubResult struct {
	snapshot *models.Snapshot
	err      error
}

func (f *stubFetcher) FetchPage(_ context.Context, req models.PageRequest) (*models.Snapshot, error) {
	f.requests = append(f.requests, req)
	r := f.results[0]
	f.results = f.results[1:]
	return r.snapshot, r.err
}

func snapshotOf(page int, hasNext bool, items ...models.TimelineItem) *models.Snapshot {
	if items == nil {
		items = []models.TimelineItem{}
	}
	return &models.Snapshot{
		Repository: testRepo,
		Items:      items,
		Pagination: models.Pagination{Page: page, PerPage: 30, HasNextPage: hasNext},
	}
}
