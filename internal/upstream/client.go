// Package upstream binds the three GitHub REST collections the timeline is
// built from: commits, pull requests and issues.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"

	"github.com/TNTKien/repo-timeline/internal/models"
)

const (
	CollectionCommits      = "commits"
	CollectionPullRequests = "pull requests"
	CollectionIssues       = "issues"
)

type Config struct {
	Token   string
	BaseURL string // empty means https://api.github.com/
	Timeout time.Duration
}

// Client lists one page of a repository collection at a time. The bool
// returned by each List method is true when GitHub advertised a next page.
type Client struct {
	gh *github.Client
}

func NewClient(cfg Config) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	gh := github.NewClient(httpClient)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("failed to parse github base url: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh}, nil
}

func (c *Client) ListCommits(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.RepositoryCommit, bool, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	commits, resp, err := c.gh.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, false, wrapError(CollectionCommits, err)
	}
	return commits, hasNextPage(resp), nil
}

// ListPullRequests lists pull requests in every state.
func (c *Client) ListPullRequests(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.PullRequest, bool, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	pulls, resp, err := c.gh.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, false, wrapError(CollectionPullRequests, err)
	}
	return pulls, hasNextPage(resp), nil
}

// ListIssues lists issues in every state. GitHub includes pull requests in
// this listing; filtering them out is left to the caller.
func (c *Client) ListIssues(ctx context.Context, repo models.Repository, page, perPage int) ([]*github.Issue, bool, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	issues, resp, err := c.gh.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, false, wrapError(CollectionIssues, err)
	}
	return issues, hasNextPage(resp), nil
}

func hasNextPage(resp *github.Response) bool {
	return resp != nil && resp.NextPage != 0
}

func wrapError(collection string, err error) error {
	upErr := &models.UpstreamError{
		Collection: collection,
		Detail:     err.Error(),
		Err:        err,
	}

	var rateErr *github.RateLimitError
	var ghErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr):
		if rateErr.Message != "" {
			upErr.Detail = rateErr.Message
		}
		if rateErr.Response != nil {
			upErr.Status = rateErr.Response.StatusCode
		}
	case errors.As(err, &ghErr):
		if ghErr.Message != "" {
			upErr.Detail = ghErr.Message
		}
		if ghErr.Response != nil {
			upErr.Status = ghErr.Response.StatusCode
		}
	}

	return upErr
}
