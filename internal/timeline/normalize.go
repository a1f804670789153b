package timeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-github/v75/github"

	"github.com/TNTKien/repo-timeline/internal/models"
)

const unknownAuthor = "unknown"

// commitItem uses the commit hash as id. The title is the first line of the
// message; the time prefers the author date over the committer date.
func commitItem(c *github.RepositoryCommit) models.TimelineItem {
	commit := c.GetCommit()

	created := commit.GetAuthor().GetDate().Time
	if created.IsZero() {
		created = commit.GetCommitter().GetDate().Time
	}

	login := c.GetAuthor().GetLogin()
	if login == "" {
		login = commit.GetAuthor().GetName()
	}
	if login == "" {
		login = unknownAuthor
	}

	return models.TimelineItem{
		ID:        c.GetSHA(),
		Kind:      models.KindCommit,
		Title:     strings.Split(commit.GetMessage(), "\n")[0],
		URL:       c.GetHTMLURL(),
		CreatedAt: models.NewTimestamp(created),
		Author: models.Author{
			Login:     login,
			AvatarURL: c.GetAuthor().GetAvatarURL(),
		},
	}
}

func pullRequestItem(pr *github.PullRequest) models.TimelineItem {
	return models.TimelineItem{
		ID:        fmt.Sprintf("pr-%d", pr.GetID()),
		Kind:      models.KindPullRequest,
		Title:     pr.GetTitle(),
		URL:       pr.GetHTMLURL(),
		CreatedAt: models.NewTimestamp(pr.GetCreatedAt().Time),
		Author:    userAuthor(pr.GetUser()),
		State:     pr.GetState(),
		Number:    pr.GetNumber(),
	}
}

func issueItem(issue *github.Issue) models.TimelineItem {
	return models.TimelineItem{
		ID:        fmt.Sprintf("issue-%d", issue.GetID()),
		Kind:      models.KindIssue,
		Title:     issue.GetTitle(),
		URL:       issue.GetHTMLURL(),
		CreatedAt: models.NewTimestamp(issue.GetCreatedAt().Time),
		Author:    userAuthor(issue.GetUser()),
		State:     issue.GetState(),
		Number:    issue.GetNumber(),
	}
}

func userAuthor(u *github.User) models.Author {
	login := u.GetLogin()
	if login == "" {
		login = unknownAuthor
	}
	return models.Author{Login: login, AvatarURL: u.GetAvatarURL()}
}

// normalize concatenates commits, then pull requests, then issues. Issues
// that are really pull requests are dropped.
func normalize(commits []*github.RepositoryCommit, pulls []*github.PullRequest, issues []*github.Issue) []models.TimelineItem {
	items := make([]models.TimelineItem, 0, len(commits)+len(pulls)+len(issues))
	for _, c := range commits {
		items = append(items, commitItem(c))
	}
	for _, pr := range pulls {
		items = append(items, pullRequestItem(pr))
	}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		items = append(items, issueItem(issue))
	}
	return items
}

// SortByCreatedDesc sorts items most recent first. Equal times keep their
// relative order. Items without a time sort last.
func SortByCreatedDesc(items []models.TimelineItem) {
	slices.SortStableFunc(items, func(a, b models.TimelineItem) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
}
