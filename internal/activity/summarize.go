// Package activity computes simple analytics over timeline items.
package activity

import (
	"slices"
	"strings"

	"github.com/TNTKien/repo-timeline/internal/models"
)

const DefaultTopContributors = 5

var kindNames = map[models.Kind]string{
	models.KindCommit:      "Commits",
	models.KindPullRequest: "Pull Requests",
	models.KindIssue:       "Issues",
}

// Summarize counts items by kind, by calendar month (UTC) and by author.
// Months are oldest first; undated items are left out of them. At most
// topN contributors are returned, ties in first-seen order. topN <= 0
// means DefaultTopContributors.
func Summarize(items []models.TimelineItem, topN int) models.Activity {
	if topN <= 0 {
		topN = DefaultTopContributors
	}
	return models.Activity{
		ByType:          byType(items),
		Monthly:         monthly(items),
		TopContributors: topContributors(items, topN),
	}
}

func byType(items []models.TimelineItem) []models.TypeCount {
	counts := make(map[models.Kind]int, len(models.Kinds))
	for _, item := range items {
		counts[item.Kind]++
	}

	out := make([]models.TypeCount, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		out = append(out, models.TypeCount{Kind: k, Name: kindNames[k], Count: counts[k]})
	}
	return out
}

func monthly(items []models.TimelineItem) []models.MonthBucket {
	buckets := map[string]*models.MonthBucket{}
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		t := item.CreatedAt.UTC()
		key := t.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &models.MonthBucket{Month: key, Label: t.Format("Jan 2006")}
			buckets[key] = b
		}
		switch item.Kind {
		case models.KindCommit:
			b.Commit++
		case models.KindPullRequest:
			b.PullRequest++
		case models.KindIssue:
			b.Issue++
		}
		b.Total++
	}

	out := make([]models.MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.MonthBucket) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out
}

func topContributors(items []models.TimelineItem, topN int) []models.Contributor {
	index := map[string]int{}
	var out []models.Contributor
	for _, item := range items {
		login := item.Author.Login
		if i, ok := index[login]; ok {
			out[i].Contributions++
			continue
		}
		index[login] = len(out)
		out = append(out, models.Contributor{Login: login, Contributions: 1})
	}

	slices.SortStableFunc(out, func(a, b models.Contributor) int {
		return b.Contributions - a.Contributions
	})
	if len(out) > topN {
		out = out[:topN]
	}
	if out == nil {
		out = []models.Contributor{}
	}
	return out
}
