package timeline

import (
	"slices"

	"github.com/TNTKien/repo-timeline/internal/models"
)

// Accumulator holds the merged view of successive snapshots for one
// browsing session. It is not safe for concurrent use; Session serializes
// access to it.
type Accumulator struct {
	repository models.Repository
	filter     models.Filter
	items      []models.TimelineItem
	pagination models.Pagination
}

func NewAccumulator() *Accumulator {
	return &Accumulator{filter: models.FilterAll}
}

// ApplyPage merges snapshot into the accumulated view and returns the new
// view. Page 1 replaces the view outright. Any other page appends the
// snapshot, keeps one item per id (the newer copy wins) and re-sorts.
func (a *Accumulator) ApplyPage(snapshot *models.Snapshot, requestedPage int, filter models.Filter) *models.Snapshot {
	if requestedPage == 1 {
		a.items = slices.Clone(snapshot.Items)
	} else {
		a.items = mergeItems(a.items, snapshot.Items)
	}
	if a.items == nil {
		a.items = []models.TimelineItem{}
	}

	a.repository = snapshot.Repository
	a.filter = filter
	a.pagination = snapshot.Pagination
	return a.View()
}

// View returns a copy of the accumulated view.
func (a *Accumulator) View() *models.Snapshot {
	items := slices.Clone(a.items)
	if items == nil {
		items = []models.TimelineItem{}
	}
	return &models.Snapshot{
		Repository: a.repository,
		Items:      items,
		Pagination: a.pagination,
	}
}

func (a *Accumulator) Filter() models.Filter {
	return a.filter
}

func (a *Accumulator) Pagination() models.Pagination {
	return a.pagination
}

func (a *Accumulator) ids() map[string]struct{} {
	set := make(map[string]struct{}, len(a.items))
	for _, item := range a.items {
		set[item.ID] = struct{}{}
	}
	return set
}

// mergeItems keeps the first position of each id but the last value seen
// for it, then sorts the result.
func mergeItems(prior, next []models.TimelineItem) []models.TimelineItem {
	merged := make([]models.TimelineItem, 0, len(prior)+len(next))
	index := make(map[string]int, len(prior)+len(next))

	for _, group := range [][]models.TimelineItem{prior, next} {
		for _, item := range group {
			if i, ok := index[item.ID]; ok {
				merged[i] = item
				continue
			}
			index[item.ID] = len(merged)
			merged = append(merged, item)
		}
	}

	SortByCreatedDesc(merged)
	return merged
}
