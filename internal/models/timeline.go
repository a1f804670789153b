package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the type of a timeline item.
type Kind string

const (
	KindCommit      Kind = "commit"
	KindPullRequest Kind = "pull_request"
	KindIssue       Kind = "issue"
)

// Kinds lists every item kind in concatenation order.
var Kinds = []Kind{KindCommit, KindPullRequest, KindIssue}

// Filter restricts a timeline request to one kind, or to all of them.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterCommit      Filter = Filter(KindCommit)
	FilterPullRequest Filter = Filter(KindPullRequest)
	FilterIssue       Filter = Filter(KindIssue)
)

// ParseFilter validates a filter string. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCommit, FilterPullRequest, FilterIssue:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", ErrInvalidRequest, s)
	}
}

// Includes reports whether items of kind k are part of the filter.
func (f Filter) Includes(k Kind) bool {
	return f == FilterAll || Kind(f) == k
}

// Author is the account credited with an item.
type Author struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

// TimelineItem is the normalized shape of a commit, pull request or issue.
// State and Number are only set for pull requests and issues.
type TimelineItem struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt Timestamp `json:"createdAt"`
	Author    Author    `json:"author"`
	State     string    `json:"state,omitempty"`
	Number    int       `json:"number,omitempty"`
}

// Pagination describes the page a snapshot was produced for.
type Pagination struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"perPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// Snapshot is the result of one timeline request.
type Snapshot struct {
	Repository Repository     `json:"repository"`
	Items      []TimelineItem `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

const (
	DefaultPage    = 1
	DefaultPerPage = 30
	MaxPerPage     = 100
)

// PageRequest asks for one page of a repository timeline.
type PageRequest struct {
	Repository Repository
	Page       int
	PerPage    int
	Filter     Filter
}

// WithDefaults fills zero fields with their default values.
func (r PageRequest) WithDefaults() PageRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	if r.Filter == "" {
		r.Filter = FilterAll
	}
	return r
}

// Validate checks the request without applying defaults.
func (r PageRequest) Validate() error {
	if r.Repository.Owner == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}
	if r.Repository.Name == "" {
		return fmt.Errorf("%w: repo is required", ErrInvalidRequest)
	}
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidRequest)
	}
	if r.PerPage < 1 || r.PerPage > MaxPerPage {
		return fmt.Errorf("%w: perPage must be between 1 and %d", ErrInvalidRequest, MaxPerPage)
	}
	if _, err := ParseFilter(string(r.Filter)); err != nil {
		return err
	}
	return nil
}

// Timestamp is an item creation time. The zero value marshals as an
// empty string and sorts after every real time in descending order.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
